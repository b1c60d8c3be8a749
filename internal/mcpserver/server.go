// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Leit tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/leit/internal/apperr"
	"github.com/starford/leit/internal/docservice"
	"github.com/starford/leit/internal/index"
)

// Server wraps the MCP server with Leit tools.
type Server struct {
	mcp *server.MCPServer
	svc *docservice.Service
}

// New creates a new MCP server with all Leit tools registered.
func New(svc *docservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Leit",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_vault",
		mcp.WithDescription("Relevance-ranked search across the indexed Markdown vault. "+
			"Accepts natural-language queries; see the leit://query-syntax resource for "+
			"how queries are interpreted."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query (keywords or natural language)")),
	), s.searchVault)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read the full content of a Markdown document from the vault."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the document (e.g. folder/doc.md)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List indexed documents, optionally filtered by tag."),
		mcp.WithString("tag", mcp.Description("Optional tag filter, with or without the leading #")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("reindex_vault",
		mcp.WithDescription("Run a full rebuild of the document index and return its statistics."),
	), s.reindexVault)

	s.mcp.AddTool(mcp.NewTool("vault_status",
		mcp.WithDescription("Report the current index state: document count, exclusion rules, last rebuild."),
	), s.vaultStatus)

	// Resource: query syntax guide.
	s.mcp.AddResource(
		mcp.NewResource("leit://query-syntax", "Query Syntax Guide",
			mcp.WithResourceDescription("How queries are interpreted and ranked by the search pipeline."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readQuerySyntaxResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchVault(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.Search(ctx, query)
	if err != nil {
		if errors.Is(err, apperr.ErrQueryTooShort) {
			return mcp.NewToolResultError(fmt.Sprintf("query must be at least %d characters", index.MinQueryLength)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("no matches"), nil
	}
	out, _ := json.MarshalIndent(hits, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.GetDocument(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(doc.Content), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := ""
	if v, err := req.RequireString("tag"); err == nil {
		tag = v
	}

	items, total, err := s.svc.ListDocuments(ctx, 0, 0, tag)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if total == 0 {
		return mcp.NewToolResultText("no documents indexed"), nil
	}

	var lines []string
	for _, item := range items {
		line := item.Path
		if len(item.Tags) > 0 {
			line += "  " + strings.Join(item.Tags, " ")
		}
		lines = append(lines, line)
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) reindexVault(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.svc.Reindex(ctx)
	if err != nil {
		if errors.Is(err, apperr.ErrRebuildRunning) {
			return mcp.NewToolResultError("rebuild already running"), nil
		}
		if !errors.Is(err, apperr.ErrRebuildCancelled) {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	out, _ := json.MarshalIndent(stats, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) vaultStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.svc.Status(ctx), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readQuerySyntaxResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "leit://query-syntax",
			MIMEType: "text/markdown",
			Text:     QuerySyntaxGuide,
		},
	}, nil
}
