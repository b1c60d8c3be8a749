// Package models defines the domain types for Leit.
package models

import (
	"strings"
	"time"
)

// Analysis is the analyzer's output for one document.
type Analysis struct {
	Tokens    []string `json:"tokens"`
	Entities  []string `json:"entities,omitempty"`
	Topics    []string `json:"topics,omitempty"`
	Sentiment int      `json:"sentiment"` // -1, 0 or 1
}

// QueryAnalysis is the analyzer's output for a search query.
type QueryAnalysis struct {
	Intent       string   `json:"intent"` // "question", "command" or "statement"
	Keywords     []string `json:"keywords,omitempty"`
	Entities     []string `json:"entities,omitempty"`
	RelatedTerms []string `json:"related_terms,omitempty"`
}

// Table is a single Markdown pipe table.
type Table struct {
	Headers []string   `json:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
}

// Structure holds the structural elements extracted from a document.
type Structure struct {
	Headers []string `json:"headers,omitempty"`
	Lists   []string `json:"lists,omitempty"`
	Tables  []Table  `json:"tables,omitempty"`
}

// IndexedDocument is one vault document as held by the index. Records are
// immutable once stored; a re-index replaces the whole record.
type IndexedDocument struct {
	Path         string            `json:"path"`
	Filename     string            `json:"filename"`
	LastModified time.Time         `json:"last_modified"`
	Checksum     string            `json:"checksum,omitempty"`
	Analysis     *Analysis         `json:"analysis,omitempty"`
	Tags         []string          `json:"tags,omitempty"`
	Frontmatter  map[string]string `json:"frontmatter,omitempty"`
	TableCells   []string          `json:"-"`
	Structure    Structure         `json:"structure"`
}

// TokenText returns the analyzed tokens joined with single spaces. Token
// adjacency mirrors the source text, so multi-word phrases remain matchable.
func (d *IndexedDocument) TokenText() string {
	if d.Analysis == nil {
		return ""
	}
	return strings.Join(d.Analysis.Tokens, " ")
}

// DocumentMeta is a lightweight representation returned by list operations.
type DocumentMeta struct {
	Path     string    `json:"path"`
	Filename string    `json:"filename"`
	Checksum string    `json:"checksum"`
	ModTime  time.Time `json:"mod_time"`
}
