package docservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/starford/leit/internal/apperr"
	"github.com/starford/leit/internal/index"
	"github.com/starford/leit/internal/nlp"
	"github.com/starford/leit/internal/testutil"
)

// testService wires a real storage, analyzer, and index over a temp vault.
func testService(t *testing.T, files map[string]string) (*Service, string) {
	t.Helper()
	vaultDir, store := testutil.TestVault(t)
	testutil.SeedVault(t, vaultDir, files)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ix := index.New(nlp.NewEngine(), index.WithLogger(logger), index.WithRebuildWorkers(1))
	return NewService(store, ix, nil, logger), vaultDir
}

func rebuilt(t *testing.T, svc *Service) index.RebuildStats {
	t.Helper()
	stats, err := svc.Reindex(context.Background())
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	return stats
}

func TestSearch_ReturnsHitsWithSnippets(t *testing.T) {
	svc, _ := testService(t, map[string]string{
		"notes.md": "The quarterly budget was approved by the finance committee after review.",
	})
	rebuilt(t, svc)

	hits, err := svc.Search(context.Background(), "budget")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1", len(hits))
	}
	h := hits[0]
	if h.Path != "notes.md" || h.Filename != "notes.md" {
		t.Errorf("hit = %+v", h)
	}
	if !strings.Contains(h.Snippet, "budget") {
		t.Errorf("snippet = %q, want it to contain the query", h.Snippet)
	}
}

func TestSearch_ShortQuery(t *testing.T) {
	svc, _ := testService(t, map[string]string{"a.md": "text"})
	rebuilt(t, svc)

	for _, q := range []string{"", "x", "  y  "} {
		if _, err := svc.Search(context.Background(), q); !errors.Is(err, apperr.ErrQueryTooShort) {
			t.Errorf("Search(%q) err = %v, want ErrQueryTooShort", q, err)
		}
	}
}

func TestSearch_LongDocumentSnippetWindow(t *testing.T) {
	pad := strings.Repeat("filler words keep going onward ", 40)
	svc, _ := testService(t, map[string]string{
		"long.md": pad + "the hidden keystone sits here " + pad,
	})
	rebuilt(t, svc)

	hits, err := svc.Search(context.Background(), "keystone")
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("len(hits) = %d, want 1", len(hits))
	}
	snip := hits[0].Snippet
	if !strings.Contains(snip, "keystone") {
		t.Errorf("snippet = %q, want match inside window", snip)
	}
	if !strings.HasPrefix(snip, "...") || !strings.HasSuffix(snip, "...") {
		t.Errorf("snippet = %q, want ellipses on both sides", snip)
	}
	if len(snip) > 2*snippetRadius+len("keystone")+6 {
		t.Errorf("snippet too long: %d bytes", len(snip))
	}
}

func TestGetDocument(t *testing.T) {
	svc, _ := testService(t, map[string]string{
		"plans/q3.md": "---\ntitle: Q3 Plan\n---\n# Roadmap\nShip the indexer. #planning",
	})
	rebuilt(t, svc)

	doc, err := svc.GetDocument(context.Background(), "plans/q3.md")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if !doc.Indexed {
		t.Error("doc should be indexed")
	}
	if doc.Filename != "q3.md" {
		t.Errorf("filename = %q", doc.Filename)
	}
	if !strings.Contains(doc.Content, "Ship the indexer") {
		t.Errorf("content = %q", doc.Content)
	}
	if len(doc.Tags) != 1 || doc.Tags[0] != "#planning" {
		t.Errorf("tags = %v", doc.Tags)
	}
	if doc.Frontmatter["title"] != "Q3 Plan" {
		t.Errorf("frontmatter = %v", doc.Frontmatter)
	}
	if len(doc.Headers) != 1 || doc.Headers[0] != "Roadmap" {
		t.Errorf("headers = %v", doc.Headers)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	svc, _ := testService(t, nil)
	if _, err := svc.GetDocument(context.Background(), "ghost.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetDocument_UnindexedFile(t *testing.T) {
	svc, _ := testService(t, map[string]string{"later.md": "never rebuilt"})

	doc, err := svc.GetDocument(context.Background(), "later.md")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if doc.Indexed {
		t.Error("doc should not be indexed before a rebuild")
	}
	if doc.Content != "never rebuilt" {
		t.Errorf("content = %q", doc.Content)
	}
	if doc.Tags == nil || doc.Topics == nil {
		t.Error("slices should be empty, not nil")
	}
}

func TestListDocuments_PaginationAndTagFilter(t *testing.T) {
	svc, _ := testService(t, map[string]string{
		"a.md": "alpha #keep",
		"b.md": "bravo",
		"c.md": "charlie #keep",
	})
	rebuilt(t, svc)

	items, total, err := svc.ListDocuments(context.Background(), 2, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(items) != 2 {
		t.Errorf("len(items) = %d, want 2", len(items))
	}
	if items[0].Path != "a.md" || items[1].Path != "b.md" {
		t.Errorf("page = %v", []string{items[0].Path, items[1].Path})
	}

	items, total, err = svc.ListDocuments(context.Background(), 10, 2, "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(items) != 1 || items[0].Path != "c.md" {
		t.Errorf("offset page: total=%d items=%v", total, items)
	}

	// Tag filter accepts the tag with or without the leading hash.
	for _, tag := range []string{"keep", "#keep", "KEEP"} {
		items, total, err = svc.ListDocuments(context.Background(), 0, 0, tag)
		if err != nil {
			t.Fatal(err)
		}
		if total != 2 || len(items) != 2 {
			t.Errorf("tag %q: total=%d len=%d, want 2/2", tag, total, len(items))
		}
	}

	items, _, err = svc.ListDocuments(context.Background(), 10, 99, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("offset past end should return empty, got %v", items)
	}
}

func TestReindex_StatsAndStatus(t *testing.T) {
	svc, _ := testService(t, map[string]string{
		"a.md": "first",
		"b.md": "second",
	})

	st := svc.Status(context.Background())
	if st.Documents != 0 || st.LastRebuild != nil {
		t.Fatalf("fresh status = %+v", st)
	}

	stats := rebuilt(t, svc)
	if stats.Total != 2 || stats.Indexed != 2 {
		t.Errorf("stats = %+v", stats)
	}

	st = svc.Status(context.Background())
	if st.Documents != 2 {
		t.Errorf("documents = %d, want 2", st.Documents)
	}
	if st.LastRebuild == nil || st.LastRebuild.Indexed != 2 {
		t.Errorf("last rebuild = %+v", st.LastRebuild)
	}
	if st.LastRebuildAt == nil {
		t.Error("last rebuild time missing")
	}
}

func TestSetExclusions_AppliedOnReindex(t *testing.T) {
	svc, _ := testService(t, map[string]string{
		"keep.md":        "stays",
		"private/out.md": "goes",
		"tagged.md":      "secret stuff #internal",
		"plain.md":       "ordinary",
	})
	svc.SetExclusions([]string{"private"}, []string{"internal"})
	rebuilt(t, svc)

	_, total, err := svc.ListDocuments(context.Background(), 0, 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2 (exclusions applied)", total)
	}

	st := svc.Status(context.Background())
	if len(st.ExcludedFolders) != 1 || st.ExcludedFolders[0] != "private" {
		t.Errorf("excluded folders = %v", st.ExcludedFolders)
	}
	if len(st.ExcludedTags) != 1 || st.ExcludedTags[0] != "internal" {
		t.Errorf("excluded tags = %v", st.ExcludedTags)
	}
}
