// Package docservice coordinates storage, the document index, and event
// publication for the transport layers.
package docservice

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/starford/leit/internal/apperr"
	"github.com/starford/leit/internal/index"
	"github.com/starford/leit/internal/sse"
	"github.com/starford/leit/internal/storage"
)

const (
	defaultListLimit = 100
	snippetRadius    = 80
)

// SearchHit is one search result with a content snippet.
type SearchHit struct {
	Path     string  `json:"path"`
	Filename string  `json:"filename"`
	Pass     int     `json:"pass"`
	Score    float64 `json:"score,omitempty"`
	Snippet  string  `json:"snippet,omitempty"`
}

// DocumentDetail is the full representation of a vault document: the raw
// content from storage merged with the index record when one exists.
type DocumentDetail struct {
	Path         string            `json:"path"`
	Filename     string            `json:"filename"`
	Content      string            `json:"content"`
	Indexed      bool              `json:"indexed"`
	Tags         []string          `json:"tags"`
	Frontmatter  map[string]string `json:"frontmatter,omitempty"`
	Entities     []string          `json:"entities"`
	Topics       []string          `json:"topics"`
	Sentiment    int               `json:"sentiment"`
	Headers      []string          `json:"headers"`
	LastModified time.Time         `json:"last_modified"`
}

// DocumentListItem is a lightweight item in a list response.
type DocumentListItem struct {
	Path         string    `json:"path"`
	Filename     string    `json:"filename"`
	Tags         []string  `json:"tags"`
	Topics       []string  `json:"topics"`
	LastModified time.Time `json:"last_modified"`
}

// Status describes the current index state.
type Status struct {
	Documents       int                 `json:"documents"`
	Rebuilding      bool                `json:"rebuilding"`
	ExcludedFolders []string            `json:"excluded_folders"`
	ExcludedTags    []string            `json:"excluded_tags"`
	LastRebuild     *index.RebuildStats `json:"last_rebuild,omitempty"`
	LastRebuildAt   *time.Time          `json:"last_rebuild_at,omitempty"`
}

// Service coordinates storage and index operations. The vault is read-only
// from its point of view; mutations arrive through the watcher or a rebuild.
type Service struct {
	store  storage.Provider
	ix     index.DocumentIndex
	broker *sse.Broker
	logger *slog.Logger

	mu              sync.Mutex
	excludedFolders []string
	excludedTags    []string
	lastRebuild     *index.RebuildStats
	lastRebuildAt   time.Time
}

// NewService creates a new document service. The broker may be nil when no
// event stream is wanted (MCP mode).
func NewService(store storage.Provider, ix index.DocumentIndex, broker *sse.Broker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, ix: ix, broker: broker, logger: logger}
}

// Search runs the relevance pipeline and decorates hits with snippets.
// Queries shorter than the index minimum return ErrQueryTooShort so callers
// can tell "nothing matched" from "nothing was searched".
func (s *Service) Search(_ context.Context, query string) ([]SearchHit, error) {
	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < index.MinQueryLength {
		return nil, apperr.ErrQueryTooShort
	}

	results := s.ix.Search(trimmed)
	hits := make([]SearchHit, len(results))
	for i, r := range results {
		hits[i] = SearchHit{
			Path:     r.Doc.Path,
			Filename: r.Doc.Filename,
			Pass:     r.Pass,
			Score:    r.Score,
			Snippet:  makeSnippet(r.Doc.TokenText(), trimmed),
		}
	}
	return hits, nil
}

// GetDocument reads a document from storage and merges in the index record.
// Documents on disk but outside the index (excluded, or not yet seen) are
// returned with Indexed=false and zero-valued analysis fields.
func (s *Service) GetDocument(_ context.Context, docPath string) (*DocumentDetail, error) {
	meta, err := s.store.Stat(docPath)
	if err != nil {
		return nil, err
	}
	data, err := s.store.Read(docPath)
	if err != nil {
		return nil, err
	}

	detail := &DocumentDetail{
		Path:         meta.Path,
		Filename:     meta.Filename,
		Content:      string(data),
		Tags:         []string{},
		Entities:     []string{},
		Topics:       []string{},
		Headers:      []string{},
		LastModified: meta.ModTime,
	}
	rec, ok := s.ix.Get(meta.Path)
	if !ok {
		return detail, nil
	}
	detail.Indexed = true
	detail.Tags = nonNilSlice(rec.Tags)
	detail.Frontmatter = rec.Frontmatter
	detail.Headers = nonNilSlice(rec.Structure.Headers)
	detail.LastModified = rec.LastModified
	if rec.Analysis != nil {
		detail.Entities = nonNilSlice(rec.Analysis.Entities)
		detail.Topics = nonNilSlice(rec.Analysis.Topics)
		detail.Sentiment = rec.Analysis.Sentiment
	}
	return detail, nil
}

// ListDocuments returns indexed documents in insertion order with optional
// tag filtering and pagination. Total counts matches before pagination.
func (s *Service) ListDocuments(_ context.Context, limit, offset int, tag string) ([]DocumentListItem, int, error) {
	tag = normalizeTag(tag)

	var items []DocumentListItem
	for _, p := range s.ix.Paths() {
		rec, ok := s.ix.Get(p)
		if !ok {
			continue
		}
		if tag != "" && !containsString(rec.Tags, tag) {
			continue
		}
		item := DocumentListItem{
			Path:         rec.Path,
			Filename:     rec.Filename,
			Tags:         nonNilSlice(rec.Tags),
			Topics:       []string{},
			LastModified: rec.LastModified,
		}
		if rec.Analysis != nil {
			item.Topics = nonNilSlice(rec.Analysis.Topics)
		}
		items = append(items, item)
	}
	total := len(items)

	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []DocumentListItem{}, total, nil
	}
	items = items[offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, total, nil
}

// Reindex runs a full rebuild against the vault, publishing progress over
// SSE. Returns ErrRebuildRunning when a rebuild is already in flight; the
// index owns the single-flight gate, this pre-check only avoids publishing
// a spurious started event for the common case.
func (s *Service) Reindex(ctx context.Context) (index.RebuildStats, error) {
	if s.ix.Rebuilding() {
		return index.RebuildStats{}, apperr.ErrRebuildRunning
	}

	s.publish(sse.Event{Type: "reindex.started", Data: map[string]any{}})
	stats, err := s.ix.Rebuild(ctx, s.store, s.progress)
	if err != nil && !errors.Is(err, apperr.ErrRebuildCancelled) {
		return stats, err
	}

	now := time.Now()
	s.mu.Lock()
	statsCopy := stats
	s.lastRebuild = &statsCopy
	s.lastRebuildAt = now
	s.mu.Unlock()

	s.publish(sse.Event{Type: "reindex.finished", Data: map[string]any{
		"stats":     stats,
		"cancelled": err != nil,
	}})
	return stats, err
}

// SetExclusions replaces the exclusion rules. Rules apply to subsequent
// index operations only; call Reindex to re-evaluate existing records.
func (s *Service) SetExclusions(folders, tags []string) {
	s.mu.Lock()
	s.excludedFolders = append([]string(nil), folders...)
	s.excludedTags = append([]string(nil), tags...)
	s.mu.Unlock()
	s.ix.SetExclusionRules(folders, tags)
}

// Status reports the current index state.
func (s *Service) Status(_ context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Documents:       s.ix.Len(),
		Rebuilding:      s.ix.Rebuilding(),
		ExcludedFolders: nonNilSlice(s.excludedFolders),
		ExcludedTags:    nonNilSlice(s.excludedTags),
		LastRebuild:     s.lastRebuild,
	}
	if !s.lastRebuildAt.IsZero() {
		at := s.lastRebuildAt
		st.LastRebuildAt = &at
	}
	return st
}

// WatchCallback returns a callback that forwards watcher-driven index
// changes to SSE subscribers.
func (s *Service) WatchCallback() index.EventCallback {
	return func(kind, path string) {
		if s.broker != nil {
			s.broker.PublishDocEvent(kind, path)
		}
	}
}

func (s *Service) publish(ev sse.Event) {
	if s.broker != nil && ev.Type != "" {
		s.broker.Publish(ev)
	}
}

func (s *Service) progress(fraction float64) {
	if s.broker != nil {
		s.broker.PublishProgress(fraction)
	}
}

// makeSnippet cuts a window around the first occurrence of the query, or of
// any single query word, in the token text. Falls back to the leading
// window when nothing matches (title-pass hits).
func makeSnippet(text, query string) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)
	q := strings.ToLower(query)

	pos := strings.Index(lower, q)
	if pos < 0 {
		for _, word := range strings.Fields(q) {
			if i := strings.Index(lower, word); i >= 0 {
				pos = i
				break
			}
		}
	}
	if pos < 0 {
		pos = 0
	}

	start := pos - snippetRadius
	if start < 0 {
		start = 0
	}
	end := pos + snippetRadius
	if end > len(text) {
		end = len(text)
	}
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}

	snip := text[start:end]
	if start > 0 {
		snip = "..." + snip
	}
	if end < len(text) {
		snip += "..."
	}
	return snip
}

func normalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return ""
	}
	if !strings.HasPrefix(tag, "#") {
		tag = "#" + tag
	}
	return tag
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
