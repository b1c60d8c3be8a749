// Package index maintains the in-memory document index and its relevance
// search. Records live in a path-keyed table that preserves insertion order,
// so scans and search results are deterministic for a given sequence of
// index operations.
package index

import (
	"context"
	"time"

	"github.com/starford/leit/internal/models"
	"github.com/starford/leit/internal/storage"
)

// Result is one search hit. Pass records which pass produced it; Score is
// only meaningful for the content and scored passes.
type Result struct {
	Doc   *models.IndexedDocument
	Pass  int
	Score float64
}

// Pass identifiers in pipeline order.
const (
	PassExactTitle = iota + 1
	PassExactContent
	PassSemanticTitle
	PassScored
)

// ProgressFunc receives the completed fraction in (0,1] after each document
// processed during a rebuild.
type ProgressFunc func(fraction float64)

// RebuildStats summarizes one full rebuild.
type RebuildStats struct {
	Total   int `json:"total"`
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Removed int `json:"removed"`
}

// DocumentIndex defines the index operations. Consumers should depend on
// this interface rather than the concrete *Indexer to facilitate testing
// with fakes.
type DocumentIndex interface {
	SetExclusionRules(folders, tags []string)
	IndexDocument(path, filename string, modTime time.Time, raw string) error
	UpdateDocument(path, filename string, modTime time.Time, raw string) error
	RemoveDocument(path string)
	IsIndexed(path string) bool
	Get(path string) (*models.IndexedDocument, bool)
	Paths() []string
	Len() int
	Search(query string) []Result
	Rebuild(ctx context.Context, source storage.Provider, onProgress ProgressFunc) (RebuildStats, error)
	Rebuilding() bool
}

// Verify *Indexer satisfies DocumentIndex at compile time.
var _ DocumentIndex = (*Indexer)(nil)
