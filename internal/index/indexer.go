package index

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/starford/leit/internal/checksum"
	"github.com/starford/leit/internal/markdown"
	"github.com/starford/leit/internal/models"
	"github.com/starford/leit/internal/nlp"
)

// Indexer implements DocumentIndex on top of the in-memory store.
type Indexer struct {
	store    *store
	analyzer nlp.Analyzer
	logger   *slog.Logger
	workers  int

	exclMu          sync.RWMutex
	excludedFolders []string
	excludedTags    []string

	rebuilding atomic.Bool
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(ix *Indexer) {
		if l != nil {
			ix.logger = l
		}
	}
}

// WithRebuildWorkers sets the worker pool size for full rebuilds.
func WithRebuildWorkers(n int) Option {
	return func(ix *Indexer) {
		if n > 0 {
			ix.workers = n
		}
	}
}

// New creates an empty index using the given analyzer.
func New(analyzer nlp.Analyzer, opts ...Option) *Indexer {
	ix := &Indexer{
		store:    newStore(),
		analyzer: analyzer,
		logger:   slog.Default(),
		workers:  runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// SetExclusionRules replaces the active exclusion rules. Folder rules match
// path segments case-insensitively; tag rules match extracted document tags.
// Existing records are not re-evaluated; rules apply to subsequent index
// operations and rebuilds.
func (ix *Indexer) SetExclusionRules(folders, tags []string) {
	normFolders := make([]string, 0, len(folders))
	for _, f := range folders {
		f = strings.ToLower(strings.Trim(strings.TrimSpace(f), "/"))
		if f != "" {
			normFolders = append(normFolders, f)
		}
	}
	normTags := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(t), "#"))
		if t != "" {
			normTags = append(normTags, "#"+t)
		}
	}

	ix.exclMu.Lock()
	ix.excludedFolders = normFolders
	ix.excludedTags = normTags
	ix.exclMu.Unlock()

	ix.logger.Debug("index: exclusion rules set",
		slog.Int("folders", len(normFolders)),
		slog.Int("tags", len(normTags)))
}

// excluded reports whether a document at path with the given tags falls
// under an active exclusion rule. Tags are expected lower-cased with their
// leading #.
func (ix *Indexer) excluded(path string, tags []string) bool {
	ix.exclMu.RLock()
	defer ix.exclMu.RUnlock()

	p := strings.ToLower(path)
	for _, folder := range ix.excludedFolders {
		if p == folder || strings.HasPrefix(p, folder+"/") {
			return true
		}
	}
	for _, rule := range ix.excludedTags {
		for _, tag := range tags {
			if tag == rule {
				return true
			}
		}
	}
	return false
}

// IndexDocument analyzes raw text and stores the resulting record under
// path. An excluded document is not analyzed; any previous record for the
// path is dropped so exclusion also covers documents that grew an excluded
// tag.
func (ix *Indexer) IndexDocument(path, filename string, modTime time.Time, raw string) error {
	tags := markdown.ExtractTags(raw)
	if ix.excluded(path, tags) {
		if ix.store.remove(path) {
			ix.logger.Debug("index: removed excluded document", slog.String("path", path))
		}
		return nil
	}

	analysis, err := ix.analyzer.Analyze(raw)
	if err != nil {
		return fmt.Errorf("index: analyze %s: %w", path, err)
	}

	st := markdown.ParseStructure(raw)
	doc := &models.IndexedDocument{
		Path:         path,
		Filename:     filename,
		LastModified: modTime,
		Checksum:     checksum.SumString(raw),
		Analysis:     analysis,
		Tags:         tags,
		Frontmatter:  markdown.ParseFrontmatter(raw),
		TableCells:   markdown.CellValues(st.Tables),
		Structure:    st,
	}
	ix.store.upsert(doc)
	return nil
}

// UpdateDocument re-indexes path unless the stored record already carries
// the same modification time or the same content checksum, in which case
// nothing happens and the text is not analyzed again. The checksum check
// covers editors that rewrite files without changing their content.
func (ix *Indexer) UpdateDocument(path, filename string, modTime time.Time, raw string) error {
	if existing, ok := ix.store.get(path); ok {
		if existing.LastModified.Equal(modTime) || existing.Checksum == checksum.SumString(raw) {
			return nil
		}
	}
	return ix.IndexDocument(path, filename, modTime, raw)
}

// RemoveDocument drops the record for path. Removing an unknown path is a
// no-op.
func (ix *Indexer) RemoveDocument(path string) {
	if ix.store.remove(path) {
		ix.logger.Debug("index: removed document", slog.String("path", path))
	}
}

// IsIndexed reports whether path has a record.
func (ix *Indexer) IsIndexed(path string) bool {
	return ix.store.has(path)
}

// Get returns the record for path.
func (ix *Indexer) Get(path string) (*models.IndexedDocument, bool) {
	return ix.store.get(path)
}

// Paths returns all indexed paths in insertion order.
func (ix *Indexer) Paths() []string {
	return ix.store.paths()
}

// Len returns the number of indexed documents.
func (ix *Indexer) Len() int {
	return ix.store.len()
}

// Rebuilding reports whether a full rebuild is in flight.
func (ix *Indexer) Rebuilding() bool {
	return ix.rebuilding.Load()
}
