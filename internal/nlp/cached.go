package nlp

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/starford/leit/internal/models"
)

// Default cache capacities. Document analyses dominate memory, so that
// cache is larger; queries are short-lived and repeat less.
const (
	DefaultDocCacheEntries   = 512
	DefaultQueryCacheEntries = 256
)

// Cached wraps an Analyzer with bounded LRU caches keyed by exact text.
// Safe because analyzers are deterministic; callers must treat returned
// values as immutable since cache hits share pointers.
type Cached struct {
	inner   Analyzer
	docs    *lru.Cache[string, *models.Analysis]
	queries *lru.Cache[string, *models.QueryAnalysis]
}

// NewCached builds a caching decorator around inner. Capacities must be
// positive.
func NewCached(inner Analyzer, docEntries, queryEntries int) (*Cached, error) {
	docs, err := lru.New[string, *models.Analysis](docEntries)
	if err != nil {
		return nil, fmt.Errorf("nlp: doc cache: %w", err)
	}
	queries, err := lru.New[string, *models.QueryAnalysis](queryEntries)
	if err != nil {
		return nil, fmt.Errorf("nlp: query cache: %w", err)
	}
	return &Cached{inner: inner, docs: docs, queries: queries}, nil
}

func (c *Cached) Analyze(text string) (*models.Analysis, error) {
	if hit, ok := c.docs.Get(text); ok {
		return hit, nil
	}
	res, err := c.inner.Analyze(text)
	if err != nil {
		return nil, err
	}
	c.docs.Add(text, res)
	return res, nil
}

func (c *Cached) AnalyzeQuery(text string) (*models.QueryAnalysis, error) {
	if hit, ok := c.queries.Get(text); ok {
		return hit, nil
	}
	res, err := c.inner.AnalyzeQuery(text)
	if err != nil {
		return nil, err
	}
	c.queries.Add(text, res)
	return res, nil
}
