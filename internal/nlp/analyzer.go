// Package nlp provides lightweight text analysis for documents and search
// queries: tokenization, entity and topic extraction, sentiment, and query
// intent. The built-in engine is deterministic, so identical input always
// yields identical output and results may be cached by exact text.
package nlp

import "github.com/starford/leit/internal/models"

// Analyzer turns raw text into analysis results. Implementations must be
// deterministic and safe for concurrent use.
type Analyzer interface {
	// Analyze processes full document text.
	Analyze(text string) (*models.Analysis, error)

	// AnalyzeQuery processes a search query.
	AnalyzeQuery(text string) (*models.QueryAnalysis, error)
}

var (
	_ Analyzer = (*Engine)(nil)
	_ Analyzer = (*Cached)(nil)
)
