package index

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/starford/leit/internal/models"
	"github.com/starford/leit/internal/semantic"
)

// MinQueryLength is the minimum number of characters a trimmed query must
// contain for a search to run at all.
const MinQueryLength = 2

const (
	maxResults          = 50
	maxScoredCandidates = 100
	contentMatchWeight  = 70
	lengthNormCap       = 5000
)

// candidate pairs a record with its lower-cased token text, computed once
// per search.
type candidate struct {
	doc     *models.IndexedDocument
	name    string // filename, extension stripped, lower-cased
	content string
}

// Search runs the query through four passes, each consuming matches so a
// document appears at most once:
//
//  1. exact title: the filename equals the query or contains it whole-word
//  2. exact content: the query appears whole-word in the token text
//  3. semantic title: a vocabulary term related to the query matches the
//     filename whole-word
//  4. scored: every query keyword and related term is scored against
//     filename, headers, content, and table cells, normalized by content
//     length
//
// Results concatenate in pass order, the scored pass sorted by descending
// score, and are capped at 50. Queries shorter than two characters return
// nothing.
func (ix *Indexer) Search(query string) []Result {
	q := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < MinQueryLength {
		return nil
	}

	docs := ix.store.snapshot()
	cands := make([]candidate, len(docs))
	for i, d := range docs {
		cands[i] = candidate{
			doc:     d,
			name:    strings.ToLower(strings.TrimSuffix(d.Filename, ".md")),
			content: strings.ToLower(d.TokenText()),
		}
	}

	m := newMatcher()
	var results []Result

	results, cands = passExactTitle(m, q, cands, results)
	results, cands = passExactContent(m, q, cands, results)
	results, cands = passSemanticTitle(m, semantic.RelatedTerms(q), cands, results)
	results = ix.passScored(m, q, cands, results)

	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

// passExactTitle matches the whole query against document names.
func passExactTitle(m *matcher, q string, cands []candidate, results []Result) ([]Result, []candidate) {
	rest := cands[:0:0]
	for _, c := range cands {
		if c.name == q || m.wholeWord(q, c.name) {
			results = append(results, Result{Doc: c.doc, Pass: PassExactTitle})
			continue
		}
		rest = append(rest, c)
	}
	return results, rest
}

// passExactContent matches the whole query against token text. Every hit
// carries the same fixed weight, so insertion order already ranks them.
func passExactContent(m *matcher, q string, cands []candidate, results []Result) ([]Result, []candidate) {
	rest := cands[:0:0]
	for _, c := range cands {
		if m.wholeWord(q, c.content) {
			results = append(results, Result{Doc: c.doc, Pass: PassExactContent, Score: contentMatchWeight})
			continue
		}
		rest = append(rest, c)
	}
	return results, rest
}

// passSemanticTitle matches related vocabulary terms against document names.
func passSemanticTitle(m *matcher, related []string, cands []candidate, results []Result) ([]Result, []candidate) {
	if len(related) == 0 {
		return results, cands
	}
	rest := cands[:0:0]
	for _, c := range cands {
		matched := false
		for _, term := range related {
			if m.wholeWord(term, c.name) {
				matched = true
				break
			}
		}
		if matched {
			results = append(results, Result{Doc: c.doc, Pass: PassSemanticTitle})
			continue
		}
		rest = append(rest, c)
	}
	return results, rest
}

// passScored scores remaining candidates against the combined term set:
// query keywords plus related vocabulary. Scanning stops once 100 documents
// qualify. Hits sort by score, descending and stable.
func (ix *Indexer) passScored(m *matcher, q string, cands []candidate, results []Result) []Result {
	var keywords []string
	qa, err := ix.analyzer.AnalyzeQuery(q)
	if err != nil {
		// Degrades to vocabulary terms only; earlier passes already ran.
		ix.logger.Warn("search: query analysis failed", slog.String("error", err.Error()))
	} else {
		keywords = qa.Keywords
	}
	terms := mergeTerms(keywords, semantic.RelatedTerms(q))
	if len(terms) == 0 {
		return results
	}

	var scored []Result
	for _, c := range cands {
		if len(scored) >= maxScoredCandidates {
			break
		}
		if s := scoreCandidate(m, terms, c); s > 0 {
			scored = append(scored, Result{Doc: c.doc, Pass: PassScored, Score: s})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return append(results, scored...)
}

// scoreCandidate computes the weighted score for one document. Each term
// contributes through the first tier that matches it:
//
//   - whole-word in the name: 2
//   - whole-word in a header: 3
//   - whole-word in content: 1, or bare substring: 0.5; a term still below
//     2 may then add 2 for a whole-word table cell hit
//
// The raw sum is normalized by ln(min(len, 5000)+1) of the content length.
// Documents containing no term at all, even as substring, score zero and
// are skipped without tier checks.
func scoreCandidate(m *matcher, terms []string, c candidate) float64 {
	if c.content == "" {
		return 0
	}
	any := false
	for _, t := range terms {
		if strings.Contains(c.content, t) {
			any = true
			break
		}
	}
	if !any {
		return 0
	}

	raw := 0.0
	for _, term := range terms {
		if m.wholeWord(term, c.name) {
			raw += 2
			continue
		}
		if headerMatch(m, term, c.doc.Structure.Headers) {
			raw += 3
			continue
		}
		contrib := 0.0
		if m.wholeWord(term, c.content) {
			contrib = 1
		} else if strings.Contains(c.content, term) {
			contrib = 0.5
		}
		if contrib < 2 {
			for _, cell := range c.doc.TableCells {
				if m.wholeWord(term, strings.ToLower(cell)) {
					contrib += 2
					break
				}
			}
		}
		raw += contrib
	}
	if raw == 0 {
		return 0
	}

	length := float64(len(c.content))
	if length > lengthNormCap {
		length = lengthNormCap
	}
	return raw / math.Log(length+1)
}

func headerMatch(m *matcher, term string, headers []string) bool {
	for _, h := range headers {
		if m.wholeWord(term, strings.ToLower(h)) {
			return true
		}
	}
	return false
}

// mergeTerms concatenates keyword and related term lists, deduplicated,
// order preserved, empties dropped.
func mergeTerms(keywords, related []string) []string {
	seen := make(map[string]struct{}, len(keywords)+len(related))
	var out []string
	for _, list := range [][]string{keywords, related} {
		for _, t := range list {
			if t == "" {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}
