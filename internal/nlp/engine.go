package nlp

import (
	"regexp"
	"strings"

	snowballeng "github.com/kljensen/snowball/english"

	"github.com/starford/leit/internal/models"
	"github.com/starford/leit/internal/semantic"
)

const topicLimit = 5

var (
	wordRe     = regexp.MustCompile(`[A-Za-z0-9_]+(?:['-][A-Za-z0-9_]+)*`)
	sentenceRe = regexp.MustCompile(`[.!?\n]+`)
)

// Engine is the built-in analyzer. It is stateless and all methods are pure
// functions of their input.
type Engine struct{}

// NewEngine returns the built-in analyzer.
func NewEngine() *Engine {
	return &Engine{}
}

// Analyze tokenizes the text and derives entities, ranked topics, and a
// sentiment signal. It never fails; empty text yields an empty analysis.
func (e *Engine) Analyze(text string) (*models.Analysis, error) {
	tokens := tokenize(text)
	return &models.Analysis{
		Tokens:    tokens,
		Entities:  extractEntities(text),
		Topics:    rankTopics(tokens),
		Sentiment: scoreSentiment(tokens),
	}, nil
}

// AnalyzeQuery classifies the query intent and extracts keywords, entities,
// and related vocabulary terms.
func (e *Engine) AnalyzeQuery(text string) (*models.QueryAnalysis, error) {
	trimmed := strings.TrimSpace(text)
	tokens := tokenize(trimmed)
	keywords := extractKeywords(tokens)

	return &models.QueryAnalysis{
		Intent:       classifyIntent(trimmed, tokens),
		Keywords:     keywords,
		Entities:     extractEntities(trimmed),
		RelatedTerms: relatedTerms(trimmed, keywords),
	}, nil
}

// tokenize returns all word tokens in document order, original case kept.
// Intra-word hyphens and apostrophes stay inside a token.
func tokenize(text string) []string {
	return wordRe.FindAllString(text, -1)
}

// extractEntities finds capitalized tokens that do not open a sentence.
// Consecutive hits merge into one entity, so full names stay together.
func extractEntities(text string) []string {
	seen := make(map[string]struct{})
	var out []string

	for _, sentence := range sentenceRe.Split(text, -1) {
		tokens := tokenize(sentence)
		var run []string
		flush := func() {
			if len(run) == 0 {
				return
			}
			entity := strings.Join(run, " ")
			run = nil
			if _, dup := seen[entity]; dup {
				return
			}
			seen[entity] = struct{}{}
			out = append(out, entity)
		}
		for i, tok := range tokens {
			if i > 0 && isEntityToken(tok) {
				run = append(run, tok)
				continue
			}
			flush()
		}
		flush()
	}
	return out
}

func isEntityToken(tok string) bool {
	if len(tok) < 3 {
		return false
	}
	first := tok[0]
	if first < 'A' || first > 'Z' {
		return false
	}
	return !isStopword(strings.ToLower(tok))
}

// rankTopics counts stems of significant tokens and returns the most
// frequent ones, represented by the first surface form seen for each stem.
// Ties break on first appearance.
func rankTopics(tokens []string) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	surface := make(map[string]string)
	var order []string

	for i, tok := range tokens {
		lower := strings.ToLower(tok)
		if len(lower) < 3 || isStopword(lower) || !isAlphabetic(lower) {
			continue
		}
		stem := snowballeng.Stem(lower, false)
		if _, ok := counts[stem]; !ok {
			firstSeen[stem] = i
			surface[stem] = lower
			order = append(order, stem)
		}
		counts[stem]++
	}

	// Insertion sort by count desc, first appearance asc. Topic lists are
	// small enough that this stays cheap.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0; j-- {
			a, b := order[j-1], order[j]
			if counts[b] > counts[a] || (counts[b] == counts[a] && firstSeen[b] < firstSeen[a]) {
				order[j-1], order[j] = b, a
				continue
			}
			break
		}
	}

	if len(order) > topicLimit {
		order = order[:topicLimit]
	}
	topics := make([]string, len(order))
	for i, stem := range order {
		topics[i] = surface[stem]
	}
	return topics
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return len(s) > 0
}

// scoreSentiment compares positive and negative lexicon hits and collapses
// the balance to -1, 0 or 1.
func scoreSentiment(tokens []string) int {
	score := 0
	for _, tok := range tokens {
		lower := strings.ToLower(tok)
		if _, ok := positiveWords[lower]; ok {
			score++
		}
		if _, ok := negativeWords[lower]; ok {
			score--
		}
	}
	switch {
	case score > 0:
		return 1
	case score < 0:
		return -1
	default:
		return 0
	}
}

// classifyIntent labels the query as question, command, or statement. A
// trailing question mark or a leading question word means question; a
// leading imperative verb means command.
func classifyIntent(trimmed string, tokens []string) string {
	if strings.HasSuffix(trimmed, "?") {
		return "question"
	}
	if len(tokens) == 0 {
		return "statement"
	}
	head := strings.ToLower(tokens[0])
	if _, ok := questionWords[head]; ok {
		return "question"
	}
	if _, ok := commandVerbs[head]; ok {
		return "command"
	}
	return "statement"
}

// extractKeywords keeps significant tokens and appends verb phrases of the
// form verb [article] noun, reconstructed with their original adjacency so
// they remain matchable against token text.
func extractKeywords(tokens []string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(term string) {
		if term == "" {
			return
		}
		if _, dup := seen[term]; dup {
			return
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}

	lowered := make([]string, len(tokens))
	for i, tok := range tokens {
		lowered[i] = strings.ToLower(tok)
	}
	for _, tok := range lowered {
		if len(tok) < 2 || isStopword(tok) {
			continue
		}
		add(tok)
	}
	for _, phrase := range verbPhrases(lowered) {
		add(phrase)
	}
	return out
}

// verbPhrases scans for a lexicon verb followed by an optional article and
// up to two significant tokens.
func verbPhrases(lowered []string) []string {
	var phrases []string
	for i, tok := range lowered {
		if _, ok := phraseVerbs[tok]; !ok {
			continue
		}
		span := []string{tok}
		j := i + 1
		if j < len(lowered) {
			if _, art := articles[lowered[j]]; art {
				span = append(span, lowered[j])
				j++
			}
		}
		nouns := 0
		for ; j < len(lowered) && nouns < 2; j++ {
			w := lowered[j]
			if len(w) < 2 || isStopword(w) {
				break
			}
			if _, verb := phraseVerbs[w]; verb {
				break
			}
			span = append(span, w)
			nouns++
		}
		if nouns > 0 {
			phrases = append(phrases, strings.Join(span, " "))
		}
	}
	return phrases
}

// relatedTerms unions the vocabulary groups of the whole query and of each
// single-word keyword.
func relatedTerms(trimmed string, keywords []string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(terms []string) {
		for _, t := range terms {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	add(semantic.RelatedTerms(trimmed))
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			continue
		}
		add(semantic.RelatedTerms(kw))
	}
	return out
}
