package index

import "regexp"

// matcher caches compiled whole-word patterns for the duration of one
// search call. Not safe for concurrent use; each search builds its own.
type matcher struct {
	patterns map[string]*regexp.Regexp
}

func newMatcher() *matcher {
	return &matcher{patterns: make(map[string]*regexp.Regexp)}
}

// wholeWord reports whether term occurs in text bounded by non-word
// characters or string edges on both sides. Matching is case-insensitive
// and the term is taken literally, so terms with hyphens or punctuation
// stay intact.
func (m *matcher) wholeWord(term, text string) bool {
	if term == "" || text == "" {
		return false
	}
	re, ok := m.patterns[term]
	if !ok {
		re = regexp.MustCompile(`(?i)(^|\W)` + regexp.QuoteMeta(term) + `(\W|$)`)
		m.patterns[term] = re
	}
	return re.MatchString(text)
}
