// Package semantic holds the fixed vocabulary tables used for query
// expansion: general synonym groups and emotion clusters. Lookups are
// deterministic; group order and member order are fixed at compile time.
package semantic

import "strings"

// Each group is a cluster key followed by its members. A term matching any
// element of a group relates to the whole group.
var synonymGroups = [][]string{
	{"title", "headline", "heading", "header", "subject"},
	{"note", "memo", "record", "entry", "jotting"},
	{"meeting", "appointment", "standup", "session", "catchup"},
	{"task", "todo", "chore", "errand", "assignment"},
	{"idea", "thought", "concept", "notion", "insight"},
	{"plan", "roadmap", "agenda", "schedule", "outline"},
	{"goal", "aim", "objective", "target", "milestone"},
	{"money", "cash", "budget", "finance", "expense"},
	{"work", "job", "career", "project", "assignment"},
	{"home", "house", "apartment", "flat", "residence"},
	{"trip", "journey", "travel", "vacation", "voyage"},
	{"food", "meal", "dish", "recipe", "cooking"},
	{"book", "novel", "reading", "volume", "publication"},
	{"friend", "buddy", "pal", "companion", "acquaintance"},
	{"health", "fitness", "wellness", "exercise", "workout"},
	{"problem", "issue", "trouble", "obstacle", "snag"},
	{"start", "begin", "launch", "kickoff", "commence"},
	{"finish", "complete", "conclude", "wrap-up", "done"},
	{"important", "crucial", "critical", "vital", "essential"},
	{"review", "retrospective", "evaluation", "assessment", "recap"},
}

var emotionClusters = [][]string{
	{"anger", "rage", "fury", "irritated", "livid", "pissed-off"},
	{"fear", "anxiety", "dread", "worried", "scared", "terrified"},
	{"joy", "happiness", "delight", "cheerful", "elated", "glad"},
	{"sadness", "grief", "sorrow", "gloomy", "miserable", "heartbroken"},
	{"love", "affection", "fondness", "adoration", "devotion", "tenderness"},
	{"desire", "longing", "craving", "yearning", "wanting", "urge"},
}

// RelatedTerms returns the union of every group the term belongs to, the
// term's own group key included. The result preserves table order and is
// deduplicated. An unknown term yields nil.
func RelatedTerms(term string) []string {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return nil
	}

	var out []string
	seen := make(map[string]struct{})
	collect := func(groups [][]string) {
		for _, group := range groups {
			if !contains(group, t) {
				continue
			}
			for _, w := range group {
				if _, dup := seen[w]; dup {
					continue
				}
				seen[w] = struct{}{}
				out = append(out, w)
			}
		}
	}
	collect(synonymGroups)
	collect(emotionClusters)
	return out
}

func contains(group []string, term string) bool {
	for _, w := range group {
		if w == term {
			return true
		}
	}
	return false
}
