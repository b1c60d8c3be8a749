package nlp

func isStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

func wordSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var stopwords = wordSet(
	"a", "about", "above", "after", "again", "against", "all", "am", "an",
	"and", "any", "are", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "did", "do",
	"does", "doing", "down", "during", "each", "few", "for", "from",
	"further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"him", "his", "how", "i", "if", "in", "into", "is", "it", "its",
	"just", "me", "more", "most", "my", "no", "nor", "not", "now", "of",
	"off", "on", "once", "only", "or", "other", "our", "ours", "out",
	"over", "own", "same", "she", "should", "so", "some", "such", "than",
	"that", "the", "their", "theirs", "them", "then", "there", "these",
	"they", "this", "those", "through", "to", "too", "under", "until",
	"up", "very", "was", "we", "were", "what", "when", "where", "which",
	"while", "who", "whom", "why", "will", "with", "you", "your", "yours",
)

var questionWords = wordSet(
	"who", "what", "when", "where", "why", "how", "which", "whose",
	"is", "are", "was", "were", "do", "does", "did",
	"can", "could", "will", "would", "should",
)

var commandVerbs = wordSet(
	"find", "show", "list", "search", "open", "get", "give", "display",
	"fetch", "locate", "lookup", "bring", "tell", "pull",
)

// phraseVerbs seed verb-phrase detection. Command verbs count too, so
// "find budget notes" yields a phrase as well as its single keywords.
var phraseVerbs = merge(commandVerbs, wordSet(
	"review", "plan", "schedule", "write", "read", "buy", "call", "email",
	"meet", "discuss", "finish", "start", "create", "update", "check",
	"fix", "clean", "book", "prepare", "draft", "send", "pay", "track",
	"organize", "research", "summarize",
))

var articles = wordSet("a", "an", "the", "my", "our", "your", "this", "that")

var positiveWords = wordSet(
	"good", "great", "excellent", "happy", "happiness", "glad", "love",
	"loved", "enjoy", "enjoyed", "win", "won", "success", "successful",
	"beautiful", "fantastic", "awesome", "wonderful", "delight",
	"delighted", "cheerful", "elated", "excited", "exciting", "improve",
	"improved", "progress", "achieved", "proud", "fun", "nice", "calm",
	"upbeat", "grateful", "thankful", "relaxed", "optimistic",
)

var negativeWords = wordSet(
	"bad", "terrible", "awful", "sad", "sadness", "angry", "anger",
	"hate", "hated", "fail", "failed", "failure", "problem", "problems",
	"broken", "worried", "worry", "fear", "afraid", "anxious", "anxiety",
	"miserable", "gloomy", "grief", "sorrow", "pain", "painful",
	"frustrated", "frustrating", "annoyed", "annoying", "stressed",
	"stress", "tired", "exhausted", "worse", "worst", "lost", "hurt",
)

func merge(sets ...map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for _, s := range sets {
		for w := range s {
			out[w] = struct{}{}
		}
	}
	return out
}
