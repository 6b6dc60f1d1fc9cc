package textnorm

// functionWords are pronouns, articles, prepositions, conjunctions and
// auxiliaries in English and Italian. They are never content words.
var functionWords = setOf(
	// english
	"a", "an", "the", "and", "or", "but", "if", "so", "of", "to", "in", "on", "at", "by",
	"for", "with", "from", "up", "out", "as", "into", "about", "than", "then", "that", "this",
	"these", "those", "there", "here", "it", "its", "i", "me", "my", "mine", "you", "your",
	"yours", "he", "him", "his", "she", "her", "hers", "we", "us", "our", "they", "them",
	"their", "what", "which", "who", "whom", "whose", "when", "where", "why", "how", "not",
	"no", "yes", "is", "am", "are", "was", "were", "be", "been", "being", "do", "does", "did",
	"have", "has", "had", "will", "would", "shall", "should", "can", "could", "may", "might",
	"must", "i'm", "it's", "don't", "didn't", "can't", "won't", "i'll", "you're", "that's",
	"ok", "okay", "yeah", "lol", "haha", "just", "also", "too", "very",
	// italian
	"il", "lo", "la", "le", "gli", "un", "uno", "una", "di", "da", "del", "della", "dei",
	"delle", "al", "alla", "ai", "alle", "nel", "nella", "con", "su", "per", "tra", "fra",
	"e", "ed", "o", "ma", "se", "che", "chi", "non", "si", "mi", "ti", "ci", "vi", "io",
	"tu", "lui", "lei", "noi", "voi", "loro", "mio", "tuo", "suo", "è", "sono", "sei",
	"siamo", "siete", "ho", "hai", "ha", "abbiamo", "avete", "hanno", "come", "anche",
	"poi", "più", "cosa", "quando", "dove", "perché", "questo", "quello", "ok", "sì",
)

var commonVerbs = setOf(
	"go", "say", "make", "take", "come", "see", "get", "know", "think", "tell", "feel",
	"leave", "buy", "eat", "love", "like", "hope", "write", "want", "need", "call", "meet",
	"work", "play", "watch", "wait", "send", "sleep", "read", "try", "help", "miss",
	"fare", "andare", "vedere", "mangiare", "dormire", "voglio", "vuoi", "fatto", "vado",
)

var commonAdjectives = setOf(
	"good", "bad", "great", "nice", "happy", "sad", "big", "small", "new", "old", "late",
	"early", "long", "short", "hot", "cold", "best", "worst", "better", "worse", "sorry",
	"tired", "busy", "free", "ready", "beautiful", "funny", "crazy", "sure",
	"bello", "bella", "brutto", "buono", "buona", "grande", "piccolo", "felice", "triste",
)

var commonAdverbs = setOf(
	"now", "today", "tomorrow", "yesterday", "soon", "again", "always", "never", "often",
	"still", "already", "really", "maybe", "later", "tonight", "together", "away",
	"oggi", "domani", "ieri", "sempre", "mai", "ancora", "già", "presto", "dopo", "molto",
	"bene", "male", "adesso", "ora", "forse",
)

func setOf(words ...string) map[string]bool {
	s := make(map[string]bool, len(words))
	for _, w := range words {
		s[w] = true
	}
	return s
}
