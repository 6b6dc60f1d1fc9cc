package stats

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/otherjamesbrown/moodsense/pkg/chat"
	"github.com/otherjamesbrown/moodsense/pkg/enrichment"
	"github.com/otherjamesbrown/moodsense/pkg/textnorm"
)

const (
	DefaultTopEmojis = 10
	DefaultTopWords  = 20

	minWordLength = 3
)

// placeholderWords are the lemmas left behind by media and deleted-message
// placeholders.
var placeholderWords = []string{"medium", "omit", "omitted", "media", "message", "deleted"}

// EmojiCount is one entry of an emoji ranking.
type EmojiCount struct {
	Emoji string `json:"emoji" yaml:"emoji"`
	Count int    `json:"count" yaml:"count"`
}

// WordCount is one entry of a word ranking.
type WordCount struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// counter counts keys and remembers the order they were first seen in.
type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// top returns up to n keys by descending count. Equal counts keep
// first-seen order.
func (c *counter) top(n int) []string {
	keys := append([]string(nil), c.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	if n >= 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// perUser returns one counter per user listed in meta.
func perUser(meta chat.Metadata) map[string]*counter {
	out := make(map[string]*counter, len(meta.Users))
	for _, u := range meta.Users {
		out[u] = newCounter()
	}
	return out
}

func counterFor(m map[string]*counter, user string) *counter {
	c := m[user]
	if c == nil {
		c = newCounter()
		m[user] = c
	}
	return c
}

// TopEmojis ranks the emoji each user sent, n per user.
func TopEmojis(msgs []enrichment.Message, meta chat.Metadata, n int) map[string][]EmojiCount {
	counters := perUser(meta)
	for _, msg := range msgs {
		c := counterFor(counters, msg.User)
		for _, e := range textnorm.Emojis(msg.Body) {
			c.add(e)
		}
	}

	out := make(map[string][]EmojiCount, len(counters))
	for user, c := range counters {
		ranked := make([]EmojiCount, 0)
		for _, e := range c.top(n) {
			ranked = append(ranked, EmojiCount{Emoji: e, Count: c.counts[e]})
		}
		out[user] = ranked
	}
	return out
}

// TopWords ranks the content-word lemmas each user wrote, n per user.
// Media messages and empty bodies are skipped. Lemmas of three or more
// characters are kept, except tokens of any user's name and placeholder
// words. A nil norm uses the default lemmatizer.
func TopWords(msgs []enrichment.Message, meta chat.Metadata, norm textnorm.Normalizer, n int) map[string][]WordCount {
	if norm == nil {
		norm = textnorm.NewLemmatizer()
	}
	stop := make(map[string]bool)
	for _, u := range meta.Users {
		for _, tok := range strings.Fields(u) {
			stop[strings.ToLower(tok)] = true
		}
	}
	for _, w := range placeholderWords {
		stop[w] = true
	}

	counters := perUser(meta)
	for _, msg := range msgs {
		c := counterFor(counters, msg.User)
		if msg.IsMedia || msg.Body == "" {
			continue
		}
		for _, w := range norm.Normalize(msg.Body, textnorm.ContentPOS) {
			if utf8.RuneCountInString(w) < minWordLength || stop[strings.ToLower(w)] {
				continue
			}
			c.add(w)
		}
	}

	out := make(map[string][]WordCount, len(counters))
	for user, c := range counters {
		ranked := make([]WordCount, 0)
		for _, w := range c.top(n) {
			ranked = append(ranked, WordCount{Word: w, Count: c.counts[w]})
		}
		out[user] = ranked
	}
	return out
}
