// Package textnorm turns free-form message text into countable units:
// lemmatized content words and emoji.
package textnorm

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"golang.org/x/text/cases"
)

// POS is a coarse part-of-speech tag.
type POS string

const (
	Noun  POS = "NOUN"
	Verb  POS = "VERB"
	Adj   POS = "ADJ"
	Adv   POS = "ADV"
	Propn POS = "PROPN"
	Other POS = "X"
)

// ContentPOS are the tags kept when ranking words.
var ContentPOS = []POS{Noun, Verb, Adj, Adv}

// Token is a tagged, lemmatized word.
type Token struct {
	Text  string
	Lemma string
	POS   POS
}

// Normalizer tokenizes text and returns the lemmas whose tag is in keep.
type Normalizer interface {
	Normalize(text string, keep []POS) []string
}

// Lemmatizer is a Normalizer for English chat text. Lemmas come from the
// golem English dictionary; tags are guessed from closed word lists and
// suffixes. It is deterministic and safe for concurrent use.
type Lemmatizer struct {
	dict      *golem.Lemmatizer
	stopwords map[string]bool
}

var _ Normalizer = (*Lemmatizer)(nil)

// dictionary decodes the embedded English lemma pack once per process.
var dictionary = sync.OnceValues(func() (*golem.Lemmatizer, error) {
	return golem.New(en.New())
})

// LoadLemmatizer returns a Lemmatizer that additionally drops extra words
// (compared case-insensitively).
func LoadLemmatizer(extra ...string) (*Lemmatizer, error) {
	dict, err := dictionary()
	if err != nil {
		return nil, fmt.Errorf("loading lemma dictionary: %w", err)
	}
	l := &Lemmatizer{
		dict:      dict,
		stopwords: make(map[string]bool, len(functionWords)+len(extra)),
	}
	for w := range functionWords {
		l.stopwords[w] = true
	}
	fold := cases.Fold()
	for _, w := range extra {
		l.stopwords[fold.String(w)] = true
	}
	return l, nil
}

// NewLemmatizer is like LoadLemmatizer but panics if the embedded dictionary
// cannot be decoded, which only happens with a corrupt build.
func NewLemmatizer(extra ...string) *Lemmatizer {
	l, err := LoadLemmatizer(extra...)
	if err != nil {
		panic(err)
	}
	return l
}

// Normalize implements Normalizer.
func (l *Lemmatizer) Normalize(text string, keep []POS) []string {
	allowed := make(map[POS]bool, len(keep))
	for _, p := range keep {
		allowed[p] = true
	}
	out := make([]string, 0)
	for _, tok := range l.Tokens(text) {
		if allowed[tok.POS] {
			out = append(out, tok.Lemma)
		}
	}
	return out
}

// Tokens splits text into words and tags each one. Function words and
// stopwords are tagged Other. Capitalized words that do not open a sentence
// are tagged Propn.
func (l *Lemmatizer) Tokens(text string) []Token {
	fold := cases.Fold()
	tokens := make([]Token, 0)
	sentenceStart := true

	emit := func(w string) {
		w = strings.Trim(w, "'")
		if w == "" {
			return
		}
		lower := fold.String(w)
		tok := Token{Text: w, Lemma: lower, POS: Other}
		switch {
		case l.stopwords[lower] || isNumeric(lower):
		case !sentenceStart && isCapitalized(w):
			tok.POS = Propn
		default:
			tok.Lemma, tok.POS = l.tag(lower)
		}
		tokens = append(tokens, tok)
		sentenceStart = false
	}

	var word strings.Builder
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
			word.WriteRune(r)
			continue
		}
		emit(word.String())
		word.Reset()
		switch r {
		case '.', '!', '?', '\n':
			sentenceStart = true
		}
	}
	emit(word.String())
	return tokens
}

// tag returns the lemma and tag of a lowercased word.
func (l *Lemmatizer) tag(w string) (string, POS) {
	lemma := l.dict.LemmaLower(w)
	switch {
	case commonAdverbs[w]:
		return w, Adv
	case commonAdjectives[w]:
		return w, Adj
	case commonAdjectives[lemma]:
		return lemma, Adj
	case commonVerbs[w] || commonVerbs[lemma]:
		return lemma, Verb
	}

	if utf8.RuneCountInString(w) <= 3 {
		return lemma, Noun
	}
	switch {
	case hasAnySuffix(w, "mente", "ly"):
		return w, Adv
	case hasAnySuffix(w, "ing", "ed") && lemma != w:
		return lemma, Verb
	case hasAnySuffix(w, "are", "ere", "ire"):
		return lemma, Verb
	case hasAnySuffix(w, "ous", "ful", "ive", "able", "ible", "less", "ical", "oso", "osa", "bile"):
		return lemma, Adj
	}
	return lemma, Noun
}

func hasAnySuffix(w string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(w, s) {
			return true
		}
	}
	return false
}

func isCapitalized(w string) bool {
	for _, r := range w {
		return unicode.IsUpper(r)
	}
	return false
}

func isNumeric(w string) bool {
	for _, r := range w {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
