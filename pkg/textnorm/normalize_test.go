package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLemmatizer_Normalize(t *testing.T) {
	l := NewLemmatizer()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "inflections are stripped",
			text: "We went running to the beautiful parks quickly",
			want: []string{"go", "run", "beautiful", "park", "quickly"},
		},
		{
			name: "proper nouns are dropped",
			text: "I saw Luca today",
			want: []string{"see", "today"},
		},
		{
			name: "doubled consonant kept for l",
			text: "she called and stopped",
			want: []string{"call", "stop"},
		},
		{
			name: "plural ies",
			text: "the stories",
			want: []string{"story"},
		},
		{
			name: "irregular plurals",
			text: "the children walked their dogs",
			want: []string{"child", "walk", "dog"},
		},
		{
			name: "mice and feet",
			text: "mice and feet",
			want: []string{"mouse", "foot"},
		},
		{
			name: "ing noun keeps its form",
			text: "she stopped waiting this morning",
			want: []string{"stop", "wait", "morning"},
		},
		{
			name: "comparative adjective",
			text: "happier days",
			want: []string{"happy", "day"},
		},
		{
			name: "listed adjective keeps its form",
			text: "so tired",
			want: []string{"tired"},
		},
		{
			name: "numbers and function words are dropped",
			text: "it is 2024 and we are here",
			want: []string{},
		},
		{
			name: "empty",
			text: "",
			want: []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, l.Normalize(tc.text, ContentPOS))
		})
	}
}

func TestLoadLemmatizer(t *testing.T) {
	l, err := LoadLemmatizer()
	require.NoError(t, err)
	assert.Equal(t, []string{"agree"}, l.Normalize("agreed", ContentPOS))

	other, err := LoadLemmatizer("agreed")
	require.NoError(t, err)
	assert.Same(t, l.dict, other.dict, "dictionary is decoded once")
	assert.Equal(t, []string{}, other.Normalize("agreed", ContentPOS))
}

func TestLemmatizer_ExtraStopwords(t *testing.T) {
	l := NewLemmatizer("Media", "omitted")
	assert.Equal(t, []string{}, l.Normalize("media omitted", ContentPOS))
	assert.Equal(t, []string{"pizza"}, NewLemmatizer().Normalize("pizza", ContentPOS))
}

func TestLemmatizer_Tokens(t *testing.T) {
	l := NewLemmatizer()
	tokens := l.Tokens("Great news. Rome is lovely! Ask Anna")
	if assert.Len(t, tokens, 7) {
		assert.Equal(t, Adj, tokens[0].POS)  // Great, sentence start
		assert.Equal(t, Noun, tokens[2].POS) // Rome opens a sentence
		assert.Equal(t, Other, tokens[3].POS)
		assert.Equal(t, Adv, tokens[4].POS) // lovely
		assert.Equal(t, Propn, tokens[6].POS)
		assert.Equal(t, "anna", tokens[6].Lemma)
	}
}

func TestEmojis(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "none", text: "just words", want: []string{}},
		{
			name: "repeated",
			text: "ciao \U0001F600\U0001F600",
			want: []string{"\U0001F600", "\U0001F600"},
		},
		{
			name: "skin tone stays attached",
			text: "ok \U0001F44D\U0001F3FD",
			want: []string{"\U0001F44D\U0001F3FD"},
		},
		{
			name: "flag",
			text: "\U0001F1EE\U0001F1F9 forza",
			want: []string{"\U0001F1EE\U0001F1F9"},
		},
		{
			name: "heart with presentation selector",
			text: "love \u2764\uFE0F",
			want: []string{"\u2764\uFE0F"},
		},
		{
			name: "keycap",
			text: "1\uFE0F\u20E3 first",
			want: []string{"1\uFE0F\u20E3"},
		},
		{
			name: "zwj family is one emoji",
			text: "\U0001F468\u200D\U0001F469\u200D\U0001F467",
			want: []string{"\U0001F468\u200D\U0001F469\u200D\U0001F467"},
		},
		{name: "plain copyright sign", text: "© 2024", want: []string{}},
		{name: "blood type button", text: "\U0001F170 and \U0001F191", want: []string{"\U0001F170", "\U0001F191"}},
		{name: "squared latin letter", text: "\U0001F130\U0001F13F\U0001F1A0", want: []string{}},
		{name: "playing cards", text: "\U0001F0A1 \U0001F0CF", want: []string{"\U0001F0CF"}},
		{name: "chess and ornaments", text: "\U0001FA00 \U0001F650", want: []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Emojis(tc.text))
		})
	}
}
