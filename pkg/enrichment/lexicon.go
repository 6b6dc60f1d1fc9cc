package enrichment

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
)

// keywordBuckets maps each non-neutral label to cue words in English and
// Italian. A cue matches as a substring of the lowercased text.
var keywordBuckets = map[Label][]string{
	Anger: {
		"angry", "furious", "hate", "annoyed", "pissed", "mad at", "stupid", "damn",
		"arrabbiat", "odio", "incazzat", "basta", "stufo", "stufa",
	},
	Disgust: {
		"disgust", "gross", "yuck", "eww", "nasty", "revolting",
		"schifo", "che schifo", "disgustos", "vomit",
	},
	Fear: {
		"scared", "afraid", "fear", "worried", "anxious", "nervous", "panic", "terrified",
		"paura", "preoccupat", "ansia", "spaventat", "terrore",
	},
	Joy: {
		"happy", "glad", "love", "great", "awesome", "yay", "haha", "lol", "thank", "amazing",
		"felice", "contento", "contenta", "grazie", "bello", "bella", "evviva", "ahah", "ti amo",
		"😀", "😂", "😍", "❤",
	},
	Sadness: {
		"sad", "unhappy", "miss you", "sorry", "cry", "lonely", "depressed", "heartbroken",
		"triste", "mi manchi", "piango", "scusa", "purtroppo", "😢", "😭",
	},
	Surprise: {
		"wow", "omg", "really?", "no way", "unbelievable", "what?", "surprise",
		"davvero", "incredibile", "sul serio", "ma dai", "😮", "😱",
	},
}

const (
	keywordWeight   = 3
	exclamationJoy  = 2
	exclamationSurp = 2
	neutralBaseline = 2
)

// vader is shared by every LexiconScorer. Building it parses the VADER
// lexicons, and scoring only reads them.
var vader = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

// LexiconScorer scores emotions with keyword buckets and sentiment with
// VADER. It needs no model files and is deterministic.
type LexiconScorer struct{}

var _ Scorer = LexiconScorer{}

// NewLexiconScorer returns a LexiconScorer.
func NewLexiconScorer() LexiconScorer {
	return LexiconScorer{}
}

// Score implements Scorer.
func (LexiconScorer) Score(ctx context.Context, text string) (Scores, error) {
	if err := ctx.Err(); err != nil {
		return Scores{}, err
	}
	return Scores{
		Emotions:  scoreEmotions(text),
		Sentiment: scoreSentiment(text),
	}, nil
}

func scoreEmotions(text string) map[Label]float64 {
	normalized := strings.ToLower(strings.TrimSpace(text))
	raw := make(map[Label]float64, len(Labels))

	for label, cues := range keywordBuckets {
		for _, cue := range cues {
			if strings.Contains(normalized, cue) {
				raw[label] += keywordWeight
			}
		}
	}
	if n := strings.Count(text, "!"); n > 0 {
		raw[Surprise] += float64(n * exclamationSurp)
		if n == 1 {
			raw[Joy] += exclamationJoy
		}
	}

	emotions := make(map[Label]float64, len(Labels))
	total := 0.0
	for _, v := range raw {
		total += v
	}
	if total == 0 {
		for _, label := range Labels {
			emotions[label] = 0
		}
		emotions[Neutral] = 1
		return emotions
	}

	total += neutralBaseline
	for _, label := range Labels {
		emotions[label] = round(raw[label]/total, 4)
	}
	emotions[Neutral] = round(neutralBaseline/total, 4)
	return emotions
}

// scoreSentiment returns the VADER polarity of text, rounded to two places.
func scoreSentiment(text string) Sentiment {
	if strings.TrimSpace(text) == "" {
		return Sentiment{}
	}
	p := vader().PolarityScores(text)
	return Sentiment{
		Neg:      round(p.Negative, 2),
		Neu:      round(p.Neutral, 2),
		Pos:      round(p.Positive, 2),
		Compound: round(p.Compound, 2),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
