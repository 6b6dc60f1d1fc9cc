// Package enrichment attaches per-message emotion and sentiment scores to
// parsed chat messages.
package enrichment

import "github.com/otherjamesbrown/moodsense/pkg/chat"

// Label is an emotion category.
type Label string

const (
	Anger    Label = "anger"
	Disgust  Label = "disgust"
	Fear     Label = "fear"
	Joy      Label = "joy"
	Neutral  Label = "neutral"
	Sadness  Label = "sadness"
	Surprise Label = "surprise"
)

// Labels lists every label a Scorer emits, in a fixed order.
var Labels = []Label{Anger, Disgust, Fear, Joy, Neutral, Sadness, Surprise}

// Sentiment is a polarity breakdown. Compound is in [-1, 1].
type Sentiment struct {
	Neg      float64 `json:"neg" yaml:"neg"`
	Neu      float64 `json:"neu" yaml:"neu"`
	Pos      float64 `json:"pos" yaml:"pos"`
	Compound float64 `json:"compound" yaml:"compound"`
}

// Dominant is the single emotion chosen to represent a message.
type Dominant struct {
	Label Label   `json:"label" yaml:"label"`
	Score float64 `json:"score" yaml:"score"`
}

// Scores is what a Scorer returns for one body of text.
type Scores struct {
	Emotions  map[Label]float64
	Sentiment Sentiment
}

// Message is a chat message plus its scores. Media messages carry no scores.
type Message struct {
	chat.Message `yaml:",inline"`

	Emotions        map[Label]float64 `json:"emotions" yaml:"emotions"`
	DominantEmotion *Dominant         `json:"dominant_emotion" yaml:"dominant_emotion"`
	Sentiment       *Sentiment        `json:"sentiment" yaml:"sentiment"`
}

// Scored reports whether the message went through a Scorer.
func (m Message) Scored() bool {
	return m.Emotions != nil
}

// Unscored wraps messages without attaching any scores.
func Unscored(msgs []chat.Message) []Message {
	out := make([]Message, len(msgs))
	for i, msg := range msgs {
		out[i] = Message{Message: msg}
	}
	return out
}
