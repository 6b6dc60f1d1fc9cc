package stats

import (
	"github.com/otherjamesbrown/moodsense/pkg/enrichment"
)

// StrongEmotionThreshold is the score above which an emotion counts as strong.
const StrongEmotionThreshold = 0.30

// EmotionStat summarizes one emotion over a set of messages.
type EmotionStat struct {
	Avg         float64 `json:"avg" yaml:"avg"`
	Max         float64 `json:"max" yaml:"max"`
	Frequency   int     `json:"frequency" yaml:"frequency"`
	Percentage  float64 `json:"percentage" yaml:"percentage"`
	StrongCount int     `json:"strong_count" yaml:"strong_count"`
}

// EmotionStats summarizes every label over the messages sent by user, or
// over all messages when user is empty. Avg and Max only consider scored
// messages; Percentage is relative to every selected message, media
// included.
func EmotionStats(msgs []enrichment.Message, user string) map[enrichment.Label]EmotionStat {
	selected := msgs
	if user != "" {
		selected = make([]enrichment.Message, 0)
		for _, msg := range msgs {
			if msg.User == user {
				selected = append(selected, msg)
			}
		}
	}

	out := make(map[enrichment.Label]EmotionStat, len(enrichment.Labels))
	for _, label := range enrichment.Labels {
		var st EmotionStat
		var sum float64
		scored := 0
		for _, msg := range selected {
			if msg.DominantEmotion != nil && msg.DominantEmotion.Label == label {
				st.Frequency++
			}
			if msg.Emotions == nil {
				continue
			}
			score := msg.Emotions[label]
			sum += score
			if scored == 0 || score > st.Max {
				st.Max = score
			}
			scored++
			if score > StrongEmotionThreshold {
				st.StrongCount++
			}
		}
		if scored > 0 {
			st.Avg = round2(sum / float64(scored))
		}
		st.Max = round2(st.Max)
		if len(selected) > 0 {
			st.Percentage = round2(float64(st.Frequency) / float64(len(selected)) * 100)
		}
		out[label] = st
	}
	return out
}

// UserEmotionStats returns EmotionStats for each user.
func UserEmotionStats(msgs []enrichment.Message, users []string) map[string]map[enrichment.Label]EmotionStat {
	out := make(map[string]map[enrichment.Label]EmotionStat, len(users))
	for _, u := range users {
		out[u] = EmotionStats(msgs, u)
	}
	return out
}

// OverallSentimentAverage is the mean compound score over scored messages.
// Exactly neutral compounds (0) are left out of the mean.
func OverallSentimentAverage(msgs []enrichment.Message) float64 {
	var sum float64
	n := 0
	for _, msg := range msgs {
		if msg.Sentiment == nil || msg.Sentiment.Compound == 0 {
			continue
		}
		sum += msg.Sentiment.Compound
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
