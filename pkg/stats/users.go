package stats

import (
	"unicode/utf8"

	"github.com/otherjamesbrown/moodsense/pkg/chat"
	"github.com/otherjamesbrown/moodsense/pkg/enrichment"
)

// MessagesPerUser counts messages per sender. Every user in meta is present.
func MessagesPerUser(msgs []enrichment.Message, meta chat.Metadata) map[string]int {
	counts := make(map[string]int, len(meta.Users))
	for _, u := range meta.Users {
		counts[u] = 0
	}
	for _, msg := range msgs {
		counts[msg.User]++
	}
	return counts
}

// AverageLengthPerUser is the mean body length, in characters, per sender.
// Continuation lines are included in the length.
func AverageLengthPerUser(msgs []enrichment.Message, meta chat.Metadata) map[string]float64 {
	type acc struct{ count, chars int }
	per := make(map[string]*acc, len(meta.Users))
	for _, u := range meta.Users {
		per[u] = &acc{}
	}
	for _, msg := range msgs {
		a := per[msg.User]
		if a == nil {
			a = &acc{}
			per[msg.User] = a
		}
		a.count++
		a.chars += utf8.RuneCountInString(msg.Body)
	}

	out := make(map[string]float64, len(per))
	for u, a := range per {
		if a.count == 0 {
			out[u] = 0
			continue
		}
		out[u] = round2(float64(a.chars) / float64(a.count))
	}
	return out
}
