package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/moodsense/pkg/chat"
	"github.com/otherjamesbrown/moodsense/pkg/enrichment"
	"github.com/otherjamesbrown/moodsense/pkg/textnorm"
)

const threeMessageExport = `11/10/2024, 10:15 - Alice: Good morning
11/10/2024, 10:47 - Bob: Hi!
12/10/2024, 08:02 - Alice: Coffee?`

func parseExport(t *testing.T, text string) ([]enrichment.Message, chat.Metadata) {
	t.Helper()
	result := chat.Parse(text, chat.DefaultOptions())
	require.NotNil(t, result)
	return enrichment.Unscored(result.Messages), chat.ExtractMetadata(result.Messages)
}

// msgAt builds a message sent by user at day-of-October 2024 d, hour h.
func msgAt(user string, d, h int) chat.Message {
	ts := time.Date(2024, time.October, d, h, 0, 0, 0, time.UTC)
	return chat.Message{
		Timestamp:  ts,
		Weekday:    ts.Weekday().String(),
		HourBucket: chat.HourBucket(ts),
		User:       user,
		Body:       "hi",
		BodyLength: 2,
	}
}

// fieldsNormalizer keeps every whitespace-separated lowercased word.
type fieldsNormalizer struct{}

func (fieldsNormalizer) Normalize(text string, _ []textnorm.POS) []string {
	return strings.Fields(strings.ToLower(text))
}
