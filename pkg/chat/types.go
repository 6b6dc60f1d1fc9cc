// Package chat parses exported chat transcripts into structured messages and
// extracts chat-level metadata from them.
//
// Supported export headers:
//
//	11/10/2024, 14:23 - Mario Rossi: Ciao
//	10/11/2024, 2:23 PM - John Doe: Hello
//
// Lines without a header continue the previous message.
package chat

import "time"

// MediaType identifies the kind of media placeholder a message carries.
type MediaType string

const (
	MediaPhoto    MediaType = "photo"
	MediaVideo    MediaType = "video"
	MediaGIF      MediaType = "gif"
	MediaSticker  MediaType = "sticker"
	MediaAudio    MediaType = "audio"
	MediaDocument MediaType = "document"

	// MediaUnknown is the metadata key for media messages without a type.
	// Parse always sets one, so only hand-built or decoded messages land here.
	MediaUnknown MediaType = "unknown"
)

// Message is a single parsed chat message.
type Message struct {
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Weekday    string    `json:"weekday" yaml:"weekday"`
	HourBucket string    `json:"hour_category" yaml:"hour_category"`
	User       string    `json:"user" yaml:"user"`
	Body       string    `json:"message" yaml:"message"`
	BodyLength int       `json:"message_length" yaml:"message_length"` // characters on the header line
	IsMedia    bool      `json:"is_media" yaml:"is_media"`
	MediaType  MediaType `json:"media_type,omitempty" yaml:"media_type,omitempty"`
	IsSystem   bool      `json:"is_system" yaml:"is_system"`
}

// Date returns the calendar date of the message as midnight UTC.
func (m Message) Date() time.Time {
	y, mo, d := m.Timestamp.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// Metadata holds chat-level aggregates computed from a parsed message list.
type Metadata struct {
	TotalMessages int               `json:"total_messages" yaml:"total_messages"`
	Users         []string          `json:"users" yaml:"users"`
	Start         *time.Time        `json:"start_date" yaml:"start_date"`
	End           *time.Time        `json:"end_date" yaml:"end_date"`
	TotalMedia    int               `json:"media_count" yaml:"media_count"`
	MediaByType   map[MediaType]int `json:"media_by_type" yaml:"media_by_type"`
	MediaByUser   map[string]int    `json:"media_by_user" yaml:"media_by_user"`
}

// NumUsers returns the number of distinct users.
func (m Metadata) NumUsers() int {
	return len(m.Users)
}

// ParseStats are diagnostics collected while scanning an export.
// They never affect the parsed output.
type ParseStats struct {
	Lines                int `json:"lines"`
	HeaderLines          int `json:"header_lines"`
	UnresolvedTimestamps int `json:"unresolved_timestamps"`
	ContinuationLines    int `json:"continuation_lines"`
	DiscardedLines       int `json:"discarded_lines"`
	FilteredSystem       int `json:"filtered_system"`
	FilteredMedia        int `json:"filtered_media"`
}

// Result is the output of parsing one export.
type Result struct {
	Messages []Message  `json:"messages"`
	Stats    ParseStats `json:"stats"`
}
