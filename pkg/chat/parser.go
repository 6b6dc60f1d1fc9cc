package chat

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// headerRegex matches the first line of a message:
// "<date>, <time> - <sender>: <body>". The sender is matched lazily, so a
// colon inside the body stays in the body.
var headerRegex = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4}),[\s\p{Zs}](\d{1,2}:\d{2}(?:[\s\p{Zs}]?[AP]M)?)[\s\p{Zs}]-[\s\p{Zs}](.+?):[\s\p{Zs}](.*)$`)

// Options control which messages survive parsing.
type Options struct {
	// SkipSystemMessages drops auto-generated notices.
	SkipSystemMessages bool `json:"skip_system_messages" yaml:"skip_system_messages"`
	// PreserveMediaMessages keeps media placeholders in the output.
	PreserveMediaMessages bool `json:"preserve_media_messages" yaml:"preserve_media_messages"`
}

// DefaultOptions drops system notices and keeps media.
func DefaultOptions() Options {
	return Options{
		SkipSystemMessages:    true,
		PreserveMediaMessages: true,
	}
}

// Parse converts the full text of an export into messages, in file order.
// It never fails: lines that cannot be attributed to a message are dropped.
func Parse(text string, opts Options) *Result {
	p := &lineParser{}
	for _, line := range strings.Split(text, "\n") {
		p.feed(line)
	}
	p.flush()

	result := &Result{
		Messages: make([]Message, 0, len(p.messages)),
		Stats:    p.stats,
	}
	for _, msg := range p.messages {
		if opts.SkipSystemMessages && msg.IsSystem {
			result.Stats.FilteredSystem++
			continue
		}
		if !opts.PreserveMediaMessages && msg.IsMedia {
			result.Stats.FilteredMedia++
			continue
		}
		result.Messages = append(result.Messages, msg)
	}
	return result
}

// ParseReader reads r to the end and parses it. The input must be UTF-8.
func ParseReader(r io.Reader, opts Options) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read chat export: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}
	return Parse(string(data), opts), nil
}

// lineParser accumulates messages line by line. A message stays open until
// the next header line or the end of input.
type lineParser struct {
	messages []Message
	current  *Message
	stats    ParseStats
}

func (p *lineParser) feed(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return
	}
	p.stats.Lines++

	m := headerRegex.FindStringSubmatch(line)
	if m == nil {
		if p.current == nil {
			p.stats.DiscardedLines++
			return
		}
		p.current.Body += "\n" + line
		p.stats.ContinuationLines++
		return
	}

	p.stats.HeaderLines++
	p.flush()

	ts, ok := ResolveTimestamp(m[1], m[2])
	if !ok {
		// The message is dropped along with anything that would continue it.
		p.stats.UnresolvedTimestamps++
		return
	}

	body := m[4]
	mediaType, isMedia := ClassifyMedia(body)
	p.current = &Message{
		Timestamp:  ts,
		Weekday:    ts.Weekday().String(),
		HourBucket: HourBucket(ts),
		User:       strings.TrimSpace(m[3]),
		Body:       strings.TrimSpace(body),
		BodyLength: utf8.RuneCountInString(body),
		IsMedia:    isMedia,
		MediaType:  mediaType,
		IsSystem:   IsSystemMessage(body),
	}
}

func (p *lineParser) flush() {
	if p.current != nil {
		p.messages = append(p.messages, *p.current)
		p.current = nil
	}
}
