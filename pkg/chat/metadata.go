package chat

import (
	"sort"
	"time"
)

// ExtractMetadata computes chat-level aggregates. The messages are assumed
// to be in chronological order: the first and last timestamps bound the chat.
func ExtractMetadata(msgs []Message) Metadata {
	meta := Metadata{
		TotalMessages: len(msgs),
		Users:         Users(msgs),
		MediaByType:   make(map[MediaType]int),
		MediaByUser:   make(map[string]int),
	}
	if len(msgs) == 0 {
		return meta
	}

	start := msgs[0].Timestamp
	end := msgs[len(msgs)-1].Timestamp
	meta.Start = &start
	meta.End = &end

	for _, msg := range msgs {
		if !msg.IsMedia {
			continue
		}
		meta.TotalMedia++
		mt := msg.MediaType
		if mt == "" {
			mt = MediaUnknown
		}
		meta.MediaByType[mt]++
		meta.MediaByUser[msg.User]++
	}
	return meta
}

// Users returns the distinct senders, sorted.
func Users(msgs []Message) []string {
	seen := make(map[string]bool)
	users := make([]string, 0)
	for _, msg := range msgs {
		if !seen[msg.User] {
			seen[msg.User] = true
			users = append(users, msg.User)
		}
	}
	sort.Strings(users)
	return users
}

// FilterByUser returns the messages sent by user.
func FilterByUser(msgs []Message, user string) []Message {
	out := make([]Message, 0)
	for _, msg := range msgs {
		if msg.User == user {
			out = append(out, msg)
		}
	}
	return out
}

// FilterByDateRange returns the messages with from <= timestamp <= to.
// A nil bound is open.
func FilterByDateRange(msgs []Message, from, to *time.Time) []Message {
	out := make([]Message, 0)
	for _, msg := range msgs {
		if from != nil && msg.Timestamp.Before(*from) {
			continue
		}
		if to != nil && msg.Timestamp.After(*to) {
			continue
		}
		out = append(out, msg)
	}
	return out
}
