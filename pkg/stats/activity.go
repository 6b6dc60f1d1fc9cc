// Package stats computes the aggregate statistics of an analyzed chat.
//
// Every function is pure: it reads messages (and metadata where a
// chat-wide bound is needed) and returns plain values. Averages and
// percentages are rounded to two decimals.
package stats

import (
	"math"
	"time"

	"github.com/otherjamesbrown/moodsense/pkg/chat"
	"github.com/otherjamesbrown/moodsense/pkg/enrichment"
)

// Weekdays are the weekday names in report order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayBucket aggregates the messages sent on one weekday.
type WeekdayBucket struct {
	TotalMessages int     `json:"total_messages" yaml:"total_messages"`
	DaysInPeriod  int     `json:"days_in_period" yaml:"days_in_period"`
	Average       float64 `json:"average" yaml:"average"`
}

// AverageMessagesPerDay divides the message count by the inclusive number
// of calendar days the chat spans.
func AverageMessagesPerDay(meta chat.Metadata) float64 {
	if meta.Start == nil || meta.End == nil {
		return 0
	}
	days := int(math.Floor(meta.End.Sub(*meta.Start).Hours()/24)) + 1
	if days == 0 {
		return float64(meta.TotalMessages)
	}
	return round2(float64(meta.TotalMessages) / float64(days))
}

// HourlyDistribution counts messages per two-hour bucket. Every bucket is
// present, zero-filled.
func HourlyDistribution(msgs []enrichment.Message) map[string]int {
	dist := make(map[string]int, len(chat.HourBuckets))
	for _, b := range chat.HourBuckets {
		dist[b] = 0
	}
	for _, msg := range msgs {
		if msg.HourBucket != "" {
			dist[msg.HourBucket]++
		}
	}
	return dist
}

// WeekdayDistribution counts messages per weekday and averages them over
// the occurrences of that weekday between the chat's first and last dates.
func WeekdayDistribution(msgs []enrichment.Message, meta chat.Metadata) map[string]WeekdayBucket {
	totals := make(map[string]int, len(Weekdays))
	for _, msg := range msgs {
		totals[msg.Weekday]++
	}

	days := weekdaysInPeriod(meta.Start, meta.End)
	dist := make(map[string]WeekdayBucket, len(Weekdays))
	for _, wd := range Weekdays {
		n := days[wd]
		if n == 0 {
			dist[wd] = WeekdayBucket{}
			continue
		}
		dist[wd] = WeekdayBucket{
			TotalMessages: totals[wd],
			DaysInPeriod:  n,
			Average:       round2(float64(totals[wd]) / float64(n)),
		}
	}
	return dist
}

// weekdaysInPeriod counts each weekday in the inclusive calendar range.
func weekdaysInPeriod(start, end *time.Time) map[string]int {
	counts := make(map[string]int, len(Weekdays))
	if start == nil || end == nil {
		return counts
	}
	d := dateOf(*start)
	last := dateOf(*end)
	for !d.After(last) {
		counts[d.Weekday().String()]++
		d = d.AddDate(0, 0, 1)
	}
	return counts
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
