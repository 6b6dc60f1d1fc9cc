package chat

import (
	"strconv"
	"strings"
	"time"
)

// HourBuckets are the two-hour bucket labels, in order. Bucket i covers
// hours [2i, 2i+2).
var HourBuckets = []string{
	"00-02", "02-04", "04-06", "06-08", "08-10", "10-12",
	"12-14", "14-16", "16-18", "18-20", "20-22", "22-24",
}

// timestampLayouts are tried in order; the first complete match wins.
// Day/month comes first, so "01/02/2024" is the 1st of February.
var timestampLayouts = []struct {
	layout      string
	stripSpaces bool
	hour12      bool
}{
	{layout: "2/1/2006 15:04"},
	{layout: "1/2/2006 3:04 PM", hour12: true},
	{layout: "1/2/2006 15:04"},
	{layout: "2/1/2006 15:04", stripSpaces: true},
}

// ResolveTimestamp converts the date and time captured from a header line
// into an instant. It reports false when no known layout matches.
func ResolveTimestamp(date, clock string) (time.Time, bool) {
	clock = normalizeSpaces(clock)
	for _, l := range timestampLayouts {
		c := clock
		if l.stripSpaces {
			c = strings.ReplaceAll(c, " ", "")
		}
		if l.hour12 && !validHour12(c) {
			continue
		}
		if ts, err := time.Parse(l.layout, date+" "+c); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// validHour12 reports whether clock starts with an hour from 1 to 12.
// time.Parse lets "0" and "00" through for the 12-hour layout.
func validHour12(clock string) bool {
	h, _, ok := strings.Cut(clock, ":")
	if !ok {
		return false
	}
	n, err := strconv.Atoi(h)
	return err == nil && n >= 1 && n <= 12
}

// normalizeSpaces maps the non-breaking spaces some exporters put before the
// meridiem marker onto a plain space.
func normalizeSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\u00a0', '\u202f', '\u2009':
			return ' '
		}
		return r
	}, s)
}

// HourBucket returns the two-hour bucket label for ts.
func HourBucket(ts time.Time) string {
	return HourBuckets[ts.Hour()/2]
}
