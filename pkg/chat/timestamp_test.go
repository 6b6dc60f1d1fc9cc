package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		clock string
		want  time.Time
		ok    bool
	}{
		{
			name:  "day first 24h",
			date:  "11/10/2024",
			clock: "14:23",
			want:  time.Date(2024, time.October, 11, 14, 23, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "ambiguous date resolves day first",
			date:  "01/02/2024",
			clock: "10:00",
			want:  time.Date(2024, time.February, 1, 10, 0, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "month first 12h",
			date:  "10/11/2024",
			clock: "2:23 PM",
			want:  time.Date(2024, time.October, 11, 14, 23, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "12h midnight",
			date:  "10/11/2024",
			clock: "12:05 AM",
			want:  time.Date(2024, time.October, 11, 0, 5, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "month first 24h when day first is impossible",
			date:  "12/25/2024",
			clock: "09:30",
			want:  time.Date(2024, time.December, 25, 9, 30, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "narrow no-break space before meridiem",
			date:  "10/11/2024",
			clock: "2:23\u202fPM",
			want:  time.Date(2024, time.October, 11, 14, 23, 0, 0, time.UTC),
			ok:    true,
		},
		{
			name:  "single digit day and month",
			date:  "1/2/2024",
			clock: "7:05",
			want:  time.Date(2024, time.February, 1, 7, 5, 0, 0, time.UTC),
			ok:    true,
		},
		{name: "12h hour zero", date: "01/02/2024", clock: "0:30 AM", ok: false},
		{name: "12h hour double zero", date: "01/02/2024", clock: "00:30 PM", ok: false},
		{name: "12h hour thirteen", date: "01/02/2024", clock: "13:30 PM", ok: false},
		{name: "meridiem without space", date: "10/11/2024", clock: "2:23PM", ok: false},
		{name: "impossible date", date: "31/31/2024", clock: "10:00", ok: false},
		{name: "hour out of range", date: "11/10/2024", clock: "25:00", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ResolveTimestamp(tc.date, tc.clock)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, tc.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestHourBucket(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "00-02"},
		{1, "00-02"},
		{2, "02-04"},
		{9, "08-10"},
		{10, "10-12"},
		{13, "12-14"},
		{23, "22-24"},
	}
	for _, tc := range tests {
		ts := time.Date(2024, 1, 1, tc.hour, 30, 0, 0, time.UTC)
		assert.Equal(t, tc.want, HourBucket(ts), "hour %d", tc.hour)
	}
	assert.Len(t, HourBuckets, 12)
}
