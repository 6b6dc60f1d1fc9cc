package stats

import (
	"bytes"
	"sort"
	"time"

	"github.com/otherjamesbrown/moodsense/pkg/chat"
	"github.com/otherjamesbrown/moodsense/pkg/enrichment"
)

// Date is a calendar date rendered as YYYY-MM-DD.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// String implements fmt.Stringer.
func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// MarshalJSON renders the date as a JSON string. It shadows the promoted
// time.Time method.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	return d.UnmarshalText(bytes.Trim(b, `"`))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	t, err := time.Parse(dateLayout, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Streak is a run of consecutive calendar days.
type Streak struct {
	Days  int   `json:"days" yaml:"days"`
	Start *Date `json:"start_date" yaml:"start_date"`
	End   *Date `json:"end_date" yaml:"end_date"`
}

// LongestStreak finds the longest run of consecutive days on which at least
// two distinct users sent a message. The earliest of equally long runs wins.
// Chats with fewer than two users have no streak.
func LongestStreak(msgs []enrichment.Message, meta chat.Metadata) Streak {
	if len(msgs) == 0 || len(meta.Users) < 2 {
		return Streak{}
	}

	daily := make(map[time.Time]map[string]bool)
	for _, msg := range msgs {
		d := dateOf(msg.Timestamp)
		if daily[d] == nil {
			daily[d] = make(map[string]bool)
		}
		daily[d][msg.User] = true
	}

	shared := make([]time.Time, 0, len(daily))
	for d, users := range daily {
		if len(users) >= 2 {
			shared = append(shared, d)
		}
	}
	if len(shared) == 0 {
		return Streak{}
	}
	sort.Slice(shared, func(i, j int) bool { return shared[i].Before(shared[j]) })

	best, current := 1, 1
	bestStart, bestEnd, runStart := shared[0], shared[0], shared[0]
	for i := 1; i < len(shared); i++ {
		if shared[i].Sub(shared[i-1]) == 24*time.Hour {
			current++
			if current > best {
				best = current
				bestStart = runStart
				bestEnd = shared[i]
			}
			continue
		}
		current = 1
		runStart = shared[i]
	}

	return Streak{
		Days:  best,
		Start: &Date{bestStart},
		End:   &Date{bestEnd},
	}
}
