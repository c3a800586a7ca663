package recurrence

import (
	"encoding/json"
	"time"
)

// WeekdaySet is a set of weekdays, bit i set meaning time.Weekday(i) (0 = Sunday).
type WeekdaySet uint8

// NewWeekdaySet builds a set from weekday indices, ignoring anything outside 0..6.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		if d < time.Sunday || d > time.Saturday {
			continue
		}
		s |= 1 << uint(d)
	}
	return s
}

// ParseWeekdaySet decodes the stored form of a weekday list, a JSON array such
// as "[1,5]". Anything that can't be decoded yields the empty set.
func ParseWeekdaySet(raw string) WeekdaySet {
	if raw == "" {
		return 0
	}
	var idx []int
	if err := json.Unmarshal([]byte(raw), &idx); err != nil {
		return 0
	}
	days := make([]time.Weekday, 0, len(idx))
	for _, i := range idx {
		days = append(days, time.Weekday(i))
	}
	return NewWeekdaySet(days...)
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	if d < time.Sunday || d > time.Saturday {
		return false
	}
	return s&(1<<uint(d)) != 0
}

func (s WeekdaySet) IsEmpty() bool {
	return s == 0
}

// Days lists the members in ascending order, Sunday first.
func (s WeekdaySet) Days() []time.Weekday {
	days := make([]time.Weekday, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// Indices is Days as plain ints, the form used on the wire and in storage.
func (s WeekdaySet) Indices() []int {
	out := make([]int, 0, 7)
	for _, d := range s.Days() {
		out = append(out, int(d))
	}
	return out
}

// String encodes the set in its stored form.
func (s WeekdaySet) String() string {
	b, _ := json.Marshal(s.Indices())
	return string(b)
}
