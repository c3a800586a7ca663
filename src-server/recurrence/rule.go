package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xyedo/rrule"
)

var ErrNoFrequency = errors.New("recurrence rule has no frequency")

// Frequency is one of Daily, Weekly or Monthly. A recurring event whose
// frequency is nil expands to nothing.
type Frequency interface {
	frequency() string
}

type Daily struct{}

// Weekly repeats on every weekday in Days.
type Weekly struct {
	Days WeekdaySet
}

// Monthly repeats on the day-of-month of the event's start date.
type Monthly struct{}

func (Daily) frequency() string   { return "daily" }
func (Weekly) frequency() string  { return "weekly" }
func (Monthly) frequency() string { return "monthly" }

// FrequencyName returns the stored name of f ("daily", "weekly", "monthly"),
// or "" for nil.
func FrequencyName(f Frequency) string {
	if f == nil {
		return ""
	}
	return f.frequency()
}

// ParseFrequency maps a stored frequency name back to its variant. Unknown
// names give nil. days is only used for "weekly".
func ParseFrequency(name string, days WeekdaySet) Frequency {
	switch name {
	case "daily":
		return Daily{}
	case "weekly":
		return Weekly{Days: days}
	case "monthly":
		return Monthly{}
	default:
		return nil
	}
}

// Rule is the recurrence of an event. Until, when set, is the last calendar
// date that may still produce an occurrence.
type Rule struct {
	Frequency Frequency
	Until     *Date
}

var rruleWeekdays = [...]rrule.Weekday{
	time.Sunday:    rrule.SU,
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
}

// RRule renders the rule as an RFC 5545 RRULE value (without the "RRULE:"
// prefix), anchored at start.
//
// Monthly rules are exported as BYMONTHDAY, so calendar clients skip months
// that lack the day instead of rolling over into the next month like Expand does.
func (r Rule) RRule(start time.Time) (string, error) {
	opt := rrule.ROption{Dtstart: start}
	switch f := r.Frequency.(type) {
	case Daily:
		opt.Freq = rrule.DAILY
	case Weekly:
		if f.Days.IsEmpty() {
			return "", fmt.Errorf("(Rule).RRule: weekly rule has no weekdays")
		}
		opt.Freq = rrule.WEEKLY
		for _, d := range f.Days.Days() {
			opt.Byweekday = append(opt.Byweekday, rruleWeekdays[d])
		}
	case Monthly:
		opt.Freq = rrule.MONTHLY
		opt.Bymonthday = []int{start.Day()}
	default:
		return "", fmt.Errorf("(Rule).RRule: %w", ErrNoFrequency)
	}
	if r.Until != nil {
		// last second of the cutoff day, the cutoff is inclusive
		opt.Until = r.Until.AddDays(1).Time(start.Location()).Add(-time.Second)
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return "", fmt.Errorf("(Rule).RRule: %w", err)
	}
	str := rule.String()
	if i := strings.LastIndex(str, "\n"); i >= 0 {
		str = str[i+1:]
	}
	return strings.TrimPrefix(str, "RRULE:"), nil
}
