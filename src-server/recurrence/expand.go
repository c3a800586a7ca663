// Package recurrence turns stored event definitions into the concrete calendar
// days they occupy within one month.
//
// Expansion is a pure function: it never reads the clock, never logs and never
// fails. A malformed recurrence degrades to "no occurrences for that event" so
// one bad row can't hide the rest of the calendar.
package recurrence

import "time"

// EventDefinition is the engine's view of a stored event.
type EventDefinition struct {
	ID    string
	Title string

	// Start and End span the first occurrence. End is only carried through
	// to the output, it never affects expansion.
	Start time.Time
	End   time.Time

	// nil for a one-off event
	Recurrence *Rule
}

// Occurrence is one calendar day on which an event appears.
type Occurrence struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Date          Date      `json:"date"`
	OriginalStart time.Time `json:"originalStart"`
	OriginalEnd   time.Time `json:"originalEnd"`
}

// Expand returns every occurrence of events whose date lies in the month of
// month (only its year and month are used). Occurrences follow the input
// order of events, each event's own occurrences in ascending date order.
func Expand(events []EventDefinition, month Date) []Occurrence {
	rangeStart, rangeEnd := MonthRange(month)

	occurrences := make([]Occurrence, 0)
	for _, ev := range events {
		occurrences = expandEvent(occurrences, ev, rangeStart, rangeEnd)
	}
	return occurrences
}

func expandEvent(out []Occurrence, ev EventDefinition, rangeStart, rangeEnd Date) []Occurrence {
	start := DateOf(ev.Start)
	emit := func(d Date) {
		out = append(out, Occurrence{
			ID:            ev.ID,
			Title:         ev.Title,
			Date:          d,
			OriginalStart: ev.Start,
			OriginalEnd:   ev.End,
		})
	}

	if ev.Recurrence == nil {
		if !start.Before(rangeStart) && !start.After(rangeEnd) {
			emit(start)
		}
		return out
	}

	until := ev.Recurrence.Until
	pastUntil := func(d Date) bool {
		return until != nil && d.After(*until)
	}

	switch f := ev.Recurrence.Frequency.(type) {
	case Daily:
		d := rangeStart
		if start.After(d) {
			d = start
		}
		for ; !d.After(rangeEnd); d = d.AddDays(1) {
			if pastUntil(d) {
				break
			}
			emit(d)
		}

	case Weekly:
		if f.Days.IsEmpty() {
			return out
		}
		for d := rangeStart; !d.After(rangeEnd); d = d.AddDays(1) {
			if pastUntil(d) {
				break
			}
			if f.Days.Has(d.Weekday()) && !d.Before(start) {
				emit(d)
			}
		}

	case Monthly:
		candidate := MonthlyCandidate(ev.Start, rangeStart)
		if !candidate.After(rangeEnd) && !candidate.Before(start) && !pastUntil(candidate) {
			emit(candidate)
		}
	}

	return out
}

// MonthlyCandidate is the single date a monthly event may fall on in the
// month starting at rangeStart: the start's day-of-month placed in that month.
// Days that don't exist in the month roll over into the next one
// (Jan 31 placed in Feb 2026 is Mar 3 2026), they are not clamped.
func MonthlyCandidate(start time.Time, rangeStart Date) Date {
	candidate := NewDate(rangeStart.Year, rangeStart.Month, start.Day())
	if candidate.Before(rangeStart) {
		candidate = candidate.AddMonths(1)
	}
	return candidate
}
