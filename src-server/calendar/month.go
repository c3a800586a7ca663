// Package calendar shapes expanded occurrences for display: it resolves the
// requested month, groups occurrences by day and lays them out as a grid.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"moncal/src-server/recurrence"

	"github.com/olebedev/when"
)

// ParseMonth resolves the month a request asks for. Blank means the month of
// now; "2025-11" and "2025-11-17" are taken literally; anything else goes
// through the natural-language parser relative to now ("in 2 months").
// now is the caller's clock, ParseMonth never reads one itself.
func ParseMonth(raw string, now time.Time, parser *when.Parser) (recurrence.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return recurrence.MonthOf(now), nil
	}
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return recurrence.MonthOf(t), nil
		}
	}
	if parser == nil {
		return recurrence.Date{}, fmt.Errorf("ParseMonth: invalid month %q", raw)
	}

	result, err := parser.Parse(raw, now)
	if err != nil {
		return recurrence.Date{}, fmt.Errorf("ParseMonth: %w", err)
	}
	if result == nil {
		return recurrence.Date{}, fmt.Errorf("ParseMonth: invalid month %q", raw)
	}
	return recurrence.MonthOf(result.Time.In(now.Location())), nil
}
