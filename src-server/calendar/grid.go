package calendar

import (
	"time"

	"moncal/src-server/recurrence"
)

// GroupByDate buckets occurrences under their YYYY-MM-DD key, keeping the
// order they arrived in within each day.
func GroupByDate(occurrences []recurrence.Occurrence) map[string][]recurrence.Occurrence {
	byDate := make(map[string][]recurrence.Occurrence)
	for _, o := range occurrences {
		key := o.Date.String()
		byDate[key] = append(byDate[key], o)
	}
	return byDate
}

type Cell struct {
	Date        recurrence.Date         `json:"date"`
	InMonth     bool                    `json:"inMonth"`
	Occurrences []recurrence.Occurrence `json:"occurrences"`
}

type Grid struct {
	Month string   `json:"month"`
	Weeks [][]Cell `json:"weeks"`
}

// BuildGrid lays a month out as Sunday-first weeks. Cells before the first and
// after the last day of the month belong to the neighbouring months and
// carry no occurrences.
func BuildGrid(month recurrence.Date, occurrences []recurrence.Occurrence) Grid {
	first, last := recurrence.MonthRange(month)
	byDate := GroupByDate(occurrences)

	leading := int(first.Weekday() - time.Sunday)
	total := leading + last.Day
	rows := (total + 6) / 7

	grid := Grid{
		Month: first.MonthKey(),
		Weeks: make([][]Cell, 0, rows),
	}
	d := first.AddDays(-leading)
	for r := 0; r < rows; r++ {
		week := make([]Cell, 0, 7)
		for c := 0; c < 7; c++ {
			inMonth := !d.Before(first) && !d.After(last)
			cell := Cell{
				Date:        d,
				InMonth:     inMonth,
				Occurrences: make([]recurrence.Occurrence, 0),
			}
			if inMonth {
				if occs, ok := byDate[d.String()]; ok {
					cell.Occurrences = occs
				}
			}
			week = append(week, cell)
			d = d.AddDays(1)
		}
		grid.Weeks = append(grid.Weeks, week)
	}
	return grid
}
