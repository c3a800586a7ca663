package model

import (
	"context"
	"fmt"
	"time"

	"moncal/src-server/recurrence"
	"moncal/src-server/utils"
)

// GetInstancesInMonth expands every stored event for the month of month,
// serving repeated requests for the same month from the expansion cache.
func GetInstancesInMonth(ctx context.Context, as *utils.AppState, month recurrence.Date) ([]recurrence.Occurrence, error) {
	if occurrences, ok := as.Expansions.Get(month); ok {
		return occurrences, nil
	}
	gen := as.Expansions.Generation()

	startTimer := time.Now()
	events, err := ListEvents(ctx, as.BunDB, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("GetInstancesInMonth: %w", err)
	}
	utils.Report(as.MetricChans.DatabaseRead, startTimer)

	startTimer = time.Now()
	occurrences := recurrence.Expand(Definitions(events, as.Config.GetLocation()), month)
	utils.Report(as.MetricChans.Expansion, startTimer)
	utils.ReportValue(as.MetricChans.ExpansionSize, float64(len(occurrences)))

	as.Expansions.Add(month, gen, occurrences)
	return occurrences, nil
}
