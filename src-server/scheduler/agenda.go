package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"moncal/src-server/model"
	"moncal/src-server/recurrence"
	"moncal/src-server/utils"
)

// Agenda logs the day's occurrences at startup and every AGENDA_INTERVAL
// after that, until the app shuts down.
func Agenda(as *utils.AppState) {
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	ticker := time.NewTicker(as.Config.GetAgendaInterval())
	defer ticker.Stop()

	logAgenda := func() {
		occurrences, err := TodayAgenda(context.Background(), as, time.Now())
		if err != nil {
			slog.Error("can't build agenda", "error", err)
			return
		}
		slog.Info("agenda", "date", recurrence.DateOf(time.Now().In(as.Config.GetLocation())), "count", len(occurrences))
		for _, o := range occurrences {
			slog.Info("agenda item",
				"id", o.ID,
				"title", o.Title,
				"at", o.OriginalStart.Format("15:04"),
			)
		}
	}

	logAgenda()
	for {
		select {
		case <-*gracefulShutdownCh:
			return
		case <-ticker.C:
			logAgenda()
		}
	}
}

// TodayAgenda returns the occurrences falling on the day of now, in the
// configured location.
func TodayAgenda(ctx context.Context, as *utils.AppState, now time.Time) ([]recurrence.Occurrence, error) {
	today := recurrence.DateOf(now.In(as.Config.GetLocation()))
	occurrences, err := model.GetInstancesInMonth(ctx, as, recurrence.MonthOf(now.In(as.Config.GetLocation())))
	if err != nil {
		return nil, fmt.Errorf("TodayAgenda: %w", err)
	}

	agenda := make([]recurrence.Occurrence, 0)
	for _, o := range occurrences {
		if o.Date == today {
			agenda = append(agenda, o)
		}
	}
	return agenda, nil
}
