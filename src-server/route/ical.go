package route

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"moncal/src-server/ical"
	"moncal/src-server/model"
	"moncal/src-server/utils"
)

const icalProdID = "-//moncal//moncal calendar//EN"

// Ical serves every stored event as a subscribable iCalendar feed. Recurring
// events carry their rule as RRULE instead of being expanded.
func Ical(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /ical", func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()
		eventModels, err := model.ListEvents(r.Context(), as.BunDB, time.Time{}, time.Time{})
		if err != nil {
			slog.Error("can't list events", "error", err)
			writeError(w, http.StatusInternalServerError, "Can't list events")
			return
		}
		utils.Report(as.MetricChans.DatabaseRead, startTimer)

		loc := as.Config.GetLocation()
		icalCalendar := ical.NewCalendar(icalProdID, "moncal", time.Now())
		for i := range eventModels {
			def := eventModels[i].Definition(loc)
			icalEvent := ical.Event{
				UID:         def.ID,
				Summary:     def.Title,
				Description: eventModels[i].Description,
				Start:       def.Start,
				End:         def.End,
			}
			if def.Recurrence != nil {
				rrule, err := def.Recurrence.RRule(def.Start)
				if err != nil {
					// no frequency: it never repeats, export it as a one-off
					slog.Warn("can't export rrule", "id", def.ID, "error", err)
				}
				icalEvent.RRule = rrule
			}
			if err := icalCalendar.AddEvent(icalEvent); err != nil {
				slog.Warn("skipping event in ical feed", "id", def.ID, "error", err)
			}
		}

		var buf bytes.Buffer
		writer := func(s string) error {
			_, err := buf.WriteString(s)
			return err
		}
		if err := icalCalendar.ToIcal(writer); err != nil {
			slog.Error("can't write ical feed", "error", err)
			writeError(w, http.StatusInternalServerError, "Can't write ical feed")
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			slog.Warn("can't write to response", "error", err)
		}
	})
}
