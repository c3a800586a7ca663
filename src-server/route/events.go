package route

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"moncal/src-server/model"
	"moncal/src-server/recurrence"
	"moncal/src-server/utils"

	"github.com/uptrace/bun"
)

type eventRespBody struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	StartDate         string  `json:"startDate"`
	EndDate           string  `json:"endDate"`
	IsRecurring       bool    `json:"isRecurring"`
	Frequency         *string `json:"frequency"`
	DaysOfWeek        []int   `json:"daysOfWeek"`
	RecurrenceEndDate *string `json:"recurrenceEndDate"`
	RRule             string  `json:"rrule,omitempty"`
	CreatedAt         int64   `json:"createdAt"`
	UpdatedAt         int64   `json:"updatedAt"`
}

func toEventRespBody(e *model.Event, loc *time.Location) eventRespBody {
	def := e.Definition(loc)
	body := eventRespBody{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartDate:   def.Start.Format(time.RFC3339),
		EndDate:     def.End.Format(time.RFC3339),
		IsRecurring: e.IsRecurring,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if def.Recurrence == nil {
		return body
	}

	if name := recurrence.FrequencyName(def.Recurrence.Frequency); name != "" {
		body.Frequency = &name
	}
	if weekly, ok := def.Recurrence.Frequency.(recurrence.Weekly); ok {
		body.DaysOfWeek = weekly.Days.Indices()
	}
	if def.Recurrence.Until != nil {
		until := def.Recurrence.Until.String()
		body.RecurrenceEndDate = &until
	}
	rrule, err := def.Recurrence.RRule(def.Start)
	if err != nil {
		slog.Debug("event has no rrule", "id", e.ID, "error", err)
	} else {
		body.RRule = rrule
	}
	return body
}

func writeInputError(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errRespBody{Error: "Invalid event", Fields: verr.Fields})
		return
	}
	slog.Error("can't validate event", "error", err)
	writeError(w, http.StatusInternalServerError, "Can't validate event")
}

// Events mounts the CRUD endpoints of stored events. Every write drops the
// expansion cache.
func Events(muxer *http.ServeMux, as *utils.AppState) {
	// list, narrowed to [from, to] only when both are given
	muxer.HandleFunc("GET /api/events", func(w http.ResponseWriter, r *http.Request) {
		loc := as.Config.GetLocation()
		var from, to time.Time
		rawFrom := strings.TrimSpace(r.URL.Query().Get("from"))
		rawTo := strings.TrimSpace(r.URL.Query().Get("to"))
		if rawFrom != "" && rawTo != "" {
			var err error
			if from, err = model.ParseInputTime(rawFrom, loc); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid from: "+err.Error())
				return
			}
			if to, err = model.ParseInputTime(rawTo, loc); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid to: "+err.Error())
				return
			}
		}

		startTimer := time.Now()
		eventModels, err := model.ListEvents(r.Context(), as.BunDB, from, to)
		if err != nil {
			slog.Error("can't list events", "error", err)
			writeError(w, http.StatusInternalServerError, "Can't list events")
			return
		}
		utils.Report(as.MetricChans.DatabaseRead, startTimer)

		respBody := make([]eventRespBody, 0, len(eventModels))
		for i := range eventModels {
			respBody = append(respBody, toEventRespBody(&eventModels[i], loc))
		}
		writeJSON(w, http.StatusOK, respBody)
	})

	// create
	muxer.HandleFunc("POST /api/events", func(w http.ResponseWriter, r *http.Request) {
		var reqBody model.EventInput
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		eventModel, err := model.NewEvent(&reqBody, as.Config.GetLocation())
		if err != nil {
			writeInputError(w, err)
			return
		}

		startTimer := time.Now()
		if err := eventModel.Upsert(r.Context(), as.BunDB); err != nil {
			slog.Error("can't insert event", "error", err)
			writeError(w, http.StatusInternalServerError, "Can't insert event")
			return
		}
		utils.Report(as.MetricChans.DatabaseWrite, startTimer)
		as.Expansions.Purge()

		writeJSON(w, http.StatusCreated, toEventRespBody(eventModel, as.Config.GetLocation()))
	})

	muxer.HandleFunc("GET /api/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()
		eventModel, err := model.GetEvent(r.Context(), as.BunDB, r.PathValue("id"))
		switch {
		case errors.Is(err, model.ErrEventNotFound):
			writeError(w, http.StatusNotFound, "Event not found")
			return
		case err != nil:
			slog.Error("can't get event", "error", err)
			writeError(w, http.StatusInternalServerError, "Can't get event")
			return
		}
		utils.Report(as.MetricChans.DatabaseRead, startTimer)

		writeJSON(w, http.StatusOK, toEventRespBody(eventModel, as.Config.GetLocation()))
	})

	// update, the whole event is replaced by the payload
	muxer.HandleFunc("PUT /api/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		var reqBody model.EventInput
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		startTimer := time.Now()
		var eventModel *model.Event
		err := as.BunDB.RunInTx(r.Context(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			var err error
			if eventModel, err = model.GetEvent(ctx, tx, r.PathValue("id")); err != nil {
				return err
			}
			if err := eventModel.Apply(&reqBody, as.Config.GetLocation()); err != nil {
				return err
			}
			return eventModel.Upsert(ctx, tx)
		})
		var verr *model.ValidationError
		switch {
		case errors.Is(err, model.ErrEventNotFound):
			writeError(w, http.StatusNotFound, "Event not found")
			return
		case errors.As(err, &verr):
			writeInputError(w, err)
			return
		case err != nil:
			slog.Error("can't update event", "error", err)
			writeError(w, http.StatusInternalServerError, "Can't update event")
			return
		}
		utils.Report(as.MetricChans.DatabaseWrite, startTimer)
		as.Expansions.Purge()

		writeJSON(w, http.StatusOK, toEventRespBody(eventModel, as.Config.GetLocation()))
	})

	muxer.HandleFunc("DELETE /api/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		startTimer := time.Now()
		err := model.DeleteEvent(r.Context(), as.BunDB, r.PathValue("id"))
		switch {
		case errors.Is(err, model.ErrEventNotFound):
			writeError(w, http.StatusNotFound, "Event not found")
			return
		case err != nil:
			slog.Error("can't delete event", "error", err)
			writeError(w, http.StatusInternalServerError, "Can't delete event")
			return
		}
		utils.Report(as.MetricChans.DatabaseWrite, startTimer)
		as.Expansions.Purge()

		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
}
