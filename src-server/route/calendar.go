package route

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"moncal/src-server/calendar"
	"moncal/src-server/model"
	"moncal/src-server/recurrence"
	"moncal/src-server/utils"
)

// Calendar mounts the read side of the month view: the flat list of
// occurrences and the same occurrences laid out as a grid.
func Calendar(muxer *http.ServeMux, as *utils.AppState) {
	instancesInMonth := func(w http.ResponseWriter, r *http.Request) (recurrence.Date, []recurrence.Occurrence, bool) {
		now := time.Now().In(as.Config.GetLocation())
		month, err := calendar.ParseMonth(r.URL.Query().Get("month"), now, as.When)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month")
			return recurrence.Date{}, nil, false
		}
		occurrences, err := model.GetInstancesInMonth(r.Context(), as, month)
		if err != nil {
			slog.Error("can't expand events", "month", month.MonthKey(), "error", err)
			writeError(w, http.StatusInternalServerError, "Can't expand events")
			return recurrence.Date{}, nil, false
		}
		return month, occurrences, true
	}

	muxer.HandleFunc("GET /api/calendar/instances", func(w http.ResponseWriter, r *http.Request) {
		_, occurrences, ok := instancesInMonth(w, r)
		if !ok {
			return
		}
		writeCacheableJSON(w, r, occurrences)
	})

	muxer.HandleFunc("GET /api/calendar/grid", func(w http.ResponseWriter, r *http.Request) {
		month, occurrences, ok := instancesInMonth(w, r)
		if !ok {
			return
		}
		writeCacheableJSON(w, r, calendar.BuildGrid(month, occurrences))
	})
}

// writeCacheableJSON tags the body with a content hash and answers a matching
// If-None-Match with 304.
func writeCacheableJSON(w http.ResponseWriter, r *http.Request, body any) {
	raw, err := json.Marshal(body)
	if err != nil {
		slog.Error("can't marshal response", "error", err)
		writeError(w, http.StatusInternalServerError, "Can't marshal response")
		return
	}
	etag := utils.GetContentHash(raw)
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(raw); err != nil {
		slog.Warn("can't write response", "error", err)
	}
}

// etagMatches reports whether an If-None-Match header value names etag. The
// comparison is weak: a W/ prefix on either side is ignored.
func etagMatches(header, etag string) bool {
	etag = strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
