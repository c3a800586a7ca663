package model_test

import (
	"testing"
	"time"

	"moncal/src-server/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventInput_Validate(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)

	in := model.EventInput{
		Title:       "  weekly sync.  ",
		Description: " notes ",
		StartDate:   "2025-11-03T09:00",
		EndDate:     "2025-11-03T10:30",
		IsRecurring: true,
		Frequency:   "weekly",
		DaysOfWeek:  []int{3, 1, 3},
	}
	event, err := in.Validate(loc)
	require.NoError(t, err)
	assert.Equal(t, "Weekly sync", event.Title)
	assert.Equal(t, "notes", event.Description)
	assert.Equal(t, time.Date(2025, 11, 3, 9, 0, 0, 0, loc).Unix(), event.StartDateUnixUTC)
	assert.Equal(t, time.Date(2025, 11, 3, 10, 30, 0, 0, loc).Unix(), event.EndDateUnixUTC)
	assert.Equal(t, "weekly", event.Frequency)
	assert.Equal(t, "[1,3]", event.DaysOfWeek)
	assert.Zero(t, event.RecurrenceEndUnixUTC)
	assert.Empty(t, event.ID)
}

func TestEventInput_ValidateDropsIrrelevantFields(t *testing.T) {
	in := model.EventInput{
		Title:             "Lunch",
		StartDate:         "2025-11-03T12:00:00Z",
		EndDate:           "2025-11-03T13:00:00Z",
		Frequency:         "weekly",
		DaysOfWeek:        []int{1},
		RecurrenceEndDate: "2025-12-01",
	}
	event, err := in.Validate(time.UTC)
	require.NoError(t, err)
	assert.False(t, event.IsRecurring)
	assert.Empty(t, event.Frequency)
	assert.Empty(t, event.DaysOfWeek)
	assert.Zero(t, event.RecurrenceEndUnixUTC)

	in = model.EventInput{
		Title:             "Rent",
		StartDate:         "2025-01-31",
		EndDate:           "2025-01-31",
		IsRecurring:       true,
		Frequency:         "monthly",
		DaysOfWeek:        []int{1},
		RecurrenceEndDate: "2025-12-31",
	}
	event, err = in.Validate(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "monthly", event.Frequency)
	assert.Empty(t, event.DaysOfWeek)
	assert.Equal(t, time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC).Unix(), event.RecurrenceEndUnixUTC)
}

func TestEventInput_ValidateErrors(t *testing.T) {
	base := func() model.EventInput {
		return model.EventInput{
			Title:       "x",
			StartDate:   "2025-11-03T09:00",
			EndDate:     "2025-11-03T10:00",
			IsRecurring: true,
			Frequency:   "daily",
		}
	}

	tests := []struct {
		name   string
		modify func(in *model.EventInput)
		field  string
		msg    string
	}{
		{"missing title", func(in *model.EventInput) { in.Title = "" }, "title", "Required"},
		{"missing start", func(in *model.EventInput) { in.StartDate = "" }, "startDate", "Required"},
		{"bad start", func(in *model.EventInput) { in.StartDate = "yesterday" }, "startDate", `unrecognized date "yesterday"`},
		{"end before start", func(in *model.EventInput) { in.EndDate = "2025-11-03T08:00" }, "endDate", "End should not be before start"},
		{"missing frequency", func(in *model.EventInput) { in.Frequency = "" }, "frequency", "Required"},
		{"unknown frequency", func(in *model.EventInput) { in.Frequency = "yearly" }, "frequency", "Must be one of: daily weekly monthly"},
		{"weekly without days", func(in *model.EventInput) { in.Frequency = "weekly" }, "daysOfWeek", "Select at least one weekday"},
		{"weekday out of range", func(in *model.EventInput) {
			in.Frequency = "weekly"
			in.DaysOfWeek = []int{1, 7}
		}, "daysOfWeek", "Weekday must be between 0 and 6"},
		{"recurrence end before start", func(in *model.EventInput) { in.RecurrenceEndDate = "2025-11-01" }, "recurrenceEndDate", "Recurrence end should be after start"},
		{"bad recurrence end", func(in *model.EventInput) { in.RecurrenceEndDate = "soon" }, "recurrenceEndDate", `unrecognized date "soon"`},
		{"start at the epoch", func(in *model.EventInput) { in.StartDate = "1970-01-01T00:00:00Z" }, "startDate", "Must be after 1970-01-01"},
		{"end before the epoch", func(in *model.EventInput) {
			in.StartDate = "1969-12-31"
			in.EndDate = "1969-12-31T10:00"
		}, "endDate", "Must be after 1970-01-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base()
			tt.modify(&in)
			_, err := in.Validate(time.UTC)
			require.Error(t, err)

			var verr *model.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.msg, verr.Fields[tt.field], "%v", verr.Fields)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestEvent_Apply(t *testing.T) {
	event := model.Event{ID: "keep", Title: "Old", CreatedAt: 42, IsRecurring: true, Frequency: "weekly", DaysOfWeek: "[1]"}
	err := event.Apply(&model.EventInput{
		Title:     "new title",
		StartDate: "2025-11-03T09:00",
		EndDate:   "2025-11-03T10:00",
	}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, "keep", event.ID)
	assert.Equal(t, int64(42), event.CreatedAt)
	assert.Equal(t, "New title", event.Title)
	assert.False(t, event.IsRecurring)
	assert.Empty(t, event.Frequency)
	assert.Empty(t, event.DaysOfWeek)

	assert.Error(t, event.Apply(&model.EventInput{}, time.UTC))
	assert.Equal(t, "New title", event.Title)

	created, err := model.NewEvent(&model.EventInput{Title: "a", StartDate: "2025-11-03", EndDate: "2025-11-03"}, time.UTC)
	require.NoError(t, err)
	assert.Len(t, created.ID, 36)
}
