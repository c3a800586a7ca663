package model_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"moncal/src-server/model"
	"moncal/src-server/recurrence"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	bundb := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() { bundb.Close() })

	require.NoError(t, model.CreateSchema(context.Background(), bundb))
	// creating twice is fine
	require.NoError(t, model.CreateSchema(context.Background(), bundb))
	return bundb
}

func unix(y int, m time.Month, d, hh int) int64 {
	return time.Date(y, m, d, hh, 0, 0, 0, time.UTC).Unix()
}

func TestEvent_UpsertGetDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	event := model.Event{
		ID:               uuid.NewString(),
		Title:            "Standup",
		StartDateUnixUTC: unix(2025, 11, 3, 9),
		EndDateUnixUTC:   unix(2025, 11, 3, 10),
		IsRecurring:      true,
		Frequency:        "weekly",
		DaysOfWeek:       "[1,3]",
	}
	require.NoError(t, event.Upsert(ctx, db))
	assert.NotZero(t, event.CreatedAt)
	assert.Zero(t, event.UpdatedAt)

	got, err := model.GetEvent(ctx, db, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Standup", got.Title)
	assert.Equal(t, "[1,3]", got.DaysOfWeek)

	// second upsert updates in place
	got.Title = "Team standup"
	require.NoError(t, got.Upsert(ctx, db))
	assert.NotZero(t, got.UpdatedAt)
	count, err := db.NewSelect().Model((*model.Event)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	again, err := model.GetEvent(ctx, db, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Team standup", again.Title)

	require.NoError(t, model.DeleteEvent(ctx, db, event.ID))
	_, err = model.GetEvent(ctx, db, event.ID)
	assert.ErrorIs(t, err, model.ErrEventNotFound)
	assert.ErrorIs(t, model.DeleteEvent(ctx, db, event.ID), model.ErrEventNotFound)
}

func TestEvent_UpsertRejectsIncompleteRows(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	tests := []struct {
		name  string
		event model.Event
	}{
		{"no id", model.Event{Title: "x", StartDateUnixUTC: 1, EndDateUnixUTC: 2}},
		{"no title", model.Event{ID: "a", StartDateUnixUTC: 1, EndDateUnixUTC: 2}},
		{"no start", model.Event{ID: "a", Title: "x", EndDateUnixUTC: 2}},
		{"no end", model.Event{ID: "a", Title: "x", StartDateUnixUTC: 1}},
		{"end before start", model.Event{ID: "a", Title: "x", StartDateUnixUTC: 3, EndDateUnixUTC: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.event.Upsert(ctx, db))
		})
	}
}

func TestListEvents(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	rows := []model.Event{
		{ID: "late", Title: "Late", StartDateUnixUTC: unix(2025, 12, 20, 9), EndDateUnixUTC: unix(2025, 12, 20, 10)},
		{ID: "inside", Title: "Inside", StartDateUnixUTC: unix(2025, 11, 10, 9), EndDateUnixUTC: unix(2025, 11, 10, 10)},
		{ID: "daily", Title: "Daily", StartDateUnixUTC: unix(2024, 1, 1, 9), EndDateUnixUTC: unix(2024, 1, 1, 10), IsRecurring: true, Frequency: "daily"},
		{ID: "spans", Title: "Spans", StartDateUnixUTC: unix(2025, 11, 30, 9), EndDateUnixUTC: unix(2025, 12, 2, 10)},
	}
	for i := range rows {
		require.NoError(t, rows[i].Upsert(ctx, db))
	}

	all, err := model.ListEvents(ctx, db, time.Time{}, time.Time{})
	require.NoError(t, err)
	ids := make([]string, 0)
	for _, e := range all {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"daily", "inside", "spans", "late"}, ids)

	windowed, err := model.ListEvents(ctx, db,
		time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 30, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	ids = ids[:0]
	for _, e := range windowed {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"daily", "inside"}, ids)
}

func TestEvent_Definition(t *testing.T) {
	seoul := time.FixedZone("KST", 9*3600)

	// 2025-11-02 23:30 UTC is already Nov 3 in Seoul
	oneOff := model.Event{
		ID:               "one",
		Title:            "One",
		StartDateUnixUTC: time.Date(2025, 11, 2, 23, 30, 0, 0, time.UTC).Unix(),
		EndDateUnixUTC:   time.Date(2025, 11, 3, 0, 30, 0, 0, time.UTC).Unix(),
	}
	def := oneOff.Definition(seoul)
	assert.Nil(t, def.Recurrence)
	assert.Equal(t, recurrence.Date{Year: 2025, Month: time.November, Day: 3}, recurrence.DateOf(def.Start))
	assert.Equal(t, oneOff.StartDateUnixUTC, def.Start.Unix())

	weekly := model.Event{
		ID:                   "w",
		Title:                "W",
		StartDateUnixUTC:     unix(2025, 11, 3, 1),
		EndDateUnixUTC:       unix(2025, 11, 3, 2),
		IsRecurring:          true,
		Frequency:            "weekly",
		DaysOfWeek:           "[1,5]",
		RecurrenceEndUnixUTC: time.Date(2025, 11, 20, 18, 0, 0, 0, seoul).Unix(),
	}
	def = weekly.Definition(seoul)
	require.NotNil(t, def.Recurrence)
	assert.Equal(t, recurrence.Weekly{Days: recurrence.NewWeekdaySet(time.Monday, time.Friday)}, def.Recurrence.Frequency)
	require.NotNil(t, def.Recurrence.Until)
	assert.Equal(t, "2025-11-20", def.Recurrence.Until.String())

	// a broken weekday list stays weekly but with no days
	weekly.DaysOfWeek = "mon,fri"
	def = weekly.Definition(seoul)
	assert.Equal(t, recurrence.Weekly{}, def.Recurrence.Frequency)

	// recurring with no frequency keeps a rule with a nil frequency
	legacy := model.Event{ID: "l", Title: "L", StartDateUnixUTC: 1, EndDateUnixUTC: 2, IsRecurring: true}
	def = legacy.Definition(time.UTC)
	require.NotNil(t, def.Recurrence)
	assert.Nil(t, def.Recurrence.Frequency)
	assert.Nil(t, def.Recurrence.Until)

	// days are ignored for non-weekly rows
	daily := model.Event{ID: "d", Title: "D", StartDateUnixUTC: 1, EndDateUnixUTC: 2, IsRecurring: true, Frequency: "daily", DaysOfWeek: "[1]"}
	assert.Equal(t, recurrence.Daily{}, daily.Definition(time.UTC).Recurrence.Frequency)

	defs := model.Definitions([]model.Event{oneOff, legacy, daily}, time.UTC)
	require.Len(t, defs, 3)
	assert.Equal(t, []string{"one", "l", "d"}, []string{defs[0].ID, defs[1].ID, defs[2].ID})
}

func TestStoredEventsExpand(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	in := model.EventInput{
		Title:             "gym",
		StartDate:         "2025-11-01T18:00",
		EndDate:           "2025-11-01T19:00",
		IsRecurring:       true,
		Frequency:         "weekly",
		DaysOfWeek:        []int{5, 1},
		RecurrenceEndDate: "2025-11-21T08:00",
	}
	event, err := model.NewEvent(&in, time.UTC)
	require.NoError(t, err)
	require.NoError(t, event.Upsert(ctx, db))

	events, err := model.ListEvents(ctx, db, time.Time{}, time.Time{})
	require.NoError(t, err)
	occs := recurrence.Expand(model.Definitions(events, time.UTC), recurrence.Date{Year: 2025, Month: time.November, Day: 1})

	got := make([]string, 0)
	for _, o := range occs {
		got = append(got, o.Date.String())
	}
	assert.Equal(t, []string{"2025-11-03", "2025-11-07", "2025-11-10", "2025-11-14", "2025-11-17", "2025-11-21"}, got)
}
