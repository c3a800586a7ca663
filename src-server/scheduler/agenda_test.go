package scheduler_test

import (
	"context"
	"testing"
	"time"

	"moncal/src-server/model"
	"moncal/src-server/scheduler"
	"moncal/src-server/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodayAgenda(t *testing.T) {
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("TIMEZONE", "Asia/Tokyo")
	as := utils.NewAppState()
	defer as.GracefulShutdown()
	ctx := context.Background()
	require.NoError(t, model.CreateSchema(ctx, as.BunDB))

	loc := as.Config.GetLocation()
	for _, in := range []model.EventInput{
		{Title: "standup", StartDate: "2025-11-03T09:00", EndDate: "2025-11-03T09:15", IsRecurring: true, Frequency: "weekly", DaysOfWeek: []int{1, 3}},
		{Title: "dentist", StartDate: "2025-11-05T14:00", EndDate: "2025-11-05T15:00"},
		{Title: "review", StartDate: "2025-11-06T14:00", EndDate: "2025-11-06T15:00"},
	} {
		event, err := model.NewEvent(&in, loc)
		require.NoError(t, err)
		require.NoError(t, event.Upsert(ctx, as.BunDB))
	}

	// 2025-11-05 00:30 in Tokyo is still the 4th in UTC
	now := time.Date(2025, 11, 4, 15, 30, 0, 0, time.UTC)
	agenda, err := scheduler.TodayAgenda(ctx, as, now)
	require.NoError(t, err)
	titles := make([]string, 0, len(agenda))
	for _, o := range agenda {
		titles = append(titles, o.Title)
		assert.Equal(t, "2025-11-05", o.Date.String())
	}
	assert.ElementsMatch(t, []string{"Standup", "Dentist"}, titles)

	agenda, err = scheduler.TodayAgenda(ctx, as, time.Date(2025, 11, 8, 12, 0, 0, 0, loc))
	require.NoError(t, err)
	assert.Empty(t, agenda)
}
