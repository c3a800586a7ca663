package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"moncal/src-server/recurrence"

	"github.com/uptrace/bun"
)

var ErrEventNotFound = errors.New("event not found")

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string `bun:"id,pk"`         // required
	Title       string `bun:"title,notnull"` // required
	Description string `bun:"description"`

	StartDateUnixUTC int64 `bun:"start_date,notnull"` // required
	EndDateUnixUTC   int64 `bun:"end_date,notnull"`   // required

	IsRecurring bool `bun:"is_recurring"`
	// "daily", "weekly", "monthly" or blank
	Frequency string `bun:"frequency"`
	// JSON array of weekday indices, only set for weekly events
	DaysOfWeek string `bun:"days_of_week"`
	// 0 means the event recurs forever
	RecurrenceEndUnixUTC int64 `bun:"recurrence_end_date"`

	CreatedAt int64 `bun:"created_at,notnull"`
	UpdatedAt int64 `bun:"updated_at"`
}

func (e *Event) Upsert(ctx context.Context, db bun.IDB) error {
	switch {
	case e.ID == "":
		return fmt.Errorf("(*Event).Upsert: event id is blank")
	case e.Title == "":
		return fmt.Errorf("(*Event).Upsert: title is blank")
	case e.StartDateUnixUTC == 0:
		return fmt.Errorf("(*Event).Upsert: start date is blank")
	case e.EndDateUnixUTC == 0:
		return fmt.Errorf("(*Event).Upsert: end date is blank")
	case e.StartDateUnixUTC > e.EndDateUnixUTC:
		return fmt.Errorf("(*Event).Upsert: start date must be before end date")
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UTC().Unix()
	}

	exists, err := db.NewSelect().
		Model((*Event)(nil)).
		Where("id = ?", e.ID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("(*Event).Upsert: %w", err)
	}

	switch exists {
	case true:
		e.UpdatedAt = time.Now().UTC().Unix()
		if _, err := db.NewUpdate().
			Model(e).
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Event).Upsert: %w", err)
		}
	case false:
		if _, err := db.NewInsert().
			Model(e).
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Event).Upsert: %w", err)
		}
	}

	return nil
}

// Definition converts the stored row into the recurrence engine's input.
// Unix timestamps are read back as wall-clock times in loc, so loc decides
// which calendar day a timestamp belongs to.
func (e *Event) Definition(loc *time.Location) recurrence.EventDefinition {
	def := recurrence.EventDefinition{
		ID:    e.ID,
		Title: e.Title,
		Start: time.Unix(e.StartDateUnixUTC, 0).In(loc),
		End:   time.Unix(e.EndDateUnixUTC, 0).In(loc),
	}
	if !e.IsRecurring {
		return def
	}

	rule := &recurrence.Rule{
		Frequency: recurrence.ParseFrequency(e.Frequency, recurrence.ParseWeekdaySet(e.DaysOfWeek)),
	}
	if e.RecurrenceEndUnixUTC != 0 {
		until := recurrence.DateOf(time.Unix(e.RecurrenceEndUnixUTC, 0).In(loc))
		rule.Until = &until
	}
	def.Recurrence = rule
	return def
}

func GetEvent(ctx context.Context, db bun.IDB, id string) (*Event, error) {
	event := new(Event)
	if err := db.NewSelect().
		Model(event).
		Where("id = ?", id).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("GetEvent: %w", err)
	}
	return event, nil
}

// ListEvents returns events ordered by start date. With a non-zero window it
// keeps every recurring event and the one-off events lying fully inside
// [from, to].
func ListEvents(ctx context.Context, db bun.IDB, from, to time.Time) ([]Event, error) {
	events := make([]Event, 0)
	query := db.NewSelect().
		Model(&events).
		Order("start_date ASC")
	if !from.IsZero() && !to.IsZero() {
		query = query.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("is_recurring = ?", true).
				WhereOr("is_recurring = ? AND start_date >= ? AND end_date <= ?", false, from.Unix(), to.Unix())
		})
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("ListEvents: %w", err)
	}
	return events, nil
}

func DeleteEvent(ctx context.Context, db bun.IDB, id string) error {
	res, err := db.NewDelete().
		Model((*Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("DeleteEvent: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Definitions converts a batch of rows, keeping their order.
func Definitions(events []Event, loc *time.Location) []recurrence.EventDefinition {
	defs := make([]recurrence.EventDefinition, 0, len(events))
	for i := range events {
		defs = append(defs, events[i].Definition(loc))
	}
	return defs
}
