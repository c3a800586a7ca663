package model

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"moncal/src-server/recurrence"
	"moncal/src-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// EventInput is the create/update payload of the events API.
type EventInput struct {
	Title             string `json:"title" validate:"required"`
	Description       string `json:"description"`
	StartDate         string `json:"startDate" validate:"required"`
	EndDate           string `json:"endDate" validate:"required"`
	IsRecurring       bool   `json:"isRecurring"`
	Frequency         string `json:"frequency" validate:"required_if=IsRecurring true,omitempty,oneof=daily weekly monthly"`
	DaysOfWeek        []int  `json:"daysOfWeek" validate:"omitempty,dive,min=0,max=6"`
	RecurrenceEndDate string `json:"recurrenceEndDate"`
}

// ValidationError maps a payload field (by its JSON name) to what's wrong with it.
type ValidationError struct {
	Fields map[string]string
}

func (v *ValidationError) Error() string {
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v.Fields[k])
	}
	return "invalid event: " + strings.Join(parts, "; ")
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// accepted in order; layouts without a zone are read in loc
var inputTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func ParseInputTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// Validate checks the payload and returns the event it describes. Fields that
// don't apply to the chosen recurrence are dropped rather than rejected.
func (in *EventInput) Validate(loc *time.Location) (*Event, error) {
	fields := make(map[string]string)

	if err := validate.Struct(in); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("(*EventInput).Validate: %w", err)
		}
		for _, fe := range verrs {
			name, _, _ := strings.Cut(fe.Field(), "[")
			if _, seen := fields[name]; seen {
				continue
			}
			fields[name] = describeValidation(fe)
		}
	}

	start, err := ParseInputTime(in.StartDate, loc)
	if err != nil && in.StartDate != "" {
		fields["startDate"] = err.Error()
	}
	end, err := ParseInputTime(in.EndDate, loc)
	if err != nil && in.EndDate != "" {
		fields["endDate"] = err.Error()
	}
	// the store reads a 0 timestamp as blank
	if _, bad := fields["startDate"]; !bad && in.StartDate != "" && start.Unix() <= 0 {
		fields["startDate"] = "Must be after 1970-01-01"
	}
	if _, bad := fields["endDate"]; !bad && in.EndDate != "" && end.Unix() <= 0 {
		fields["endDate"] = "Must be after 1970-01-01"
	}
	var recurrenceEnd time.Time
	if in.IsRecurring && strings.TrimSpace(in.RecurrenceEndDate) != "" {
		if recurrenceEnd, err = ParseInputTime(in.RecurrenceEndDate, loc); err != nil {
			fields["recurrenceEndDate"] = err.Error()
		}
	}

	if _, bad := fields["startDate"]; !bad && in.StartDate != "" {
		if _, bad := fields["endDate"]; !bad && in.EndDate != "" && end.Before(start) {
			fields["endDate"] = "End should not be before start"
		}
		if !recurrenceEnd.IsZero() && recurrenceEnd.Before(start) {
			fields["recurrenceEndDate"] = "Recurrence end should be after start"
		}
	}
	if in.IsRecurring && in.Frequency == "weekly" && len(in.DaysOfWeek) == 0 {
		fields["daysOfWeek"] = "Select at least one weekday"
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	event := &Event{
		Title:            utils.CleanupString(in.Title),
		Description:      strings.TrimSpace(in.Description),
		StartDateUnixUTC: start.Unix(),
		EndDateUnixUTC:   end.Unix(),
		IsRecurring:      in.IsRecurring,
	}
	if in.IsRecurring {
		event.Frequency = in.Frequency
		if in.Frequency == "weekly" {
			days := make([]time.Weekday, 0, len(in.DaysOfWeek))
			for _, d := range in.DaysOfWeek {
				days = append(days, time.Weekday(d))
			}
			event.DaysOfWeek = recurrence.NewWeekdaySet(days...).String()
		}
		if !recurrenceEnd.IsZero() {
			event.RecurrenceEndUnixUTC = recurrenceEnd.Unix()
		}
	}
	return event, nil
}

// NewEvent validates in and assigns a fresh ID.
func NewEvent(in *EventInput, loc *time.Location) (*Event, error) {
	event, err := in.Validate(loc)
	if err != nil {
		return nil, err
	}
	event.ID = uuid.NewString()
	return event, nil
}

// Apply validates in and overwrites the editable fields of e with it.
func (e *Event) Apply(in *EventInput, loc *time.Location) error {
	updated, err := in.Validate(loc)
	if err != nil {
		return err
	}
	e.Title = updated.Title
	e.Description = updated.Description
	e.StartDateUnixUTC = updated.StartDateUnixUTC
	e.EndDateUnixUTC = updated.EndDateUnixUTC
	e.IsRecurring = updated.IsRecurring
	e.Frequency = updated.Frequency
	e.DaysOfWeek = updated.DaysOfWeek
	e.RecurrenceEndUnixUTC = updated.RecurrenceEndUnixUTC
	return nil
}

func describeValidation(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "Required"
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "min", "max":
		return "Weekday must be between 0 and 6"
	default:
		return "Invalid value"
	}
}
