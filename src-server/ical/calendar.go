// The `ical` package serializes stored events into an iCalendar feed so that
// other calendar clients can subscribe to them.
//
// # References:
// - RFC5545: https://datatracker.ietf.org/doc/html/rfc5545
//
// # Notes:
// - Only VEVENT components are written; VTIMEZONE is never emitted, all
//   datetimes are written in UTC.
// - The recurrence of an event is passed in as a ready RRULE value.
package ical

import (
	"fmt"
	"strings"
	"time"
)

const icalDatetimeLayout = "20060102T150405Z"

type Event struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	// RRULE value without the "RRULE:" prefix, blank for one-off events
	RRule string
}

type Calendar struct {
	prodID string
	name   string
	stamp  time.Time
	events []Event
}

// NewCalendar creates an empty calendar. stamp is written as the DTSTAMP of
// every event.
func NewCalendar(prodID, name string, stamp time.Time) Calendar {
	return Calendar{
		prodID: prodID,
		name:   name,
		stamp:  stamp,
		events: make([]Event, 0),
	}
}

func (c *Calendar) AddEvent(event Event) error {
	switch {
	case event.UID == "":
		return fmt.Errorf("(*Calendar).AddEvent: uid is blank")
	case event.Start.IsZero():
		return fmt.Errorf("(*Calendar).AddEvent: start is blank")
	case event.End.Before(event.Start):
		return fmt.Errorf("(*Calendar).AddEvent: end is before start")
	}
	c.events = append(c.events, event)
	return nil
}

func (c *Calendar) GetEvents() []Event {
	return c.events
}

// Marshal the calendar into iCalendar text, one content line per writer call.
func (c *Calendar) ToIcal(writer func(string) error) error {
	w := fold75Writer(writer)

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + c.prodID,
		"CALSCALE:GREGORIAN",
	}
	if c.name != "" {
		lines = append(lines, "X-WR-CALNAME:"+escapeText(c.name))
	}
	for _, line := range lines {
		if err := w(line); err != nil {
			return fmt.Errorf("(*Calendar).ToIcal: %w", err)
		}
	}

	for _, event := range c.events {
		for _, line := range event.lines(c.stamp) {
			if err := w(line); err != nil {
				return fmt.Errorf("(*Calendar).ToIcal: %w", err)
			}
		}
	}

	if err := w("END:VCALENDAR"); err != nil {
		return fmt.Errorf("(*Calendar).ToIcal: %w", err)
	}
	return nil
}

func (e Event) lines(stamp time.Time) []string {
	lines := []string{
		"BEGIN:VEVENT",
		"UID:" + e.UID,
		"DTSTAMP:" + stamp.UTC().Format(icalDatetimeLayout),
		"DTSTART:" + e.Start.UTC().Format(icalDatetimeLayout),
		"DTEND:" + e.End.UTC().Format(icalDatetimeLayout),
		"SUMMARY:" + escapeText(e.Summary),
	}
	if e.Description != "" {
		lines = append(lines, "DESCRIPTION:"+escapeText(e.Description))
	}
	if e.RRule != "" {
		lines = append(lines, "RRULE:"+e.RRule)
	}
	return append(lines, "END:VEVENT")
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
