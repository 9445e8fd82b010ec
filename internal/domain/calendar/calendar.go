// Package calendar maps wall-clock time to race days.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ErrInvalidCalendar reports a bad start date or time zone.
var ErrInvalidCalendar = errors.New("invalid race calendar")

// Calendar anchors day 1 of the race in a time zone.
type Calendar struct {
	start time.Time
	loc   *time.Location
}

// New parses the start date (YYYY-MM-DD) in the named zone.
func New(startDate, zone string) (Calendar, error) {
	loc := time.UTC
	if zone != "" {
		l, err := time.LoadLocation(zone)
		if err != nil {
			return Calendar{}, fmt.Errorf("%w: timezone %q: %v", ErrInvalidCalendar, zone, err)
		}
		loc = l
	}
	start, err := time.ParseInLocation(dateLayout, startDate, loc)
	if err != nil {
		return Calendar{}, fmt.Errorf("%w: start date %q: %v", ErrInvalidCalendar, startDate, err)
	}
	return Calendar{start: start, loc: loc}, nil
}

// Location returns the race time zone.
func (c Calendar) Location() *time.Location { return c.loc }

// Local converts t into the race time zone.
func (c Calendar) Local(t time.Time) time.Time { return t.In(c.loc) }

// Day returns the 1-based race day of t. Days before the start are <= 0.
func (c Calendar) Day(t time.Time) int {
	lt := t.In(c.loc)
	midnight := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, c.loc)
	days := int(midnight.Sub(c.start).Round(time.Hour).Hours() / 24)
	return days + 1
}

// Date returns the calendar date of race day as YYYY-MM-DD.
func (c Calendar) Date(day int) string {
	return c.start.AddDate(0, 0, day-1).Format(dateLayout)
}
