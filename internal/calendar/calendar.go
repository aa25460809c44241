// Package calendar truncates timestamps to the bucket units groupBy accepts.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ISODate is the layout buckets are rendered with.
const ISODate = "2006-01-02"

var (
	ErrUnit = errors.New("unknown date unit")
	ErrDate = errors.New("invalid date")
)

type Unit string

const (
	Year    Unit = "year"
	Quarter Unit = "quarter"
	Month   Unit = "month"
	Week    Unit = "week"
	Day     Unit = "day"
	Hour    Unit = "hour"
	Minute  Unit = "minute"
	Second  Unit = "second"
)

// ParseUnit accepts a unit name in singular or plural form, any case.
func ParseUnit(s string) (Unit, error) {
	u := Unit(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s"))
	switch u {
	case Year, Quarter, Month, Week, Day, Hour, Minute, Second:
		return u, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnit, s)
	}
}

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	ISODate,
	"2006-01",
	"2006",
}

// Parse reads an ISO 8601 date or timestamp. Timestamps without an offset
// are taken as UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrDate, s)
}

// StartOf truncates t to the start of its unit in t's location. Weeks start
// on Monday.
func StartOf(t time.Time, u Unit) time.Time {
	year, month, day := t.Date()
	loc := t.Location()

	switch u {
	case Year:
		return time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	case Quarter:
		first := time.Month((int(month)-1)/3*3 + 1)
		return time.Date(year, first, 1, 0, 0, 0, 0, loc)
	case Month:
		return time.Date(year, month, 1, 0, 0, 0, 0, loc)
	case Week:
		offset := (int(t.Weekday()) + 6) % 7
		return time.Date(year, month, day-offset, 0, 0, 0, 0, loc)
	case Day:
		return time.Date(year, month, day, 0, 0, 0, 0, loc)
	case Hour:
		return time.Date(year, month, day, t.Hour(), 0, 0, 0, loc)
	case Minute:
		return time.Date(year, month, day, t.Hour(), t.Minute(), 0, 0, loc)
	default:
		return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), 0, loc)
	}
}

// Bucket parses s and renders the start of its unit as an ISO date.
func Bucket(s string, u Unit) (string, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return StartOf(t, u).Format(ISODate), nil
}
