// Package calendar provides the day and week arithmetic behind contribution grids.
//
// Every day is identified by a DateKey ("YYYY-MM-DD"). Keys are derived from
// the calendar date in the time's own location, so the same instant can map to
// different keys in different zones; callers pick the location once and keep it.
package calendar

import (
	"iter"
	"strings"
	"time"
)

// KeyLayout is the time layout of a DateKey.
const KeyLayout = "2006-01-02"

// DateKey is the canonical zero-padded YYYY-MM-DD form of a calendar day.
// Lexicographic order of keys equals chronological order.
type DateKey string

// KeyOf returns the DateKey of t's calendar date in t's location.
func KeyOf(t time.Time) DateKey {
	return DateKey(t.Format(KeyLayout))
}

// ParseKey normalizes a date string into a DateKey.
// It accepts YYYY-MM-DD and RFC3339 timestamps.
func ParseKey(s string) (DateKey, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(KeyLayout, s); err == nil {
		return KeyOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return KeyOf(t), nil
	}
	return "", &ParseError{Type: "date", Value: s}
}

// Valid reports whether k is a well-formed key of an existing day.
func (k DateKey) Valid() bool {
	_, err := time.Parse(KeyLayout, string(k))
	return err == nil
}

// Time returns midnight of the day k in loc. An invalid key yields the zero time.
func (k DateKey) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(KeyLayout, string(k), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (k DateKey) String() string {
	return string(k)
}

// Midnight truncates t to the start of its day.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays returns t shifted by n calendar days. It does not modify t.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// WeekStart returns midnight of the most recent day on or before t that falls
// on first.
func WeekStart(t time.Time, first time.Weekday) time.Time {
	offset := (int(t.Weekday()) - int(first) + 7) % 7
	return AddDays(Midnight(t), -offset)
}

// WeekEnd returns midnight of the last day of the week containing t.
func WeekEnd(t time.Time, first time.Weekday) time.Time {
	return AddDays(WeekStart(t, first), 6)
}

// Weeks yields the start of every week touching [start, end], oldest first.
// The sequence can be ranged over any number of times.
func Weeks(start, end time.Time, first time.Weekday) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		last := WeekEnd(end, first)
		for w := WeekStart(start, first); !w.After(last); w = AddDays(w, 7) {
			if !yield(w) {
				return
			}
		}
	}
}

// DefaultRange returns the trailing one-year window ending today:
// the same month and day of the previous year through today.
func DefaultRange(now time.Time) (time.Time, time.Time) {
	end := Midnight(now)
	return end.AddDate(-1, 0, 0), end
}

// InRange reports whether day lies within [start, end], comparing whole days.
func InRange(day, start, end time.Time) bool {
	d := Midnight(day)
	return !d.Before(Midnight(start)) && !d.After(Midnight(end))
}
