// Package heatmap builds GitHub-like contribution grids: day cells grouped
// into weeks, intensity levels per cell and month labels over the week axis,
// plus an SVG rendering of the result.
package heatmap

import (
	"iter"
	"time"

	"github.com/stsysd/weekwide/calendar"
)

// DaysPerWeek is the fixed length of every Week.
const DaysPerWeek = 7

// Cell is one in-range day of a grid.
type Cell struct {
	Date  time.Time        `json:"-"`
	Key   calendar.DateKey `json:"date"`
	Value float64          `json:"value"`
}

// Week holds seven slots starting at the grid's first weekday.
// Slots for days outside the configured range are nil.
type Week [DaysPerWeek]*Cell

// Grid is the week-major projection of a date range.
type Grid struct {
	Start        time.Time
	End          time.Time
	FirstWeekday time.Weekday
	Weeks        []Week
}

// ValueSource supplies the value of a day. *Store implements it.
type ValueSource interface {
	Get(key calendar.DateKey) float64
}

// BuildGrid projects [start, end] onto whole weeks beginning on first.
// Both bounds are truncated to midnight. Days inside the padded weeks but
// outside the range become nil slots. An inverted range yields a grid with
// no weeks.
func BuildGrid(start, end time.Time, first time.Weekday, src ValueSource) *Grid {
	start, end = calendar.Midnight(start), calendar.Midnight(end)
	g := &Grid{Start: start, End: end, FirstWeekday: first, Weeks: []Week{}}
	if start.After(end) {
		return g
	}

	for ws := range calendar.Weeks(start, end, first) {
		var week Week
		for i := range DaysPerWeek {
			day := calendar.AddDays(ws, i)
			if day.Before(start) || day.After(end) {
				continue
			}
			key := calendar.KeyOf(day)
			week[i] = &Cell{Date: day, Key: key, Value: src.Get(key)}
		}
		g.Weeks = append(g.Weeks, week)
	}
	return g
}

// Empty reports whether the grid has no weeks.
func (g *Grid) Empty() bool {
	return len(g.Weeks) == 0
}

// Cells yields every non-nil cell in week order.
func (g *Grid) Cells() iter.Seq[*Cell] {
	return func(yield func(*Cell) bool) {
		for _, w := range g.Weeks {
			for _, c := range w {
				if c == nil {
					continue
				}
				if !yield(c) {
					return
				}
			}
		}
	}
}

// Days returns the number of non-nil cells.
func (g *Grid) Days() int {
	n := 0
	for range g.Cells() {
		n++
	}
	return n
}

// Cell looks up the cell of key. Padding days and days outside the grid
// report false.
func (g *Grid) Cell(key calendar.DateKey) (*Cell, bool) {
	for c := range g.Cells() {
		if c.Key == key {
			return c, true
		}
	}
	return nil, false
}

// Position returns the week index and slot of key.
func (g *Grid) Position(key calendar.DateKey) (week, slot int, ok bool) {
	for wi, w := range g.Weeks {
		for si, c := range w {
			if c != nil && c.Key == key {
				return wi, si, true
			}
		}
	}
	return 0, 0, false
}

// firstCell returns the first non-nil slot of w.
func (w Week) firstCell() *Cell {
	for _, c := range w {
		if c != nil {
			return c
		}
	}
	return nil
}
