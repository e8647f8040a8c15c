package timeline

import (
	"slices"
	"time"

	"github.com/stsysd/weekwide/calendar"
)

// SelectionEvent describes a day the user activated.
type SelectionEvent struct {
	Date       calendar.DateKey `json:"date"`
	Value      float64          `json:"value"`
	DateObject time.Time        `json:"date_object"`
}

// DaySelectedHandler receives selection events.
type DaySelectedHandler func(SelectionEvent)

type handler struct {
	fn DaySelectedHandler
}

// OnDaySelected registers h and returns a function that unregisters it.
func (t *Timeline) OnDaySelected(h DaySelectedHandler) (cancel func()) {
	entry := &handler{fn: h}
	t.handlers = append(t.handlers, entry)
	return func() {
		t.handlers = slices.DeleteFunc(t.handlers, func(e *handler) bool {
			return e == entry
		})
	}
}

// Select activates the cell of key in the current view. Each registered
// handler receives the event once. Padding days and days outside the grid
// emit nothing and report false.
func (t *Timeline) Select(key calendar.DateKey) (SelectionEvent, bool) {
	c, ok := t.view.Grid.Cell(key)
	if !ok {
		return SelectionEvent{}, false
	}
	ev := SelectionEvent{Date: c.Key, Value: c.Value, DateObject: c.Date}
	for _, h := range slices.Clone(t.handlers) {
		h.fn(ev)
	}
	return ev, true
}
