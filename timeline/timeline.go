// Package timeline holds the state of one contribution graph: its display
// configuration and data, and the view derived from both.
//
// Every mutation (Update, SetData, SetDataPoint, ClearData) rebuilds the view
// before it returns, so callers never observe a half-updated grid. A Timeline
// is not safe for concurrent use.
package timeline

import (
	"time"

	"github.com/stsysd/weekwide/calendar"
	"github.com/stsysd/weekwide/heatmap"
)

// Timeline is a contribution graph instance.
type Timeline struct {
	cfg      Config
	store    *heatmap.Store
	now      func() time.Time
	view     *View
	handlers []*handler
}

// Option customizes a Timeline.
type Option func(*Timeline)

// WithClock sets the clock used to resolve "today". Its location decides
// which calendar day that is.
func WithClock(now func() time.Time) Option {
	return func(t *Timeline) {
		t.now = now
	}
}

// WithStore makes the timeline read from and write to s.
func WithStore(s *heatmap.Store) Option {
	return func(t *Timeline) {
		t.store = s
	}
}

// New returns a timeline with cfg normalized and its first view built.
func New(cfg Config, opts ...Option) *Timeline {
	t := &Timeline{
		cfg:   Normalize(cfg),
		store: heatmap.NewStore(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.rebuild()
	return t
}

// Config returns the current configuration.
func (t *Timeline) Config() Config {
	return t.cfg
}

// Store returns the underlying data store.
func (t *Timeline) Store() *heatmap.Store {
	return t.store
}

// View returns the current derived view.
func (t *Timeline) View() *View {
	return t.view
}

// Update validates and merges p into the configuration and rebuilds.
func (t *Timeline) Update(p Patch) *View {
	t.cfg = Configure(t.cfg, p)
	return t.rebuild()
}

// SetData replaces all data and rebuilds.
func (t *Timeline) SetData(points []heatmap.Data) *View {
	t.store.ReplaceAll(points)
	return t.rebuild()
}

// SetDataPoint adds or overwrites the value of one day and rebuilds.
func (t *Timeline) SetDataPoint(key calendar.DateKey, value float64) *View {
	t.store.Upsert(key, value)
	return t.rebuild()
}

// SetDataPointAt is SetDataPoint for the calendar day of d.
func (t *Timeline) SetDataPointAt(d time.Time, value float64) *View {
	return t.SetDataPoint(calendar.KeyOf(d), value)
}

// ClearData removes all data and rebuilds.
func (t *Timeline) ClearData() *View {
	t.store.Clear()
	return t.rebuild()
}

func (t *Timeline) rebuild() *View {
	t.view = Rebuild(t.cfg, t.store, t.now())
	return t.view
}
