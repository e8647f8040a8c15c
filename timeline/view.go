package timeline

import (
	"encoding/json"
	"time"

	"github.com/stsysd/weekwide/calendar"
	"github.com/stsysd/weekwide/heatmap"
)

var (
	shortDayNames  = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	letterDayNames = [7]string{"S", "M", "T", "W", "T", "F", "S"}
)

// Source is what a view is derived from. *heatmap.Store implements it.
type Source interface {
	heatmap.ValueSource
	Max() float64
}

// View holds everything derived from one configuration and data snapshot.
// It is rebuilt from scratch on every change and never patched.
type View struct {
	Config  Config
	Grid    *heatmap.Grid
	Labels  []heatmap.MonthLabel
	Max     float64
	Palette heatmap.Palette
}

// Rebuild derives a view from cfg and src as of now.
func Rebuild(cfg Config, src Source, now time.Time) *View {
	start, end := cfg.Range(now)
	g := heatmap.BuildGrid(start, end, cfg.FirstWeekday, src)
	return &View{
		Config:  cfg,
		Grid:    g,
		Labels:  heatmap.PlanMonthLabels(g, cfg.Orientation, cfg.CellPitch()),
		Max:     src.Max(),
		Palette: cfg.ColorScheme.Palette(),
	}
}

// Level returns the intensity level of c.
func (v *View) Level(c *heatmap.Cell) int {
	return heatmap.Level(c.Value, v.Max)
}

// Color returns the fill color of c.
func (v *View) Color(c *heatmap.Cell) string {
	return v.Palette.Color(v.Level(c))
}

// DayLabels returns the weekday names of the seven slots, starting at the
// configured first weekday. Vertical grids use single letters.
func (v *View) DayLabels() []string {
	names := shortDayNames
	if v.Config.Orientation == heatmap.Vertical {
		names = letterDayNames
	}
	labels := make([]string, heatmap.DaysPerWeek)
	for i := range labels {
		labels[i] = names[(int(v.Config.FirstWeekday)+i)%7]
	}
	return labels
}

// Tooltip returns the hover text and raw value of the day key.
// Padding and out-of-range days report false.
func (v *View) Tooltip(key calendar.DateKey) (string, float64, bool) {
	c, ok := v.Grid.Cell(key)
	if !ok {
		return "", 0, false
	}
	return heatmap.Tooltip(c), c.Value, true
}

// SVG renders the view, honoring the label and legend switches.
func (v *View) SVG(title string) string {
	opts := heatmap.DefaultOptions()
	opts.CellSize = v.Config.CellSize
	opts.CellGap = v.Config.CellGap
	opts.Orientation = v.Config.Orientation
	opts.Palette = v.Palette
	opts.Max = v.Max
	opts.Title = title
	opts.ShowLegend = v.Config.ShowLegend
	opts.VerticalMonthLabels = v.Config.VerticalMonthLabels
	if v.Config.ShowMonthLabels {
		opts.MonthLabels = v.Labels
	}
	if v.Config.ShowDayLabels {
		opts.DayLabels = v.DayLabels()
	}
	return heatmap.GenerateSVG(v.Grid, opts)
}

type cellJSON struct {
	Date    calendar.DateKey `json:"date"`
	Value   float64          `json:"value"`
	Level   int              `json:"level"`
	Color   string           `json:"color"`
	Tooltip string           `json:"tooltip"`
}

type viewJSON struct {
	Start       calendar.DateKey     `json:"start"`
	End         calendar.DateKey     `json:"end"`
	Max         float64              `json:"max"`
	Palette     []string             `json:"palette"`
	EmptyColor  string               `json:"empty_color"`
	CellPitch   float64              `json:"cell_pitch"`
	DayLabels   []string             `json:"day_labels"`
	MonthLabels []heatmap.MonthLabel `json:"month_labels"`
	Weeks       [][]*cellJSON        `json:"weeks"`
	Config      Config               `json:"config"`
}

// MarshalJSON encodes the view for rendering clients. Padding slots are null.
func (v *View) MarshalJSON() ([]byte, error) {
	out := viewJSON{
		Start:       calendar.KeyOf(v.Grid.Start),
		End:         calendar.KeyOf(v.Grid.End),
		Max:         v.Max,
		Palette:     v.Palette[:],
		EmptyColor:  heatmap.EmptyColor,
		CellPitch:   v.Config.CellPitch(),
		DayLabels:   v.DayLabels(),
		MonthLabels: v.Labels,
		Weeks:       make([][]*cellJSON, 0, len(v.Grid.Weeks)),
		Config:      v.Config,
	}
	for _, w := range v.Grid.Weeks {
		week := make([]*cellJSON, heatmap.DaysPerWeek)
		for i, c := range w {
			if c == nil {
				continue
			}
			week[i] = &cellJSON{
				Date:    c.Key,
				Value:   c.Value,
				Level:   v.Level(c),
				Color:   v.Color(c),
				Tooltip: heatmap.Tooltip(c),
			}
		}
		out.Weeks = append(out.Weeks, week)
	}
	return json.Marshal(out)
}
