package timeline

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stsysd/weekwide/calendar"
	"github.com/stsysd/weekwide/heatmap"
)

// Size limits applied to every configuration.
const (
	MinCellSize = 8
	MaxCellSize = 20
	MinCellGap  = 1
	MaxCellGap  = 10
)

// Config is the display configuration of a timeline.
// An empty StartDate or EndDate means "unset": the range then defaults to the
// trailing year ending today.
type Config struct {
	StartDate           calendar.DateKey    `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate             calendar.DateKey    `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Orientation         heatmap.Orientation `json:"orientation" yaml:"orientation"`
	CellSize            int                 `json:"cell_size" yaml:"cell_size"`
	CellGap             int                 `json:"cell_gap" yaml:"cell_gap"`
	ColorScheme         heatmap.ColorScheme `json:"color_scheme" yaml:"color_scheme"`
	FirstWeekday        time.Weekday        `json:"week_start" yaml:"week_start"`
	FixedSize           bool                `json:"fixed_size" yaml:"fixed_size"`
	ShowMonthLabels     bool                `json:"show_month_labels" yaml:"show_month_labels"`
	ShowDayLabels       bool                `json:"show_day_labels" yaml:"show_day_labels"`
	ShowLegend          bool                `json:"show_legend" yaml:"show_legend"`
	VerticalMonthLabels bool                `json:"vertical_month_labels" yaml:"vertical_month_labels"`
}

// DefaultConfig returns the configuration of a freshly created timeline.
func DefaultConfig() Config {
	return Config{
		Orientation:         heatmap.Horizontal,
		CellSize:            12,
		CellGap:             3,
		ColorScheme:         heatmap.Green,
		FirstWeekday:        time.Sunday,
		ShowMonthLabels:     true,
		ShowDayLabels:       true,
		ShowLegend:          true,
		VerticalMonthLabels: true,
	}
}

// Patch is a partial configuration update. Nil fields are left unchanged.
// String fields carry raw user input and are validated by Configure.
type Patch struct {
	StartDate           *string `json:"start_date,omitempty"`
	EndDate             *string `json:"end_date,omitempty"`
	Orientation         *string `json:"orientation,omitempty"`
	CellSize            *int    `json:"cell_size,omitempty"`
	CellGap             *int    `json:"cell_gap,omitempty"`
	ColorScheme         *string `json:"color_scheme,omitempty"`
	FirstWeekday        *string `json:"week_start,omitempty"`
	FixedSize           *bool   `json:"fixed_size,omitempty"`
	ShowMonthLabels     *bool   `json:"show_month_labels,omitempty"`
	ShowDayLabels       *bool   `json:"show_day_labels,omitempty"`
	ShowLegend          *bool   `json:"show_legend,omitempty"`
	VerticalMonthLabels *bool   `json:"vertical_month_labels,omitempty"`
}

// UnmarshalJSON accepts week_start either as a weekday name or as the number
// Config marshals it to, so a stored configuration can be sent back as a Patch.
func (p *Patch) UnmarshalJSON(data []byte) error {
	type plain Patch
	var aux struct {
		plain
		FirstWeekday json.RawMessage `json:"week_start,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Patch(aux.plain)
	p.FirstWeekday = nil

	if len(aux.FirstWeekday) == 0 || string(aux.FirstWeekday) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(aux.FirstWeekday, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(aux.FirstWeekday, &n); err != nil {
			return fmt.Errorf("week_start: expected a weekday name or number, got %s", aux.FirstWeekday)
		}
		s = n.String()
	}
	p.FirstWeekday = &s
	return nil
}

// Configure merges p into cfg and returns the result. It never fails:
// sizes are clamped, and unparsable dates or unknown enum names are ignored
// so the previous value stays in effect. An empty date string clears the bound.
func Configure(cfg Config, p Patch) Config {
	if p.StartDate != nil {
		cfg.StartDate = mergeDate(cfg.StartDate, *p.StartDate)
	}
	if p.EndDate != nil {
		cfg.EndDate = mergeDate(cfg.EndDate, *p.EndDate)
	}
	if p.Orientation != nil {
		if o, err := heatmap.ParseOrientation(*p.Orientation); err == nil {
			cfg.Orientation = o
		}
	}
	if p.CellSize != nil {
		cfg.CellSize = *p.CellSize
	}
	if p.CellGap != nil {
		cfg.CellGap = *p.CellGap
	}
	if p.ColorScheme != nil {
		if c, err := heatmap.ParseColorScheme(*p.ColorScheme); err == nil {
			cfg.ColorScheme = c
		}
	}
	if p.FirstWeekday != nil {
		if d, err := calendar.ParseWeekday(*p.FirstWeekday); err == nil {
			cfg.FirstWeekday = d
		}
	}
	setBool(&cfg.FixedSize, p.FixedSize)
	setBool(&cfg.ShowMonthLabels, p.ShowMonthLabels)
	setBool(&cfg.ShowDayLabels, p.ShowDayLabels)
	setBool(&cfg.ShowLegend, p.ShowLegend)
	setBool(&cfg.VerticalMonthLabels, p.VerticalMonthLabels)
	return Normalize(cfg)
}

// Normalize repairs a configuration that did not come through Configure,
// e.g. one decoded from storage: sizes are clamped and invalid values are
// replaced with defaults.
func Normalize(cfg Config) Config {
	def := DefaultConfig()
	cfg.CellSize = min(max(cfg.CellSize, MinCellSize), MaxCellSize)
	cfg.CellGap = min(max(cfg.CellGap, MinCellGap), MaxCellGap)
	if _, err := heatmap.ParseOrientation(string(cfg.Orientation)); err != nil {
		cfg.Orientation = def.Orientation
	}
	if _, err := heatmap.ParseColorScheme(string(cfg.ColorScheme)); err != nil {
		cfg.ColorScheme = def.ColorScheme
	}
	if cfg.FirstWeekday < time.Sunday || cfg.FirstWeekday > time.Saturday {
		cfg.FirstWeekday = def.FirstWeekday
	}
	if cfg.StartDate != "" && !cfg.StartDate.Valid() {
		cfg.StartDate = ""
	}
	if cfg.EndDate != "" && !cfg.EndDate.Valid() {
		cfg.EndDate = ""
	}
	return cfg
}

// Range resolves the effective [start, end] at now. The location of now
// decides which calendar day "today" is.
func (c Config) Range(now time.Time) (time.Time, time.Time) {
	start, end := calendar.DefaultRange(now)
	if c.EndDate != "" {
		end = c.EndDate.Time(now.Location())
		start = end.AddDate(-1, 0, 0)
	}
	if c.StartDate != "" {
		start = c.StartDate.Time(now.Location())
	}
	return start, end
}

// CellPitch is the distance between the origins of adjacent cells.
func (c Config) CellPitch() float64 {
	return float64(c.CellSize + c.CellGap)
}

func mergeDate(prev calendar.DateKey, raw string) calendar.DateKey {
	if raw == "" {
		return ""
	}
	k, err := calendar.ParseKey(raw)
	if err != nil {
		return prev
	}
	return k
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
