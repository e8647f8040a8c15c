package heatmap

import (
	"fmt"
	"strings"
	"time"
)

// Orientation selects which axis the weeks run along.
type Orientation string

const (
	// Horizontal lays weeks out as columns, weekdays as rows.
	Horizontal Orientation = "horizontal"
	// Vertical lays weeks out as rows, weekdays as columns.
	Vertical Orientation = "vertical"
)

// ParseOrientation accepts "horizontal" or "vertical", case-insensitively.
func ParseOrientation(s string) (Orientation, error) {
	switch o := Orientation(strings.ToLower(strings.TrimSpace(s))); o {
	case Horizontal, Vertical:
		return o, nil
	}
	return "", fmt.Errorf("heatmap: unknown orientation %q", s)
}

// MonthLabel is a month name placed along the week axis.
type MonthLabel struct {
	Month    string     `json:"month"`
	Year     int        `json:"year"`
	MonthNum time.Month `json:"month_num"`
	// Position is the offset of the label center along the week axis, in
	// the same unit as the cell pitch.
	Position float64 `json:"position"`
}

type monthSpan struct {
	year      int
	month     time.Month
	startWeek int
	endWeek   int
}

// PlanMonthLabels returns one label per (year, month) found in g, in grid
// order. A week belongs to the month of its first non-nil cell. Each label is
// centered over the span of its weeks; horizontal grids add a forward shift
// of two pitches so labels sit nearer the month start.
func PlanMonthLabels(g *Grid, o Orientation, pitch float64) []MonthLabel {
	var spans []*monthSpan
	index := make(map[[2]int]*monthSpan)

	for wi, w := range g.Weeks {
		c := w.firstCell()
		if c == nil {
			continue
		}
		y, m, _ := c.Date.Date()
		id := [2]int{y, int(m)}
		if sp, ok := index[id]; ok {
			sp.endWeek = wi
			continue
		}
		sp := &monthSpan{year: y, month: m, startWeek: wi, endWeek: wi}
		index[id] = sp
		spans = append(spans, sp)
	}

	shift := 0.0
	if o != Vertical {
		shift = 2 * pitch
	}

	labels := make([]MonthLabel, 0, len(spans))
	for _, sp := range spans {
		center := float64(sp.startWeek+sp.endWeek) / 2
		labels = append(labels, MonthLabel{
			Month:    sp.month.String()[:3],
			Year:     sp.year,
			MonthNum: sp.month,
			Position: center*pitch + pitch/2 + shift,
		})
	}
	return labels
}
