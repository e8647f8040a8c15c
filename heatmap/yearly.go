package heatmap

import (
	"fmt"
	"html"
	"strings"
)

const (
	dayLabelWidth   = 30
	monthLabelWidth = 40
	legendCellSize  = 10
)

// Options configures SVG rendering.
type Options struct {
	CellSize    int         // size of each day cell (px)
	CellGap     int         // gap between cells (px)
	Orientation Orientation // axis the weeks run along
	Palette     Palette     // colors of levels 1..4
	Max         float64     // value that maps to the darkest level
	FontSize    int         // font size for labels (px)
	FontFamily  string      // font family for labels
	Title       string      // optional title above the grid

	MonthLabels         []MonthLabel // nil hides month labels
	DayLabels           []string     // one entry per weekday slot; nil hides day labels
	VerticalMonthLabels bool         // rotate month labels on vertical grids
	ShowLegend          bool         // draw the Less/More legend
}

// DefaultOptions returns the rendering defaults.
func DefaultOptions() *Options {
	return &Options{
		CellSize:    12,
		CellGap:     3,
		Orientation: Horizontal,
		Palette:     Green.Palette(),
		FontSize:    10,
		FontFamily:  "sans-serif",
		ShowLegend:  true,
	}
}

// GenerateSVG renders g as an SVG document. Nil slots are left blank so no
// day outside the configured range is drawn. An empty grid renders as "".
func GenerateSVG(g *Grid, opts *Options) string {
	if opts == nil {
		opts = DefaultOptions()
	}
	if g == nil || g.Empty() {
		return ""
	}

	pitch := opts.CellSize + opts.CellGap
	horizontal := opts.Orientation != Vertical
	weeks := len(g.Weeks)

	titleHeight := 0
	if opts.Title != "" {
		titleHeight = opts.FontSize + 8
	}
	labelBand := opts.FontSize + 4

	// grid origin and canvas size
	var originX, originY, width, height int
	if horizontal {
		if len(opts.DayLabels) > 0 {
			originX = dayLabelWidth
		}
		originY = titleHeight
		if len(opts.MonthLabels) > 0 {
			originY += labelBand
		}
		width = originX + weeks*pitch + opts.CellGap
		height = originY + DaysPerWeek*pitch + opts.CellGap
	} else {
		originY = titleHeight
		if len(opts.DayLabels) > 0 {
			originY += labelBand
		}
		width = DaysPerWeek*pitch + opts.CellGap
		if len(opts.MonthLabels) > 0 {
			width += monthLabelWidth
		}
		height = originY + weeks*pitch + opts.CellGap
	}
	legendTop := height
	if opts.ShowLegend {
		height += legendCellSize + opts.FontSize
		width = max(width, 5*(legendCellSize+4)+80)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`+"\n", width, height)
	fmt.Fprintf(&sb, `  <style>.label{font-family:%s;font-size:%dpx;fill:#586069}.title{font-family:%s;font-size:%dpx;fill:#333;font-weight:bold}</style>`+"\n",
		opts.FontFamily, opts.FontSize, opts.FontFamily, opts.FontSize)

	if opts.Title != "" {
		fmt.Fprintf(&sb, `  <text x="%d" y="%d" class="title">%s</text>`+"\n",
			opts.CellGap, opts.FontSize, html.EscapeString(opts.Title))
	}

	// month labels
	for _, l := range opts.MonthLabels {
		if horizontal {
			fmt.Fprintf(&sb, `  <text x="%s" y="%d" class="label" text-anchor="middle">%s</text>`+"\n",
				px(float64(originX)+l.Position), originY-4, l.Month)
			continue
		}
		x := float64(DaysPerWeek*pitch + opts.CellGap + 4 + opts.FontSize/2)
		y := float64(originY) + l.Position
		if opts.VerticalMonthLabels {
			fmt.Fprintf(&sb, `  <text x="%s" y="%s" class="label" text-anchor="middle" transform="rotate(90 %s %s)">%s</text>`+"\n",
				px(x), px(y), px(x), px(y), l.Month)
		} else {
			fmt.Fprintf(&sb, `  <text x="%s" y="%s" class="label" dominant-baseline="middle">%s</text>`+"\n",
				px(x-float64(opts.FontSize/2)), px(y), l.Month)
		}
	}

	// day labels
	for i, name := range opts.DayLabels {
		if name == "" || i >= DaysPerWeek {
			continue
		}
		offset := opts.CellGap + i*pitch + opts.CellSize/2
		if horizontal {
			fmt.Fprintf(&sb, `  <text x="%d" y="%d" class="label" text-anchor="end" dominant-baseline="middle">%s</text>`+"\n",
				originX-4, originY+offset, name)
		} else {
			fmt.Fprintf(&sb, `  <text x="%d" y="%d" class="label" text-anchor="middle">%s</text>`+"\n",
				offset, originY-4, name)
		}
	}

	// cells
	for wi, week := range g.Weeks {
		for di, c := range week {
			if c == nil {
				continue
			}
			var x, y int
			if horizontal {
				x = originX + opts.CellGap + wi*pitch
				y = originY + opts.CellGap + di*pitch
			} else {
				x = opts.CellGap + di*pitch
				y = originY + opts.CellGap + wi*pitch
			}
			level := Level(c.Value, opts.Max)
			fmt.Fprintf(&sb, `  <rect x="%d" y="%d" width="%d" height="%d" rx="2" fill="%s" data-date="%s" data-value="%s" data-level="%d">`+"\n",
				x, y, opts.CellSize, opts.CellSize, opts.Palette.Color(level), c.Key, FormatValue(c.Value), level)
			fmt.Fprintf(&sb, `    <title>%s</title>`+"\n", html.EscapeString(Tooltip(c)))
			sb.WriteString(`  </rect>` + "\n")
		}
	}

	if opts.ShowLegend {
		y := legendTop + 2
		fmt.Fprintf(&sb, `  <text x="%d" y="%d" class="label" dominant-baseline="hanging">Less</text>`+"\n", opts.CellGap, y)
		x := opts.CellGap + 30
		for level := 0; level <= MaxLevel; level++ {
			fmt.Fprintf(&sb, `  <rect x="%d" y="%d" width="%d" height="%d" rx="2" fill="%s" class="legend"/>`+"\n",
				x, y, legendCellSize, legendCellSize, opts.Palette.Color(level))
			x += legendCellSize + 4
		}
		fmt.Fprintf(&sb, `  <text x="%d" y="%d" class="label" dominant-baseline="hanging">More</text>`+"\n", x+2, y)
	}

	sb.WriteString(`</svg>`)
	return sb.String()
}

func px(v float64) string {
	return FormatValue(v)
}
