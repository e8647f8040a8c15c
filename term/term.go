// Package term draws a timeline view with colored blocks for terminals.
package term

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stsysd/weekwide/calendar"
	"github.com/stsysd/weekwide/heatmap"
	"github.com/stsysd/weekwide/timeline"
)

const (
	// Block is drawn for every day in range.
	Block = "■"
	// CursorBlock marks the cursor day.
	CursorBlock = "▣"

	cellWidth   = 2
	labelColumn = 4
)

// Render draws v. When cursor names a day of the grid, that day is drawn
// with CursorBlock. A nil renderer means lipgloss' default one.
func Render(re *lipgloss.Renderer, v *timeline.View, cursor calendar.DateKey) string {
	if re == nil {
		re = lipgloss.DefaultRenderer()
	}
	if v.Grid.Empty() {
		return ""
	}
	p := painter{re: re, v: v, cursor: cursor}

	var body string
	if v.Config.Orientation == heatmap.Vertical {
		body = p.vertical()
	} else {
		body = p.horizontal()
	}
	if v.Config.ShowLegend {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", p.legend())
	}
	return body
}

type painter struct {
	re     *lipgloss.Renderer
	v      *timeline.View
	cursor calendar.DateKey
}

func (p painter) cell(c *heatmap.Cell) string {
	if c == nil {
		return strings.Repeat(" ", cellWidth)
	}
	glyph := Block
	if c.Key == p.cursor {
		glyph = CursorBlock
	}
	return p.re.NewStyle().Foreground(lipgloss.Color(p.v.Color(c))).Render(glyph) + " "
}

func (p painter) dim(s string) string {
	return p.re.NewStyle().Foreground(lipgloss.Color("#586069")).Render(s)
}

// labelWeeks maps the week index at the center of each month to its name.
func (p painter) labelWeeks() map[int]string {
	out := make(map[int]string)
	if !p.v.Config.ShowMonthLabels {
		return out
	}
	// vertical at pitch 1: Position is the center week + 0.5
	for _, l := range heatmap.PlanMonthLabels(p.v.Grid, heatmap.Vertical, 1) {
		out[int(l.Position)] = l.Month
	}
	return out
}

func (p painter) horizontal() string {
	var lines []string
	indent := 0
	if p.v.Config.ShowDayLabels {
		indent = labelColumn
	}

	if labels := p.labelWeeks(); len(labels) > 0 {
		header := []rune(strings.Repeat(" ", indent+len(p.v.Grid.Weeks)*cellWidth+labelColumn))
		end := 0
		for wi := range p.v.Grid.Weeks {
			name, ok := labels[wi]
			col := indent + wi*cellWidth
			if !ok || col < end {
				continue
			}
			copy(header[col:], []rune(name))
			end = col + len(name) + 1
		}
		lines = append(lines, p.dim(strings.TrimRight(string(header), " ")))
	}

	days := p.v.DayLabels()
	for slot := range heatmap.DaysPerWeek {
		var sb strings.Builder
		if indent > 0 {
			sb.WriteString(p.dim(padRight(days[slot], indent)))
		}
		for _, w := range p.v.Grid.Weeks {
			sb.WriteString(p.cell(w[slot]))
		}
		lines = append(lines, strings.TrimRight(sb.String(), " "))
	}
	return strings.Join(lines, "\n")
}

func (p painter) vertical() string {
	var lines []string
	if p.v.Config.ShowDayLabels {
		var sb strings.Builder
		for _, d := range p.v.DayLabels() {
			sb.WriteString(padRight(d, cellWidth))
		}
		lines = append(lines, p.dim(strings.TrimRight(sb.String(), " ")))
	}

	labels := p.labelWeeks()
	for wi, w := range p.v.Grid.Weeks {
		var sb strings.Builder
		for _, c := range w {
			sb.WriteString(p.cell(c))
		}
		if name, ok := labels[wi]; ok {
			sb.WriteString(" " + p.dim(name))
		}
		lines = append(lines, strings.TrimRight(sb.String(), " "))
	}
	return strings.Join(lines, "\n")
}

func (p painter) legend() string {
	var sb strings.Builder
	sb.WriteString(p.dim("Less "))
	for level := 0; level <= heatmap.MaxLevel; level++ {
		sb.WriteString(p.re.NewStyle().Foreground(lipgloss.Color(p.v.Palette.Color(level))).Render(Block))
		sb.WriteString(" ")
	}
	sb.WriteString(p.dim("More"))
	return sb.String()
}

func padRight(s string, n int) string {
	if w := lipgloss.Width(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}
