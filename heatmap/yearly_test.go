package heatmap

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateSVG_NoFutureDates(t *testing.T) {
	// 2025-01-01から2025-01-15までのグリッドを生成
	// 2025-01-15は水曜日で、その週の土曜日は2025-01-18
	// endDateを超えた日付（2025-01-16, 01-17, 01-18）が含まれないことを確認
	s := NewStore()
	s.ReplaceAll([]Data{
		{Key: "2025-01-05", Value: 1},
		{Key: "2025-01-10", Value: 2},
		{Key: "2025-01-15", Value: 3},
	})
	g := BuildGrid(day(2025, 1, 1), day(2025, 1, 15), time.Sunday, s)

	opts := DefaultOptions()
	opts.Max = s.Max()
	svg := GenerateSVG(g, opts)

	if !strings.Contains(svg, "<svg") {
		t.Error("Expected SVG to be generated")
	}
	if !strings.Contains(svg, `data-date="2025-01-15"`) {
		t.Error("Expected endDate (2025-01-15) to be included")
	}
	for _, future := range []string{"2025-01-16", "2025-01-17", "2025-01-18"} {
		if strings.Contains(svg, `data-date="`+future+`"`) {
			t.Errorf("Future date %s should not be included", future)
		}
	}
	// 開始日より前のパディング（2024-12-29〜31）も描画しない
	if strings.Contains(svg, `data-date="2024-12-31"`) {
		t.Error("Padding before startDate should not be included")
	}
}

func TestGenerateSVG_EndDateOnSunday(t *testing.T) {
	// 2025-01-05は日曜日
	g := BuildGrid(day(2025, 1, 1), day(2025, 1, 5), time.Sunday, NewStore())
	svg := GenerateSVG(g, nil)

	if !strings.Contains(svg, `data-date="2025-01-05"`) {
		t.Error("Expected endDate (2025-01-05) to be included")
	}
	if strings.Contains(svg, `data-date="2025-01-06"`) {
		t.Error("Future date 2025-01-06 should not be included")
	}
}

func TestGenerateSVG_EmptyGrid(t *testing.T) {
	g := BuildGrid(day(2025, 2, 1), day(2025, 1, 1), time.Sunday, NewStore())
	if svg := GenerateSVG(g, nil); svg != "" {
		t.Errorf("Expected empty string for empty grid, got: %s", svg)
	}
}

func TestGenerateSVG_LevelsAndTooltip(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]Data{{Key: "2024-01-01", Value: 5}, {Key: "2024-01-02", Value: 10}, {Key: "2024-01-03", Value: 1}})
	g := BuildGrid(day(2024, 1, 1), day(2024, 1, 3), time.Sunday, s)

	opts := DefaultOptions()
	opts.Max = s.Max()
	opts.Palette = Orange.Palette()
	svg := GenerateSVG(g, opts)

	if !strings.Contains(svg, `fill="#ff9800" data-date="2024-01-01" data-value="5" data-level="2"`) {
		t.Errorf("Expected level 2 cell for 2024-01-01 in:\n%s", svg)
	}
	if !strings.Contains(svg, `fill="#e65100" data-date="2024-01-02" data-value="10" data-level="4"`) {
		t.Error("Expected level 4 cell for 2024-01-02")
	}
	if !strings.Contains(svg, "<title>Mon, Jan 1, 2024: 5 contributions</title>") {
		t.Error("Expected tooltip for 2024-01-01")
	}
	if !strings.Contains(svg, "<title>Wed, Jan 3, 2024: 1 contribution</title>") {
		t.Error("Expected singular tooltip for 2024-01-03")
	}
}

func TestGenerateSVG_Labels(t *testing.T) {
	g := BuildGrid(day(2024, 1, 1), day(2024, 3, 31), time.Sunday, NewStore())

	opts := DefaultOptions()
	opts.Title = "reading <log>"
	opts.MonthLabels = PlanMonthLabels(g, Horizontal, float64(opts.CellSize+opts.CellGap))
	opts.DayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	svg := GenerateSVG(g, opts)

	for _, m := range []string{">Jan<", ">Feb<", ">Mar<", ">Wed<", ">Less<", ">More<"} {
		if !strings.Contains(svg, m) {
			t.Errorf("Expected %s in SVG", m)
		}
	}
	if !strings.Contains(svg, "reading &lt;log&gt;") {
		t.Error("Expected escaped title")
	}
}

func TestGenerateSVG_Vertical(t *testing.T) {
	g := BuildGrid(day(2024, 1, 1), day(2024, 1, 31), time.Sunday, NewStore())

	opts := DefaultOptions()
	opts.Orientation = Vertical
	opts.ShowLegend = false
	opts.MonthLabels = PlanMonthLabels(g, Vertical, float64(opts.CellSize+opts.CellGap))
	opts.VerticalMonthLabels = true
	svg := GenerateSVG(g, opts)

	// 縦向きでは週が行になる: 5週 x 15px + 3px
	if !strings.Contains(svg, `height="78"`) {
		t.Errorf("Expected height 78 for 5 weekly rows, got %s", svg[:strings.Index(svg, "\n")])
	}
	if !strings.Contains(svg, "rotate(90") {
		t.Error("Expected rotated month labels")
	}
	if strings.Contains(svg, ">Less<") {
		t.Error("Expected legend to be hidden")
	}
}
