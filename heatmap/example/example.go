// Package main demonstrates the use of the heatmap package to generate SVG heatmaps.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/stsysd/weekwide/calendar"
	"github.com/stsysd/weekwide/heatmap"
)

func main() {
	vertical := flag.Bool("vertical", false, "lay weeks out as rows")
	scheme := flag.String("scheme", "green", "color scheme")
	flag.Parse()

	// Generate sample data for one year
	end := time.Now()
	start := end.AddDate(-1, 0, 0)
	store := heatmap.NewStore()
	store.ReplaceAll(generateYearData(start, end))

	orientation := heatmap.Horizontal
	if *vertical {
		orientation = heatmap.Vertical
	}
	palette, err := heatmap.ParseColorScheme(*scheme)
	if err != nil {
		palette = heatmap.Green
	}

	grid := heatmap.BuildGrid(start, end, time.Sunday, store)

	opts := heatmap.DefaultOptions()
	opts.Orientation = orientation
	opts.Palette = palette.Palette()
	opts.Max = store.Max()
	opts.Title = "Sample activity"
	opts.MonthLabels = heatmap.PlanMonthLabels(grid, orientation, float64(opts.CellSize+opts.CellGap))
	opts.DayLabels = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

	// Output to stdout
	fmt.Println(heatmap.GenerateSVG(grid, opts))
}

// generateYearData creates random activity data between start and end
func generateYearData(start, end time.Time) []heatmap.Data {
	var data []heatmap.Data

	for day := start; !day.After(end); day = calendar.AddDays(day, 1) {
		// Higher probability of activity on weekends
		var count int
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			count = rand.Intn(10)
		} else {
			count = rand.Intn(6)
		}

		// Add occasional spikes of activity
		if rand.Intn(20) == 0 {
			count += rand.Intn(20)
		}

		if count != 0 {
			data = append(data, heatmap.Data{Key: calendar.KeyOf(day), Value: float64(count)})
		}
	}

	return data
}
