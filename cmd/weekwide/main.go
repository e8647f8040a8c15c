// Command weekwide renders a contribution graph from a data file.
//
//	weekwide -data commits.json > graph.svg
//	weekwide -data runs.yaml -format term -week-start monday
//	weekwide -data calendar.ics -format tui
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stsysd/weekwide/config"
	"github.com/stsysd/weekwide/ingest"
	"github.com/stsysd/weekwide/model"
	"github.com/stsysd/weekwide/term"
	"github.com/stsysd/weekwide/timeline"
	"github.com/stsysd/weekwide/tui"
)

type options struct {
	data        string
	configPath  string
	from        string
	to          string
	orientation string
	scheme      string
	weekStart   string
	format      string
	title       string
	output      string
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("weekwide: ")

	var o options
	flag.StringVar(&o.data, "data", "", "data file (.json, .yaml, .yml, .ics); stdin JSON when empty")
	flag.StringVar(&o.configPath, "config", os.Getenv("WEEKWIDE_CONFIG"), "YAML file with default display settings")
	flag.StringVar(&o.from, "from", "", "first day (YYYY-MM-DD)")
	flag.StringVar(&o.to, "to", "", "last day (YYYY-MM-DD)")
	flag.StringVar(&o.orientation, "orientation", "", "horizontal or vertical")
	flag.StringVar(&o.scheme, "scheme", "", "color scheme")
	flag.StringVar(&o.weekStart, "week-start", "", "first day of the week (name or 0-6)")
	flag.StringVar(&o.format, "format", "svg", "output format: svg, term or tui")
	flag.StringVar(&o.title, "title", "", "graph title")
	flag.StringVar(&o.output, "o", "", "write output to file instead of stdout")
	flag.Parse()

	if err := run(o); err != nil {
		log.Fatal(err)
	}
}

func run(o options) error {
	cfg := timeline.DefaultConfig()
	if o.configPath != "" {
		c, err := config.LoadDefaults(o.configPath)
		if err != nil {
			return err
		}
		cfg = c
	}

	// Command-line overrides are strict, unlike the settings file.
	var patch timeline.Patch
	dateRange, err := model.NewDateRange(o.from, o.to)
	if err != nil {
		return err
	}
	dateRange.Apply(&patch)
	overrides, err := model.NewDisplayOverrides(o.orientation, o.scheme, o.weekStart)
	if err != nil {
		return err
	}
	overrides.Apply(&patch)

	tl := timeline.New(timeline.Configure(cfg, patch))
	if err := load(tl, o.data); err != nil {
		return err
	}

	switch o.format {
	case "svg":
		return writeOutput(o.output, tl.View().SVG(o.title))
	case "term":
		re := lipgloss.NewRenderer(os.Stdout)
		return writeOutput(o.output, term.Render(re, tl.View(), "")+"\n")
	case "tui":
		return interactive(tl, o.title)
	}
	return fmt.Errorf("unknown format %q", o.format)
}

func load(tl *timeline.Timeline, path string) error {
	var (
		r      io.Reader = os.Stdin
		format           = ingest.JSON
	)
	if path != "" {
		f, err := ingest.FormatOf(path)
		if err != nil {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		r, format = file, f
	}

	points, report, err := ingest.Parse(r, format, time.Local)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, s := range report.Skipped {
		log.Printf("skipped %s: %s", s.Entry, s.Reason)
	}
	tl.SetData(points)
	return nil
}

// interactive runs the selector and prints one JSON line per selected day
// after the program exits.
func interactive(tl *timeline.Timeline, title string) error {
	var selected []timeline.SelectionEvent
	cancel := tl.OnDaySelected(func(ev timeline.SelectionEvent) {
		selected = append(selected, ev)
	})
	defer cancel()

	if _, err := tea.NewProgram(tui.New(tl, title)).Run(); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	for _, ev := range selected {
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
	return nil
}

func writeOutput(path, s string) error {
	if path == "" {
		_, err := io.WriteString(os.Stdout, s)
		return err
	}
	return os.WriteFile(path, []byte(s), 0644)
}
