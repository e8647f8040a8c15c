package timeline

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stsysd/weekwide/calendar"
	"github.com/stsysd/weekwide/heatmap"
)

func ptr[T any](v T) *T {
	return &v
}

func TestConfigure(t *testing.T) {
	base := DefaultConfig()
	base.StartDate = "2024-01-01"

	tests := []struct {
		name  string
		patch Patch
		check func(t *testing.T, c Config)
	}{
		{
			name:  "empty patch keeps everything",
			patch: Patch{},
			check: func(t *testing.T, c Config) {
				if c != base {
					t.Errorf("Configure(empty) = %+v, want %+v", c, base)
				}
			},
		},
		{
			name:  "cell size above max is clamped",
			patch: Patch{CellSize: ptr(100)},
			check: func(t *testing.T, c Config) {
				if c.CellSize != MaxCellSize {
					t.Errorf("CellSize = %d, want %d", c.CellSize, MaxCellSize)
				}
			},
		},
		{
			name:  "cell size below min is clamped",
			patch: Patch{CellSize: ptr(2)},
			check: func(t *testing.T, c Config) {
				if c.CellSize != MinCellSize {
					t.Errorf("CellSize = %d, want %d", c.CellSize, MinCellSize)
				}
			},
		},
		{
			name:  "cell gap is clamped both ways",
			patch: Patch{CellGap: ptr(0)},
			check: func(t *testing.T, c Config) {
				if c.CellGap != MinCellGap {
					t.Errorf("CellGap = %d, want %d", c.CellGap, MinCellGap)
				}
				c = Configure(c, Patch{CellGap: ptr(50)})
				if c.CellGap != MaxCellGap {
					t.Errorf("CellGap = %d, want %d", c.CellGap, MaxCellGap)
				}
			},
		},
		{
			name:  "unknown orientation is ignored",
			patch: Patch{Orientation: ptr("diagonal")},
			check: func(t *testing.T, c Config) {
				if c.Orientation != heatmap.Horizontal {
					t.Errorf("Orientation = %s, want horizontal", c.Orientation)
				}
			},
		},
		{
			name:  "orientation is case insensitive",
			patch: Patch{Orientation: ptr("Vertical")},
			check: func(t *testing.T, c Config) {
				if c.Orientation != heatmap.Vertical {
					t.Errorf("Orientation = %s, want vertical", c.Orientation)
				}
			},
		},
		{
			name:  "unknown color scheme is ignored",
			patch: Patch{ColorScheme: ptr("pink")},
			check: func(t *testing.T, c Config) {
				if c.ColorScheme != heatmap.Green {
					t.Errorf("ColorScheme = %s, want green", c.ColorScheme)
				}
			},
		},
		{
			name:  "known color scheme is applied",
			patch: Patch{ColorScheme: ptr("purple")},
			check: func(t *testing.T, c Config) {
				if c.ColorScheme != heatmap.Purple {
					t.Errorf("ColorScheme = %s, want purple", c.ColorScheme)
				}
			},
		},
		{
			name:  "unparsable start date keeps the previous value",
			patch: Patch{StartDate: ptr("2024-13-45")},
			check: func(t *testing.T, c Config) {
				if c.StartDate != "2024-01-01" {
					t.Errorf("StartDate = %q, want 2024-01-01", c.StartDate)
				}
			},
		},
		{
			name:  "empty start date clears the bound",
			patch: Patch{StartDate: ptr("")},
			check: func(t *testing.T, c Config) {
				if c.StartDate != "" {
					t.Errorf("StartDate = %q, want unset", c.StartDate)
				}
			},
		},
		{
			name:  "timestamp end date is reduced to its day",
			patch: Patch{EndDate: ptr("2024-03-01T12:30:00Z")},
			check: func(t *testing.T, c Config) {
				if c.EndDate != "2024-03-01" {
					t.Errorf("EndDate = %q, want 2024-03-01", c.EndDate)
				}
			},
		},
		{
			name:  "week start by name",
			patch: Patch{FirstWeekday: ptr("monday")},
			check: func(t *testing.T, c Config) {
				if c.FirstWeekday != time.Monday {
					t.Errorf("FirstWeekday = %v, want Monday", c.FirstWeekday)
				}
			},
		},
		{
			name:  "flags are toggled",
			patch: Patch{ShowLegend: ptr(false), FixedSize: ptr(true)},
			check: func(t *testing.T, c Config) {
				if c.ShowLegend || !c.FixedSize {
					t.Errorf("ShowLegend=%v FixedSize=%v, want false/true", c.ShowLegend, c.FixedSize)
				}
				if !c.ShowMonthLabels {
					t.Error("ShowMonthLabels should be untouched")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Configure(base, tt.patch))
		})
	}
}

func TestPatchUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *string
		wantErr bool
	}{
		{name: "weekday name", input: `{"week_start":"mon"}`, want: ptr("mon")},
		{name: "weekday number", input: `{"week_start":3}`, want: ptr("3")},
		{name: "null", input: `{"week_start":null}`},
		{name: "absent", input: `{"cell_size":10}`},
		{name: "boolean is rejected", input: `{"week_start":true}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Patch
			err := json.Unmarshal([]byte(tt.input), &p)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			switch {
			case tt.want == nil && p.FirstWeekday != nil:
				t.Errorf("FirstWeekday = %q, want nil", *p.FirstWeekday)
			case tt.want != nil && (p.FirstWeekday == nil || *p.FirstWeekday != *tt.want):
				t.Errorf("FirstWeekday = %v, want %q", p.FirstWeekday, *tt.want)
			}
		})
	}

	// Other fields still decode normally.
	var p Patch
	if err := json.Unmarshal([]byte(`{"cell_size":10,"color_scheme":"blue","week_start":1}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.CellSize == nil || *p.CellSize != 10 || p.ColorScheme == nil || *p.ColorScheme != "blue" {
		t.Errorf("Patch = %+v", p)
	}
}

func TestConfigRoundTripsAsPatch(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FirstWeekday = time.Friday
	cfg.ColorScheme = heatmap.Purple
	cfg.Orientation = heatmap.Vertical
	cfg.StartDate = "2024-01-01"
	cfg.ShowLegend = false

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var p Patch
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("stored config should decode as a patch: %v", err)
	}
	if got := Configure(DefaultConfig(), p); got != cfg {
		t.Errorf("Configure(patch of %+v) = %+v", cfg, got)
	}
}

func TestNormalize(t *testing.T) {
	c := Normalize(Config{
		StartDate:    "yesterday",
		EndDate:      "2024-02-30",
		Orientation:  "sideways",
		ColorScheme:  "rainbow",
		FirstWeekday: time.Weekday(9),
	})

	if c.StartDate != "" || c.EndDate != "" {
		t.Errorf("invalid dates should be cleared, got %q %q", c.StartDate, c.EndDate)
	}
	if c.Orientation != heatmap.Horizontal {
		t.Errorf("Orientation = %s, want horizontal", c.Orientation)
	}
	if c.ColorScheme != heatmap.Green {
		t.Errorf("ColorScheme = %s, want green", c.ColorScheme)
	}
	if c.FirstWeekday != time.Sunday {
		t.Errorf("FirstWeekday = %v, want Sunday", c.FirstWeekday)
	}
	if c.CellSize != MinCellSize || c.CellGap != MinCellGap {
		t.Errorf("CellSize/CellGap = %d/%d, want clamped minimums", c.CellSize, c.CellGap)
	}
}

func TestConfigRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		start     calendar.DateKey
		end       calendar.DateKey
		wantStart calendar.DateKey
		wantEnd   calendar.DateKey
	}{
		{"both unset", "", "", "2023-06-15", "2024-06-15"},
		{"only end", "", "2024-03-01", "2023-03-01", "2024-03-01"},
		{"only start", "2024-01-01", "", "2024-01-01", "2024-06-15"},
		{"both set", "2024-01-01", "2024-01-07", "2024-01-01", "2024-01-07"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			c.StartDate = tt.start
			c.EndDate = tt.end
			s, e := c.Range(now)
			if calendar.KeyOf(s) != tt.wantStart || calendar.KeyOf(e) != tt.wantEnd {
				t.Errorf("Range = %s..%s, want %s..%s", calendar.KeyOf(s), calendar.KeyOf(e), tt.wantStart, tt.wantEnd)
			}
		})
	}
}
