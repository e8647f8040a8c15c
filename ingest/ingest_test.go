package ingest

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stsysd/weekwide/heatmap"
)

func TestParseJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        []heatmap.Data
		wantSkipped []string
	}{
		{
			name:  "date mapping",
			input: `{"2024-01-02": 3, "2024-01-01": 5}`,
			want:  []heatmap.Data{{Key: "2024-01-01", Value: 5}, {Key: "2024-01-02", Value: 3}},
		},
		{
			name:  "record list keeps document order",
			input: `[{"date": "2024-01-02", "value": 1.5}, {"date": "2024-01-01", "value": 2}]`,
			want:  []heatmap.Data{{Key: "2024-01-02", Value: 1.5}, {Key: "2024-01-01", Value: 2}},
		},
		{
			name:  "numeric strings and timestamps are coerced",
			input: `[{"date": "2024-03-01T23:00:00Z", "value": " 7 "}]`,
			want:  []heatmap.Data{{Key: "2024-03-01", Value: 7}},
		},
		{
			name:        "bad entries are skipped",
			input:       `{"2024-01-01": 5, "2024-01-02": "many", "not-a-date": 1, "2024-01-03": null, "2024-01-04": [1]}`,
			want:        []heatmap.Data{{Key: "2024-01-01", Value: 5}},
			wantSkipped: []string{"2024-01-02", "2024-01-03", "2024-01-04", "not-a-date"},
		},
		{
			name:        "non-record list items are skipped",
			input:       `[1, {"date": "2024-01-01", "value": 1}, {"value": 2}]`,
			want:        []heatmap.Data{{Key: "2024-01-01", Value: 1}},
			wantSkipped: []string{"#0", "#2"},
		},
		{
			name:  "null document",
			input: `null`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rep, err := ParseJSON(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ParseJSON failed: %v", err)
			}
			assertPoints(t, got, tt.want)
			assertReport(t, rep, len(tt.want), tt.wantSkipped)
		})
	}
}

func TestParseJSON_Errors(t *testing.T) {
	if _, _, err := ParseJSON(strings.NewReader(`{"2024-01-01": `)); err == nil {
		t.Error("Expected error for truncated JSON")
	}
	if _, _, err := ParseJSON(strings.NewReader(`42`)); !errors.Is(err, ErrUnsupportedShape) {
		t.Errorf("Expected ErrUnsupportedShape, got %v", err)
	}
}

func TestParseYAML(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        []heatmap.Data
		wantSkipped []string
	}{
		{
			name:  "date mapping",
			input: "2024-01-01: 5\n2024-01-02: 2.5\n",
			want:  []heatmap.Data{{Key: "2024-01-01", Value: 5}, {Key: "2024-01-02", Value: 2.5}},
		},
		{
			name:  "quoted, unquoted and timestamp keys",
			input: "\"2024-01-01\": 1\n2024-01-02: 2\n2024-01-03T10:00:00Z: 3\n",
			want:  []heatmap.Data{{Key: "2024-01-01", Value: 1}, {Key: "2024-01-02", Value: 2}, {Key: "2024-01-03", Value: 3}},
		},
		{
			name:  "record sequence",
			input: "- date: 2024-01-05\n  value: 4\n- date: \"2024-01-06\"\n  value: \"1\"\n",
			want:  []heatmap.Data{{Key: "2024-01-05", Value: 4}, {Key: "2024-01-06", Value: 1}},
		},
		{
			name:        "bad entries are skipped",
			input:       "2024-01-01: 1\n2024-01-02: lots\n",
			want:        []heatmap.Data{{Key: "2024-01-01", Value: 1}},
			wantSkipped: []string{"2024-01-02"},
		},
		{
			name:  "empty document",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rep, err := ParseYAML(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ParseYAML failed: %v", err)
			}
			assertPoints(t, got, tt.want)
			assertReport(t, rep, len(tt.want), tt.wantSkipped)
		})
	}

	if _, _, err := ParseYAML(strings.NewReader("a: [1, 2\n")); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

const sampleICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//weekwide//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:a@example.com\r\n" +
	"DTSTART:20240101T100000Z\r\n" +
	"SUMMARY:standup\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:b@example.com\r\n" +
	"DTSTART:20240101T230000Z\r\n" +
	"SUMMARY:late review\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:c@example.com\r\n" +
	"DTSTART;VALUE=DATE:20240103\r\n" +
	"SUMMARY:offsite\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:d@example.com\r\n" +
	"SUMMARY:no start\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestParseICS(t *testing.T) {
	got, rep, err := ParseICS(strings.NewReader(sampleICS), time.UTC)
	if err != nil {
		t.Fatalf("ParseICS failed: %v", err)
	}
	assertPoints(t, got, []heatmap.Data{
		{Key: "2024-01-01", Value: 2},
		{Key: "2024-01-03", Value: 1},
	})
	assertReport(t, rep, 3, []string{"d@example.com"})
}

func TestParseICS_Location(t *testing.T) {
	// 23:00Zは東京では翌日
	tokyo := time.FixedZone("JST", 9*60*60)
	got, _, err := ParseICS(strings.NewReader(sampleICS), tokyo)
	if err != nil {
		t.Fatalf("ParseICS failed: %v", err)
	}
	assertPoints(t, got, []heatmap.Data{
		{Key: "2024-01-01", Value: 1},
		{Key: "2024-01-02", Value: 1},
		{Key: "2024-01-03", Value: 1},
	})
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"data.json", JSON, false},
		{"DATA.YML", YAML, false},
		{"log.yaml", YAML, false},
		{"work.ics", ICS, false},
		{"data.csv", "", true},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("FormatOf(%q) = %q, %v", tt.name, got, err)
		}
	}
}

func TestFormatOfContentType(t *testing.T) {
	tests := []struct {
		ct      string
		want    Format
		wantErr bool
	}{
		{"", JSON, false},
		{"application/json; charset=utf-8", JSON, false},
		{"application/yaml", YAML, false},
		{"text/calendar", ICS, false},
		{"text/csv", "", true},
	}
	for _, tt := range tests {
		got, err := FormatOfContentType(tt.ct)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("FormatOfContentType(%q) = %q, %v", tt.ct, got, err)
		}
	}
}

func assertPoints(t *testing.T, got, want []heatmap.Data) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d points %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func assertReport(t *testing.T, rep *Report, accepted int, skipped []string) {
	t.Helper()
	if rep.Accepted != accepted {
		t.Errorf("Accepted = %d, want %d", rep.Accepted, accepted)
	}
	if len(rep.Skipped) != len(skipped) {
		t.Fatalf("Skipped = %+v, want entries %v", rep.Skipped, skipped)
	}
	for i, s := range rep.Skipped {
		if s.Entry != skipped[i] {
			t.Errorf("Skipped[%d].Entry = %q, want %q", i, s.Entry, skipped[i])
		}
		if s.Reason == "" {
			t.Errorf("Skipped[%d] has no reason", i)
		}
	}
}
