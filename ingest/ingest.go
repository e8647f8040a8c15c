// Package ingest converts external documents into day values.
//
// Every adapter is tolerant of bad entries: an entry whose date or value
// cannot be coerced is skipped and listed in the Report. Only a document that
// cannot be decoded at all is an error.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/stsysd/weekwide/calendar"
	"github.com/stsysd/weekwide/heatmap"
)

// ErrUnsupportedShape is returned for documents that are neither a date
// mapping nor a list of date/value records.
var ErrUnsupportedShape = errors.New("ingest: expected a mapping of dates or a list of records")

// Skip records one rejected entry.
type Skip struct {
	Entry  string `json:"entry"`
	Reason string `json:"reason"`
}

// Report summarizes one ingestion.
type Report struct {
	Accepted int    `json:"accepted"`
	Skipped  []Skip `json:"skipped,omitempty"`
}

func (r *Report) skip(entry, format string, args ...any) {
	r.Skipped = append(r.Skipped, Skip{Entry: entry, Reason: fmt.Sprintf(format, args...)})
}

// Format names a document format.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	ICS  Format = "ics"
)

// FormatOf guesses the format from a file name extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	case ".ics", ".ical":
		return ICS, nil
	}
	return "", fmt.Errorf("ingest: unknown file type %q", name)
}

// FormatOfContentType maps a Content-Type header to a format. An empty
// header means JSON.
func FormatOfContentType(ct string) (Format, error) {
	if ct == "" {
		return JSON, nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", fmt.Errorf("ingest: invalid content type %q: %w", ct, err)
	}
	switch mt {
	case "application/json":
		return JSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return YAML, nil
	case "text/calendar":
		return ICS, nil
	}
	return "", fmt.Errorf("ingest: unsupported content type %q", mt)
}

// Parse decodes r according to f. loc is only used by ICS.
func Parse(r io.Reader, f Format, loc *time.Location) ([]heatmap.Data, *Report, error) {
	switch f {
	case JSON:
		return ParseJSON(r)
	case YAML:
		return ParseYAML(r)
	case ICS:
		return ParseICS(r, loc)
	}
	return nil, nil, fmt.Errorf("ingest: unknown format %q", f)
}

// ParseJSON accepts {"2024-01-01": 5, ...} or [{"date": "2024-01-01", "value": 5}, ...].
func ParseJSON(r io.Reader) ([]heatmap.Data, *Report, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("ingest: invalid JSON: %w", err)
	}
	return fromDocument(doc)
}

// fromDocument handles the generic trees produced by encoding/json and yaml.v3.
func fromDocument(doc any) ([]heatmap.Data, *Report, error) {
	rep := &Report{}
	var points []heatmap.Data

	switch d := doc.(type) {
	case map[string]any:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if p, ok := entry(rep, k, k, d[k]); ok {
				points = append(points, p)
			}
		}
	case []any:
		for i, item := range d {
			name := "#" + strconv.Itoa(i)
			rec, ok := asRecord(item)
			if !ok {
				rep.skip(name, "not a record")
				continue
			}
			if p, ok := entry(rep, name, rec["date"], rec["value"]); ok {
				points = append(points, p)
			}
		}
	case nil:
		// an empty document has no points
	default:
		return nil, nil, ErrUnsupportedShape
	}

	rep.Accepted = len(points)
	return points, rep, nil
}

func entry(rep *Report, name string, date, value any) (heatmap.Data, bool) {
	key, err := coerceDate(date)
	if err != nil {
		rep.skip(name, "%v", err)
		return heatmap.Data{}, false
	}
	v, err := coerceValue(value)
	if err != nil {
		rep.skip(name, "%v", err)
		return heatmap.Data{}, false
	}
	return heatmap.Data{Key: key, Value: v}, true
}

func asRecord(item any) (map[string]any, bool) {
	switch m := item.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		return stringKeys(m), true
	}
	return nil, false
}

func coerceDate(v any) (calendar.DateKey, error) {
	switch d := v.(type) {
	case string:
		return calendar.ParseKey(d)
	case time.Time:
		return calendar.KeyOf(d), nil
	case nil:
		return "", errors.New("missing date")
	}
	return "", fmt.Errorf("date has type %T", v)
}

func coerceValue(v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		x, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("value %q is not a number", n.String())
		}
		f = x
	case string:
		x, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not a number", n)
		}
		f = x
	case nil:
		return 0, errors.New("missing value")
	default:
		return 0, fmt.Errorf("value has type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value %v is not finite", f)
	}
	return f, nil
}
