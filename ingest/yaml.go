package ingest

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stsysd/weekwide/calendar"
	"github.com/stsysd/weekwide/heatmap"
)

// ParseYAML accepts the same shapes as ParseJSON:
//
//	2024-01-01: 5
//	2024-01-02: 3
//
// or a sequence of {date, value} mappings.
func ParseYAML(r io.Reader) ([]heatmap.Data, *Report, error) {
	var doc any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("ingest: invalid YAML: %w", err)
	}
	if m, ok := doc.(map[any]any); ok {
		doc = stringKeys(m)
	}
	return fromDocument(doc)
}

// stringKeys converts a mapping with non-string keys. yaml.v3 resolves an
// unquoted 2024-01-01 key to a time.Time, which is mapped back to its DateKey.
func stringKeys(m map[any]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[keyString(k)] = v
	}
	return out
}

func keyString(k any) string {
	if t, ok := k.(time.Time); ok {
		return calendar.KeyOf(t).String()
	}
	return fmt.Sprint(k)
}
