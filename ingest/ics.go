package ingest

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/stsysd/weekwide/calendar"
	"github.com/stsysd/weekwide/heatmap"
)

// ParseICS counts the VEVENTs of a calendar per start day. Timed events are
// placed on their day in loc; all-day events keep their calendar date.
// Events without a readable DTSTART are skipped.
func ParseICS(r io.Reader, loc *time.Location) ([]heatmap.Data, *Report, error) {
	if loc == nil {
		loc = time.Local
	}
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, nil, fmt.Errorf("ingest: invalid calendar: %w", err)
	}

	rep := &Report{}
	counts := make(map[calendar.DateKey]float64)
	for i, ev := range cal.Events() {
		name := ev.Id()
		if name == "" {
			name = fmt.Sprintf("event #%d", i)
		}
		key, err := eventDay(ev, loc)
		if err != nil {
			rep.skip(name, "unreadable start: %v", err)
			continue
		}
		counts[key]++
		rep.Accepted++
	}

	points := make([]heatmap.Data, 0, len(counts))
	for k, n := range counts {
		points = append(points, heatmap.Data{Key: k, Value: n})
	}
	slices.SortFunc(points, func(a, b heatmap.Data) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return points, rep, nil
}

func eventDay(ev *ics.VEvent, loc *time.Location) (calendar.DateKey, error) {
	prop := ev.GetProperty(ics.ComponentPropertyDtStart)
	if prop == nil {
		return "", errors.New("missing DTSTART")
	}
	// VALUE=DATE: no time part
	if !strings.Contains(prop.Value, "T") {
		day, err := ev.GetAllDayStartAt()
		if err != nil {
			return "", err
		}
		return calendar.KeyOf(day), nil
	}
	start, err := ev.GetStartAt()
	if err != nil {
		return "", err
	}
	return calendar.KeyOf(start.In(loc)), nil
}
