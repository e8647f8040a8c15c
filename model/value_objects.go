// Package model provides value objects for API parameter validation.
package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/stsysd/weekwide/calendar"
	"github.com/stsysd/weekwide/heatmap"
	"github.com/stsysd/weekwide/timeline"
)

// MaxTimelineNameLength is the longest accepted timeline name, in characters.
const MaxTimelineNameLength = 100

// TimelineName represents a timeline name value object.
type TimelineName struct {
	value string
}

// NewTimelineName creates a new timeline name value object.
func NewTimelineName(name string) (*TimelineName, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("timeline name is required")
	}
	if utf8.RuneCountInString(name) > MaxTimelineNameLength {
		return nil, fmt.Errorf("timeline name must be at most %d characters", MaxTimelineNameLength)
	}
	return &TimelineName{value: name}, nil
}

// String returns the timeline name string.
func (n *TimelineName) String() string {
	return n.value
}

// TimelineID represents a timeline ID value object.
type TimelineID struct {
	value uuid.UUID
}

// NewTimelineID creates a new timeline ID value object.
func NewTimelineID(idStr string) (*TimelineID, error) {
	if idStr == "" {
		return nil, fmt.Errorf("timeline ID is required")
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID format")
	}

	return &TimelineID{value: id}, nil
}

// UUID returns the UUID value.
func (t *TimelineID) UUID() uuid.UUID {
	return t.value
}

// DateRange represents an optional date range value object.
// An empty bound is left to the timeline settings.
type DateRange struct {
	from calendar.DateKey
	to   calendar.DateKey
}

// NewDateRange creates a new date range value object.
func NewDateRange(fromStr, toStr string) (*DateRange, error) {
	var d DateRange
	var err error

	if fromStr != "" {
		d.from, err = calendar.ParseKey(fromStr)
		if err != nil {
			return nil, fmt.Errorf("invalid from parameter. Use ISO8601 format (YYYY-MM-DD or YYYY-MM-DDThh:mm:ssZ)")
		}
	}
	if toStr != "" {
		d.to, err = calendar.ParseKey(toStr)
		if err != nil {
			return nil, fmt.Errorf("invalid to parameter. Use ISO8601 format (YYYY-MM-DD or YYYY-MM-DDThh:mm:ssZ)")
		}
	}

	return &d, nil
}

// From returns the start date, or "" when unset.
func (d *DateRange) From() calendar.DateKey {
	return d.from
}

// To returns the end date, or "" when unset.
func (d *DateRange) To() calendar.DateKey {
	return d.to
}

// Apply copies the set bounds into p.
func (d *DateRange) Apply(p *timeline.Patch) {
	if d.from != "" {
		s := d.from.String()
		p.StartDate = &s
	}
	if d.to != "" {
		s := d.to.String()
		p.EndDate = &s
	}
}

// DisplayOverrides represents per-request display overrides.
// Unlike timeline.Configure, unknown names are rejected here.
type DisplayOverrides struct {
	orientation *string
	scheme      *string
	weekStart   *string
}

// NewDisplayOverrides creates a new display overrides value object.
func NewDisplayOverrides(orientationStr, schemeStr, weekStartStr string) (*DisplayOverrides, error) {
	var o DisplayOverrides

	if orientationStr != "" {
		v, err := heatmap.ParseOrientation(orientationStr)
		if err != nil {
			return nil, fmt.Errorf("invalid orientation parameter: must be horizontal or vertical")
		}
		s := string(v)
		o.orientation = &s
	}
	if schemeStr != "" {
		v, err := heatmap.ParseColorScheme(schemeStr)
		if err != nil {
			return nil, fmt.Errorf("invalid scheme parameter: must be one of %v", heatmap.ColorSchemes())
		}
		s := string(v)
		o.scheme = &s
	}
	if weekStartStr != "" {
		if _, err := calendar.ParseWeekday(weekStartStr); err != nil {
			return nil, fmt.Errorf("invalid week_start parameter: must be a weekday name or 0-6")
		}
		o.weekStart = &weekStartStr
	}

	return &o, nil
}

// Apply copies the set overrides into p.
func (o *DisplayOverrides) Apply(p *timeline.Patch) {
	if o.orientation != nil {
		p.Orientation = o.orientation
	}
	if o.scheme != nil {
		p.ColorScheme = o.scheme
	}
	if o.weekStart != nil {
		p.FirstWeekday = o.weekStart
	}
}

// PointValue represents a finite point value object.
type PointValue struct {
	value float64
}

// NewPointValue creates a new point value object.
func NewPointValue(val *float64) (*PointValue, error) {
	if val == nil {
		// Use default value 1 for nil
		return &PointValue{value: 1}, nil
	}

	if math.IsNaN(*val) || math.IsInf(*val, 0) {
		return nil, fmt.Errorf("value must be a finite number")
	}

	return &PointValue{value: *val}, nil
}

// Float returns the float value.
func (v *PointValue) Float() float64 {
	return v.value
}

// Pagination represents pagination parameters value object.
type Pagination struct {
	limit  int
	offset int
}

// NewPagination creates a new pagination value object.
func NewPagination(limitStr, offsetStr string) (*Pagination, error) {
	limit := 100 // Default value
	offset := 0  // Default value

	// Process limit parameter
	if limitStr != "" {
		parsedLimit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, fmt.Errorf("invalid limit parameter: must be a positive integer")
		}
		if parsedLimit <= 0 {
			return nil, fmt.Errorf("limit must be greater than 0")
		}
		if parsedLimit > 1000 { // Set upper limit
			parsedLimit = 1000
		}
		limit = parsedLimit
	}

	// Process offset parameter
	if offsetStr != "" {
		parsedOffset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, fmt.Errorf("invalid offset parameter: must be a non-negative integer")
		}
		if parsedOffset < 0 {
			return nil, fmt.Errorf("offset must be non-negative")
		}
		offset = parsedOffset
	}

	return &Pagination{limit: limit, offset: offset}, nil
}

// Limit returns the limit value.
func (p *Pagination) Limit() int {
	return p.limit
}

// Offset returns the offset value.
func (p *Pagination) Offset() int {
	return p.offset
}
