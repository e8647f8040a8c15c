package calendar

import (
	"strconv"
	"strings"
	"time"
)

// ParseError is returned when a date or weekday string cannot be interpreted.
type ParseError struct {
	// Type is the kind of value being parsed, e.g. "date" or "weekday".
	Type string
	// Value is the rejected input.
	Value string
}

func (e *ParseError) Error() string {
	return "calendar: invalid " + e.Type + " value: " + strconv.Quote(e.Value)
}

// ParseWeekday accepts English weekday names ("sunday", "Sun") or the
// day-of-week index 0..6 with 0 = Sunday.
func ParseWeekday(s string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(v); err == nil {
		if n >= 0 && n <= 6 {
			return time.Weekday(n), nil
		}
		return 0, &ParseError{Type: "weekday", Value: s}
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if v == name || v == name[:3] {
			return d, nil
		}
	}
	return 0, &ParseError{Type: "weekday", Value: s}
}
