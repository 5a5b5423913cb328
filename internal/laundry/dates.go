package laundry

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date form the consoles submit.
const DateLayout = "2006-01-02"

// ParseDate accepts a calendar date (midnight in loc) or an RFC 3339 timestamp.
func ParseDate(field, raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, Invalid(field, "is required")
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(DateLayout, raw, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, Invalid(field, "must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	}
	return t.In(loc), nil
}

// ParseOptionalDate is ParseDate for fields that may be left blank.
func ParseOptionalDate(field, raw string, loc *time.Location) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := ParseDate(field, raw, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
