// Package filter narrows and orders record collections for list views.
//
// Stages run in a fixed order: text search, status, category, date range, then a stable
// sort. The input slice is never modified.
package filter

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// All disables a status, category or date criterion.
const All = "all"

// DateRange selects records whose date falls on or after a cutoff derived from now.
type DateRange string

const (
	AnyDate   DateRange = All
	Today     DateRange = "today"
	LastWeek  DateRange = "week"
	LastMonth DateRange = "month"
)

// ParseDateRange accepts "", "all", "today", "week" and "month".
func ParseDateRange(raw string) (DateRange, error) {
	switch DateRange(strings.ToLower(strings.TrimSpace(raw))) {
	case "", AnyDate:
		return AnyDate, nil
	case Today:
		return Today, nil
	case LastWeek:
		return LastWeek, nil
	case LastMonth:
		return LastMonth, nil
	}
	return AnyDate, fmt.Errorf("filter: unknown date range %q", raw)
}

// Criteria are applied conjunctively. Empty values and "all" are ignored.
type Criteria struct {
	Search   string
	Status   string
	Category string
	Range    DateRange
}

// Spec binds Criteria to the fields of R.
type Spec[R any] struct {
	// SearchFields are matched case-insensitively, OR across fields.
	SearchFields []func(R) string
	Status       func(R) string
	Category     func(R) string
	// Date returns false when the record's date is missing or malformed.
	Date       func(R) (time.Time, bool)
	Compare    func(a, b R) int
	Descending bool
}

// Result holds the surviving records and, separately, the ones dropped only because
// their date could not be evaluated under an active date range.
type Result[R any] struct {
	Items   []R
	Undated []R
}

// Apply runs every stage and returns a new slice.
func Apply[R any](records []R, c Criteria, s Spec[R], now time.Time) Result[R] {
	out := make([]R, 0, len(records))
	var undated []R
	needle := strings.ToLower(strings.TrimSpace(c.Search))
	from, until, dated := Window(c.Range, now)

	for _, rec := range records {
		if needle != "" && !matchesSearch(rec, needle, s.SearchFields) {
			continue
		}
		if active(c.Status) && (s.Status == nil || s.Status(rec) != c.Status) {
			continue
		}
		if active(c.Category) && (s.Category == nil || s.Category(rec) != c.Category) {
			continue
		}
		if dated {
			if s.Date == nil {
				undated = append(undated, rec)
				continue
			}
			when, ok := s.Date(rec)
			if !ok || when.IsZero() {
				undated = append(undated, rec)
				continue
			}
			if when.Before(from) || (!until.IsZero() && !when.Before(until)) {
				continue
			}
		}
		out = append(out, rec)
	}

	if s.Compare != nil {
		cmp := s.Compare
		if s.Descending {
			cmp = func(a, b R) int { return s.Compare(b, a) }
		}
		slices.SortStableFunc(out, cmp)
	}
	return Result[R]{Items: out, Undated: undated}
}

// Window returns the [from, until) bounds for r relative to the start of now's day.
// until is zero when the range is open ended. ok is false for AnyDate.
func Window(r DateRange, now time.Time) (from, until time.Time, ok bool) {
	start := StartOfDay(now)
	switch r {
	case Today:
		return start, start.AddDate(0, 0, 1), true
	case LastWeek:
		return start.AddDate(0, 0, -7), time.Time{}, true
	case LastMonth:
		return start.AddDate(0, -1, 0), time.Time{}, true
	}
	return time.Time{}, time.Time{}, false
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Paginate returns the 1-based page of items.
func Paginate[R any](items []R, page, perPage int) []R {
	if perPage <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []R{}
	}
	end := min(start+perPage, len(items))
	return items[start:end]
}

func active(v string) bool {
	return v != "" && v != All
}

func matchesSearch[R any](rec R, needle string, fields []func(R) string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(rec)), needle) {
			return true
		}
	}
	return false
}
