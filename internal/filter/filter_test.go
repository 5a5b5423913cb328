package filter_test

import (
	"cmp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-laundry/internal/filter"
)

type rec struct {
	ID       string
	Name     string
	Status   string
	Category string
	Date     time.Time
}

var now = time.Date(2025, 8, 20, 15, 30, 0, 0, time.UTC)

func spec() filter.Spec[rec] {
	return filter.Spec[rec]{
		SearchFields: []func(rec) string{
			func(r rec) string { return r.ID },
			func(r rec) string { return r.Name },
		},
		Status:   func(r rec) string { return r.Status },
		Category: func(r rec) string { return r.Category },
		Date:     func(r rec) (time.Time, bool) { return r.Date, !r.Date.IsZero() },
	}
}

func fixtures() []rec {
	return []rec{
		{ID: "ORD1", Name: "Abdul Rauf", Status: "pending", Category: "wash", Date: now.Add(-2 * time.Hour)},
		{ID: "ORD2", Name: "Eric Ahiadoglo", Status: "ready", Category: "dry", Date: now.AddDate(0, 0, -3)},
		{ID: "ORD3", Name: "Janet Kumah", Status: "ready", Category: "wash", Date: now.AddDate(0, -1, -5)},
	}
}

func ids(items []rec) []string {
	out := make([]string, 0, len(items))
	for _, r := range items {
		out = append(out, r.ID)
	}
	return out
}

func TestStatusKeepsOriginalOrder(t *testing.T) {
	res := filter.Apply(fixtures(), filter.Criteria{Status: "ready"}, spec(), now)
	require.Equal(t, []string{"ORD2", "ORD3"}, ids(res.Items))
	require.Empty(t, res.Undated)
}

func TestUnknownStatusYieldsEmpty(t *testing.T) {
	res := filter.Apply(fixtures(), filter.Criteria{Status: "lost"}, spec(), now)
	require.Empty(t, res.Items)
}

func TestAllAndEmptyAreIgnored(t *testing.T) {
	res := filter.Apply(fixtures(), filter.Criteria{Status: filter.All, Category: "", Range: filter.AnyDate}, spec(), now)
	require.Equal(t, []string{"ORD1", "ORD2", "ORD3"}, ids(res.Items))
}

func TestSearchIsCaseInsensitiveAcrossFields(t *testing.T) {
	res := filter.Apply(fixtures(), filter.Criteria{Search: "  JANET "}, spec(), now)
	require.Equal(t, []string{"ORD3"}, ids(res.Items))

	res = filter.Apply(fixtures(), filter.Criteria{Search: "ord"}, spec(), now)
	require.Len(t, res.Items, 3)
}

func TestCriteriaCompose(t *testing.T) {
	res := filter.Apply(fixtures(), filter.Criteria{Status: "ready", Category: "wash"}, spec(), now)
	require.Equal(t, []string{"ORD3"}, ids(res.Items))

	res = filter.Apply(fixtures(), filter.Criteria{Status: "ready", Range: filter.LastWeek}, spec(), now)
	require.Equal(t, []string{"ORD2"}, ids(res.Items))
}

func TestDateRanges(t *testing.T) {
	cases := []struct {
		r    filter.DateRange
		want []string
	}{
		{filter.Today, []string{"ORD1"}},
		{filter.LastWeek, []string{"ORD1", "ORD2"}},
		{filter.LastMonth, []string{"ORD1", "ORD2"}},
		{filter.AnyDate, []string{"ORD1", "ORD2", "ORD3"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.r), func(t *testing.T) {
			res := filter.Apply(fixtures(), filter.Criteria{Range: tc.r}, spec(), now)
			require.Equal(t, tc.want, ids(res.Items))
		})
	}
}

func TestTodayExcludesTomorrow(t *testing.T) {
	records := append(fixtures(), rec{ID: "ORD4", Date: filter.StartOfDay(now).AddDate(0, 0, 1)})
	res := filter.Apply(records, filter.Criteria{Range: filter.Today}, spec(), now)
	require.Equal(t, []string{"ORD1"}, ids(res.Items))

	res = filter.Apply(records, filter.Criteria{Range: filter.LastWeek}, spec(), now)
	require.Contains(t, ids(res.Items), "ORD4")
}

func TestWeekCutoffIsStartOfDayMinusSeven(t *testing.T) {
	edge := filter.StartOfDay(now).AddDate(0, 0, -7)
	records := []rec{
		{ID: "EDGE", Date: edge},
		{ID: "BEFORE", Date: edge.Add(-time.Second)},
	}
	res := filter.Apply(records, filter.Criteria{Range: filter.LastWeek}, spec(), now)
	require.Equal(t, []string{"EDGE"}, ids(res.Items))
}

func TestMalformedDatesAreReportedSeparately(t *testing.T) {
	records := append(fixtures(), rec{ID: "BAD", Status: "ready"})

	res := filter.Apply(records, filter.Criteria{Status: "ready", Range: filter.LastMonth}, spec(), now)
	require.Equal(t, []string{"ORD2"}, ids(res.Items))
	require.Equal(t, []string{"BAD"}, ids(res.Undated))

	res = filter.Apply(records, filter.Criteria{Status: "ready"}, spec(), now)
	require.Equal(t, []string{"ORD2", "ORD3", "BAD"}, ids(res.Items))
	require.Empty(t, res.Undated)
}

func TestSortIsStableInBothDirections(t *testing.T) {
	s := spec()
	s.Compare = func(a, b rec) int { return cmp.Compare(a.Status, b.Status) }

	res := filter.Apply(fixtures(), filter.Criteria{}, s, now)
	require.Equal(t, []string{"ORD1", "ORD2", "ORD3"}, ids(res.Items))

	s.Descending = true
	res = filter.Apply(fixtures(), filter.Criteria{}, s, now)
	require.Equal(t, []string{"ORD2", "ORD3", "ORD1"}, ids(res.Items))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	input := fixtures()
	s := spec()
	s.Compare = func(a, b rec) int { return strings.Compare(b.ID, a.ID) }
	first := filter.Apply(input, filter.Criteria{Search: "a"}, s, now)
	second := filter.Apply(input, filter.Criteria{Search: "a"}, s, now)

	require.Equal(t, fixtures(), input)
	require.Equal(t, first, second)
}

func TestParseDateRange(t *testing.T) {
	r, err := filter.ParseDateRange(" Week ")
	require.NoError(t, err)
	require.Equal(t, filter.LastWeek, r)

	r, err = filter.ParseDateRange("")
	require.NoError(t, err)
	require.Equal(t, filter.AnyDate, r)

	_, err = filter.ParseDateRange("year")
	require.Error(t, err)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	require.Equal(t, []int{3, 4}, filter.Paginate(items, 2, 2))
	require.Equal(t, []int{5}, filter.Paginate(items, 3, 2))
	require.Empty(t, filter.Paginate(items, 4, 2))
	require.Equal(t, items, filter.Paginate(items, 1, 0))
}
