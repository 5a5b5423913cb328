package common

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/noah-isme/backend-laundry/internal/filter"
)

// ListQuery is the parsed query string of a list endpoint.
type ListQuery struct {
	Criteria filter.Criteria
	Page     int
	PerPage  int
}

// ParseListQuery reads q (or search), status, category, date, page and limit.
func ParseListQuery(r *http.Request, defaultPerPage int) (ListQuery, error) {
	values := r.URL.Query()
	rng, err := filter.ParseDateRange(values.Get("date"))
	if err != nil {
		return ListQuery{}, BadRequest("date", "date must be one of all, today, week, month", err)
	}
	search := values.Get("q")
	if search == "" {
		search = values.Get("search")
	}
	page, perPage := ParsePagination(r, defaultPerPage)
	return ListQuery{
		Criteria: filter.Criteria{
			Search:   strings.TrimSpace(search),
			Status:   strings.TrimSpace(values.Get("status")),
			Category: strings.TrimSpace(values.Get("category")),
			Range:    rng,
		},
		Page:    page,
		PerPage: perPage,
	}, nil
}

// WriteList renders one page of a list with its pagination metadata.
func WriteList(w http.ResponseWriter, data any, total int, q ListQuery, extra map[string]any) {
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	body := map[string]any{
		"data":       data,
		"pagination": Pagination{Page: q.Page, PerPage: q.PerPage, TotalItems: total},
	}
	for k, v := range extra {
		body[k] = v
	}
	JSON(w, http.StatusOK, body)
}
