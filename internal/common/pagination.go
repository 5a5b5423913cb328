package common

import "net/http"

// MaxPerPage caps the limit query parameter.
const MaxPerPage = 100

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// ParsePagination extracts page and per-page parameters from query values.
func ParsePagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	q := r.URL.Query()
	page = PositiveIntDefault(q.Get("page"), 1)
	perPage = PositiveIntDefault(q.Get("limit"), defaultPerPage)
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return
}
