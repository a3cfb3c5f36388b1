package httputil

import (
	"net/http"
	"strconv"
)

// PageParams are the common paging/sorting query parameters accepted by
// every list endpoint.
type PageParams struct {
	PageIndex     int
	PageSize      int
	SearchTerm    string
	SortBy        string
	SortDirection string // "asc" or "desc"
}

// PagedResponse is the common shape of every paginated list response.
type PagedResponse struct {
	Items       interface{} `json:"items"`
	TotalCount  int64       `json:"totalCount"`
	PageIndex   int         `json:"pageIndex"`
	PageSize    int         `json:"pageSize"`
	TotalPages  int         `json:"totalPages"`
	HasNext     bool        `json:"hasNext"`
	HasPrevious bool        `json:"hasPrevious"`
}

// ParsePageParams reads paging parameters from the request, applying
// defaults and clamping the page size.
func ParsePageParams(r *http.Request) PageParams {
	q := r.URL.Query()

	p := PageParams{
		PageIndex:     0,
		PageSize:      20,
		SearchTerm:    q.Get("searchTerm"),
		SortBy:        q.Get("sortBy"),
		SortDirection: q.Get("sortDirection"),
	}
	if v, err := strconv.Atoi(q.Get("pageIndex")); err == nil && v >= 0 {
		p.PageIndex = v
	}
	if v, err := strconv.Atoi(q.Get("pageSize")); err == nil && v > 0 {
		p.PageSize = v
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
	if p.SortDirection != "asc" {
		p.SortDirection = "desc"
	}
	return p
}

// NewPagedResponse derives the paging bookkeeping from the total count.
func NewPagedResponse(items interface{}, total int64, params PageParams) PagedResponse {
	totalPages := 0
	if params.PageSize > 0 {
		totalPages = int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	}
	return PagedResponse{
		Items:       items,
		TotalCount:  total,
		PageIndex:   params.PageIndex,
		PageSize:    params.PageSize,
		TotalPages:  totalPages,
		HasNext:     params.PageIndex+1 < totalPages,
		HasPrevious: params.PageIndex > 0,
	}
}
