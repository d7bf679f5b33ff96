// Package pagination defines the result-window type shared by every
// paginated listing in the service. Listings are only correct over a stable,
// documented order, so each repository method that feeds a Pagination also
// documents its sort key.
package pagination

import (
	"net/http"
	"strconv"
)

// DefaultPerPage is the window size used when the client does not ask for
// another one.
const DefaultPerPage = 30

// maxPerPage caps client-requested window sizes.
const maxPerPage = 100

// Pagination describes a result window. HasPrev/HasNext drive the
// previous/next links: page 1 has no previous link and the last page has no
// next link.
type Pagination struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// New computes the window description for a page over totalCount items.
func New(page, perPage, totalCount int) Pagination {
	totalPages := (totalCount + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	return Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalCount: totalCount,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// Normalize clamps page and perPage to valid values, applying the default
// window size.
func Normalize(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// Offset converts a normalized page/perPage pair into a query offset.
func Offset(page, perPage int) int {
	return (page - 1) * perPage
}

// FromRequest reads the "page" and "per_page" query parameters, falling back
// to page 1 and the default window size. Values are normalized, never
// rejected.
func FromRequest(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	return Normalize(page, perPage)
}
