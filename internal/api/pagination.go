package api

import (
	"net/http"
	"strconv"
)

// PaginationParams holds parsed pagination values from query params.
type PaginationParams struct {
	Page     int
	PageSize int
}

// ParsePagination extracts page and page_size from query params with
// defaults. maxSize caps the allowed page size to prevent abuse.
func ParsePagination(r *http.Request, defaultSize, maxSize int) PaginationParams {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return PaginationParams{Page: page, PageSize: size}
}
