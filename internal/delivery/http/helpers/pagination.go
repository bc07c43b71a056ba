package helpers

import (
	"fmt"
	"net/http"
	"strconv"

	"eventboard/internal/domain"
)

// Pagination query parameter defaults.
const (
	DefaultFrom = 0
	DefaultSize = 10
	MaxSize     = 1000
)

// ParsePagination reads from and size from the request query string. Missing
// values fall back to defaults; malformed or out-of-range values are an error.
func ParsePagination(r *http.Request) (domain.PaginationParams, error) {
	from := DefaultFrom
	if s := r.URL.Query().Get("from"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return domain.PaginationParams{}, fmt.Errorf("from must be a non-negative integer")
		}
		from = v
	}
	size := DefaultSize
	if s := r.URL.Query().Get("size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return domain.PaginationParams{}, fmt.Errorf("size must be a positive integer")
		}
		size = min(v, MaxSize)
	}
	return domain.PaginationParams{From: from, Size: size}, nil
}
