package shared

import (
	"net/http"
	"strconv"
)

// Pagination is the sanitized limit/offset pair taken from the query
// string.
type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit and offset query parameters. Garbage and
// non-positive values fall back to the defaults, and limit is capped at
// maxLimit.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	p := Pagination{Limit: defaultLimit}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		p.Limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		p.Offset = v
	}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}
