// Package pagination parses common list query parameters: limit, offset
// and an optional whitelisted sort key with direction.
package pagination

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLimit is applied when the caller does not pass one.
	DefaultLimit = 50
	// MaxLimit caps the page size.
	MaxLimit = 200
)

// Page holds parsed limit/offset values.
type Page struct {
	Limit  int
	Offset int
}

// FromQuery parses limit and offset from the request, clamping to sane bounds.
func FromQuery(c *gin.Context) Page {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}

// SortFromQuery parses sort and order query parameters against a whitelist
// of column names. Unknown keys fall back to def; order is "asc" or "desc"
// (default desc). The returned string is safe to interpolate into ORDER BY.
func SortFromQuery(c *gin.Context, allowed map[string]bool, def string) string {
	key := c.DefaultQuery("sort", def)
	if !allowed[key] {
		key = def
	}
	order := strings.ToLower(c.DefaultQuery("order", "desc"))
	if order != "asc" && order != "desc" {
		order = "desc"
	}
	return key + " " + strings.ToUpper(order)
}
