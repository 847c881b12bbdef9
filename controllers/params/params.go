// Package params parses path and query parameters shared by the controllers.
package params

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ID parses a positive integer path parameter.
func ID(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, apperr.Validation("invalid %s %q", name, c.Param(name))
	}
	return uint(v), nil
}

// Page is a 1-based page window read from ?page= and ?limit=.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// Pagination reads page and limit, clamping the limit to MaxPageSize.
func Pagination(c *gin.Context) (Page, error) {
	p := Page{Page: 1, Limit: DefaultPageSize}
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, apperr.Validation("invalid page %q", v)
		}
		p.Page = n
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, apperr.Validation("invalid limit %q", v)
		}
		if n > MaxPageSize {
			n = MaxPageSize
		}
		p.Limit = n
	}
	return p, nil
}

// Paged is the list envelope every paginated endpoint returns.
type Paged[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func NewPaged[T any](items []T, p Page, total int64) Paged[T] {
	if items == nil {
		items = []T{}
	}
	pages := (total + int64(p.Limit) - 1) / int64(p.Limit)
	return Paged[T]{Items: items, Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}
