// Package option holds reusable gorm query options.
package option

import (
	"strings"

	"gorm.io/gorm"
)

type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

// QuerySortBy orders results by an allow-listed column.
type QuerySortBy struct {
	SortBy  string
	OrderBy string
	Allow   map[string]bool
}

// WithQuerySortBy builds a QuerySortBy from raw request values.
func WithQuerySortBy(sortBy, orderBy string, allow map[string]bool) QuerySortBy {
	return QuerySortBy{
		SortBy:  strings.ToLower(strings.TrimSpace(sortBy)),
		OrderBy: strings.ToLower(strings.TrimSpace(orderBy)),
		Allow:   allow,
	}
}

func WithSortBy(q QuerySortBy) QueryOption {
	return q
}

// Apply falls back to created_at desc when the column is not allowed.
func (q QuerySortBy) Apply(db *gorm.DB) *gorm.DB {
	column := q.SortBy
	if column == "" || !q.Allow[column] {
		column = "created_at"
	}
	direction := "desc"
	if q.OrderBy == "asc" {
		direction = "asc"
	}
	return db.Order(column + " " + direction)
}
