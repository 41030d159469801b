package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Option mutates a gorm statement before execution.
type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type sortBy struct {
	clause string
}

func (o sortBy) Apply(stmt *gorm.DB) *gorm.DB {
	if strings.TrimSpace(o.clause) == "" {
		return stmt
	}
	return stmt.Order(o.clause)
}

// WithSortBy orders the query by a pre-sanitized clause.
func WithSortBy(clause string) Option {
	return sortBy{clause: clause}
}

// WithQuerySortBy builds an order clause from caller input restricted
// to an allow-list of sortable columns.
func WithQuerySortBy(field, direction string, allowed map[string]bool) string {
	column := strings.ToLower(strings.TrimSpace(field))
	if column == "" || !allowed[column] {
		column = "created_at"
	}
	order := strings.ToUpper(strings.TrimSpace(direction))
	if order != "DESC" {
		order = "ASC"
	}
	return fmt.Sprintf("%s %s", column, order)
}
