package domain

import (
	"context"

	"gorm.io/gorm"
)

type ListFilter struct {
	CategoryID *int64
	Available  *bool
	SortBy     string
	OrderBy    string
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, item *MenuItem) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*MenuItem, error)
	FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*MenuItem, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]MenuItem, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]MenuItem, error)
	Update(ctx context.Context, db *gorm.DB, item *MenuItem) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
}
