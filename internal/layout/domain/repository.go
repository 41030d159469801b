package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, layout *DisplayLayout) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*DisplayLayout, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]DisplayLayout, error)
	FindByPageType(ctx context.Context, db *gorm.DB, pageType string) ([]DisplayLayout, error)
	FindActiveByPageType(ctx context.Context, db *gorm.DB, pageType string) (*DisplayLayout, error)
	Update(ctx context.Context, db *gorm.DB, layout *DisplayLayout) error
	DeactivateSiblings(ctx context.Context, db *gorm.DB, pageType string, exceptID int64, updatedAt time.Time) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
}
