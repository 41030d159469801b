package domain

import (
	"context"

	"gorm.io/gorm"

	"github.com/smallbiznis/menuboard/pkg/db/pagination"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, order *CustomerOrder) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*CustomerOrder, error)
	FindActiveBySession(ctx context.Context, db *gorm.DB, sessionID string) (*CustomerOrder, error)
	List(ctx context.Context, db *gorm.DB, status string, cursor *pagination.Cursor, limit int) ([]CustomerOrder, error)
	Update(ctx context.Context, db *gorm.DB, order *CustomerOrder) error
	Delete(ctx context.Context, db *gorm.DB, id int64) error
}
