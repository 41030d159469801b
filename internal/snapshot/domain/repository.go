package domain

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, snapshot *DailySnapshot) error
	FindByDate(ctx context.Context, db *gorm.DB, date string) (*DailySnapshot, error)
	ReplacePayload(ctx context.Context, db *gorm.DB, id int64, payload datatypes.JSON, updatedAt time.Time) error
	ListDates(ctx context.Context, db *gorm.DB) ([]string, error)
}
