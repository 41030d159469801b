package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CreateSession(ctx context.Context, db *gorm.DB, session *DisplaySession) error
	FindSessionByID(ctx context.Context, db *gorm.DB, id int64) (*DisplaySession, error)
	UpdateSession(ctx context.Context, db *gorm.DB, session *DisplaySession) error
	FindSessionsInRange(ctx context.Context, db *gorm.DB, from, to time.Time) ([]DisplaySession, error)

	UpsertAggregate(ctx context.Context, db *gorm.DB, agg *DailyAggregate) error
	FindAggregates(ctx context.Context, db *gorm.DB, date string) ([]DailyAggregate, error)
}
