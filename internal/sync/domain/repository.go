package domain

import (
	"context"

	"gorm.io/gorm"
)

type StateRepository interface {
	Get(ctx context.Context, db *gorm.DB) (*SyncState, error)
	Upsert(ctx context.Context, db *gorm.DB, state *SyncState) error
}
