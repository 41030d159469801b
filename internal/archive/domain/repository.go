package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository is append-only. Append must run inside the same transaction
// as the menu item write it records, so an item is never left without a
// matching history entry.
type Repository interface {
	Append(ctx context.Context, db *gorm.DB, entry *Entry) error
	HistoryFor(ctx context.Context, db *gorm.DB, menuItemID int64, limit int) ([]Entry, error)
	Recent(ctx context.Context, db *gorm.DB, limit int) ([]Entry, error)
	InRange(ctx context.Context, db *gorm.DB, start, end time.Time) ([]Entry, error)
}
