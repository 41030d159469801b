package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/menuboard/internal/archive/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Append(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO menu_archive (id, menu_item_id, snapshot, change_type, changed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID,
		entry.MenuItemID,
		entry.Snapshot,
		entry.ChangeType,
		entry.ChangedAt,
	).Error
}

func (r *repo) HistoryFor(ctx context.Context, db *gorm.DB, menuItemID int64, limit int) ([]domain.Entry, error) {
	var entries []domain.Entry
	err := db.WithContext(ctx).Raw(
		`SELECT id, menu_item_id, snapshot, change_type, changed_at
		 FROM menu_archive WHERE menu_item_id = ?
		 ORDER BY changed_at DESC, id DESC
		 LIMIT ?`,
		menuItemID,
		normalizeLimit(limit),
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) Recent(ctx context.Context, db *gorm.DB, limit int) ([]domain.Entry, error) {
	var entries []domain.Entry
	err := db.WithContext(ctx).Raw(
		`SELECT id, menu_item_id, snapshot, change_type, changed_at
		 FROM menu_archive
		 ORDER BY changed_at DESC, id DESC
		 LIMIT ?`,
		normalizeLimit(limit),
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repo) InRange(ctx context.Context, db *gorm.DB, start, end time.Time) ([]domain.Entry, error) {
	var entries []domain.Entry
	err := db.WithContext(ctx).Raw(
		`SELECT id, menu_item_id, snapshot, change_type, changed_at
		 FROM menu_archive WHERE changed_at >= ? AND changed_at <= ?`,
		start,
		end,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 500 {
		return 500
	}
	return limit
}
