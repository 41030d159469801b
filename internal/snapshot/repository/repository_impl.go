package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/menuboard/internal/snapshot/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, snapshot *domain.DailySnapshot) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO daily_snapshots (id, date, snapshot, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		snapshot.ID,
		snapshot.Date,
		snapshot.Snapshot,
		snapshot.CreatedAt,
		snapshot.UpdatedAt,
	).Error
}

func (r *repo) FindByDate(ctx context.Context, db *gorm.DB, date string) (*domain.DailySnapshot, error) {
	var snapshot domain.DailySnapshot
	err := db.WithContext(ctx).Raw(
		`SELECT id, date, snapshot, created_at, updated_at
		 FROM daily_snapshots WHERE date = ?`,
		date,
	).Scan(&snapshot).Error
	if err != nil {
		return nil, err
	}
	if snapshot.ID == 0 {
		return nil, nil
	}
	return &snapshot, nil
}

func (r *repo) ReplacePayload(ctx context.Context, db *gorm.DB, id int64, payload datatypes.JSON, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE daily_snapshots SET snapshot = ?, updated_at = ? WHERE id = ?`,
		payload,
		updatedAt,
		id,
	).Error
}

func (r *repo) ListDates(ctx context.Context, db *gorm.DB) ([]string, error) {
	var dates []string
	err := db.WithContext(ctx).Raw(
		`SELECT date FROM daily_snapshots ORDER BY date DESC`,
	).Scan(&dates).Error
	if err != nil {
		return nil, err
	}
	return dates, nil
}
