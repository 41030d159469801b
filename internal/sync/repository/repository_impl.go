package repository

import (
	"context"

	"github.com/smallbiznis/menuboard/internal/sync/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.StateRepository {
	return &repo{}
}

func (r *repo) Get(ctx context.Context, db *gorm.DB) (*domain.SyncState, error) {
	var state domain.SyncState
	err := db.WithContext(ctx).Raw(
		`SELECT id, last_sync_at, status, error_message, updated_at
		 FROM sync_state WHERE id = ?`,
		domain.StateID,
	).Scan(&state).Error
	if err != nil {
		return nil, err
	}
	if state.ID == 0 {
		return nil, nil
	}
	return &state, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, state *domain.SyncState) error {
	if state == nil {
		return gorm.ErrInvalidData
	}
	state.ID = domain.StateID
	res := db.WithContext(ctx).Exec(
		`UPDATE sync_state SET last_sync_at = ?, status = ?, error_message = ?, updated_at = ?
		 WHERE id = ?`,
		state.LastSyncAt,
		state.Status,
		state.ErrorMessage,
		state.UpdatedAt,
		state.ID,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO sync_state (id, last_sync_at, status, error_message, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		state.ID,
		state.LastSyncAt,
		state.Status,
		state.ErrorMessage,
		state.UpdatedAt,
	).Error
}
