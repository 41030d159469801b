package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/menuboard/internal/analytics/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CreateSession(ctx context.Context, db *gorm.DB, session *domain.DisplaySession) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO display_sessions (id, display_type, client_id, started_at, last_seen_at, ended_at, duration_seconds)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.DisplayType,
		session.ClientID,
		session.StartedAt,
		session.LastSeenAt,
		session.EndedAt,
		session.DurationSeconds,
	).Error
}

func (r *repo) FindSessionByID(ctx context.Context, db *gorm.DB, id int64) (*domain.DisplaySession, error) {
	var session domain.DisplaySession
	err := db.WithContext(ctx).Raw(
		`SELECT id, display_type, client_id, started_at, last_seen_at, ended_at, duration_seconds
		 FROM display_sessions WHERE id = ?`,
		id,
	).Scan(&session).Error
	if err != nil {
		return nil, err
	}
	if session.ID == 0 {
		return nil, nil
	}
	return &session, nil
}

func (r *repo) UpdateSession(ctx context.Context, db *gorm.DB, session *domain.DisplaySession) error {
	if session == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE display_sessions
		 SET last_seen_at = ?, ended_at = ?, duration_seconds = ?
		 WHERE id = ?`,
		session.LastSeenAt,
		session.EndedAt,
		session.DurationSeconds,
		session.ID,
	).Error
}

func (r *repo) FindSessionsInRange(ctx context.Context, db *gorm.DB, from, to time.Time) ([]domain.DisplaySession, error) {
	var sessions []domain.DisplaySession
	err := db.WithContext(ctx).Raw(
		`SELECT id, display_type, client_id, started_at, last_seen_at, ended_at, duration_seconds
		 FROM display_sessions WHERE started_at >= ? AND started_at < ? ORDER BY started_at ASC`,
		from,
		to,
	).Scan(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repo) UpsertAggregate(ctx context.Context, db *gorm.DB, agg *domain.DailyAggregate) error {
	res := db.WithContext(ctx).Exec(
		`UPDATE analytics_aggregates
		 SET total_sessions = ?, total_duration_seconds = ?, peak_hour = ?, updated_at = ?
		 WHERE date = ? AND display_type = ?`,
		agg.TotalSessions,
		agg.TotalDurationSeconds,
		agg.PeakHour,
		agg.UpdatedAt,
		agg.Date,
		agg.DisplayType,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO analytics_aggregates (id, date, display_type, total_sessions, total_duration_seconds, peak_hour, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		agg.ID,
		agg.Date,
		agg.DisplayType,
		agg.TotalSessions,
		agg.TotalDurationSeconds,
		agg.PeakHour,
		agg.CreatedAt,
		agg.UpdatedAt,
	).Error
}

func (r *repo) FindAggregates(ctx context.Context, db *gorm.DB, date string) ([]domain.DailyAggregate, error) {
	var aggs []domain.DailyAggregate
	err := db.WithContext(ctx).Raw(
		`SELECT id, date, display_type, total_sessions, total_duration_seconds, peak_hour, created_at, updated_at
		 FROM analytics_aggregates WHERE date = ? ORDER BY display_type ASC`,
		date,
	).Scan(&aggs).Error
	if err != nil {
		return nil, err
	}
	return aggs, nil
}
