package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	StartSession(ctx context.Context, req StartRequest) (*SessionResponse, error)
	Heartbeat(ctx context.Context, id string) error
	EndSession(ctx context.Context, id string) (*SessionResponse, error)

	// AggregateDaily rolls the date's sessions up into one row per
	// display type. Safe to re-run for the same date.
	AggregateDaily(ctx context.Context, date string) ([]AggregateResponse, error)
	Aggregates(ctx context.Context, date string) ([]AggregateResponse, error)
}

type StartRequest struct {
	DisplayType string `json:"display_type"`
	ClientID    string `json:"client_id"`
}

type SessionResponse struct {
	ID              string     `json:"id"`
	DisplayType     string     `json:"display_type"`
	ClientID        string     `json:"client_id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationSeconds int64      `json:"duration_seconds"`
}

type AggregateResponse struct {
	Date                 string `json:"date"`
	DisplayType          string `json:"display_type"`
	TotalSessions        int    `json:"total_sessions"`
	TotalDurationSeconds int64  `json:"total_duration_seconds"`
	PeakHour             int    `json:"peak_hour"`
}

var (
	ErrInvalidDisplayType = errors.New("invalid_display_type")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidDate        = errors.New("invalid_date")
	ErrNotFound           = errors.New("not_found")
)
