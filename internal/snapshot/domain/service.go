package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	CreateDailySnapshot(ctx context.Context, date string) (*Response, error)
	Get(ctx context.Context, date string) (*Response, error)
	ListDates(ctx context.Context) ([]string, error)
}

type Response struct {
	ID        string         `json:"id"`
	Date      string         `json:"date"`
	Snapshot  map[string]any `json:"snapshot"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

var (
	ErrInvalidDate = errors.New("invalid_date")
	ErrNotFound    = errors.New("not_found")
)
