package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	History(ctx context.Context, menuItemID string, limit int) ([]EntryResponse, error)
	Recent(ctx context.Context, limit int) ([]EntryResponse, error)
	InRange(ctx context.Context, start, end time.Time) ([]EntryResponse, error)
	ItemStats(ctx context.Context, menuItemID string) (*ItemStats, error)
	MenuStats(ctx context.Context) (*MenuStats, error)
}

type EntryResponse struct {
	ID         string         `json:"id"`
	MenuItemID string         `json:"menu_item_id"`
	Snapshot   map[string]any `json:"snapshot"`
	ChangeType string         `json:"change_type"`
	ChangedAt  time.Time      `json:"changed_at"`
}

type ItemStats struct {
	MenuItemID          string     `json:"menu_item_id"`
	TotalModifications  int        `json:"total_modifications"`
	PriceChanges        int        `json:"price_changes"`
	AvailabilityChanges int        `json:"availability_changes"`
	FirstChangeAt       *time.Time `json:"first_change_at,omitempty"`
	LastChangeAt        *time.Time `json:"last_change_at,omitempty"`
	LastChangeType      string     `json:"last_change_type,omitempty"`
}

type MenuStats struct {
	TotalEntries     int            `json:"total_entries"`
	ByChangeType     map[string]int `json:"by_change_type"`
	ChangesLast7Days int            `json:"changes_last_7_days"`
	MostModifiedItem string         `json:"most_modified_item,omitempty"`
	MostModifiedHits int            `json:"most_modified_hits"`
}

var (
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidRange = errors.New("invalid_range")
)
