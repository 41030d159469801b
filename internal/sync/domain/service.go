package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	SyncCategories(ctx context.Context, rows []CategoryRow) (*CategoryResult, error)
	SyncMenuItems(ctx context.Context, rows []ItemRow) (*ItemResult, error)
	SyncFromSheet(ctx context.Context) (*Result, error)
	State(ctx context.Context) (*StateResponse, error)
}

// SourceFetcher pulls category and item rows from the external sync
// source. Fetch calls must carry their own timeouts so a stalled source
// never blocks the store.
type SourceFetcher interface {
	FetchCategories(ctx context.Context) ([]CategoryRow, error)
	FetchMenuItems(ctx context.Context) ([]ItemRow, error)
}

type StateResponse struct {
	LastSyncAt   *time.Time `json:"last_sync_at,omitempty"`
	Status       string     `json:"status"`
	ErrorMessage *string    `json:"error_message,omitempty"`
}

var (
	ErrNotConfigured = errors.New("sync_not_configured")
	ErrFetchFailed   = errors.New("sync_fetch_failed")
)
