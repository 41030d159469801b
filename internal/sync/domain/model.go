package domain

import "time"

// StateID is the fixed primary key of the singleton sync_state row,
// initialized on first use.
const StateID int64 = 1

const (
	StatusIdle    = "idle"
	StatusSyncing = "syncing"
	StatusError   = "error"
)

type SyncState struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	LastSyncAt   *time.Time `json:"last_sync_at,omitempty"`
	Status       string     `json:"status" gorm:"type:text;not null;default:idle"`
	ErrorMessage *string    `json:"error_message,omitempty" gorm:"type:text"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"not null"`
}

func (SyncState) TableName() string { return "sync_state" }

// CategoryRow is one externally sourced category record. Matching is by
// name; a renamed source row shows up as a brand new category and the old
// one is never deleted.
type CategoryRow struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

type ItemRow struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Price        int64   `json:"price"`
	CategoryName string  `json:"category_name"`
	IsAvailable  *bool   `json:"is_available"`
	SortOrder    int     `json:"sort_order"`
	ImageURL     *string `json:"image_url"`
}

type CategoryResult struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

type ItemResult struct {
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Unchanged int      `json:"unchanged"`
	Errors    []string `json:"errors"`
}

type Result struct {
	Categories CategoryResult `json:"categories"`
	Items      ItemResult     `json:"items"`
}
