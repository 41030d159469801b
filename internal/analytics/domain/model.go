package domain

import "time"

// Display types viewers report when a board connects.
const (
	DisplayTypeMobile = "mobile"
	DisplayTypeTV     = "tv"
)

func ValidDisplayType(displayType string) bool {
	return displayType == DisplayTypeMobile || displayType == DisplayTypeTV
}

type DisplaySession struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	DisplayType string     `json:"display_type" gorm:"type:text;not null;index"`
	ClientID    string     `json:"client_id" gorm:"type:text;not null"`
	StartedAt   time.Time  `json:"started_at" gorm:"not null;index"`
	LastSeenAt  time.Time  `json:"last_seen_at" gorm:"not null"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`

	// DurationSeconds is set when the session ends.
	DurationSeconds int64 `json:"duration_seconds" gorm:"not null;default:0"`
}

func (DisplaySession) TableName() string { return "display_sessions" }

// DailyAggregate is one rollup row per (date, display_type). Re-running
// the rollup for a date replaces the row rather than adding another.
type DailyAggregate struct {
	ID                   int64     `json:"id" gorm:"primaryKey"`
	Date                 string    `json:"date" gorm:"type:text;not null;uniqueIndex:ux_analytics_day,priority:1"`
	DisplayType          string    `json:"display_type" gorm:"type:text;not null;uniqueIndex:ux_analytics_day,priority:2"`
	TotalSessions        int       `json:"total_sessions" gorm:"not null"`
	TotalDurationSeconds int64     `json:"total_duration_seconds" gorm:"not null"`
	PeakHour             int       `json:"peak_hour" gorm:"not null"`
	CreatedAt            time.Time `json:"created_at" gorm:"not null"`
	UpdatedAt            time.Time `json:"updated_at" gorm:"not null"`
}

func (DailyAggregate) TableName() string { return "analytics_aggregates" }
