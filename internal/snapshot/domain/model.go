package domain

import (
	"time"

	"gorm.io/datatypes"
)

// DateLayout is the calendar-day key format for snapshots.
const DateLayout = "2006-01-02"

const PayloadSchemaVersion = 1

// DailySnapshot holds one immutable-per-read copy of the full menu for a
// calendar date. Re-running the snapshot for a date replaces the payload.
type DailySnapshot struct {
	ID        int64          `json:"id" gorm:"primaryKey"`
	Date      string         `json:"date" gorm:"type:text;not null;uniqueIndex:ux_daily_snapshots_date"`
	Snapshot  datatypes.JSON `json:"snapshot" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"not null"`
}

func (DailySnapshot) TableName() string { return "daily_snapshots" }
