package domain

import (
	"time"

	"gorm.io/datatypes"
)

// SiteSetting is a singleton JSON document per key. Writes are
// upserts; there is never more than one row per key.
type SiteSetting struct {
	ID        int64          `json:"id" gorm:"primaryKey"`
	Key       string         `json:"key" gorm:"type:text;not null;uniqueIndex"`
	Value     datatypes.JSON `json:"value" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"not null"`
}

func (SiteSetting) TableName() string { return "site_settings" }

type ThemePreset struct {
	ID        int64          `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"type:text;not null"`
	Config    datatypes.JSON `json:"config" gorm:"not null"`
	CreatedAt time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"not null"`
}

func (ThemePreset) TableName() string { return "theme_presets" }

// ThemeSettingKey is the site_settings key holding the applied theme.
const ThemeSettingKey = "theme"
