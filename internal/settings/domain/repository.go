package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	FindByKey(ctx context.Context, db *gorm.DB, key string) (*SiteSetting, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]SiteSetting, error)
	Upsert(ctx context.Context, db *gorm.DB, setting *SiteSetting) error
	Delete(ctx context.Context, db *gorm.DB, key string) error

	CreatePreset(ctx context.Context, db *gorm.DB, preset *ThemePreset) error
	FindPresetByID(ctx context.Context, db *gorm.DB, id int64) (*ThemePreset, error)
	FindPresets(ctx context.Context, db *gorm.DB) ([]ThemePreset, error)
	UpdatePreset(ctx context.Context, db *gorm.DB, preset *ThemePreset) error
	DeletePreset(ctx context.Context, db *gorm.DB, id int64) error
}
