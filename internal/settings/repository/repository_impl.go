package repository

import (
	"context"

	"github.com/smallbiznis/menuboard/internal/settings/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, key string) (*domain.SiteSetting, error) {
	var setting domain.SiteSetting
	err := db.WithContext(ctx).Raw(
		`SELECT id, key, value, created_at, updated_at FROM site_settings WHERE key = ?`,
		key,
	).Scan(&setting).Error
	if err != nil {
		return nil, err
	}
	if setting.ID == 0 {
		return nil, nil
	}
	return &setting, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.SiteSetting, error) {
	var settings []domain.SiteSetting
	err := db.WithContext(ctx).Raw(
		`SELECT id, key, value, created_at, updated_at FROM site_settings ORDER BY key ASC`,
	).Scan(&settings).Error
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// Upsert updates the row for the key, inserting when absent. The
// unique index on key keeps concurrent first writes from doubling up.
func (r *repo) Upsert(ctx context.Context, db *gorm.DB, setting *domain.SiteSetting) error {
	res := db.WithContext(ctx).Exec(
		`UPDATE site_settings SET value = ?, updated_at = ? WHERE key = ?`,
		setting.Value,
		setting.UpdatedAt,
		setting.Key,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO site_settings (id, key, value, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		setting.ID,
		setting.Key,
		setting.Value,
		setting.CreatedAt,
		setting.UpdatedAt,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, key string) error {
	return db.WithContext(ctx).Exec(`DELETE FROM site_settings WHERE key = ?`, key).Error
}

func (r *repo) CreatePreset(ctx context.Context, db *gorm.DB, preset *domain.ThemePreset) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO theme_presets (id, name, config, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		preset.ID,
		preset.Name,
		preset.Config,
		preset.CreatedAt,
		preset.UpdatedAt,
	).Error
}

func (r *repo) FindPresetByID(ctx context.Context, db *gorm.DB, id int64) (*domain.ThemePreset, error) {
	var preset domain.ThemePreset
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, config, created_at, updated_at FROM theme_presets WHERE id = ?`,
		id,
	).Scan(&preset).Error
	if err != nil {
		return nil, err
	}
	if preset.ID == 0 {
		return nil, nil
	}
	return &preset, nil
}

func (r *repo) FindPresets(ctx context.Context, db *gorm.DB) ([]domain.ThemePreset, error) {
	var presets []domain.ThemePreset
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, config, created_at, updated_at FROM theme_presets ORDER BY name ASC`,
	).Scan(&presets).Error
	if err != nil {
		return nil, err
	}
	return presets, nil
}

func (r *repo) UpdatePreset(ctx context.Context, db *gorm.DB, preset *domain.ThemePreset) error {
	if preset == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE theme_presets SET name = ?, config = ?, updated_at = ? WHERE id = ?`,
		preset.Name,
		preset.Config,
		preset.UpdatedAt,
		preset.ID,
	).Error
}

func (r *repo) DeletePreset(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(`DELETE FROM theme_presets WHERE id = ?`, id).Error
}
