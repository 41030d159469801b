package repository

import (
	"context"
	"time"

	"github.com/smallbiznis/menuboard/internal/layout/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const layoutColumns = `id, name, layout_type, page_type, config, is_active, created_at, updated_at`

func (r *repo) Create(ctx context.Context, db *gorm.DB, layout *domain.DisplayLayout) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO display_layouts (id, name, layout_type, page_type, config, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		layout.ID,
		layout.Name,
		layout.LayoutType,
		layout.PageType,
		layout.Config,
		layout.IsActive,
		layout.CreatedAt,
		layout.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.DisplayLayout, error) {
	var layout domain.DisplayLayout
	err := db.WithContext(ctx).Raw(
		`SELECT `+layoutColumns+` FROM display_layouts WHERE id = ?`,
		id,
	).Scan(&layout).Error
	if err != nil {
		return nil, err
	}
	if layout.ID == 0 {
		return nil, nil
	}
	return &layout, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.DisplayLayout, error) {
	var layouts []domain.DisplayLayout
	err := db.WithContext(ctx).Raw(
		`SELECT ` + layoutColumns + ` FROM display_layouts ORDER BY page_type ASC, name ASC`,
	).Scan(&layouts).Error
	if err != nil {
		return nil, err
	}
	return layouts, nil
}

func (r *repo) FindByPageType(ctx context.Context, db *gorm.DB, pageType string) ([]domain.DisplayLayout, error) {
	var layouts []domain.DisplayLayout
	err := db.WithContext(ctx).Raw(
		`SELECT `+layoutColumns+` FROM display_layouts WHERE page_type = ? ORDER BY name ASC`,
		pageType,
	).Scan(&layouts).Error
	if err != nil {
		return nil, err
	}
	return layouts, nil
}

func (r *repo) FindActiveByPageType(ctx context.Context, db *gorm.DB, pageType string) (*domain.DisplayLayout, error) {
	var layout domain.DisplayLayout
	err := db.WithContext(ctx).Raw(
		`SELECT `+layoutColumns+` FROM display_layouts WHERE page_type = ? AND is_active = ? LIMIT 1`,
		pageType,
		true,
	).Scan(&layout).Error
	if err != nil {
		return nil, err
	}
	if layout.ID == 0 {
		return nil, nil
	}
	return &layout, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, layout *domain.DisplayLayout) error {
	if layout == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE display_layouts
		 SET name = ?, layout_type = ?, config = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		layout.Name,
		layout.LayoutType,
		layout.Config,
		layout.IsActive,
		layout.UpdatedAt,
		layout.ID,
	).Error
}

func (r *repo) DeactivateSiblings(ctx context.Context, db *gorm.DB, pageType string, exceptID int64, updatedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE display_layouts SET is_active = ?, updated_at = ?
		 WHERE page_type = ? AND is_active = ? AND id <> ?`,
		false,
		updatedAt,
		pageType,
		true,
		exceptID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(`DELETE FROM display_layouts WHERE id = ?`, id).Error
}
