package repository

import (
	"context"

	"github.com/smallbiznis/menuboard/internal/menuitem/domain"
	"github.com/smallbiznis/menuboard/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const itemColumns = `id, name, slug, description, price, category_id, is_available, sort_order,
	 image_url, allergen_codes, modifiers, dietary_tags, modification_count, added_at, last_modified_at`

func (r *repo) Create(ctx context.Context, db *gorm.DB, item *domain.MenuItem) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO menu_items (id, name, slug, description, price, category_id, is_available, sort_order,
		 image_url, allergen_codes, modifiers, dietary_tags, modification_count, added_at, last_modified_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Name,
		item.Slug,
		item.Description,
		item.Price,
		item.CategoryID,
		item.IsAvailable,
		item.SortOrder,
		item.ImageURL,
		item.AllergenCodes,
		item.Modifiers,
		item.DietaryTags,
		item.ModificationCount,
		item.AddedAt,
		item.LastModifiedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := db.WithContext(ctx).Raw(
		`SELECT `+itemColumns+` FROM menu_items WHERE id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindBySlug(ctx context.Context, db *gorm.DB, slug string) (*domain.MenuItem, error) {
	var item domain.MenuItem
	err := db.WithContext(ctx).Raw(
		`SELECT `+itemColumns+` FROM menu_items WHERE slug = ?`,
		slug,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	err := db.WithContext(ctx).Raw(
		`SELECT ` + itemColumns + ` FROM menu_items ORDER BY sort_order ASC, name ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.MenuItem, error) {
	var items []domain.MenuItem
	stmt := db.WithContext(ctx).Model(&domain.MenuItem{})

	if filter.CategoryID != nil {
		stmt = stmt.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Available != nil {
		stmt = stmt.Where("is_available = ?", *filter.Available)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"sort_order":       true,
		"name":             true,
		"price":            true,
		"last_modified_at": true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, item *domain.MenuItem) error {
	if item == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE menu_items
		 SET name = ?, slug = ?, description = ?, price = ?, category_id = ?, is_available = ?,
		     sort_order = ?, image_url = ?, allergen_codes = ?, modifiers = ?, dietary_tags = ?,
		     modification_count = ?, last_modified_at = ?
		 WHERE id = ?`,
		item.Name,
		item.Slug,
		item.Description,
		item.Price,
		item.CategoryID,
		item.IsAvailable,
		item.SortOrder,
		item.ImageURL,
		item.AllergenCodes,
		item.Modifiers,
		item.DietaryTags,
		item.ModificationCount,
		item.LastModifiedAt,
		item.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(`DELETE FROM menu_items WHERE id = ?`, id).Error
}
