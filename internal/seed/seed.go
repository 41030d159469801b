package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	categorydomain "github.com/smallbiznis/menuboard/internal/category/domain"
	layoutdomain "github.com/smallbiznis/menuboard/internal/layout/domain"
	settingsdomain "github.com/smallbiznis/menuboard/internal/settings/domain"
)

const defaultTheme = `{"primary_color":"#1f2937","accent_color":"#f59e0b","font_family":"Inter","currency":{"base":"USD","rates":{"USD":1},"source":"fallback"}}`

var starterCategories = []struct {
	Name        string
	DisplayName string
	SortOrder   int
}{
	{Name: "mains", DisplayName: "Mains", SortOrder: 1},
	{Name: "sides", DisplayName: "Sides", SortOrder: 2},
	{Name: "drinks", DisplayName: "Drinks", SortOrder: 3},
}

// EnsureDefaults seeds the layouts, starter categories and theme a fresh
// install needs before the first admin login. Safe to call on every
// startup.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureDefaultLayoutsTx(ctx, tx, node); err != nil {
			return err
		}
		if err := ensureStarterCategoriesTx(ctx, tx, node); err != nil {
			return err
		}
		return ensureDefaultThemeTx(ctx, tx, node)
	})
}

func ensureDefaultLayoutsTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	defaults := []layoutdomain.DisplayLayout{
		{
			Name:       "Classic Grid",
			LayoutType: "grid",
			PageType:   layoutdomain.PageTypeDisplay,
			IsActive:   true,
		},
		{
			Name:       "Order Kiosk",
			LayoutType: "list",
			PageType:   layoutdomain.PageTypeOrder,
			IsActive:   true,
		},
	}

	for _, layout := range defaults {
		var count int64
		err := tx.WithContext(ctx).
			Model(&layoutdomain.DisplayLayout{}).
			Where("page_type = ?", layout.PageType).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		now := time.Now().UTC()
		layout.ID = node.Generate().Int64()
		layout.Config = datatypes.JSONMap{}
		layout.CreatedAt = now
		layout.UpdatedAt = now
		if err := tx.WithContext(ctx).Create(&layout).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureStarterCategoriesTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	err := tx.WithContext(ctx).
		Model(&categorydomain.Category{}).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, starter := range starterCategories {
		category := categorydomain.Category{
			ID:          node.Generate().Int64(),
			Name:        starter.Name,
			Slug:        slug.Make(starter.Name),
			DisplayName: starter.DisplayName,
			SortOrder:   starter.SortOrder,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.WithContext(ctx).Create(&category).Error; err != nil {
			return err
		}
	}
	return nil
}

func ensureDefaultThemeTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var setting settingsdomain.SiteSetting
	err := tx.WithContext(ctx).
		Where("key = ?", settingsdomain.ThemeSettingKey).
		First(&setting).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	setting = settingsdomain.SiteSetting{
		ID:        node.Generate().Int64(),
		Key:       settingsdomain.ThemeSettingKey,
		Value:     datatypes.JSON(defaultTheme),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return tx.WithContext(ctx).Create(&setting).Error
}
