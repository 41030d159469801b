package domain

import (
	"time"

	"gorm.io/datatypes"
)

type MenuItem struct {
	ID            int64          `json:"id" gorm:"primaryKey"`
	Name          string         `json:"name" gorm:"type:text;not null;uniqueIndex:ux_menu_items_name"`
	Slug          string         `json:"slug" gorm:"type:text;not null;uniqueIndex:ux_menu_items_slug"`
	Description   *string        `json:"description,omitempty" gorm:"type:text"`
	Price         int64          `json:"price" gorm:"not null"`
	CategoryID    int64          `json:"category_id" gorm:"not null;index:ix_menu_items_category"`
	IsAvailable   bool           `json:"is_available" gorm:"not null;default:true;index:ix_menu_items_available"`
	SortOrder     int            `json:"sort_order" gorm:"not null;default:0"`
	ImageURL      *string        `json:"image_url,omitempty" gorm:"type:text"`
	AllergenCodes datatypes.JSON `json:"allergen_codes,omitempty"`
	Modifiers     datatypes.JSON `json:"modifiers,omitempty"`
	DietaryTags   datatypes.JSON `json:"dietary_tags,omitempty"`

	// ModificationCount increments exactly once per accepted mutation.
	// Create writes 0; LastModifiedAt never moves backwards.
	ModificationCount int       `json:"modification_count" gorm:"not null;default:0"`
	AddedAt           time.Time `json:"added_at" gorm:"not null"`
	LastModifiedAt    time.Time `json:"last_modified_at" gorm:"not null"`
}

func (MenuItem) TableName() string { return "menu_items" }
