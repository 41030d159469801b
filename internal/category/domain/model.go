package domain

import "time"

type Category struct {
	ID            int64     `json:"id" gorm:"primaryKey"`
	Name          string    `json:"name" gorm:"type:text;not null;uniqueIndex:ux_categories_name"`
	Slug          string    `json:"slug" gorm:"type:text;not null;uniqueIndex:ux_categories_slug"`
	DisplayName   string    `json:"display_name" gorm:"type:text;not null"`
	LocalizedName *string   `json:"localized_name,omitempty" gorm:"type:text"`
	SortOrder     int       `json:"sort_order" gorm:"not null;default:0;index:ix_categories_sort_order"`
	IsActive      bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt     time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Category) TableName() string { return "categories" }
