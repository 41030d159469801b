package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PageTypeDisplay = "display"
	PageTypeOrder   = "order"
)

// DisplayLayout carries the presentation config for one page type. At
// most one layout per page_type holds is_active=true; the service closes
// the race window by doing sibling deactivation and activation in one
// transaction.
type DisplayLayout struct {
	ID         int64             `json:"id" gorm:"primaryKey"`
	Name       string            `json:"name" gorm:"type:text;not null"`
	LayoutType string            `json:"layout_type" gorm:"type:text;not null"`
	PageType   string            `json:"page_type" gorm:"type:text;not null;index:ix_display_layouts_page_active,priority:1"`
	Config     datatypes.JSONMap `json:"config"`
	IsActive   bool              `json:"is_active" gorm:"not null;default:false;index:ix_display_layouts_page_active,priority:2"`
	CreatedAt  time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time         `json:"updated_at" gorm:"not null"`
}

func (DisplayLayout) TableName() string { return "display_layouts" }

func ValidPageType(pageType string) bool {
	switch pageType {
	case PageTypeDisplay, PageTypeOrder:
		return true
	default:
		return false
	}
}
