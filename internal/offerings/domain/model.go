package domain

import (
	"time"

	"gorm.io/datatypes"
)

type EventPackage struct {
	ID             int64          `json:"id" gorm:"primaryKey"`
	Name           string         `json:"name" gorm:"type:text;not null"`
	Description    *string        `json:"description,omitempty" gorm:"type:text"`
	PricePerPerson int64          `json:"price_per_person" gorm:"not null"`
	MinGuests      int            `json:"min_guests" gorm:"not null;default:0"`
	MaxGuests      int            `json:"max_guests" gorm:"not null;default:0"`
	Includes       datatypes.JSON `json:"includes,omitempty"`
	IsActive       bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt      time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"not null"`
}

func (EventPackage) TableName() string { return "event_packages" }

type CateringMenu struct {
	ID             int64          `json:"id" gorm:"primaryKey"`
	Name           string         `json:"name" gorm:"type:text;not null"`
	Description    *string        `json:"description,omitempty" gorm:"type:text"`
	PricePerPerson int64          `json:"price_per_person" gorm:"not null"`
	MinOrder       int            `json:"min_order" gorm:"not null;default:0"`
	Items          datatypes.JSON `json:"items,omitempty"`
	IsActive       bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt      time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time      `json:"updated_at" gorm:"not null"`
}

func (CateringMenu) TableName() string { return "catering_menus" }

// SchoolMeal is one planned meal slot. The (year, week_number,
// day_of_week) triple is unique; a second meal for the same slot is a
// user-facing duplicate error, not an upsert.
type SchoolMeal struct {
	ID            int64          `json:"id" gorm:"primaryKey"`
	Year          int            `json:"year" gorm:"not null;uniqueIndex:ux_school_meals_slot,priority:1"`
	WeekNumber    int            `json:"week_number" gorm:"not null;uniqueIndex:ux_school_meals_slot,priority:2"`
	DayOfWeek     int            `json:"day_of_week" gorm:"not null;uniqueIndex:ux_school_meals_slot,priority:3"`
	Name          string         `json:"name" gorm:"type:text;not null"`
	Description   *string        `json:"description,omitempty" gorm:"type:text"`
	Price         int64          `json:"price" gorm:"not null"`
	AllergenCodes datatypes.JSON `json:"allergen_codes,omitempty"`
	IsActive      bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt     time.Time      `json:"created_at" gorm:"not null"`
	UpdatedAt     time.Time      `json:"updated_at" gorm:"not null"`
}

func (SchoolMeal) TableName() string { return "school_meals" }
