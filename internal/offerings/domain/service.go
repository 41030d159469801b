package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	CreateEventPackage(ctx context.Context, req EventPackageRequest) (*EventPackageResponse, error)
	ListEventPackages(ctx context.Context, activeOnly bool) ([]EventPackageResponse, error)
	UpdateEventPackage(ctx context.Context, id string, req EventPackageRequest) (*EventPackageResponse, error)
	DeleteEventPackage(ctx context.Context, id string) error

	CreateCateringMenu(ctx context.Context, req CateringMenuRequest) (*CateringMenuResponse, error)
	ListCateringMenus(ctx context.Context, activeOnly bool) ([]CateringMenuResponse, error)
	UpdateCateringMenu(ctx context.Context, id string, req CateringMenuRequest) (*CateringMenuResponse, error)
	DeleteCateringMenu(ctx context.Context, id string) error

	CreateSchoolMeal(ctx context.Context, req SchoolMealRequest) (*SchoolMealResponse, error)
	ListSchoolMealsForWeek(ctx context.Context, year, week int) ([]SchoolMealResponse, error)
	UpdateSchoolMeal(ctx context.Context, id string, req SchoolMealRequest) (*SchoolMealResponse, error)
	DeleteSchoolMeal(ctx context.Context, id string) error
}

type EventPackageRequest struct {
	Name           string   `json:"name"`
	Description    *string  `json:"description"`
	PricePerPerson int64    `json:"price_per_person"`
	MinGuests      int      `json:"min_guests"`
	MaxGuests      int      `json:"max_guests"`
	Includes       []string `json:"includes"`
	IsActive       *bool    `json:"is_active"`
}

type EventPackageResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description,omitempty"`
	PricePerPerson int64     `json:"price_per_person"`
	MinGuests      int       `json:"min_guests"`
	MaxGuests      int       `json:"max_guests"`
	Includes       []string  `json:"includes,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CateringMenuRequest struct {
	Name           string   `json:"name"`
	Description    *string  `json:"description"`
	PricePerPerson int64    `json:"price_per_person"`
	MinOrder       int      `json:"min_order"`
	Items          []string `json:"items"`
	IsActive       *bool    `json:"is_active"`
}

type CateringMenuResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description,omitempty"`
	PricePerPerson int64     `json:"price_per_person"`
	MinOrder       int       `json:"min_order"`
	Items          []string  `json:"items,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type SchoolMealRequest struct {
	Year          int      `json:"year"`
	WeekNumber    int      `json:"week_number"`
	DayOfWeek     int      `json:"day_of_week"`
	Name          string   `json:"name"`
	Description   *string  `json:"description"`
	Price         int64    `json:"price"`
	AllergenCodes []string `json:"allergen_codes"`
	IsActive      *bool    `json:"is_active"`
}

type SchoolMealResponse struct {
	ID            string    `json:"id"`
	Year          int       `json:"year"`
	WeekNumber    int       `json:"week_number"`
	DayOfWeek     int       `json:"day_of_week"`
	Name          string    `json:"name"`
	Description   *string   `json:"description,omitempty"`
	Price         int64     `json:"price"`
	AllergenCodes []string  `json:"allergen_codes,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

var (
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidID     = errors.New("invalid_id")
	ErrInvalidSlot   = errors.New("invalid_meal_slot")
	ErrNotFound      = errors.New("not_found")
	ErrDuplicateMeal = errors.New("duplicate_meal")
)
