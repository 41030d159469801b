package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	ToggleAvailability(ctx context.Context, id string) (*Response, error)
	Delete(ctx context.Context, id string) error
	FullMenu(ctx context.Context) (*FullMenu, error)
}

type Modifier struct {
	Name       string `json:"name"`
	PriceDelta int64  `json:"price_delta"`
}

type ListRequest struct {
	CategoryID string
	Available  *bool
	SortBy     string
	OrderBy    string
}

type CreateRequest struct {
	Name          string     `json:"name"`
	Description   *string    `json:"description"`
	Price         int64      `json:"price"`
	CategoryID    string     `json:"category_id"`
	IsAvailable   *bool      `json:"is_available"`
	SortOrder     *int       `json:"sort_order"`
	ImageURL      *string    `json:"image_url"`
	AllergenCodes []string   `json:"allergen_codes"`
	Modifiers     []Modifier `json:"modifiers"`
	DietaryTags   []string   `json:"dietary_tags"`
}

type UpdateRequest struct {
	ID            string     `json:"-"`
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	Price         *int64     `json:"price"`
	CategoryID    *string    `json:"category_id"`
	IsAvailable   *bool      `json:"is_available"`
	SortOrder     *int       `json:"sort_order"`
	ImageURL      *string    `json:"image_url"`
	AllergenCodes []string   `json:"allergen_codes"`
	Modifiers     []Modifier `json:"modifiers"`
	DietaryTags   []string   `json:"dietary_tags"`
}

type Response struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Slug              string     `json:"slug"`
	Description       *string    `json:"description,omitempty"`
	Price             int64      `json:"price"`
	CategoryID        string     `json:"category_id"`
	IsAvailable       bool       `json:"is_available"`
	SortOrder         int        `json:"sort_order"`
	ImageURL          *string    `json:"image_url,omitempty"`
	AllergenCodes     []string   `json:"allergen_codes,omitempty"`
	Modifiers         []Modifier `json:"modifiers,omitempty"`
	DietaryTags       []string   `json:"dietary_tags,omitempty"`
	ModificationCount int        `json:"modification_count"`
	AddedAt           time.Time  `json:"added_at"`
	LastModifiedAt    time.Time  `json:"last_modified_at"`
}

type FullMenuCategory struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	DisplayName   string     `json:"display_name"`
	LocalizedName *string    `json:"localized_name,omitempty"`
	SortOrder     int        `json:"sort_order"`
	Items         []Response `json:"items"`
}

type FullMenu struct {
	Categories  []FullMenuCategory `json:"categories"`
	GeneratedAt time.Time          `json:"generated_at"`
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
	ErrDuplicateName   = errors.New("duplicate_name")
)
