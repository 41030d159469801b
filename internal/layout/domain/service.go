package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, pageType string) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	SetActive(ctx context.Context, id string) (*Response, error)
	ActiveForPage(ctx context.Context, pageType string) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Name       string         `json:"name"`
	LayoutType string         `json:"layout_type"`
	PageType   string         `json:"page_type"`
	Config     map[string]any `json:"config"`
	IsActive   *bool          `json:"is_active"`
}

type UpdateRequest struct {
	ID         string          `json:"-"`
	Name       *string         `json:"name"`
	LayoutType *string         `json:"layout_type"`
	Config     *map[string]any `json:"config"`
	IsActive   *bool           `json:"is_active"`
}

type Response struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	LayoutType string         `json:"layout_type"`
	PageType   string         `json:"page_type"`
	Config     map[string]any `json:"config,omitempty"`
	IsActive   bool           `json:"is_active"`
	IsDefault  bool           `json:"is_default,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidPageType = errors.New("invalid_page_type")
	ErrInvalidLayout   = errors.New("invalid_layout_type")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
