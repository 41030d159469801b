package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/menuboard/pkg/db/pagination"
)

type Service interface {
	AddItem(ctx context.Context, req AddItemRequest) (*Response, error)
	UpdateQuantity(ctx context.Context, req UpdateQuantityRequest) (*Response, error)
	Active(ctx context.Context, sessionID string) (*Response, error)
	Clear(ctx context.Context, sessionID string) (*Response, error)
	Submit(ctx context.Context, req SubmitRequest) (*Response, error)
	Complete(ctx context.Context, orderID string) (*Response, error)
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	Delete(ctx context.Context, orderID string) error
}

type AddItemRequest struct {
	SessionID         string     `json:"session_id"`
	MenuItemID        string     `json:"menu_item_id"`
	Quantity          int        `json:"quantity"`
	SelectedModifiers []Modifier `json:"selected_modifiers"`
}

type UpdateQuantityRequest struct {
	SessionID string `json:"session_id"`
	LineID    string `json:"line_id"`
	Quantity  int    `json:"quantity"`
}

type SubmitRequest struct {
	SessionID   string  `json:"session_id"`
	TableNumber *string `json:"table_number"`
	Notes       *string `json:"notes"`
}

type Response struct {
	ID          string     `json:"id"`
	SessionID   string     `json:"session_id"`
	Status      string     `json:"status"`
	Items       []Line     `json:"items"`
	Subtotal    int64      `json:"subtotal"`
	Tax         int64      `json:"tax"`
	Total       int64      `json:"total"`
	TableNumber *string    `json:"table_number,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ListRequest struct {
	Status string `form:"status"`
	pagination.Pagination
}

type ListResponse struct {
	Orders   []Response          `json:"orders"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

var (
	ErrInvalidSession  = errors.New("invalid_session")
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidItem     = errors.New("invalid_item")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrInvalidStatus   = errors.New("invalid_status")
	ErrNotFound        = errors.New("not_found")
	ErrEmptyOrder      = errors.New("empty_order")
	ErrLineNotFound    = errors.New("line_not_found")
	ErrInvalidCursor   = errors.New("invalid_page_token")
)
