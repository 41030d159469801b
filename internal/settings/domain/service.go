package domain

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

type Service interface {
	Get(ctx context.Context, key string) (*SettingResponse, error)
	List(ctx context.Context) ([]SettingResponse, error)
	Upsert(ctx context.Context, key string, value json.RawMessage) (*SettingResponse, error)
	Delete(ctx context.Context, key string) error

	SavePreset(ctx context.Context, req PresetRequest) (*PresetResponse, error)
	ListPresets(ctx context.Context) ([]PresetResponse, error)
	ApplyPreset(ctx context.Context, id string) (*SettingResponse, error)
	DeletePreset(ctx context.Context, id string) error
}

type SettingResponse struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type PresetRequest struct {
	Name   string          `json:"name"`
	Config json.RawMessage `json:"config"`
}

type PresetResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Config    json.RawMessage `json:"config"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

var (
	ErrInvalidKey   = errors.New("invalid_key")
	ErrInvalidValue = errors.New("invalid_value")
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
