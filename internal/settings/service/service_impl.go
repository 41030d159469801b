package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/menuboard/internal/clock"
	"github.com/smallbiznis/menuboard/internal/live"
	"github.com/smallbiznis/menuboard/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
	Hub   *live.Hub
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
	hub   *live.Hub
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("settings.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
		hub:   p.Hub,
	}
}

func (s *Service) Get(ctx context.Context, key string) (*domain.SettingResponse, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrInvalidKey
	}

	setting, err := s.repo.FindByKey(ctx, s.db, key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, domain.ErrNotFound
	}

	resp := toSettingResponse(setting)
	return &resp, nil
}

func (s *Service) List(ctx context.Context) ([]domain.SettingResponse, error) {
	settings, err := s.repo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.SettingResponse, 0, len(settings))
	for i := range settings {
		resp = append(resp, toSettingResponse(&settings[i]))
	}
	return resp, nil
}

func (s *Service) Upsert(ctx context.Context, key string, value json.RawMessage) (*domain.SettingResponse, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, domain.ErrInvalidKey
	}
	if len(value) == 0 || !json.Valid(value) {
		return nil, domain.ErrInvalidValue
	}

	now := s.clock.Now()
	setting := &domain.SiteSetting{
		ID:        s.genID.Generate().Int64(),
		Key:       key,
		Value:     datatypes.JSON(value),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Upsert(ctx, s.db, setting); err != nil {
		return nil, err
	}

	s.publish(live.ActionUpdated, key)

	resp := toSettingResponse(setting)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.ErrInvalidKey
	}

	setting, err := s.repo.FindByKey(ctx, s.db, key)
	if err != nil {
		return err
	}
	if setting == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, s.db, key); err != nil {
		return err
	}

	s.publish(live.ActionDeleted, key)
	return nil
}

func (s *Service) SavePreset(ctx context.Context, req domain.PresetRequest) (*domain.PresetResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if len(req.Config) == 0 || !json.Valid(req.Config) {
		return nil, domain.ErrInvalidValue
	}

	now := s.clock.Now()
	preset := &domain.ThemePreset{
		ID:        s.genID.Generate().Int64(),
		Name:      name,
		Config:    datatypes.JSON(req.Config),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreatePreset(ctx, s.db, preset); err != nil {
		return nil, err
	}

	resp := toPresetResponse(preset)
	return &resp, nil
}

func (s *Service) ListPresets(ctx context.Context) ([]domain.PresetResponse, error) {
	presets, err := s.repo.FindPresets(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.PresetResponse, 0, len(presets))
	for i := range presets {
		resp = append(resp, toPresetResponse(&presets[i]))
	}
	return resp, nil
}

// ApplyPreset copies the preset config into the theme setting, making
// it the live theme for every connected display.
func (s *Service) ApplyPreset(ctx context.Context, id string) (*domain.SettingResponse, error) {
	presetID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	preset, err := s.repo.FindPresetByID(ctx, s.db, presetID.Int64())
	if err != nil {
		return nil, err
	}
	if preset == nil {
		return nil, domain.ErrNotFound
	}

	return s.Upsert(ctx, domain.ThemeSettingKey, json.RawMessage(preset.Config))
}

func (s *Service) DeletePreset(ctx context.Context, id string) error {
	presetID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	preset, err := s.repo.FindPresetByID(ctx, s.db, presetID.Int64())
	if err != nil {
		return err
	}
	if preset == nil {
		return domain.ErrNotFound
	}

	return s.repo.DeletePreset(ctx, s.db, preset.ID)
}

func (s *Service) publish(action, key string) {
	s.hub.Publish(live.TopicSettings, live.Event{
		Entity:     live.TopicSettings,
		Action:     action,
		ID:         key,
		OccurredAt: s.clock.Now().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

func toSettingResponse(setting *domain.SiteSetting) domain.SettingResponse {
	return domain.SettingResponse{
		Key:       setting.Key,
		Value:     json.RawMessage(setting.Value),
		UpdatedAt: setting.UpdatedAt,
	}
}

func toPresetResponse(preset *domain.ThemePreset) domain.PresetResponse {
	return domain.PresetResponse{
		ID:        snowflake.ID(preset.ID).String(),
		Name:      preset.Name,
		Config:    json.RawMessage(preset.Config),
		CreatedAt: preset.CreatedAt,
		UpdatedAt: preset.UpdatedAt,
	}
}
