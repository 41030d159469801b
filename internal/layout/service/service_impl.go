package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/menuboard/internal/clock"
	"github.com/smallbiznis/menuboard/internal/layout/domain"
	"github.com/smallbiznis/menuboard/internal/live"
	"github.com/smallbiznis/menuboard/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Hub     *live.Hub
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	hub     *live.Hub
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("layout.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		hub:     p.Hub,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	layoutType := strings.TrimSpace(req.LayoutType)
	if layoutType == "" {
		return nil, domain.ErrInvalidLayout
	}
	pageType := strings.TrimSpace(req.PageType)
	if !domain.ValidPageType(pageType) {
		return nil, domain.ErrInvalidPageType
	}

	active := false
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := s.clock.Now()
	layout := &domain.DisplayLayout{
		ID:         s.genID.Generate().Int64(),
		Name:       name,
		LayoutType: layoutType,
		PageType:   pageType,
		IsActive:   active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.Config != nil {
		layout.Config = datatypes.JSONMap(req.Config)
	}

	// Siblings lose the flag in the same transaction as the insert, so
	// two layouts never read active at once.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if layout.IsActive {
			if err := s.repo.DeactivateSiblings(ctx, tx, pageType, layout.ID, now); err != nil {
				return err
			}
		}
		return s.repo.Create(ctx, tx, layout)
	})
	if err != nil {
		return nil, err
	}

	s.publish(live.ActionCreated, layout.ID)
	s.metrics.RecordMenuMutation("layout", live.ActionCreated)

	resp := toResponse(layout)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, pageType string) ([]domain.Response, error) {
	trimmed := strings.TrimSpace(pageType)

	var (
		layouts []domain.DisplayLayout
		err     error
	)
	if trimmed == "" {
		layouts, err = s.repo.FindAll(ctx, s.db)
	} else {
		if !domain.ValidPageType(trimmed) {
			return nil, domain.ErrInvalidPageType
		}
		layouts, err = s.repo.FindByPageType(ctx, s.db, trimmed)
	}
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(layouts))
	for i := range layouts {
		resp = append(resp, toResponse(&layouts[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	layout, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toResponse(layout)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	layout, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		layout.Name = name
	}
	if req.LayoutType != nil {
		layoutType := strings.TrimSpace(*req.LayoutType)
		if layoutType == "" {
			return nil, domain.ErrInvalidLayout
		}
		layout.LayoutType = layoutType
	}
	if req.Config != nil {
		layout.Config = datatypes.JSONMap(*req.Config)
	}

	activating := req.IsActive != nil && *req.IsActive && !layout.IsActive
	if req.IsActive != nil {
		layout.IsActive = *req.IsActive
	}

	now := s.clock.Now()
	layout.UpdatedAt = now
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if activating {
			if err := s.repo.DeactivateSiblings(ctx, tx, layout.PageType, layout.ID, now); err != nil {
				return err
			}
		}
		return s.repo.Update(ctx, tx, layout)
	})
	if err != nil {
		return nil, err
	}

	s.publish(live.ActionUpdated, layout.ID)
	s.metrics.RecordMenuMutation("layout", live.ActionUpdated)

	resp := toResponse(layout)
	return &resp, nil
}

// SetActive flips the flag to the target layout. Load, sibling
// deactivation and activation share one transaction, so concurrent calls
// serialize instead of leaving zero or two active layouts.
func (s *Service) SetActive(ctx context.Context, id string) (*domain.Response, error) {
	layoutID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var layout *domain.DisplayLayout
	now := s.clock.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		layout, err = s.repo.FindByID(ctx, tx, layoutID.Int64())
		if err != nil {
			return err
		}
		if layout == nil {
			return domain.ErrNotFound
		}
		if err := s.repo.DeactivateSiblings(ctx, tx, layout.PageType, layout.ID, now); err != nil {
			return err
		}
		layout.IsActive = true
		layout.UpdatedAt = now
		return s.repo.Update(ctx, tx, layout)
	})
	if err != nil {
		return nil, err
	}

	s.publish(live.ActionUpdated, layout.ID)
	s.metrics.RecordMenuMutation("layout", "activated")

	resp := toResponse(layout)
	return &resp, nil
}

// ActiveForPage returns the active layout for the page type, or the
// built-in default when none has been activated yet.
func (s *Service) ActiveForPage(ctx context.Context, pageType string) (*domain.Response, error) {
	trimmed := strings.TrimSpace(pageType)
	if !domain.ValidPageType(trimmed) {
		return nil, domain.ErrInvalidPageType
	}

	layout, err := s.repo.FindActiveByPageType(ctx, s.db, trimmed)
	if err != nil {
		return nil, err
	}
	if layout == nil {
		resp := defaultResponse(trimmed, s.clock.Now())
		return &resp, nil
	}

	resp := toResponse(layout)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	layout, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, s.db, layout.ID); err != nil {
		return err
	}

	s.publish(live.ActionDeleted, layout.ID)
	s.metrics.RecordMenuMutation("layout", live.ActionDeleted)
	return nil
}

func (s *Service) load(ctx context.Context, id string) (*domain.DisplayLayout, error) {
	layoutID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	layout, err := s.repo.FindByID(ctx, s.db, layoutID.Int64())
	if err != nil {
		return nil, err
	}
	if layout == nil {
		return nil, domain.ErrNotFound
	}
	return layout, nil
}

func (s *Service) publish(action string, id int64) {
	s.hub.Publish(live.TopicLayouts, live.Event{
		Entity:     live.TopicLayouts,
		Action:     action,
		ID:         snowflake.ID(id).String(),
		OccurredAt: s.clock.Now().Format(time.RFC3339Nano),
	})
}

func toResponse(layout *domain.DisplayLayout) domain.Response {
	resp := domain.Response{
		ID:         snowflake.ID(layout.ID).String(),
		Name:       layout.Name,
		LayoutType: layout.LayoutType,
		PageType:   layout.PageType,
		IsActive:   layout.IsActive,
		CreatedAt:  layout.CreatedAt,
		UpdatedAt:  layout.UpdatedAt,
	}
	if len(layout.Config) > 0 {
		resp.Config = map[string]any(layout.Config)
	}
	return resp
}

func defaultResponse(pageType string, now time.Time) domain.Response {
	return domain.Response{
		Name:       "Default",
		LayoutType: "grid",
		PageType:   pageType,
		Config: map[string]any{
			"show_images":       true,
			"show_prices":       true,
			"show_descriptions": true,
		},
		IsActive:  true,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
