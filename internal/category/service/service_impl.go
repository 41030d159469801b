package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/menuboard/internal/category/domain"
	"github.com/smallbiznis/menuboard/internal/clock"
	"github.com/smallbiznis/menuboard/internal/live"
	"github.com/smallbiznis/menuboard/internal/observability/metrics"
	"github.com/smallbiznis/menuboard/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
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
		log:     p.Log.Named("category.service"),
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

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = name
	}

	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := s.clock.Now()
	c := &domain.Category{
		ID:            s.genID.Generate().Int64(),
		Name:          name,
		Slug:          slug.Make(name),
		DisplayName:   displayName,
		LocalizedName: normalizePointer(req.LocalizedName),
		SortOrder:     sortOrder,
		IsActive:      active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, s.db, c); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateName
		}
		return nil, err
	}

	s.publish(live.ActionCreated, c.ID)
	s.metrics.RecordMenuMutation("category", live.ActionCreated)

	resp := s.toResponse(c)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	var (
		items []domain.Category
		err   error
	)
	if req.Active != nil && *req.Active {
		items, err = s.repo.FindActive(ctx, s.db)
	} else {
		items, err = s.repo.FindAll(ctx, s.db)
	}
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, s.toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	categoryID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, categoryID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	categoryID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, categoryID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.DisplayName != nil {
		displayName := strings.TrimSpace(*req.DisplayName)
		if displayName == "" {
			return nil, domain.ErrInvalidName
		}
		item.DisplayName = displayName
	}
	if req.LocalizedName != nil {
		item.LocalizedName = normalizePointer(req.LocalizedName)
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.publish(live.ActionUpdated, item.ID)
	s.metrics.RecordMenuMutation("category", live.ActionUpdated)

	resp := s.toResponse(item)
	return &resp, nil
}

// Delete removes the category. Items referencing it are left orphaned,
// matching the documented lifecycle in the data model.
func (s *Service) Delete(ctx context.Context, id string) error {
	categoryID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, categoryID.Int64())
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.Delete(ctx, s.db, item.ID); err != nil {
		return err
	}

	s.publish(live.ActionDeleted, item.ID)
	s.metrics.RecordMenuMutation("category", live.ActionDeleted)
	return nil
}

func (s *Service) publish(action string, id int64) {
	s.hub.Publish(live.TopicCategories, live.Event{
		Entity:     live.TopicCategories,
		Action:     action,
		ID:         snowflake.ID(id).String(),
		OccurredAt: s.clock.Now().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

func (s *Service) toResponse(c *domain.Category) domain.Response {
	return domain.Response{
		ID:            snowflake.ID(c.ID).String(),
		Name:          c.Name,
		Slug:          c.Slug,
		DisplayName:   c.DisplayName,
		LocalizedName: c.LocalizedName,
		SortOrder:     c.SortOrder,
		IsActive:      c.IsActive,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func normalizePointer(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
