package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	archivedomain "github.com/smallbiznis/menuboard/internal/archive/domain"
	categorydomain "github.com/smallbiznis/menuboard/internal/category/domain"
	"github.com/smallbiznis/menuboard/internal/clock"
	"github.com/smallbiznis/menuboard/internal/live"
	"github.com/smallbiznis/menuboard/internal/menuitem/domain"
	"github.com/smallbiznis/menuboard/internal/observability/metrics"
	"github.com/smallbiznis/menuboard/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	ArchiveRepo  archivedomain.Repository
	CategoryRepo categorydomain.Repository
	Hub          *live.Hub
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	archiveRepo  archivedomain.Repository
	categoryRepo categorydomain.Repository
	hub          *live.Hub
	metrics      *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("menuitem.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		archiveRepo:  p.ArchiveRepo,
		categoryRepo: p.CategoryRepo,
		hub:          p.Hub,
		metrics:      p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Price < 0 {
		return nil, domain.ErrInvalidPrice
	}

	categoryID, err := snowflake.ParseString(strings.TrimSpace(req.CategoryID))
	if err != nil {
		return nil, domain.ErrInvalidCategory
	}
	category, err := s.categoryRepo.FindByID(ctx, s.db, categoryID.Int64())
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrInvalidCategory
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}
	sortOrder := 0
	if req.SortOrder != nil {
		sortOrder = *req.SortOrder
	}

	now := s.clock.Now()
	item := &domain.MenuItem{
		ID:                s.genID.Generate().Int64(),
		Name:              name,
		Slug:              slug.Make(name),
		Description:       normalizePointer(req.Description),
		Price:             req.Price,
		CategoryID:        categoryID.Int64(),
		IsAvailable:       available,
		SortOrder:         sortOrder,
		ImageURL:          normalizePointer(req.ImageURL),
		AllergenCodes:     encodeStrings(req.AllergenCodes),
		Modifiers:         encodeModifiers(req.Modifiers),
		DietaryTags:       encodeStrings(req.DietaryTags),
		ModificationCount: 0,
		AddedAt:           now,
		LastModifiedAt:    now,
	}

	// The item write and its archive entry commit in one transaction, so
	// history never lags the item.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, item); err != nil {
			return err
		}
		return s.appendArchive(ctx, tx, item, archivedomain.ChangeTypeCreated, now)
	})
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateName
		}
		return nil, err
	}

	s.publish(live.ActionCreated, item.ID)
	s.metrics.RecordMenuMutation("menu_item", live.ActionCreated)

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	filter := domain.ListFilter{
		Available: req.Available,
		SortBy:    strings.TrimSpace(req.SortBy),
		OrderBy:   strings.TrimSpace(req.OrderBy),
	}
	if trimmed := strings.TrimSpace(req.CategoryID); trimmed != "" {
		categoryID, err := snowflake.ParseString(trimmed)
		if err != nil {
			return nil, domain.ErrInvalidCategory
		}
		value := categoryID.Int64()
		filter.CategoryID = &value
	}

	items, err := s.repo.List(ctx, s.db, filter)
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
	itemID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, itemID.Int64())
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
	itemID, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, itemID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
		item.Slug = slug.Make(name)
	}
	if req.Description != nil {
		item.Description = normalizePointer(req.Description)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, domain.ErrInvalidPrice
		}
		item.Price = *req.Price
	}
	if req.CategoryID != nil {
		categoryID, err := snowflake.ParseString(strings.TrimSpace(*req.CategoryID))
		if err != nil {
			return nil, domain.ErrInvalidCategory
		}
		category, err := s.categoryRepo.FindByID(ctx, s.db, categoryID.Int64())
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, domain.ErrInvalidCategory
		}
		item.CategoryID = categoryID.Int64()
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
	if req.SortOrder != nil {
		item.SortOrder = *req.SortOrder
	}
	if req.ImageURL != nil {
		item.ImageURL = normalizePointer(req.ImageURL)
	}
	if req.AllergenCodes != nil {
		item.AllergenCodes = encodeStrings(req.AllergenCodes)
	}
	if req.Modifiers != nil {
		item.Modifiers = encodeModifiers(req.Modifiers)
	}
	if req.DietaryTags != nil {
		item.DietaryTags = encodeStrings(req.DietaryTags)
	}

	if err := s.mutate(ctx, item, archivedomain.ChangeTypeUpdated); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateName
		}
		return nil, err
	}

	s.publish(live.ActionUpdated, item.ID)
	s.metrics.RecordMenuMutation("menu_item", live.ActionUpdated)

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) ToggleAvailability(ctx context.Context, id string) (*domain.Response, error) {
	itemID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, itemID.Int64())
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}

	item.IsAvailable = !item.IsAvailable
	if err := s.mutate(ctx, item, archivedomain.ChangeTypeUpdated); err != nil {
		return nil, err
	}

	s.publish(live.ActionUpdated, item.ID)
	s.metrics.RecordMenuMutation("menu_item", "toggled")

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	itemID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, itemID.Int64())
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	now := s.stampMutation(item)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.appendArchive(ctx, tx, item, archivedomain.ChangeTypeDeleted, now); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, item.ID)
	})
	if err != nil {
		return err
	}

	s.publish(live.ActionDeleted, item.ID)
	s.metrics.RecordMenuMutation("menu_item", live.ActionDeleted)
	return nil
}

func (s *Service) FullMenu(ctx context.Context) (*domain.FullMenu, error) {
	categories, err := s.categoryRepo.FindActive(ctx, s.db)
	if err != nil {
		return nil, err
	}

	available := true
	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Available: &available,
		SortBy:    "sort_order",
	})
	if err != nil {
		return nil, err
	}

	byCategory := make(map[int64][]domain.Response, len(categories))
	for i := range items {
		byCategory[items[i].CategoryID] = append(byCategory[items[i].CategoryID], s.toResponse(&items[i]))
	}

	menu := &domain.FullMenu{
		Categories:  make([]domain.FullMenuCategory, 0, len(categories)),
		GeneratedAt: s.clock.Now(),
	}
	for i := range categories {
		c := categories[i]
		entries := byCategory[c.ID]
		if entries == nil {
			entries = []domain.Response{}
		}
		menu.Categories = append(menu.Categories, domain.FullMenuCategory{
			ID:            snowflake.ID(c.ID).String(),
			Name:          c.Name,
			DisplayName:   c.DisplayName,
			LocalizedName: c.LocalizedName,
			SortOrder:     c.SortOrder,
			Items:         entries,
		})
	}

	return menu, nil
}

// mutate bumps the modification counter, stamps the shared timestamp and
// commits the item write together with its archive entry.
func (s *Service) mutate(ctx context.Context, item *domain.MenuItem, changeType string) error {
	now := s.stampMutation(item)
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, item); err != nil {
			return err
		}
		return s.appendArchive(ctx, tx, item, changeType, now)
	})
}

// stampMutation captures one timestamp used for both last_modified_at and
// the archive changed_at, keeping history ordering consistent with the item.
func (s *Service) stampMutation(item *domain.MenuItem) time.Time {
	now := s.clock.Now()
	if now.Before(item.LastModifiedAt) {
		now = item.LastModifiedAt
	}
	item.ModificationCount++
	item.LastModifiedAt = now
	return now
}

func (s *Service) appendArchive(ctx context.Context, tx *gorm.DB, item *domain.MenuItem, changeType string, at time.Time) error {
	snapshot, err := archivedomain.EncodeSnapshot(item)
	if err != nil {
		return err
	}
	return s.archiveRepo.Append(ctx, tx, &archivedomain.Entry{
		ID:         s.genID.Generate().Int64(),
		MenuItemID: item.ID,
		Snapshot:   snapshot,
		ChangeType: changeType,
		ChangedAt:  at,
	})
}

func (s *Service) publish(action string, id int64) {
	s.hub.Publish(live.TopicMenuItems, live.Event{
		Entity:     live.TopicMenuItems,
		Action:     action,
		ID:         snowflake.ID(id).String(),
		OccurredAt: s.clock.Now().Format(time.RFC3339Nano),
	})
}

func (s *Service) toResponse(item *domain.MenuItem) domain.Response {
	return domain.Response{
		ID:                snowflake.ID(item.ID).String(),
		Name:              item.Name,
		Slug:              item.Slug,
		Description:       item.Description,
		Price:             item.Price,
		CategoryID:        snowflake.ID(item.CategoryID).String(),
		IsAvailable:       item.IsAvailable,
		SortOrder:         item.SortOrder,
		ImageURL:          item.ImageURL,
		AllergenCodes:     decodeStrings(item.AllergenCodes),
		Modifiers:         decodeModifiers(item.Modifiers),
		DietaryTags:       decodeStrings(item.DietaryTags),
		ModificationCount: item.ModificationCount,
		AddedAt:           item.AddedAt,
		LastModifiedAt:    item.LastModifiedAt,
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

func encodeStrings(values []string) datatypes.JSON {
	if len(values) == 0 {
		return nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func decodeStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}

func encodeModifiers(values []domain.Modifier) datatypes.JSON {
	if len(values) == 0 {
		return nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func decodeModifiers(raw datatypes.JSON) []domain.Modifier {
	if len(raw) == 0 {
		return nil
	}
	var values []domain.Modifier
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}
