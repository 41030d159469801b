package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	archivedomain "github.com/smallbiznis/menuboard/internal/archive/domain"
	categorydomain "github.com/smallbiznis/menuboard/internal/category/domain"
	"github.com/smallbiznis/menuboard/internal/clock"
	"github.com/smallbiznis/menuboard/internal/live"
	menuitemdomain "github.com/smallbiznis/menuboard/internal/menuitem/domain"
	"github.com/smallbiznis/menuboard/internal/observability/metrics"
	"github.com/smallbiznis/menuboard/internal/sync/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	StateRepo    domain.StateRepository
	CategoryRepo categorydomain.Repository
	ItemRepo     menuitemdomain.Repository
	ArchiveRepo  archivedomain.Repository
	Fetcher      domain.SourceFetcher `optional:"true"`
	Hub          *live.Hub
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	stateRepo    domain.StateRepository
	categoryRepo categorydomain.Repository
	itemRepo     menuitemdomain.Repository
	archiveRepo  archivedomain.Repository
	fetcher      domain.SourceFetcher
	hub          *live.Hub
	metrics      *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("sync.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		stateRepo:    p.StateRepo,
		categoryRepo: p.CategoryRepo,
		itemRepo:     p.ItemRepo,
		archiveRepo:  p.ArchiveRepo,
		fetcher:      p.Fetcher,
		hub:          p.Hub,
		metrics:      p.Metrics,
	}
}

// SyncCategories merges externally sourced category rows into the store.
// Matching is by normalized name; renames therefore produce a second
// category rather than updating the first.
func (s *Service) SyncCategories(ctx context.Context, rows []domain.CategoryRow) (*domain.CategoryResult, error) {
	existing, err := s.categoryRepo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*categorydomain.Category, len(existing))
	for i := range existing {
		byKey[existing[i].Slug] = &existing[i]
	}

	result := &domain.CategoryResult{}
	mutated := false
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			continue
		}

		displayName := strings.TrimSpace(row.DisplayName)
		if displayName == "" {
			displayName = name
		}
		active := true
		if row.IsActive != nil {
			active = *row.IsActive
		}

		key := slug.Make(name)
		current, ok := byKey[key]
		if !ok {
			now := s.clock.Now()
			created := &categorydomain.Category{
				ID:          s.genID.Generate().Int64(),
				Name:        name,
				Slug:        key,
				DisplayName: displayName,
				SortOrder:   row.SortOrder,
				IsActive:    active,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if err := s.categoryRepo.Create(ctx, s.db, created); err != nil {
				return nil, err
			}
			byKey[key] = created
			result.Created++
			mutated = true
			s.metrics.RecordSyncRow("created")
			continue
		}

		if current.DisplayName == displayName && current.SortOrder == row.SortOrder && current.IsActive == active {
			result.Unchanged++
			s.metrics.RecordSyncRow("unchanged")
			continue
		}

		current.DisplayName = displayName
		current.SortOrder = row.SortOrder
		current.IsActive = active
		current.UpdatedAt = s.clock.Now()
		if err := s.categoryRepo.Update(ctx, s.db, current); err != nil {
			return nil, err
		}
		result.Updated++
		mutated = true
		s.metrics.RecordSyncRow("updated")
	}

	if mutated {
		s.publish(live.TopicCategories)
	}
	return result, nil
}

// SyncMenuItems merges externally sourced item rows. Rows referencing an
// unknown category are skipped and reported in Errors; siblings in the
// same batch still commit (partial success, no batch rollback).
func (s *Service) SyncMenuItems(ctx context.Context, rows []domain.ItemRow) (*domain.ItemResult, error) {
	categories, err := s.categoryRepo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}
	categoryByKey := make(map[string]*categorydomain.Category, len(categories))
	for i := range categories {
		categoryByKey[categories[i].Slug] = &categories[i]
	}

	existing, err := s.itemRepo.FindAll(ctx, s.db)
	if err != nil {
		return nil, err
	}
	itemByKey := make(map[string]*menuitemdomain.MenuItem, len(existing))
	for i := range existing {
		itemByKey[existing[i].Slug] = &existing[i]
	}

	result := &domain.ItemResult{Errors: []string{}}
	mutated := false
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" {
			continue
		}

		category, ok := categoryByKey[slug.Make(strings.TrimSpace(row.CategoryName))]
		if !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("Category not found: %s", strings.TrimSpace(row.CategoryName)))
			s.metrics.RecordSyncRow("error")
			continue
		}

		available := true
		if row.IsAvailable != nil {
			available = *row.IsAvailable
		}
		description := normalizePointer(row.Description)
		imageURL := normalizePointer(row.ImageURL)

		key := slug.Make(name)
		current, ok := itemByKey[key]
		if !ok {
			now := s.clock.Now()
			created := &menuitemdomain.MenuItem{
				ID:                s.genID.Generate().Int64(),
				Name:              name,
				Slug:              key,
				Description:       description,
				Price:             row.Price,
				CategoryID:        category.ID,
				IsAvailable:       available,
				SortOrder:         row.SortOrder,
				ImageURL:          imageURL,
				ModificationCount: 0,
				AddedAt:           now,
				LastModifiedAt:    now,
			}
			err := s.db.Transaction(func(tx *gorm.DB) error {
				if err := s.itemRepo.Create(ctx, tx, created); err != nil {
					return err
				}
				return s.appendArchive(ctx, tx, created, archivedomain.ChangeTypeCreated, now)
			})
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
				s.metrics.RecordSyncRow("error")
				continue
			}
			itemByKey[key] = created
			result.Created++
			mutated = true
			s.metrics.RecordSyncRow("created")
			continue
		}

		if equalPointer(current.Description, description) &&
			current.Price == row.Price &&
			current.CategoryID == category.ID &&
			current.IsAvailable == available &&
			current.SortOrder == row.SortOrder &&
			equalPointer(current.ImageURL, imageURL) {
			result.Unchanged++
			s.metrics.RecordSyncRow("unchanged")
			continue
		}

		current.Description = description
		current.Price = row.Price
		current.CategoryID = category.ID
		current.IsAvailable = available
		current.SortOrder = row.SortOrder
		current.ImageURL = imageURL

		now := s.clock.Now()
		if now.Before(current.LastModifiedAt) {
			now = current.LastModifiedAt
		}
		current.ModificationCount++
		current.LastModifiedAt = now

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := s.itemRepo.Update(ctx, tx, current); err != nil {
				return err
			}
			return s.appendArchive(ctx, tx, current, archivedomain.ChangeTypeUpdated, now)
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", name, err))
			s.metrics.RecordSyncRow("error")
			continue
		}
		result.Updated++
		mutated = true
		s.metrics.RecordSyncRow("updated")
	}

	if mutated {
		s.publish(live.TopicMenuItems)
	}
	return result, nil
}

// SyncFromSheet runs a full reconciliation against the configured source.
// Fetch failures flip the sync state to error; the next scheduled run is
// the retry mechanism. Already committed rows stay committed.
func (s *Service) SyncFromSheet(ctx context.Context) (*domain.Result, error) {
	if s.fetcher == nil {
		return nil, domain.ErrNotConfigured
	}

	s.setState(ctx, domain.StatusSyncing, nil, nil)

	categoryRows, err := s.fetcher.FetchCategories(ctx)
	if err != nil {
		return nil, s.failSync(ctx, fmt.Errorf("fetch categories: %w", err))
	}
	itemRows, err := s.fetcher.FetchMenuItems(ctx)
	if err != nil {
		return nil, s.failSync(ctx, fmt.Errorf("fetch menu items: %w", err))
	}

	categoryResult, err := s.SyncCategories(ctx, categoryRows)
	if err != nil {
		return nil, s.failSync(ctx, err)
	}
	itemResult, err := s.SyncMenuItems(ctx, itemRows)
	if err != nil {
		return nil, s.failSync(ctx, err)
	}

	now := s.clock.Now()
	s.setState(ctx, domain.StatusIdle, &now, nil)

	s.log.Info("sheet sync finished",
		zap.Int("categories_created", categoryResult.Created),
		zap.Int("categories_updated", categoryResult.Updated),
		zap.Int("categories_unchanged", categoryResult.Unchanged),
		zap.Int("items_created", itemResult.Created),
		zap.Int("items_updated", itemResult.Updated),
		zap.Int("items_unchanged", itemResult.Unchanged),
		zap.Int("item_errors", len(itemResult.Errors)),
	)

	return &domain.Result{Categories: *categoryResult, Items: *itemResult}, nil
}

func (s *Service) State(ctx context.Context) (*domain.StateResponse, error) {
	state, err := s.stateRepo.Get(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return &domain.StateResponse{Status: domain.StatusIdle}, nil
	}
	return &domain.StateResponse{
		LastSyncAt:   state.LastSyncAt,
		Status:       state.Status,
		ErrorMessage: state.ErrorMessage,
	}, nil
}

func (s *Service) failSync(ctx context.Context, cause error) error {
	message := cause.Error()
	s.setState(ctx, domain.StatusError, nil, &message)
	s.log.Error("sheet sync failed", zap.Error(cause))
	return fmt.Errorf("%w: %v", domain.ErrFetchFailed, cause)
}

func (s *Service) setState(ctx context.Context, status string, lastSyncAt *time.Time, message *string) {
	state, err := s.stateRepo.Get(ctx, s.db)
	if err != nil {
		s.log.Warn("sync state read failed", zap.Error(err))
		return
	}
	if state == nil {
		state = &domain.SyncState{ID: domain.StateID}
	}
	state.Status = status
	state.ErrorMessage = message
	if lastSyncAt != nil {
		state.LastSyncAt = lastSyncAt
	}
	state.UpdatedAt = s.clock.Now()
	if err := s.stateRepo.Upsert(ctx, s.db, state); err != nil {
		s.log.Warn("sync state write failed", zap.Error(err))
	}
}

func (s *Service) appendArchive(ctx context.Context, tx *gorm.DB, item *menuitemdomain.MenuItem, changeType string, at time.Time) error {
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

func (s *Service) publish(topic string) {
	s.hub.Publish(topic, live.Event{
		Entity:     topic,
		Action:     live.ActionUpdated,
		OccurredAt: s.clock.Now().Format(time.RFC3339Nano),
	})
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

func equalPointer(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
