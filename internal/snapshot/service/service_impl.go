package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	categorydomain "github.com/smallbiznis/menuboard/internal/category/domain"
	"github.com/smallbiznis/menuboard/internal/clock"
	menuitemdomain "github.com/smallbiznis/menuboard/internal/menuitem/domain"
	"github.com/smallbiznis/menuboard/internal/observability/metrics"
	"github.com/smallbiznis/menuboard/internal/snapshot/domain"
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
	CategoryRepo categorydomain.Repository
	ItemRepo     menuitemdomain.Repository
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	categoryRepo categorydomain.Repository
	itemRepo     menuitemdomain.Repository
	metrics      *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("snapshot.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		categoryRepo: p.CategoryRepo,
		itemRepo:     p.ItemRepo,
		metrics:      p.Metrics,
	}
}

type payload struct {
	SchemaVersion int                       `json:"schema_version"`
	Categories    []categorydomain.Category `json:"categories"`
	MenuItems     []menuitemdomain.MenuItem `json:"menu_items"`
}

// CreateDailySnapshot materializes the full menu for the given date.
// An empty date resolves to today (UTC). Re-running for an existing date
// replaces the stored payload, so repeated invocations stay idempotent.
func (s *Service) CreateDailySnapshot(ctx context.Context, date string) (*domain.Response, error) {
	resolved, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	categories, err := s.categoryRepo.FindAll(ctx, s.db)
	if err != nil {
		s.metrics.RecordSnapshotRun("error")
		return nil, err
	}
	items, err := s.itemRepo.FindAll(ctx, s.db)
	if err != nil {
		s.metrics.RecordSnapshotRun("error")
		return nil, err
	}

	raw, err := json.Marshal(payload{
		SchemaVersion: domain.PayloadSchemaVersion,
		Categories:    categories,
		MenuItems:     items,
	})
	if err != nil {
		return nil, err
	}
	body := datatypes.JSON(raw)

	now := s.clock.Now()
	var out *domain.DailySnapshot
	err = s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByDate(ctx, tx, resolved)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := s.repo.ReplacePayload(ctx, tx, existing.ID, body, now); err != nil {
				return err
			}
			existing.Snapshot = body
			existing.UpdatedAt = now
			out = existing
			return nil
		}

		created := &domain.DailySnapshot{
			ID:        s.genID.Generate().Int64(),
			Date:      resolved,
			Snapshot:  body,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.Insert(ctx, tx, created); err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		// A concurrent run can insert the date first; fold into a replace.
		if db.IsDuplicateKeyErr(err) {
			return s.CreateDailySnapshot(ctx, resolved)
		}
		s.metrics.RecordSnapshotRun("error")
		return nil, err
	}

	s.metrics.RecordSnapshotRun("written")
	s.log.Info("daily snapshot written",
		zap.String("date", resolved),
		zap.Int("categories", len(categories)),
		zap.Int("menu_items", len(items)),
	)

	resp := toResponse(out)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, date string) (*domain.Response, error) {
	resolved, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.repo.FindByDate(ctx, s.db, resolved)
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, domain.ErrNotFound
	}

	resp := toResponse(snapshot)
	return &resp, nil
}

// ListDates returns snapshot dates newest first, chronological even when
// dates were backfilled out of order.
func (s *Service) ListDates(ctx context.Context) ([]string, error) {
	return s.repo.ListDates(ctx, s.db)
}

func (s *Service) resolveDate(date string) (string, error) {
	trimmed := strings.TrimSpace(date)
	if trimmed == "" {
		return s.clock.Now().Format(domain.DateLayout), nil
	}
	if _, err := time.Parse(domain.DateLayout, trimmed); err != nil {
		return "", domain.ErrInvalidDate
	}
	return trimmed, nil
}

func toResponse(snapshot *domain.DailySnapshot) domain.Response {
	var body map[string]any
	_ = json.Unmarshal(snapshot.Snapshot, &body)
	return domain.Response{
		ID:        snowflake.ID(snapshot.ID).String(),
		Date:      snapshot.Date,
		Snapshot:  body,
		CreatedAt: snapshot.CreatedAt,
		UpdatedAt: snapshot.UpdatedAt,
	}
}
