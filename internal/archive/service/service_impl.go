package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/menuboard/internal/archive/domain"
	"github.com/smallbiznis/menuboard/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("archive.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) History(ctx context.Context, menuItemID string, limit int) ([]domain.EntryResponse, error) {
	itemID, err := snowflake.ParseString(strings.TrimSpace(menuItemID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	entries, err := s.repo.HistoryFor(ctx, s.db, itemID.Int64(), limit)
	if err != nil {
		return nil, err
	}
	return toResponses(entries), nil
}

func (s *Service) Recent(ctx context.Context, limit int) ([]domain.EntryResponse, error) {
	entries, err := s.repo.Recent(ctx, s.db, limit)
	if err != nil {
		return nil, err
	}
	return toResponses(entries), nil
}

func (s *Service) InRange(ctx context.Context, start, end time.Time) ([]domain.EntryResponse, error) {
	if end.Before(start) {
		return nil, domain.ErrInvalidRange
	}
	entries, err := s.repo.InRange(ctx, s.db, start, end)
	if err != nil {
		return nil, err
	}
	return toResponses(entries), nil
}

// auditedItem is the subset of the archived item shape the stats need.
type auditedItem struct {
	Price       int64 `json:"price"`
	IsAvailable bool  `json:"is_available"`
}

func (s *Service) ItemStats(ctx context.Context, menuItemID string) (*domain.ItemStats, error) {
	itemID, err := snowflake.ParseString(strings.TrimSpace(menuItemID))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	entries, err := s.repo.HistoryFor(ctx, s.db, itemID.Int64(), 500)
	if err != nil {
		return nil, err
	}

	stats := &domain.ItemStats{MenuItemID: snowflake.ID(itemID.Int64()).String()}
	if len(entries) == 0 {
		return stats, nil
	}

	stats.TotalModifications = len(entries)
	stats.LastChangeAt = &entries[0].ChangedAt
	stats.LastChangeType = entries[0].ChangeType
	stats.FirstChangeAt = &entries[len(entries)-1].ChangedAt

	// Entries come back newest first; walk oldest to newest to diff
	// consecutive snapshots.
	var prev *auditedItem
	for i := len(entries) - 1; i >= 0; i-- {
		var item auditedItem
		if err := domain.DecodeSnapshot(entries[i].Snapshot, &item); err != nil {
			s.log.Warn("undecodable archive snapshot",
				zap.Int64("entry_id", entries[i].ID),
				zap.Error(err),
			)
			continue
		}
		if prev != nil {
			if item.Price != prev.Price {
				stats.PriceChanges++
			}
			if item.IsAvailable != prev.IsAvailable {
				stats.AvailabilityChanges++
			}
		}
		snapshot := item
		prev = &snapshot
	}

	return stats, nil
}

func (s *Service) MenuStats(ctx context.Context) (*domain.MenuStats, error) {
	entries, err := s.repo.Recent(ctx, s.db, 500)
	if err != nil {
		return nil, err
	}

	stats := &domain.MenuStats{
		TotalEntries: len(entries),
		ByChangeType: map[string]int{},
	}

	weekAgo := s.clock.Now().AddDate(0, 0, -7)
	perItem := map[int64]int{}
	for i := range entries {
		stats.ByChangeType[entries[i].ChangeType]++
		if entries[i].ChangedAt.After(weekAgo) {
			stats.ChangesLast7Days++
		}
		perItem[entries[i].MenuItemID]++
	}

	for itemID, hits := range perItem {
		if hits > stats.MostModifiedHits {
			stats.MostModifiedHits = hits
			stats.MostModifiedItem = snowflake.ID(itemID).String()
		}
	}

	return stats, nil
}

func toResponses(entries []domain.Entry) []domain.EntryResponse {
	resp := make([]domain.EntryResponse, 0, len(entries))
	for i := range entries {
		var snapshot map[string]any
		_ = json.Unmarshal(entries[i].Snapshot, &snapshot)
		resp = append(resp, domain.EntryResponse{
			ID:         snowflake.ID(entries[i].ID).String(),
			MenuItemID: snowflake.ID(entries[i].MenuItemID).String(),
			Snapshot:   snapshot,
			ChangeType: entries[i].ChangeType,
			ChangedAt:  entries[i].ChangedAt,
		})
	}
	return resp
}
