package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/menuboard/internal/archive/domain"
	archiverepo "github.com/smallbiznis/menuboard/internal/archive/repository"
	"github.com/smallbiznis/menuboard/internal/clock"
)

type archivedItem struct {
	Price       int64 `json:"price"`
	IsAvailable bool  `json:"is_available"`
}

var (
	nodeOnce   sync.Once
	sharedNode *snowflake.Node
	nodeErr    error
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	// The in-memory database is shared across the package, so all tests
	// must draw IDs from one node; separate nodes with the same node ID
	// can emit duplicate snowflakes within the same millisecond.
	nodeOnce.Do(func() {
		sharedNode, nodeErr = snowflake.NewNode(1)
	})
	if nodeErr != nil {
		t.Fatalf("snowflake node: %v", nodeErr)
	}
	return sharedNode
}

func setupArchiveService(t *testing.T) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Entry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node := mustNode(t)
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)),
		Repo:  archiverepo.Provide(),
	})
	return svc, db, node
}

func appendEntry(t *testing.T, db *gorm.DB, node *snowflake.Node, itemID int64, changeType string, item archivedItem, at time.Time) {
	t.Helper()
	snapshot, err := domain.EncodeSnapshot(item)
	if err != nil {
		t.Fatalf("encode snapshot: %v", err)
	}
	err = archiverepo.Provide().Append(context.Background(), db, &domain.Entry{
		ID:         node.Generate().Int64(),
		MenuItemID: itemID,
		Snapshot:   snapshot,
		ChangeType: changeType,
		ChangedAt:  at,
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, db, node := setupArchiveService(t)

	itemID := node.Generate().Int64()
	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	appendEntry(t, db, node, itemID, domain.ChangeTypeCreated, archivedItem{Price: 1000, IsAvailable: true}, base)
	appendEntry(t, db, node, itemID, domain.ChangeTypeUpdated, archivedItem{Price: 1200, IsAvailable: true}, base.Add(time.Hour))

	history, err := svc.History(ctx, snowflake.ID(itemID).String(), 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].ChangeType != domain.ChangeTypeUpdated {
		t.Fatalf("expected newest entry first, got %s", history[0].ChangeType)
	}
	if _, err := svc.History(ctx, "not-an-id", 10); err != domain.ErrInvalidID {
		t.Fatalf("expected invalid_id, got %v", err)
	}
}

func TestItemStatsCountsFieldChanges(t *testing.T) {
	ctx := context.Background()
	svc, db, node := setupArchiveService(t)

	itemID := node.Generate().Int64()
	base := time.Date(2025, 8, 2, 10, 0, 0, 0, time.UTC)
	appendEntry(t, db, node, itemID, domain.ChangeTypeCreated, archivedItem{Price: 1000, IsAvailable: true}, base)
	appendEntry(t, db, node, itemID, domain.ChangeTypeUpdated, archivedItem{Price: 1100, IsAvailable: true}, base.Add(time.Hour))
	appendEntry(t, db, node, itemID, domain.ChangeTypeUpdated, archivedItem{Price: 1100, IsAvailable: false}, base.Add(2*time.Hour))
	appendEntry(t, db, node, itemID, domain.ChangeTypeUpdated, archivedItem{Price: 900, IsAvailable: false}, base.Add(3*time.Hour))

	stats, err := svc.ItemStats(ctx, snowflake.ID(itemID).String())
	if err != nil {
		t.Fatalf("item stats: %v", err)
	}
	if stats.TotalModifications != 4 {
		t.Fatalf("expected 4 modifications, got %d", stats.TotalModifications)
	}
	if stats.PriceChanges != 2 {
		t.Fatalf("expected 2 price changes, got %d", stats.PriceChanges)
	}
	if stats.AvailabilityChanges != 1 {
		t.Fatalf("expected 1 availability change, got %d", stats.AvailabilityChanges)
	}
	if stats.LastChangeType != domain.ChangeTypeUpdated {
		t.Fatalf("expected latest change type, got %s", stats.LastChangeType)
	}
	if stats.FirstChangeAt == nil || !stats.FirstChangeAt.Equal(base) {
		t.Fatalf("unexpected first change: %v", stats.FirstChangeAt)
	}
}

func TestItemStatsEmptyHistory(t *testing.T) {
	svc, _, node := setupArchiveService(t)

	stats, err := svc.ItemStats(context.Background(), node.Generate().String())
	if err != nil {
		t.Fatalf("item stats: %v", err)
	}
	if stats.TotalModifications != 0 || stats.FirstChangeAt != nil {
		t.Fatalf("expected zeroed stats, got %+v", stats)
	}
}

func TestMenuStatsFindsMostModified(t *testing.T) {
	ctx := context.Background()
	svc, db, node := setupArchiveService(t)

	quiet := node.Generate().Int64()
	busy := node.Generate().Int64()
	base := time.Date(2025, 8, 18, 10, 0, 0, 0, time.UTC)

	// Five updates keeps this the busiest item even though the database
	// is shared with the other tests in this package.
	appendEntry(t, db, node, quiet, domain.ChangeTypeCreated, archivedItem{Price: 500, IsAvailable: true}, base)
	for i := 0; i < 5; i++ {
		appendEntry(t, db, node, busy, domain.ChangeTypeUpdated, archivedItem{Price: int64(600 + i), IsAvailable: true}, base.Add(time.Duration(i)*time.Hour))
	}

	stats, err := svc.MenuStats(ctx)
	if err != nil {
		t.Fatalf("menu stats: %v", err)
	}
	if stats.MostModifiedItem != snowflake.ID(busy).String() {
		t.Fatalf("expected busiest item %d, got %s", busy, stats.MostModifiedItem)
	}
	if stats.MostModifiedHits < 5 {
		t.Fatalf("expected at least 5 hits, got %d", stats.MostModifiedHits)
	}
	if stats.ByChangeType[domain.ChangeTypeUpdated] < 5 {
		t.Fatalf("unexpected change type counts: %v", stats.ByChangeType)
	}
	// The clock sits on 2025-08-20, so entries from the 18th count as
	// recent.
	if stats.ChangesLast7Days < 4 {
		t.Fatalf("expected recent changes counted, got %d", stats.ChangesLast7Days)
	}
}

func TestInRangeValidatesBounds(t *testing.T) {
	ctx := context.Background()
	svc, db, node := setupArchiveService(t)

	itemID := node.Generate().Int64()
	inside := time.Date(2025, 8, 10, 10, 0, 0, 0, time.UTC)
	appendEntry(t, db, node, itemID, domain.ChangeTypeCreated, archivedItem{Price: 700, IsAvailable: true}, inside)

	entries, err := svc.InRange(ctx, inside.Add(-time.Hour), inside.Add(time.Hour))
	if err != nil {
		t.Fatalf("in range: %v", err)
	}
	found := false
	for _, entry := range entries {
		if entry.MenuItemID == snowflake.ID(itemID).String() {
			found = true
		}
	}
	if !found {
		t.Fatalf("entry missing from range query")
	}

	if _, err := svc.InRange(ctx, inside, inside.Add(-time.Hour)); err != domain.ErrInvalidRange {
		t.Fatalf("expected invalid_range, got %v", err)
	}
}
