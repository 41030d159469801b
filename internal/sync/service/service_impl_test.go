package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	archivedomain "github.com/smallbiznis/menuboard/internal/archive/domain"
	archiverepo "github.com/smallbiznis/menuboard/internal/archive/repository"
	categorydomain "github.com/smallbiznis/menuboard/internal/category/domain"
	categoryrepo "github.com/smallbiznis/menuboard/internal/category/repository"
	"github.com/smallbiznis/menuboard/internal/clock"
	"github.com/smallbiznis/menuboard/internal/live"
	menuitemdomain "github.com/smallbiznis/menuboard/internal/menuitem/domain"
	menuitemrepo "github.com/smallbiznis/menuboard/internal/menuitem/repository"
	"github.com/smallbiznis/menuboard/internal/sync/domain"
	syncrepo "github.com/smallbiznis/menuboard/internal/sync/repository"
)

type fetcherStub struct {
	categories []domain.CategoryRow
	items      []domain.ItemRow
	err        error
}

func (f *fetcherStub) FetchCategories(ctx context.Context) ([]domain.CategoryRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.categories, nil
}

func (f *fetcherStub) FetchMenuItems(ctx context.Context) ([]domain.ItemRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func setupSyncService(t *testing.T, fetcher domain.SourceFetcher) (domain.Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&categorydomain.Category{},
		&menuitemdomain.MenuItem{},
		&archivedomain.Entry{},
		&domain.SyncState{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        mustNode(t),
		Clock:        clock.NewFakeClock(time.Date(2025, 5, 2, 8, 0, 0, 0, time.UTC)),
		StateRepo:    syncrepo.Provide(),
		CategoryRepo: categoryrepo.Provide(),
		ItemRepo:     menuitemrepo.Provide(),
		ArchiveRepo:  archiverepo.Provide(),
		Fetcher:      fetcher,
		Hub:          live.NewHub(),
	})
	return svc, db
}

func TestSyncMenuItemsCreatesUpdatesAndSkips(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupSyncService(t, nil)

	if _, err := svc.SyncCategories(ctx, []domain.CategoryRow{
		{Name: "sync-bbq", DisplayName: "BBQ"},
	}); err != nil {
		t.Fatalf("sync categories: %v", err)
	}

	// First pass creates both items.
	first, err := svc.SyncMenuItems(ctx, []domain.ItemRow{
		{Name: "sync ribs", Price: 1800, CategoryName: "sync-bbq"},
		{Name: "sync brisket", Price: 2100, CategoryName: "sync-bbq"},
	})
	if err != nil {
		t.Fatalf("sync items: %v", err)
	}
	if first.Created != 2 || first.Updated != 0 || first.Unchanged != 0 {
		t.Fatalf("expected 2 created, got %+v", first)
	}

	// Second pass: one row changed, one identical.
	second, err := svc.SyncMenuItems(ctx, []domain.ItemRow{
		{Name: "sync ribs", Price: 1900, CategoryName: "sync-bbq"},
		{Name: "sync brisket", Price: 2100, CategoryName: "sync-bbq"},
	})
	if err != nil {
		t.Fatalf("sync items: %v", err)
	}
	if second.Created != 0 || second.Updated != 1 || second.Unchanged != 1 {
		t.Fatalf("expected {created:0 updated:1 unchanged:1}, got %+v", second)
	}
	if len(second.Errors) != 0 {
		t.Fatalf("expected no row errors, got %v", second.Errors)
	}
}

func TestSyncMenuItemsReportsUnknownCategory(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupSyncService(t, nil)

	if _, err := svc.SyncCategories(ctx, []domain.CategoryRow{
		{Name: "sync-known"},
	}); err != nil {
		t.Fatalf("sync categories: %v", err)
	}

	result, err := svc.SyncMenuItems(ctx, []domain.ItemRow{
		{Name: "sync lemonade", Price: 400, CategoryName: "drinks"},
		{Name: "sync cornbread", Price: 300, CategoryName: "sync-known"},
	})
	if err != nil {
		t.Fatalf("sync items: %v", err)
	}

	// The bad row is reported, the good row still commits.
	if result.Created != 1 {
		t.Fatalf("expected sibling row to commit, got %+v", result)
	}
	if len(result.Errors) != 1 || result.Errors[0] != "Category not found: drinks" {
		t.Fatalf("expected category error, got %v", result.Errors)
	}
}

func TestSyncedMutationsWriteArchiveEntries(t *testing.T) {
	ctx := context.Background()
	svc, db := setupSyncService(t, nil)

	if _, err := svc.SyncCategories(ctx, []domain.CategoryRow{
		{Name: "sync-archived"},
	}); err != nil {
		t.Fatalf("sync categories: %v", err)
	}
	if _, err := svc.SyncMenuItems(ctx, []domain.ItemRow{
		{Name: "sync coleslaw", Price: 350, CategoryName: "sync-archived"},
	}); err != nil {
		t.Fatalf("sync items: %v", err)
	}
	if _, err := svc.SyncMenuItems(ctx, []domain.ItemRow{
		{Name: "sync coleslaw", Price: 375, CategoryName: "sync-archived"},
	}); err != nil {
		t.Fatalf("sync items again: %v", err)
	}

	var item menuitemdomain.MenuItem
	if err := db.Where("slug = ?", "sync-coleslaw").First(&item).Error; err != nil {
		t.Fatalf("load item: %v", err)
	}
	if item.ModificationCount != 1 {
		t.Fatalf("expected modification count 1 after synced update, got %d", item.ModificationCount)
	}

	entries, err := archiverepo.Provide().HistoryFor(ctx, db, item.ID, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected archive entries for synced create and update, got %d", len(entries))
	}
}

func TestSyncFromSheetRequiresFetcher(t *testing.T) {
	svc, _ := setupSyncService(t, nil)
	if _, err := svc.SyncFromSheet(context.Background()); err != domain.ErrNotConfigured {
		t.Fatalf("expected sync_not_configured, got %v", err)
	}
}

func TestSyncFromSheetFetchFailureSetsErrorState(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupSyncService(t, &fetcherStub{err: errors.New("boom")})

	_, err := svc.SyncFromSheet(ctx)
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("expected sync_fetch_failed, got %v", err)
	}

	state, err := svc.State(ctx)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Status != domain.StatusError {
		t.Fatalf("expected error state, got %s", state.Status)
	}
	if state.ErrorMessage == nil {
		t.Fatalf("expected error message recorded")
	}
}

func TestSyncFromSheetHappyPathRecordsLastSync(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupSyncService(t, &fetcherStub{
		categories: []domain.CategoryRow{{Name: "sync-sheet"}},
		items: []domain.ItemRow{
			{Name: "sync sheet pie", Price: 600, CategoryName: "sync-sheet"},
		},
	})

	result, err := svc.SyncFromSheet(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Categories.Created != 1 || result.Items.Created != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	state, err := svc.State(ctx)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Status != domain.StatusIdle || state.LastSyncAt == nil {
		t.Fatalf("expected idle state with last_sync_at, got %+v", state)
	}
}
