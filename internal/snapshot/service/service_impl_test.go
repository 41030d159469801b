package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	categorydomain "github.com/smallbiznis/menuboard/internal/category/domain"
	categoryrepo "github.com/smallbiznis/menuboard/internal/category/repository"
	"github.com/smallbiznis/menuboard/internal/clock"
	menuitemdomain "github.com/smallbiznis/menuboard/internal/menuitem/domain"
	menuitemrepo "github.com/smallbiznis/menuboard/internal/menuitem/repository"
	"github.com/smallbiznis/menuboard/internal/snapshot/domain"
	snapshotrepo "github.com/smallbiznis/menuboard/internal/snapshot/repository"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func setupSnapshotService(t *testing.T, fake *clock.FakeClock) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&categorydomain.Category{},
		&menuitemdomain.MenuItem{},
		&domain.DailySnapshot{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node := mustNode(t)
	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        fake,
		Repo:         snapshotrepo.Provide(),
		CategoryRepo: categoryrepo.Provide(),
		ItemRepo:     menuitemrepo.Provide(),
	})
	return svc, db, node
}

func seedCategory(t *testing.T, db *gorm.DB, node *snowflake.Node, name string) {
	t.Helper()
	now := time.Now().UTC()
	category := categorydomain.Category{
		ID:          node.Generate().Int64(),
		Name:        name,
		Slug:        name,
		DisplayName: name,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
}

func TestCreateDailySnapshotIsIdempotentPerDate(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC))
	svc, db, node := setupSnapshotService(t, fake)
	seedCategory(t, db, node, "snap-mains")

	first, err := svc.CreateDailySnapshot(context.Background(), "2025-06-01")
	if err != nil {
		t.Fatalf("first run: %v", err)
	}

	seedCategory(t, db, node, "snap-sides")
	fake.Advance(time.Hour)

	second, err := svc.CreateDailySnapshot(context.Background(), "2025-06-01")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("rerun must replace the payload, not add a row: %s vs %s", first.ID, second.ID)
	}

	var count int64
	if err := db.Model(&domain.DailySnapshot{}).Where("date = ?", "2025-06-01").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single snapshot row for the date, got %d", count)
	}

	categories, ok := second.Snapshot["categories"].([]any)
	if !ok {
		t.Fatalf("snapshot payload missing categories: %+v", second.Snapshot)
	}
	if len(categories) != 2 {
		t.Fatalf("rerun must capture current state, got %d categories", len(categories))
	}
}

func TestCreateDailySnapshotDefaultsToToday(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC))
	svc, _, _ := setupSnapshotService(t, fake)

	snapshot, err := svc.CreateDailySnapshot(context.Background(), "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if snapshot.Date != "2025-06-02" {
		t.Fatalf("expected today's date, got %s", snapshot.Date)
	}
}

func TestCreateDailySnapshotRejectsBadDate(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC))
	svc, _, _ := setupSnapshotService(t, fake)

	if _, err := svc.CreateDailySnapshot(context.Background(), "06/02/2025"); err != domain.ErrInvalidDate {
		t.Fatalf("expected invalid_date, got %v", err)
	}
}

func TestListDatesNewestFirst(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 3, 2, 0, 0, 0, time.UTC))
	svc, _, _ := setupSnapshotService(t, fake)

	// Backfill out of order.
	for _, date := range []string{"2025-05-20", "2025-05-22", "2025-05-21"} {
		if _, err := svc.CreateDailySnapshot(context.Background(), date); err != nil {
			t.Fatalf("create %s: %v", date, err)
		}
	}

	dates, err := svc.ListDates(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	position := map[string]int{}
	for i, date := range dates {
		position[date] = i
	}
	if !(position["2025-05-22"] < position["2025-05-21"] && position["2025-05-21"] < position["2025-05-20"]) {
		t.Fatalf("expected newest first ordering, got %v", dates)
	}
}

func TestGetMissingSnapshot(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 6, 3, 2, 0, 0, 0, time.UTC))
	svc, _, _ := setupSnapshotService(t, fake)

	if _, err := svc.Get(context.Background(), "1999-01-01"); err != domain.ErrNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
}
