package service

import (
	"context"
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
	"github.com/smallbiznis/menuboard/internal/menuitem/domain"
	menuitemrepo "github.com/smallbiznis/menuboard/internal/menuitem/repository"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func setupItemService(t *testing.T, fake *clock.FakeClock) (domain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&categorydomain.Category{}, &domain.MenuItem{}, &archivedomain.Entry{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node := mustNode(t)
	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        fake,
		Repo:         menuitemrepo.Provide(),
		ArchiveRepo:  archiverepo.Provide(),
		CategoryRepo: categoryrepo.Provide(),
		Hub:          live.NewHub(),
	})
	return svc, db, node
}

func createCategory(t *testing.T, db *gorm.DB, node *snowflake.Node, name string) categorydomain.Category {
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
		t.Fatalf("create category: %v", err)
	}
	return category
}

func archiveEntriesFor(t *testing.T, db *gorm.DB, itemID string) []archivedomain.Entry {
	t.Helper()
	id, err := snowflake.ParseString(itemID)
	if err != nil {
		t.Fatalf("parse item id: %v", err)
	}
	entries, err := archiverepo.Provide().HistoryFor(context.Background(), db, id.Int64(), 50)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	return entries
}

func TestCreateWritesArchiveEntry(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc, db, node := setupItemService(t, fake)
	category := createCategory(t, db, node, "mains-create")

	item, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:       "Pulled Pork Sandwich",
		Price:      1250,
		CategoryID: snowflake.ID(category.ID).String(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if item.ModificationCount != 0 {
		t.Fatalf("expected modification count 0 on create, got %d", item.ModificationCount)
	}

	entries := archiveEntriesFor(t, db, item.ID)
	if len(entries) != 1 {
		t.Fatalf("expected 1 archive entry, got %d", len(entries))
	}
	if entries[0].ChangeType != archivedomain.ChangeTypeCreated {
		t.Fatalf("expected created entry, got %s", entries[0].ChangeType)
	}
	if !entries[0].ChangedAt.Equal(item.LastModifiedAt) {
		t.Fatalf("archive changed_at %v does not match item last_modified_at %v",
			entries[0].ChangedAt, item.LastModifiedAt)
	}

	var archived domain.MenuItem
	if err := archivedomain.DecodeSnapshot(entries[0].Snapshot, &archived); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if archived.Name != "Pulled Pork Sandwich" || archived.Price != 1250 {
		t.Fatalf("snapshot does not carry the item copy: %+v", archived)
	}
}

func TestUpdateBumpsModificationCountAndArchives(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc, db, node := setupItemService(t, fake)
	category := createCategory(t, db, node, "mains-update")

	item, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:       "Brisket Plate",
		Price:      1800,
		CategoryID: snowflake.ID(category.ID).String(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fake.Advance(time.Hour)
	newPrice := int64(1950)
	updated, err := svc.Update(context.Background(), domain.UpdateRequest{
		ID:    item.ID,
		Price: &newPrice,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ModificationCount != 1 {
		t.Fatalf("expected modification count 1, got %d", updated.ModificationCount)
	}
	if !updated.LastModifiedAt.After(item.LastModifiedAt) {
		t.Fatalf("last_modified_at did not advance")
	}

	fake.Advance(time.Hour)
	toggled, err := svc.ToggleAvailability(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if toggled.ModificationCount != 2 {
		t.Fatalf("expected modification count 2, got %d", toggled.ModificationCount)
	}
	if toggled.IsAvailable {
		t.Fatalf("expected toggle to flip availability off")
	}

	entries := archiveEntriesFor(t, db, item.ID)
	if len(entries) != 3 {
		t.Fatalf("expected 3 archive entries (create, update, toggle), got %d", len(entries))
	}
}

func TestDeleteArchivesBeforeRemoving(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc, db, node := setupItemService(t, fake)
	category := createCategory(t, db, node, "mains-delete")

	item, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:       "Smoked Wings",
		Price:      950,
		CategoryID: snowflake.ID(category.ID).String(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fake.Advance(time.Minute)
	if err := svc.Delete(context.Background(), item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := svc.Get(context.Background(), item.ID); err != domain.ErrNotFound {
		t.Fatalf("expected not_found after delete, got %v", err)
	}

	entries := archiveEntriesFor(t, db, item.ID)
	if len(entries) != 2 {
		t.Fatalf("expected 2 archive entries, got %d", len(entries))
	}
	if entries[0].ChangeType != archivedomain.ChangeTypeDeleted {
		t.Fatalf("expected newest entry to be deleted, got %s", entries[0].ChangeType)
	}
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc, _, node := setupItemService(t, fake)

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:       "Orphan Item",
		Price:      100,
		CategoryID: node.Generate().String(),
	})
	if err != domain.ErrInvalidCategory {
		t.Fatalf("expected invalid_category, got %v", err)
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc, db, node := setupItemService(t, fake)
	category := createCategory(t, db, node, "mains-dup")

	req := domain.CreateRequest{
		Name:       "Burnt Ends",
		Price:      1500,
		CategoryID: snowflake.ID(category.ID).String(),
	}
	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(context.Background(), req); err != domain.ErrDuplicateName {
		t.Fatalf("expected duplicate_name, got %v", err)
	}
}

func TestFullMenuGroupsAvailableItems(t *testing.T) {
	fake := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc, db, node := setupItemService(t, fake)
	category := createCategory(t, db, node, "mains-menu")

	if _, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:       "Rib Platter",
		Price:      2200,
		CategoryID: snowflake.ID(category.ID).String(),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	hidden := false
	if _, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:        "Seasonal Special",
		Price:       1700,
		CategoryID:  snowflake.ID(category.ID).String(),
		IsAvailable: &hidden,
	}); err != nil {
		t.Fatalf("create hidden: %v", err)
	}

	menu, err := svc.FullMenu(context.Background())
	if err != nil {
		t.Fatalf("full menu: %v", err)
	}

	var found *domain.FullMenuCategory
	for i := range menu.Categories {
		if menu.Categories[i].Name == "mains-menu" {
			found = &menu.Categories[i]
		}
	}
	if found == nil {
		t.Fatalf("expected category mains-menu in menu")
	}
	if len(found.Items) != 1 || found.Items[0].Name != "Rib Platter" {
		t.Fatalf("expected only the available item, got %+v", found.Items)
	}
}
