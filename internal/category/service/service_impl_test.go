package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/menuboard/internal/category/domain"
	categoryrepo "github.com/smallbiznis/menuboard/internal/category/repository"
	"github.com/smallbiznis/menuboard/internal/clock"
	"github.com/smallbiznis/menuboard/internal/live"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func setupCategoryService(t *testing.T) domain.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Category{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: mustNode(t),
		Clock: clock.NewFakeClock(time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)),
		Repo:  categoryrepo.Provide(),
		Hub:   live.NewHub(),
	})
}

func TestCreateSlugifiesName(t *testing.T) {
	ctx := context.Background()
	svc := setupCategoryService(t)

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Grilled Sandwiches & Wraps"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Slug != "grilled-sandwiches-and-wraps" {
		t.Fatalf("unexpected slug %q", created.Slug)
	}
	if created.DisplayName != "Grilled Sandwiches & Wraps" {
		t.Fatalf("display name should default to the name, got %q", created.DisplayName)
	}
	if !created.IsActive {
		t.Fatalf("categories default to active")
	}
}

func TestCreateRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := setupCategoryService(t)

	if _, err := svc.Create(ctx, domain.CreateRequest{Name: "Dup Soups"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateRequest{Name: "Dup Soups"}); err != domain.ErrDuplicateName {
		t.Fatalf("expected duplicate_name, got %v", err)
	}
}

func TestUpdateKeepsNameAndSlug(t *testing.T) {
	ctx := context.Background()
	svc := setupCategoryService(t)

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Rename Target"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	displayName := "Chef's Picks"
	sortOrder := 7
	updated, err := svc.Update(ctx, domain.UpdateRequest{
		ID:          created.ID,
		DisplayName: &displayName,
		SortOrder:   &sortOrder,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.DisplayName != displayName || updated.SortOrder != 7 {
		t.Fatalf("update not applied: %+v", updated)
	}
	// Name and slug are the stable sync identity and never change.
	if updated.Name != created.Name || updated.Slug != created.Slug {
		t.Fatalf("name or slug changed: %+v", updated)
	}
}

func TestListFiltersByActive(t *testing.T) {
	ctx := context.Background()
	svc := setupCategoryService(t)

	inactive := false
	if _, err := svc.Create(ctx, domain.CreateRequest{Name: "Filter Hidden", IsActive: &inactive}); err != nil {
		t.Fatalf("create hidden: %v", err)
	}
	visible, err := svc.Create(ctx, domain.CreateRequest{Name: "Filter Visible"})
	if err != nil {
		t.Fatalf("create visible: %v", err)
	}

	activeOnly := true
	listed, err := svc.List(ctx, domain.ListRequest{Active: &activeOnly})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, c := range listed {
		if c.Name == "Filter Hidden" {
			t.Fatalf("inactive category in active listing")
		}
	}
	found := false
	for _, c := range listed {
		if c.ID == visible.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("active category missing from listing")
	}
}

func TestDeleteThenGet(t *testing.T) {
	ctx := context.Background()
	svc := setupCategoryService(t)

	created, err := svc.Create(ctx, domain.CreateRequest{Name: "Delete Me Soon"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); err != domain.ErrNotFound {
		t.Fatalf("expected not_found after delete, got %v", err)
	}
	if err := svc.Delete(ctx, "banana"); err != domain.ErrInvalidID {
		t.Fatalf("expected invalid_id, got %v", err)
	}
}
