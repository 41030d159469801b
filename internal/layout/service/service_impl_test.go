package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/menuboard/internal/clock"
	"github.com/smallbiznis/menuboard/internal/layout/domain"
	layoutrepo "github.com/smallbiznis/menuboard/internal/layout/repository"
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

func setupLayoutService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&domain.DisplayLayout{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: mustNode(t),
		Clock: clock.NewFakeClock(time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)),
		Repo:  layoutrepo.Provide(),
		Hub:   live.NewHub(),
	})
	return svc, db
}

func TestActivateDeactivatesSiblings(t *testing.T) {
	ctx := context.Background()
	svc, db := setupLayoutService(t)

	first, err := svc.Create(ctx, domain.CreateRequest{
		Name:       "Grid A",
		LayoutType: "grid",
		PageType:   domain.PageTypeDisplay,
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(ctx, domain.CreateRequest{
		Name:       "List B",
		LayoutType: "list",
		PageType:   domain.PageTypeDisplay,
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	if _, err := svc.SetActive(ctx, first.ID); err != nil {
		t.Fatalf("activate first: %v", err)
	}
	if _, err := svc.SetActive(ctx, second.ID); err != nil {
		t.Fatalf("activate second: %v", err)
	}

	var active int64
	err = db.Model(&domain.DisplayLayout{}).
		Where("page_type = ? AND is_active = ?", domain.PageTypeDisplay, true).
		Count(&active).Error
	if err != nil {
		t.Fatalf("count active: %v", err)
	}
	if active != 1 {
		t.Fatalf("expected exactly one active display layout, got %d", active)
	}

	current, err := svc.ActiveForPage(ctx, domain.PageTypeDisplay)
	if err != nil {
		t.Fatalf("active for page: %v", err)
	}
	if current.ID != second.ID {
		t.Fatalf("expected latest activation to win, got %s", current.ID)
	}
}

func TestActivationScopedToPageType(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupLayoutService(t)

	display, err := svc.Create(ctx, domain.CreateRequest{
		Name:       "Display Scoped",
		LayoutType: "grid",
		PageType:   domain.PageTypeDisplay,
	})
	if err != nil {
		t.Fatalf("create display: %v", err)
	}
	order, err := svc.Create(ctx, domain.CreateRequest{
		Name:       "Order Scoped",
		LayoutType: "list",
		PageType:   domain.PageTypeOrder,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := svc.SetActive(ctx, display.ID); err != nil {
		t.Fatalf("activate display: %v", err)
	}
	if _, err := svc.SetActive(ctx, order.ID); err != nil {
		t.Fatalf("activate order: %v", err)
	}

	activeDisplay, err := svc.ActiveForPage(ctx, domain.PageTypeDisplay)
	if err != nil {
		t.Fatalf("active display: %v", err)
	}
	activeOrder, err := svc.ActiveForPage(ctx, domain.PageTypeOrder)
	if err != nil {
		t.Fatalf("active order: %v", err)
	}
	if activeDisplay.ID != display.ID || activeOrder.ID != order.ID {
		t.Fatalf("activation must not cross page types")
	}
}

func TestActiveForPageFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	svc, db := setupLayoutService(t)

	// Drop any active layouts left by sibling tests.
	if err := db.Model(&domain.DisplayLayout{}).
		Where("page_type = ?", domain.PageTypeOrder).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("reset: %v", err)
	}

	resp, err := svc.ActiveForPage(ctx, domain.PageTypeOrder)
	if err != nil {
		t.Fatalf("active for page: %v", err)
	}
	if !resp.IsDefault {
		t.Fatalf("expected built-in default when nothing is active, got %+v", resp)
	}
}

func TestActiveForPageRejectsUnknownType(t *testing.T) {
	svc, _ := setupLayoutService(t)
	if _, err := svc.ActiveForPage(context.Background(), "kitchen"); err != domain.ErrInvalidPageType {
		t.Fatalf("expected invalid_page_type, got %v", err)
	}
}
