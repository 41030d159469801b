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
	"github.com/smallbiznis/menuboard/internal/live"
	"github.com/smallbiznis/menuboard/internal/offerings/domain"
	offeringsrepo "github.com/smallbiznis/menuboard/internal/offerings/repository"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func setupOfferingsService(t *testing.T) domain.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	models := []any{&domain.EventPackage{}, &domain.CateringMenu{}, &domain.SchoolMeal{}}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: mustNode(t),
		Clock: clock.NewFakeClock(time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)),
		Repo:  offeringsrepo.Provide(),
		Hub:   live.NewHub(),
	})
}

func TestCreateEventPackageDefaultsToActive(t *testing.T) {
	ctx := context.Background()
	svc := setupOfferingsService(t)

	desc := "Three courses with coffee"
	pkg, err := svc.CreateEventPackage(ctx, domain.EventPackageRequest{
		Name:           "Birthday Party",
		Description:    &desc,
		PricePerPerson: 29500,
		MinGuests:      10,
		MaxGuests:      40,
		Includes:       []string{"starter", "main", "dessert"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !pkg.IsActive {
		t.Fatalf("expected package active by default")
	}
	if len(pkg.Includes) != 3 {
		t.Fatalf("expected 3 included courses, got %v", pkg.Includes)
	}

	listed, err := svc.ListEventPackages(ctx, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	found := false
	for _, item := range listed {
		if item.ID == pkg.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("created package missing from active listing")
	}
}

func TestUpdateEventPackageTogglesActive(t *testing.T) {
	ctx := context.Background()
	svc := setupOfferingsService(t)

	pkg, err := svc.CreateEventPackage(ctx, domain.EventPackageRequest{
		Name:           "Retired Package",
		PricePerPerson: 19900,
		MinGuests:      5,
		MaxGuests:      20,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	inactive := false
	updated, err := svc.UpdateEventPackage(ctx, pkg.ID, domain.EventPackageRequest{IsActive: &inactive})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.IsActive {
		t.Fatalf("expected package deactivated")
	}

	active, err := svc.ListEventPackages(ctx, true)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	for _, item := range active {
		if item.ID == pkg.ID {
			t.Fatalf("deactivated package still in active listing")
		}
	}
}

func TestCreateCateringMenuRejectsEmptyName(t *testing.T) {
	svc := setupOfferingsService(t)
	_, err := svc.CreateCateringMenu(context.Background(), domain.CateringMenuRequest{Name: "   "})
	if err != domain.ErrInvalidName {
		t.Fatalf("expected invalid_name, got %v", err)
	}
}

func TestSchoolMealSlotIsUnique(t *testing.T) {
	ctx := context.Background()
	svc := setupOfferingsService(t)

	req := domain.SchoolMealRequest{
		Year:       2026,
		WeekNumber: 12,
		DayOfWeek:  1,
		Name:       "Fish Gratin",
		Price:      8500,
	}
	if _, err := svc.CreateSchoolMeal(ctx, req); err != nil {
		t.Fatalf("create: %v", err)
	}

	req.Name = "Pasta Bolognese"
	if _, err := svc.CreateSchoolMeal(ctx, req); err != domain.ErrDuplicateMeal {
		t.Fatalf("expected duplicate_meal for same year/week/day, got %v", err)
	}

	// A different weekday in the same week is a separate slot.
	req.DayOfWeek = 2
	if _, err := svc.CreateSchoolMeal(ctx, req); err != nil {
		t.Fatalf("create tuesday: %v", err)
	}

	meals, err := svc.ListSchoolMealsForWeek(ctx, 2026, 12)
	if err != nil {
		t.Fatalf("list week: %v", err)
	}
	if len(meals) != 2 {
		t.Fatalf("expected 2 meals in week 12, got %d", len(meals))
	}
}

func TestCreateSchoolMealRejectsBadSlot(t *testing.T) {
	ctx := context.Background()
	svc := setupOfferingsService(t)

	cases := []domain.SchoolMealRequest{
		{Year: 2026, WeekNumber: 0, DayOfWeek: 1, Name: "No Week"},
		{Year: 2026, WeekNumber: 54, DayOfWeek: 1, Name: "Week Too High"},
		{Year: 2026, WeekNumber: 10, DayOfWeek: 8, Name: "Bad Day"},
		{Year: 1999, WeekNumber: 10, DayOfWeek: 3, Name: "Ancient"},
	}
	for _, req := range cases {
		if _, err := svc.CreateSchoolMeal(ctx, req); err != domain.ErrInvalidSlot {
			t.Fatalf("%s: expected invalid_meal_slot, got %v", req.Name, err)
		}
	}
}

func TestUpdateSchoolMealMoveIntoTakenSlot(t *testing.T) {
	ctx := context.Background()
	svc := setupOfferingsService(t)

	monday, err := svc.CreateSchoolMeal(ctx, domain.SchoolMealRequest{
		Year: 2026, WeekNumber: 20, DayOfWeek: 1, Name: "Soup", Price: 6000,
	})
	if err != nil {
		t.Fatalf("create monday: %v", err)
	}
	tuesday, err := svc.CreateSchoolMeal(ctx, domain.SchoolMealRequest{
		Year: 2026, WeekNumber: 20, DayOfWeek: 2, Name: "Stew", Price: 7000,
	})
	if err != nil {
		t.Fatalf("create tuesday: %v", err)
	}

	_, err = svc.UpdateSchoolMeal(ctx, tuesday.ID, domain.SchoolMealRequest{DayOfWeek: 1})
	if err != domain.ErrDuplicateMeal {
		t.Fatalf("expected duplicate_meal moving onto monday, got %v", err)
	}

	if err := svc.DeleteSchoolMeal(ctx, monday.ID); err != nil {
		t.Fatalf("delete monday: %v", err)
	}
	if _, err := svc.UpdateSchoolMeal(ctx, tuesday.ID, domain.SchoolMealRequest{DayOfWeek: 1}); err != nil {
		t.Fatalf("move after delete: %v", err)
	}
}
