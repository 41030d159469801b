package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/menuboard/internal/clock"
	"github.com/smallbiznis/menuboard/internal/live"
	"github.com/smallbiznis/menuboard/internal/observability/metrics"
	"github.com/smallbiznis/menuboard/internal/offerings/domain"
	"github.com/smallbiznis/menuboard/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Hub     *live.Hub
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	hub     *live.Hub
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("offerings.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		hub:     p.Hub,
		metrics: p.Metrics,
	}
}

func (s *Service) CreateEventPackage(ctx context.Context, req domain.EventPackageRequest) (*domain.EventPackageResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := s.clock.Now()
	pkg := &domain.EventPackage{
		ID:             s.genID.Generate().Int64(),
		Name:           name,
		Description:    normalizePointer(req.Description),
		PricePerPerson: req.PricePerPerson,
		MinGuests:      req.MinGuests,
		MaxGuests:      req.MaxGuests,
		Includes:       encodeStrings(req.Includes),
		IsActive:       active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.CreateEventPackage(ctx, s.db, pkg); err != nil {
		return nil, err
	}

	s.publish(live.ActionCreated, pkg.ID)
	s.metrics.RecordMenuMutation("event_package", live.ActionCreated)

	resp := toEventPackageResponse(pkg)
	return &resp, nil
}

func (s *Service) ListEventPackages(ctx context.Context, activeOnly bool) ([]domain.EventPackageResponse, error) {
	pkgs, err := s.repo.FindEventPackages(ctx, s.db, activeOnly)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.EventPackageResponse, 0, len(pkgs))
	for i := range pkgs {
		resp = append(resp, toEventPackageResponse(&pkgs[i]))
	}
	return resp, nil
}

func (s *Service) UpdateEventPackage(ctx context.Context, id string, req domain.EventPackageRequest) (*domain.EventPackageResponse, error) {
	pkgID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	pkg, err := s.repo.FindEventPackageByID(ctx, s.db, pkgID.Int64())
	if err != nil {
		return nil, err
	}
	if pkg == nil {
		return nil, domain.ErrNotFound
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		pkg.Name = name
	}
	if req.Description != nil {
		pkg.Description = normalizePointer(req.Description)
	}
	if req.PricePerPerson > 0 {
		pkg.PricePerPerson = req.PricePerPerson
	}
	if req.MinGuests > 0 {
		pkg.MinGuests = req.MinGuests
	}
	if req.MaxGuests > 0 {
		pkg.MaxGuests = req.MaxGuests
	}
	if req.Includes != nil {
		pkg.Includes = encodeStrings(req.Includes)
	}
	if req.IsActive != nil {
		pkg.IsActive = *req.IsActive
	}

	pkg.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateEventPackage(ctx, s.db, pkg); err != nil {
		return nil, err
	}

	s.publish(live.ActionUpdated, pkg.ID)
	s.metrics.RecordMenuMutation("event_package", live.ActionUpdated)

	resp := toEventPackageResponse(pkg)
	return &resp, nil
}

func (s *Service) DeleteEventPackage(ctx context.Context, id string) error {
	pkgID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	pkg, err := s.repo.FindEventPackageByID(ctx, s.db, pkgID.Int64())
	if err != nil {
		return err
	}
	if pkg == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.DeleteEventPackage(ctx, s.db, pkg.ID); err != nil {
		return err
	}

	s.publish(live.ActionDeleted, pkg.ID)
	s.metrics.RecordMenuMutation("event_package", live.ActionDeleted)
	return nil
}

func (s *Service) CreateCateringMenu(ctx context.Context, req domain.CateringMenuRequest) (*domain.CateringMenuResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := s.clock.Now()
	menu := &domain.CateringMenu{
		ID:             s.genID.Generate().Int64(),
		Name:           name,
		Description:    normalizePointer(req.Description),
		PricePerPerson: req.PricePerPerson,
		MinOrder:       req.MinOrder,
		Items:          encodeStrings(req.Items),
		IsActive:       active,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.CreateCateringMenu(ctx, s.db, menu); err != nil {
		return nil, err
	}

	s.publish(live.ActionCreated, menu.ID)
	s.metrics.RecordMenuMutation("catering_menu", live.ActionCreated)

	resp := toCateringMenuResponse(menu)
	return &resp, nil
}

func (s *Service) ListCateringMenus(ctx context.Context, activeOnly bool) ([]domain.CateringMenuResponse, error) {
	menus, err := s.repo.FindCateringMenus(ctx, s.db, activeOnly)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.CateringMenuResponse, 0, len(menus))
	for i := range menus {
		resp = append(resp, toCateringMenuResponse(&menus[i]))
	}
	return resp, nil
}

func (s *Service) UpdateCateringMenu(ctx context.Context, id string, req domain.CateringMenuRequest) (*domain.CateringMenuResponse, error) {
	menuID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	menu, err := s.repo.FindCateringMenuByID(ctx, s.db, menuID.Int64())
	if err != nil {
		return nil, err
	}
	if menu == nil {
		return nil, domain.ErrNotFound
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		menu.Name = name
	}
	if req.Description != nil {
		menu.Description = normalizePointer(req.Description)
	}
	if req.PricePerPerson > 0 {
		menu.PricePerPerson = req.PricePerPerson
	}
	if req.MinOrder > 0 {
		menu.MinOrder = req.MinOrder
	}
	if req.Items != nil {
		menu.Items = encodeStrings(req.Items)
	}
	if req.IsActive != nil {
		menu.IsActive = *req.IsActive
	}

	menu.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateCateringMenu(ctx, s.db, menu); err != nil {
		return nil, err
	}

	s.publish(live.ActionUpdated, menu.ID)
	s.metrics.RecordMenuMutation("catering_menu", live.ActionUpdated)

	resp := toCateringMenuResponse(menu)
	return &resp, nil
}

func (s *Service) DeleteCateringMenu(ctx context.Context, id string) error {
	menuID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	menu, err := s.repo.FindCateringMenuByID(ctx, s.db, menuID.Int64())
	if err != nil {
		return err
	}
	if menu == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.DeleteCateringMenu(ctx, s.db, menu.ID); err != nil {
		return err
	}

	s.publish(live.ActionDeleted, menu.ID)
	s.metrics.RecordMenuMutation("catering_menu", live.ActionDeleted)
	return nil
}

func (s *Service) CreateSchoolMeal(ctx context.Context, req domain.SchoolMealRequest) (*domain.SchoolMealResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if !validMealSlot(req.Year, req.WeekNumber, req.DayOfWeek) {
		return nil, domain.ErrInvalidSlot
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := s.clock.Now()
	meal := &domain.SchoolMeal{
		ID:            s.genID.Generate().Int64(),
		Year:          req.Year,
		WeekNumber:    req.WeekNumber,
		DayOfWeek:     req.DayOfWeek,
		Name:          name,
		Description:   normalizePointer(req.Description),
		Price:         req.Price,
		AllergenCodes: encodeStrings(req.AllergenCodes),
		IsActive:      active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateSchoolMeal(ctx, s.db, meal); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateMeal
		}
		return nil, err
	}

	s.publish(live.ActionCreated, meal.ID)
	s.metrics.RecordMenuMutation("school_meal", live.ActionCreated)

	resp := toSchoolMealResponse(meal)
	return &resp, nil
}

func (s *Service) ListSchoolMealsForWeek(ctx context.Context, year, week int) ([]domain.SchoolMealResponse, error) {
	if year < 2000 || week < 1 || week > 53 {
		return nil, domain.ErrInvalidSlot
	}

	meals, err := s.repo.FindSchoolMealsForWeek(ctx, s.db, year, week)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.SchoolMealResponse, 0, len(meals))
	for i := range meals {
		resp = append(resp, toSchoolMealResponse(&meals[i]))
	}
	return resp, nil
}

func (s *Service) UpdateSchoolMeal(ctx context.Context, id string, req domain.SchoolMealRequest) (*domain.SchoolMealResponse, error) {
	mealID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	meal, err := s.repo.FindSchoolMealByID(ctx, s.db, mealID.Int64())
	if err != nil {
		return nil, err
	}
	if meal == nil {
		return nil, domain.ErrNotFound
	}

	if req.Year != 0 || req.WeekNumber != 0 || req.DayOfWeek != 0 {
		year, week, day := meal.Year, meal.WeekNumber, meal.DayOfWeek
		if req.Year != 0 {
			year = req.Year
		}
		if req.WeekNumber != 0 {
			week = req.WeekNumber
		}
		if req.DayOfWeek != 0 {
			day = req.DayOfWeek
		}
		if !validMealSlot(year, week, day) {
			return nil, domain.ErrInvalidSlot
		}
		meal.Year, meal.WeekNumber, meal.DayOfWeek = year, week, day
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		meal.Name = name
	}
	if req.Description != nil {
		meal.Description = normalizePointer(req.Description)
	}
	if req.Price > 0 {
		meal.Price = req.Price
	}
	if req.AllergenCodes != nil {
		meal.AllergenCodes = encodeStrings(req.AllergenCodes)
	}
	if req.IsActive != nil {
		meal.IsActive = *req.IsActive
	}

	meal.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateSchoolMeal(ctx, s.db, meal); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateMeal
		}
		return nil, err
	}

	s.publish(live.ActionUpdated, meal.ID)
	s.metrics.RecordMenuMutation("school_meal", live.ActionUpdated)

	resp := toSchoolMealResponse(meal)
	return &resp, nil
}

func (s *Service) DeleteSchoolMeal(ctx context.Context, id string) error {
	mealID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}

	meal, err := s.repo.FindSchoolMealByID(ctx, s.db, mealID.Int64())
	if err != nil {
		return err
	}
	if meal == nil {
		return domain.ErrNotFound
	}

	if err := s.repo.DeleteSchoolMeal(ctx, s.db, meal.ID); err != nil {
		return err
	}

	s.publish(live.ActionDeleted, meal.ID)
	s.metrics.RecordMenuMutation("school_meal", live.ActionDeleted)
	return nil
}

// validMealSlot accepts ISO week numbers and weekday 1 (Monday)
// through 7 (Sunday).
func validMealSlot(year, week, day int) bool {
	return year >= 2000 && week >= 1 && week <= 53 && day >= 1 && day <= 7
}

func (s *Service) publish(action string, id int64) {
	s.hub.Publish(live.TopicOfferings, live.Event{
		Entity:     live.TopicOfferings,
		Action:     action,
		ID:         snowflake.ID(id).String(),
		OccurredAt: s.clock.Now().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

func toEventPackageResponse(pkg *domain.EventPackage) domain.EventPackageResponse {
	return domain.EventPackageResponse{
		ID:             snowflake.ID(pkg.ID).String(),
		Name:           pkg.Name,
		Description:    pkg.Description,
		PricePerPerson: pkg.PricePerPerson,
		MinGuests:      pkg.MinGuests,
		MaxGuests:      pkg.MaxGuests,
		Includes:       decodeStrings(pkg.Includes),
		IsActive:       pkg.IsActive,
		CreatedAt:      pkg.CreatedAt,
		UpdatedAt:      pkg.UpdatedAt,
	}
}

func toCateringMenuResponse(menu *domain.CateringMenu) domain.CateringMenuResponse {
	return domain.CateringMenuResponse{
		ID:             snowflake.ID(menu.ID).String(),
		Name:           menu.Name,
		Description:    menu.Description,
		PricePerPerson: menu.PricePerPerson,
		MinOrder:       menu.MinOrder,
		Items:          decodeStrings(menu.Items),
		IsActive:       menu.IsActive,
		CreatedAt:      menu.CreatedAt,
		UpdatedAt:      menu.UpdatedAt,
	}
}

func toSchoolMealResponse(meal *domain.SchoolMeal) domain.SchoolMealResponse {
	return domain.SchoolMealResponse{
		ID:            snowflake.ID(meal.ID).String(),
		Year:          meal.Year,
		WeekNumber:    meal.WeekNumber,
		DayOfWeek:     meal.DayOfWeek,
		Name:          meal.Name,
		Description:   meal.Description,
		Price:         meal.Price,
		AllergenCodes: decodeStrings(meal.AllergenCodes),
		IsActive:      meal.IsActive,
		CreatedAt:     meal.CreatedAt,
		UpdatedAt:     meal.UpdatedAt,
	}
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

func encodeStrings(values []string) datatypes.JSON {
	if len(values) == 0 {
		return nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func decodeStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}
