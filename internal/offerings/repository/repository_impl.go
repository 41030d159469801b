package repository

import (
	"context"

	"github.com/smallbiznis/menuboard/internal/offerings/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CreateEventPackage(ctx context.Context, db *gorm.DB, pkg *domain.EventPackage) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO event_packages (id, name, description, price_per_person, min_guests, max_guests, includes, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pkg.ID,
		pkg.Name,
		pkg.Description,
		pkg.PricePerPerson,
		pkg.MinGuests,
		pkg.MaxGuests,
		pkg.Includes,
		pkg.IsActive,
		pkg.CreatedAt,
		pkg.UpdatedAt,
	).Error
}

func (r *repo) FindEventPackageByID(ctx context.Context, db *gorm.DB, id int64) (*domain.EventPackage, error) {
	var pkg domain.EventPackage
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, price_per_person, min_guests, max_guests, includes, is_active, created_at, updated_at
		 FROM event_packages WHERE id = ?`,
		id,
	).Scan(&pkg).Error
	if err != nil {
		return nil, err
	}
	if pkg.ID == 0 {
		return nil, nil
	}
	return &pkg, nil
}

func (r *repo) FindEventPackages(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.EventPackage, error) {
	query := `SELECT id, name, description, price_per_person, min_guests, max_guests, includes, is_active, created_at, updated_at
		 FROM event_packages`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY name ASC`

	var pkgs []domain.EventPackage
	if err := db.WithContext(ctx).Raw(query).Scan(&pkgs).Error; err != nil {
		return nil, err
	}
	return pkgs, nil
}

func (r *repo) UpdateEventPackage(ctx context.Context, db *gorm.DB, pkg *domain.EventPackage) error {
	if pkg == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE event_packages
		 SET name = ?, description = ?, price_per_person = ?, min_guests = ?, max_guests = ?, includes = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		pkg.Name,
		pkg.Description,
		pkg.PricePerPerson,
		pkg.MinGuests,
		pkg.MaxGuests,
		pkg.Includes,
		pkg.IsActive,
		pkg.UpdatedAt,
		pkg.ID,
	).Error
}

func (r *repo) DeleteEventPackage(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(`DELETE FROM event_packages WHERE id = ?`, id).Error
}

func (r *repo) CreateCateringMenu(ctx context.Context, db *gorm.DB, menu *domain.CateringMenu) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO catering_menus (id, name, description, price_per_person, min_order, items, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		menu.ID,
		menu.Name,
		menu.Description,
		menu.PricePerPerson,
		menu.MinOrder,
		menu.Items,
		menu.IsActive,
		menu.CreatedAt,
		menu.UpdatedAt,
	).Error
}

func (r *repo) FindCateringMenuByID(ctx context.Context, db *gorm.DB, id int64) (*domain.CateringMenu, error) {
	var menu domain.CateringMenu
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, price_per_person, min_order, items, is_active, created_at, updated_at
		 FROM catering_menus WHERE id = ?`,
		id,
	).Scan(&menu).Error
	if err != nil {
		return nil, err
	}
	if menu.ID == 0 {
		return nil, nil
	}
	return &menu, nil
}

func (r *repo) FindCateringMenus(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.CateringMenu, error) {
	query := `SELECT id, name, description, price_per_person, min_order, items, is_active, created_at, updated_at
		 FROM catering_menus`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY name ASC`

	var menus []domain.CateringMenu
	if err := db.WithContext(ctx).Raw(query).Scan(&menus).Error; err != nil {
		return nil, err
	}
	return menus, nil
}

func (r *repo) UpdateCateringMenu(ctx context.Context, db *gorm.DB, menu *domain.CateringMenu) error {
	if menu == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE catering_menus
		 SET name = ?, description = ?, price_per_person = ?, min_order = ?, items = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		menu.Name,
		menu.Description,
		menu.PricePerPerson,
		menu.MinOrder,
		menu.Items,
		menu.IsActive,
		menu.UpdatedAt,
		menu.ID,
	).Error
}

func (r *repo) DeleteCateringMenu(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(`DELETE FROM catering_menus WHERE id = ?`, id).Error
}

func (r *repo) CreateSchoolMeal(ctx context.Context, db *gorm.DB, meal *domain.SchoolMeal) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO school_meals (id, year, week_number, day_of_week, name, description, price, allergen_codes, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meal.ID,
		meal.Year,
		meal.WeekNumber,
		meal.DayOfWeek,
		meal.Name,
		meal.Description,
		meal.Price,
		meal.AllergenCodes,
		meal.IsActive,
		meal.CreatedAt,
		meal.UpdatedAt,
	).Error
}

func (r *repo) FindSchoolMealByID(ctx context.Context, db *gorm.DB, id int64) (*domain.SchoolMeal, error) {
	var meal domain.SchoolMeal
	err := db.WithContext(ctx).Raw(
		`SELECT id, year, week_number, day_of_week, name, description, price, allergen_codes, is_active, created_at, updated_at
		 FROM school_meals WHERE id = ?`,
		id,
	).Scan(&meal).Error
	if err != nil {
		return nil, err
	}
	if meal.ID == 0 {
		return nil, nil
	}
	return &meal, nil
}

func (r *repo) FindSchoolMealsForWeek(ctx context.Context, db *gorm.DB, year, week int) ([]domain.SchoolMeal, error) {
	var meals []domain.SchoolMeal
	err := db.WithContext(ctx).Raw(
		`SELECT id, year, week_number, day_of_week, name, description, price, allergen_codes, is_active, created_at, updated_at
		 FROM school_meals WHERE year = ? AND week_number = ? ORDER BY day_of_week ASC`,
		year,
		week,
	).Scan(&meals).Error
	if err != nil {
		return nil, err
	}
	return meals, nil
}

func (r *repo) UpdateSchoolMeal(ctx context.Context, db *gorm.DB, meal *domain.SchoolMeal) error {
	if meal == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE school_meals
		 SET year = ?, week_number = ?, day_of_week = ?, name = ?, description = ?, price = ?, allergen_codes = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		meal.Year,
		meal.WeekNumber,
		meal.DayOfWeek,
		meal.Name,
		meal.Description,
		meal.Price,
		meal.AllergenCodes,
		meal.IsActive,
		meal.UpdatedAt,
		meal.ID,
	).Error
}

func (r *repo) DeleteSchoolMeal(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).Exec(`DELETE FROM school_meals WHERE id = ?`, id).Error
}
