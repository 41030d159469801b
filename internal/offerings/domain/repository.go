package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	CreateEventPackage(ctx context.Context, db *gorm.DB, pkg *EventPackage) error
	FindEventPackageByID(ctx context.Context, db *gorm.DB, id int64) (*EventPackage, error)
	FindEventPackages(ctx context.Context, db *gorm.DB, activeOnly bool) ([]EventPackage, error)
	UpdateEventPackage(ctx context.Context, db *gorm.DB, pkg *EventPackage) error
	DeleteEventPackage(ctx context.Context, db *gorm.DB, id int64) error

	CreateCateringMenu(ctx context.Context, db *gorm.DB, menu *CateringMenu) error
	FindCateringMenuByID(ctx context.Context, db *gorm.DB, id int64) (*CateringMenu, error)
	FindCateringMenus(ctx context.Context, db *gorm.DB, activeOnly bool) ([]CateringMenu, error)
	UpdateCateringMenu(ctx context.Context, db *gorm.DB, menu *CateringMenu) error
	DeleteCateringMenu(ctx context.Context, db *gorm.DB, id int64) error

	CreateSchoolMeal(ctx context.Context, db *gorm.DB, meal *SchoolMeal) error
	FindSchoolMealByID(ctx context.Context, db *gorm.DB, id int64) (*SchoolMeal, error)
	FindSchoolMealsForWeek(ctx context.Context, db *gorm.DB, year, week int) ([]SchoolMeal, error)
	UpdateSchoolMeal(ctx context.Context, db *gorm.DB, meal *SchoolMeal) error
	DeleteSchoolMeal(ctx context.Context, db *gorm.DB, id int64) error
}
