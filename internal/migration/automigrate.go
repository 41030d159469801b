package migration

import (
	"gorm.io/gorm"

	analyticsdomain "github.com/smallbiznis/menuboard/internal/analytics/domain"
	archivedomain "github.com/smallbiznis/menuboard/internal/archive/domain"
	categorydomain "github.com/smallbiznis/menuboard/internal/category/domain"
	layoutdomain "github.com/smallbiznis/menuboard/internal/layout/domain"
	menuitemdomain "github.com/smallbiznis/menuboard/internal/menuitem/domain"
	offeringsdomain "github.com/smallbiznis/menuboard/internal/offerings/domain"
	orderdomain "github.com/smallbiznis/menuboard/internal/order/domain"
	settingsdomain "github.com/smallbiznis/menuboard/internal/settings/domain"
	snapshotdomain "github.com/smallbiznis/menuboard/internal/snapshot/domain"
	syncdomain "github.com/smallbiznis/menuboard/internal/sync/domain"
)

// AutoMigrate builds the schema from the gorm models. The embedded SQL
// migrations only target postgres; sqlite and mysql installs go through
// this path instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&categorydomain.Category{},
		&menuitemdomain.MenuItem{},
		&archivedomain.Entry{},
		&snapshotdomain.DailySnapshot{},
		&syncdomain.SyncState{},
		&layoutdomain.DisplayLayout{},
		&orderdomain.CustomerOrder{},
		&offeringsdomain.EventPackage{},
		&offeringsdomain.CateringMenu{},
		&offeringsdomain.SchoolMeal{},
		&settingsdomain.SiteSetting{},
		&settingsdomain.ThemePreset{},
		&analyticsdomain.DisplaySession{},
		&analyticsdomain.DailyAggregate{},
	)
}
