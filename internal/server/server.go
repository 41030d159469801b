package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/menuboard/internal/analytics"
	analyticsdomain "github.com/smallbiznis/menuboard/internal/analytics/domain"
	"github.com/smallbiznis/menuboard/internal/archive"
	archivedomain "github.com/smallbiznis/menuboard/internal/archive/domain"
	"github.com/smallbiznis/menuboard/internal/category"
	categorydomain "github.com/smallbiznis/menuboard/internal/category/domain"
	"github.com/smallbiznis/menuboard/internal/clock"
	"github.com/smallbiznis/menuboard/internal/config"
	"github.com/smallbiznis/menuboard/internal/currency"
	"github.com/smallbiznis/menuboard/internal/layout"
	layoutdomain "github.com/smallbiznis/menuboard/internal/layout/domain"
	"github.com/smallbiznis/menuboard/internal/live"
	"github.com/smallbiznis/menuboard/internal/menuitem"
	menuitemdomain "github.com/smallbiznis/menuboard/internal/menuitem/domain"
	"github.com/smallbiznis/menuboard/internal/observability"
	obslogger "github.com/smallbiznis/menuboard/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/menuboard/internal/observability/metrics"
	"github.com/smallbiznis/menuboard/internal/offerings"
	offeringsdomain "github.com/smallbiznis/menuboard/internal/offerings/domain"
	"github.com/smallbiznis/menuboard/internal/order"
	orderdomain "github.com/smallbiznis/menuboard/internal/order/domain"
	"github.com/smallbiznis/menuboard/internal/ratelimit"
	"github.com/smallbiznis/menuboard/internal/scheduler"
	"github.com/smallbiznis/menuboard/internal/settings"
	settingsdomain "github.com/smallbiznis/menuboard/internal/settings/domain"
	"github.com/smallbiznis/menuboard/internal/snapshot"
	snapshotdomain "github.com/smallbiznis/menuboard/internal/snapshot/domain"
	menusync "github.com/smallbiznis/menuboard/internal/sync"
	syncdomain "github.com/smallbiznis/menuboard/internal/sync/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	config.Module,
	clock.Module,
	live.Module,
	fx.Provide(registerGin),
	category.Module,
	menuitem.Module,
	archive.Module,
	snapshot.Module,
	menusync.Module,
	layout.Module,
	order.Module,
	offerings.Module,
	settings.Module,
	currency.Module,
	analytics.Module,
	ratelimit.Module,
	scheduler.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug: obsCfg.Debug(),
	}))
	r.Use(metrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, metrics *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(obsCfg, metrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	genID        *snowflake.Node
	categorySvc  categorydomain.Service
	menuItemSvc  menuitemdomain.Service
	archiveSvc   archivedomain.Service
	snapshotSvc  snapshotdomain.Service
	syncSvc      syncdomain.Service
	layoutSvc    layoutdomain.Service
	orderSvc     orderdomain.Service
	offeringsSvc offeringsdomain.Service
	settingsSvc  settingsdomain.Service
	analyticsSvc analyticsdomain.Service
	hub          *live.Hub
	metrics      *obsmetrics.Metrics
	limiter      *ratelimit.OrderLimiter
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	GenID        *snowflake.Node
	CategorySvc  categorydomain.Service
	MenuItemSvc  menuitemdomain.Service
	ArchiveSvc   archivedomain.Service
	SnapshotSvc  snapshotdomain.Service
	SyncSvc      syncdomain.Service
	LayoutSvc    layoutdomain.Service
	OrderSvc     orderdomain.Service
	OfferingsSvc offeringsdomain.Service
	SettingsSvc  settingsdomain.Service
	AnalyticsSvc analyticsdomain.Service
	Hub          *live.Hub
	Metrics      *obsmetrics.Metrics     `optional:"true"`
	Limiter      *ratelimit.OrderLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		categorySvc:  p.CategorySvc,
		menuItemSvc:  p.MenuItemSvc,
		archiveSvc:   p.ArchiveSvc,
		snapshotSvc:  p.SnapshotSvc,
		syncSvc:      p.SyncSvc,
		layoutSvc:    p.LayoutSvc,
		orderSvc:     p.OrderSvc,
		offeringsSvc: p.OfferingsSvc,
		settingsSvc:  p.SettingsSvc,
		analyticsSvc: p.AnalyticsSvc,
		hub:          p.Hub,
		metrics:      p.Metrics,
		limiter:      p.Limiter,
	}

	svc.registerViewerRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Viewer routes back the public menu boards and the self-service
// ordering flow. Boards run on kiosks and customer phones, so these
// carry no auth.
func (s *Server) registerViewerRoutes() {
	api := s.engine.Group("/api/v1")

	api.GET("/menu", s.GetFullMenu)

	api.GET("/categories", s.ListCategories)
	api.GET("/categories/:id", s.GetCategory)

	api.GET("/items", s.ListMenuItems)
	api.GET("/items/:id", s.GetMenuItem)

	api.GET("/layouts/active", s.GetActiveLayout)
	api.GET("/settings/:key", s.GetSetting)

	api.GET("/offerings/event-packages", s.ListEventPackages)
	api.GET("/offerings/catering-menus", s.ListCateringMenus)
	api.GET("/offerings/school-meals", s.ListSchoolMealsForWeek)

	api.GET("/live/:topic", s.StreamLiveEvents)

	// -------- Orders (session-scoped cart) --------
	orders := api.Group("/orders", s.limiter.Middleware())
	orders.POST("/items", s.AddOrderItem)
	orders.PATCH("/items", s.UpdateOrderQuantity)
	orders.GET("/active", s.GetActiveOrder)
	orders.POST("/clear", s.ClearOrder)
	orders.POST("/submit", s.SubmitOrder)

	// -------- Display analytics --------
	api.POST("/displays/sessions", s.StartDisplaySession)
	api.POST("/displays/heartbeat", s.DisplayHeartbeat)
	api.POST("/displays/sessions/:id/end", s.EndDisplaySession)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.POST("/categories", s.CreateCategory)
	admin.PATCH("/categories/:id", s.UpdateCategory)
	admin.DELETE("/categories/:id", s.DeleteCategory)

	admin.POST("/items", s.CreateMenuItem)
	admin.PATCH("/items/:id", s.UpdateMenuItem)
	admin.POST("/items/:id/toggle", s.ToggleMenuItemAvailability)
	admin.DELETE("/items/:id", s.DeleteMenuItem)

	admin.GET("/archive/recent", s.ListRecentArchiveEntries)
	admin.GET("/archive/range", s.ListArchiveEntriesInRange)
	admin.GET("/archive/items/:id", s.GetItemHistory)
	admin.GET("/archive/items/:id/stats", s.GetItemStats)
	admin.GET("/archive/stats", s.GetMenuStats)

	admin.POST("/snapshots", s.CreateSnapshot)
	admin.GET("/snapshots", s.ListSnapshotDates)
	admin.GET("/snapshots/:date", s.GetSnapshot)

	admin.POST("/sync/sheets", s.TriggerSheetSync)
	admin.GET("/sync/state", s.GetSyncState)

	admin.GET("/layouts", s.ListLayouts)
	admin.POST("/layouts", s.CreateLayout)
	admin.GET("/layouts/:id", s.GetLayout)
	admin.PATCH("/layouts/:id", s.UpdateLayout)
	admin.POST("/layouts/:id/activate", s.ActivateLayout)
	admin.DELETE("/layouts/:id", s.DeleteLayout)

	admin.GET("/orders", s.ListOrders)
	admin.POST("/orders/:id/complete", s.CompleteOrder)
	admin.DELETE("/orders/:id", s.DeleteOrder)

	admin.POST("/offerings/event-packages", s.CreateEventPackage)
	admin.PATCH("/offerings/event-packages/:id", s.UpdateEventPackage)
	admin.DELETE("/offerings/event-packages/:id", s.DeleteEventPackage)
	admin.POST("/offerings/catering-menus", s.CreateCateringMenu)
	admin.PATCH("/offerings/catering-menus/:id", s.UpdateCateringMenu)
	admin.DELETE("/offerings/catering-menus/:id", s.DeleteCateringMenu)
	admin.POST("/offerings/school-meals", s.CreateSchoolMeal)
	admin.PATCH("/offerings/school-meals/:id", s.UpdateSchoolMeal)
	admin.DELETE("/offerings/school-meals/:id", s.DeleteSchoolMeal)

	admin.GET("/settings", s.ListSettings)
	admin.PUT("/settings/:key", s.UpsertSetting)
	admin.DELETE("/settings/:key", s.DeleteSetting)
	admin.GET("/themes", s.ListThemePresets)
	admin.POST("/themes", s.SaveThemePreset)
	admin.POST("/themes/:id/apply", s.ApplyThemePreset)
	admin.DELETE("/themes/:id", s.DeleteThemePreset)

	admin.POST("/analytics/rollup", s.RunAnalyticsRollup)
	admin.GET("/analytics/daily", s.GetDailyAnalytics)
}
