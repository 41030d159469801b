package sync

import (
	"github.com/smallbiznis/menuboard/internal/config"
	"github.com/smallbiznis/menuboard/internal/sync/domain"
	"github.com/smallbiznis/menuboard/internal/sync/repository"
	"github.com/smallbiznis/menuboard/internal/sync/service"
	"github.com/smallbiznis/menuboard/internal/sync/sheets"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("sync.service",
	fx.Provide(repository.Provide),
	fx.Provide(provideFetcher),
	fx.Provide(service.New),
)

// provideFetcher returns nil when no spreadsheet is configured; the
// service reports ErrNotConfigured instead of fetching.
func provideFetcher(cfg config.Config, log *zap.Logger) domain.SourceFetcher {
	if cfg.SheetsSpreadsheetID == "" {
		return nil
	}
	return sheets.New(sheets.Config{
		SpreadsheetID: cfg.SheetsSpreadsheetID,
		APIKey:        cfg.SheetsAPIKey,
	}, log)
}
