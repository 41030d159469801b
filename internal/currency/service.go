package currency

import (
	"context"
	"encoding/json"
	"time"

	"github.com/smallbiznis/menuboard/internal/clock"
	"github.com/smallbiznis/menuboard/internal/config"
	settingsdomain "github.com/smallbiznis/menuboard/internal/settings/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// fallbackRates keeps menu prices renderable when the rates API is
// unreachable. Base currency is USD.
var fallbackRates = map[string]float64{
	"USD": 1,
	"CZK": 23.5,
	"EUR": 0.92,
	"CNY": 7.25,
}

// CurrencyConfig is what gets written under the theme's currency key.
type CurrencyConfig struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	Source    string             `json:"source"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type Params struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Clock    clock.Clock
	Fetcher  Fetcher `optional:"true"`
	Settings settingsdomain.Service
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	fetcher  Fetcher
	settings settingsdomain.Service
	base     string
}

func New(p Params) *Service {
	base := p.Config.RatesBase
	if base == "" {
		base = "USD"
	}
	return &Service{
		log:      p.Log.Named("currency.service"),
		clock:    p.Clock,
		fetcher:  p.Fetcher,
		settings: p.Settings,
		base:     base,
	}
}

// Refresh pulls the latest rates and writes them into the theme
// setting's currency section. A failed fetch falls back to the
// built-in table so displays always have something to convert with.
func (s *Service) Refresh(ctx context.Context) error {
	cfg := CurrencyConfig{
		Base:      s.base,
		Rates:     fallbackRates,
		Source:    "fallback",
		UpdatedAt: s.clock.Now(),
	}

	if s.fetcher != nil {
		fetched, err := s.fetcher.Fetch(ctx)
		if err != nil {
			s.log.Warn("rates fetch failed, using fallback", zap.Error(err))
		} else {
			rates := make(map[string]float64, len(fetched.Rates)+1)
			for code, rate := range fetched.Rates {
				rates[code] = rate
			}
			rates[fetched.Base] = 1
			cfg.Base = fetched.Base
			cfg.Rates = rates
			cfg.Source = "frankfurter"
		}
	}

	return s.writeThemeCurrency(ctx, cfg)
}

func (s *Service) writeThemeCurrency(ctx context.Context, cfg CurrencyConfig) error {
	theme := map[string]json.RawMessage{}

	current, err := s.settings.Get(ctx, settingsdomain.ThemeSettingKey)
	if err != nil && err != settingsdomain.ErrNotFound {
		return err
	}
	if current != nil {
		if err := json.Unmarshal(current.Value, &theme); err != nil {
			s.log.Warn("theme setting is not an object, rewriting", zap.Error(err))
			theme = map[string]json.RawMessage{}
		}
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	theme["currency"] = raw

	value, err := json.Marshal(theme)
	if err != nil {
		return err
	}

	if _, err := s.settings.Upsert(ctx, settingsdomain.ThemeSettingKey, value); err != nil {
		return err
	}

	s.log.Info("exchange rates refreshed",
		zap.String("base", cfg.Base),
		zap.String("source", cfg.Source),
		zap.Int("symbols", len(cfg.Rates)),
	)
	return nil
}
