package currency

import (
	"strings"

	"github.com/smallbiznis/menuboard/internal/config"
	"go.uber.org/fx"
)

func provideFetcher(cfg config.Config) Fetcher {
	if cfg.RatesDisabled || cfg.RatesURL == "" {
		return nil
	}
	var symbols []string
	for _, s := range strings.Split(cfg.RatesSymbols, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	return NewFrankfurterClient(cfg.RatesURL, cfg.RatesBase, symbols)
}

var Module = fx.Module("currency.service",
	fx.Provide(provideFetcher),
	fx.Provide(New),
)
