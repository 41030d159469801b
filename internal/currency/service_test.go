package currency

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/smallbiznis/menuboard/internal/clock"
	"github.com/smallbiznis/menuboard/internal/config"
	settingsdomain "github.com/smallbiznis/menuboard/internal/settings/domain"
)

// settingsStub keeps settings in a map so currency tests avoid a
// database.
type settingsStub struct {
	values map[string]json.RawMessage
}

func newSettingsStub() *settingsStub {
	return &settingsStub{values: map[string]json.RawMessage{}}
}

func (s *settingsStub) Get(ctx context.Context, key string) (*settingsdomain.SettingResponse, error) {
	value, ok := s.values[key]
	if !ok {
		return nil, settingsdomain.ErrNotFound
	}
	return &settingsdomain.SettingResponse{Key: key, Value: value}, nil
}

func (s *settingsStub) List(ctx context.Context) ([]settingsdomain.SettingResponse, error) {
	return nil, nil
}

func (s *settingsStub) Upsert(ctx context.Context, key string, value json.RawMessage) (*settingsdomain.SettingResponse, error) {
	s.values[key] = value
	return &settingsdomain.SettingResponse{Key: key, Value: value}, nil
}

func (s *settingsStub) Delete(ctx context.Context, key string) error {
	delete(s.values, key)
	return nil
}

func (s *settingsStub) SavePreset(ctx context.Context, req settingsdomain.PresetRequest) (*settingsdomain.PresetResponse, error) {
	return nil, nil
}

func (s *settingsStub) ListPresets(ctx context.Context) ([]settingsdomain.PresetResponse, error) {
	return nil, nil
}

func (s *settingsStub) ApplyPreset(ctx context.Context, id string) (*settingsdomain.SettingResponse, error) {
	return nil, nil
}

func (s *settingsStub) DeletePreset(ctx context.Context, id string) error {
	return nil
}

type fetcherStub struct {
	rates *Rates
	err   error
}

func (f *fetcherStub) Fetch(ctx context.Context) (*Rates, error) {
	return f.rates, f.err
}

func newCurrencyService(fetcher Fetcher, settings settingsdomain.Service) *Service {
	return New(Params{
		Config:   config.Config{RatesBase: "USD"},
		Log:      zap.NewNop(),
		Clock:    clock.NewFakeClock(time.Date(2025, 4, 1, 6, 0, 0, 0, time.UTC)),
		Fetcher:  fetcher,
		Settings: settings,
	})
}

func themeCurrency(t *testing.T, settings *settingsStub) CurrencyConfig {
	t.Helper()
	raw, ok := settings.values[settingsdomain.ThemeSettingKey]
	if !ok {
		t.Fatalf("theme setting not written")
	}
	var theme map[string]json.RawMessage
	if err := json.Unmarshal(raw, &theme); err != nil {
		t.Fatalf("decode theme: %v", err)
	}
	var cfg CurrencyConfig
	if err := json.Unmarshal(theme["currency"], &cfg); err != nil {
		t.Fatalf("decode currency: %v", err)
	}
	return cfg
}

func TestRefreshWithoutFetcherUsesFallback(t *testing.T) {
	settings := newSettingsStub()
	svc := newCurrencyService(nil, settings)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	cfg := themeCurrency(t, settings)
	if cfg.Source != "fallback" {
		t.Fatalf("expected fallback source, got %q", cfg.Source)
	}
	if cfg.Rates["USD"] != 1 {
		t.Fatalf("fallback table must anchor the base at 1, got %v", cfg.Rates)
	}
}

func TestRefreshFetchFailureFallsBack(t *testing.T) {
	settings := newSettingsStub()
	svc := newCurrencyService(&fetcherStub{err: errors.New("connection refused")}, settings)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh should survive a failed fetch: %v", err)
	}
	if cfg := themeCurrency(t, settings); cfg.Source != "fallback" {
		t.Fatalf("expected fallback after fetch error, got %q", cfg.Source)
	}
}

func TestRefreshWritesFetchedRates(t *testing.T) {
	settings := newSettingsStub()
	svc := newCurrencyService(&fetcherStub{rates: &Rates{
		Base:  "USD",
		Date:  "2025-04-01",
		Rates: map[string]float64{"CZK": 22.9, "EUR": 0.91},
	}}, settings)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	cfg := themeCurrency(t, settings)
	if cfg.Source != "frankfurter" {
		t.Fatalf("expected frankfurter source, got %q", cfg.Source)
	}
	if cfg.Rates["CZK"] != 22.9 || cfg.Rates["USD"] != 1 {
		t.Fatalf("unexpected rate table: %v", cfg.Rates)
	}
}

func TestRefreshPreservesOtherThemeKeys(t *testing.T) {
	settings := newSettingsStub()
	settings.values[settingsdomain.ThemeSettingKey] = json.RawMessage(`{"primary_color":"#0f172a"}`)
	svc := newCurrencyService(nil, settings)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	var theme map[string]json.RawMessage
	if err := json.Unmarshal(settings.values[settingsdomain.ThemeSettingKey], &theme); err != nil {
		t.Fatalf("decode theme: %v", err)
	}
	if string(theme["primary_color"]) != `"#0f172a"` {
		t.Fatalf("refresh clobbered the rest of the theme: %s", theme["primary_color"])
	}
	if _, ok := theme["currency"]; !ok {
		t.Fatalf("currency section missing")
	}
}

func TestFrankfurterClientParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("from"); got != "USD" {
			t.Errorf("expected from=USD, got %q", got)
		}
		if got := r.URL.Query().Get("to"); got != "CZK,EUR" {
			t.Errorf("expected to=CZK,EUR, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"base":"USD","date":"2025-04-01","rates":{"CZK":23.1,"EUR":0.93}}`))
	}))
	defer srv.Close()

	fetcher := NewFrankfurterClient(srv.URL, "USD", []string{"CZK", "EUR"})
	rates, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if rates.Base != "USD" || rates.Rates["CZK"] != 23.1 {
		t.Fatalf("unexpected rates: %+v", rates)
	}
}

func TestFrankfurterClientRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	fetcher := NewFrankfurterClient(srv.URL, "USD", nil)
	if _, err := fetcher.Fetch(context.Background()); err == nil {
		t.Fatalf("expected error on 503")
	}
}
