package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	analyticsdomain "github.com/smallbiznis/menuboard/internal/analytics/domain"
	"github.com/smallbiznis/menuboard/internal/clock"
	"github.com/smallbiznis/menuboard/internal/config"
	snapshotdomain "github.com/smallbiznis/menuboard/internal/snapshot/domain"
	syncdomain "github.com/smallbiznis/menuboard/internal/sync/domain"
)

type snapshotStub struct {
	calls int
	err   error
}

func (s *snapshotStub) CreateDailySnapshot(ctx context.Context, date string) (*snapshotdomain.Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &snapshotdomain.Response{}, nil
}

func (s *snapshotStub) Get(ctx context.Context, date string) (*snapshotdomain.Response, error) {
	return nil, snapshotdomain.ErrNotFound
}

func (s *snapshotStub) ListDates(ctx context.Context) ([]string, error) { return nil, nil }

type analyticsStub struct {
	calls int
	dates []string
}

func (a *analyticsStub) StartSession(ctx context.Context, req analyticsdomain.StartRequest) (*analyticsdomain.SessionResponse, error) {
	return nil, nil
}

func (a *analyticsStub) Heartbeat(ctx context.Context, id string) error { return nil }

func (a *analyticsStub) EndSession(ctx context.Context, id string) (*analyticsdomain.SessionResponse, error) {
	return nil, nil
}

func (a *analyticsStub) AggregateDaily(ctx context.Context, date string) ([]analyticsdomain.AggregateResponse, error) {
	a.calls++
	a.dates = append(a.dates, date)
	return nil, nil
}

func (a *analyticsStub) Aggregates(ctx context.Context, date string) ([]analyticsdomain.AggregateResponse, error) {
	return nil, nil
}

type syncStub struct {
	calls int
	err   error
}

func (s *syncStub) SyncCategories(ctx context.Context, rows []syncdomain.CategoryRow) (*syncdomain.CategoryResult, error) {
	return nil, nil
}

func (s *syncStub) SyncMenuItems(ctx context.Context, rows []syncdomain.ItemRow) (*syncdomain.ItemResult, error) {
	return nil, nil
}

func (s *syncStub) SyncFromSheet(ctx context.Context) (*syncdomain.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &syncdomain.Result{}, nil
}

func (s *syncStub) State(ctx context.Context) (*syncdomain.StateResponse, error) { return nil, nil }

type schedulerFixture struct {
	scheduler *Scheduler
	clock     *clock.FakeClock
	snapshots *snapshotStub
	analytics *analyticsStub
	sync      *syncStub
}

func newFixture(t *testing.T, at time.Time, cfg Config, appCfg config.Config) *schedulerFixture {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	fixture := &schedulerFixture{
		clock:     clock.NewFakeClock(at),
		snapshots: &snapshotStub{},
		analytics: &analyticsStub{},
		sync:      &syncStub{},
	}

	fixture.scheduler, err = New(Params{
		Log:       zap.NewNop(),
		GenID:     node,
		Clock:     fixture.clock,
		AppConfig: appCfg,
		Snapshots: fixture.snapshots,
		Analytics: fixture.analytics,
		Sync:      fixture.sync,
		Config:    cfg,
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return fixture
}

func TestDailyJobsWaitForConfiguredHour(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2025, 5, 10, 1, 0, 0, 0, time.UTC), Config{DailyHour: 2}, config.Config{})

	if err := f.scheduler.RunOnce(ctx); err != nil {
		t.Fatalf("run before hour: %v", err)
	}
	if f.snapshots.calls != 0 {
		t.Fatalf("snapshot ran before the daily hour")
	}

	f.clock.Advance(90 * time.Minute) // 02:30
	if err := f.scheduler.RunOnce(ctx); err != nil {
		t.Fatalf("run after hour: %v", err)
	}
	if f.snapshots.calls != 1 {
		t.Fatalf("expected 1 snapshot run, got %d", f.snapshots.calls)
	}
	if f.analytics.calls != 1 {
		t.Fatalf("expected 1 rollup run, got %d", f.analytics.calls)
	}
}

func TestDailyJobsRunOncePerDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2025, 5, 11, 3, 0, 0, 0, time.UTC), Config{DailyHour: 2}, config.Config{})

	for i := 0; i < 5; i++ {
		if err := f.scheduler.RunOnce(ctx); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		f.clock.Advance(time.Minute)
	}
	if f.snapshots.calls != 1 {
		t.Fatalf("expected 1 snapshot run that day, got %d", f.snapshots.calls)
	}

	f.clock.Advance(24 * time.Hour)
	if err := f.scheduler.RunOnce(ctx); err != nil {
		t.Fatalf("next day run: %v", err)
	}
	if f.snapshots.calls != 2 {
		t.Fatalf("expected second run the next day, got %d", f.snapshots.calls)
	}
}

func TestFailedDailyJobRetriesNextTick(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2025, 5, 12, 3, 0, 0, 0, time.UTC), Config{DailyHour: 2}, config.Config{})
	f.snapshots.err = errors.New("storage offline")

	if err := f.scheduler.RunOnce(ctx); err == nil {
		t.Fatalf("expected error from failed snapshot")
	}
	if f.snapshots.calls != 1 {
		t.Fatalf("expected 1 attempt, got %d", f.snapshots.calls)
	}

	// The day marker only advances on success.
	f.snapshots.err = nil
	f.clock.Advance(time.Minute)
	if err := f.scheduler.RunOnce(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if f.snapshots.calls != 2 {
		t.Fatalf("expected retry on next tick, got %d calls", f.snapshots.calls)
	}

	f.clock.Advance(time.Minute)
	if err := f.scheduler.RunOnce(ctx); err != nil {
		t.Fatalf("after success: %v", err)
	}
	if f.snapshots.calls != 2 {
		t.Fatalf("job reran after success, got %d calls", f.snapshots.calls)
	}
}

func TestRollupTargetsYesterday(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2025, 5, 13, 2, 30, 0, 0, time.UTC), Config{DailyHour: 2}, config.Config{})

	if err := f.scheduler.RunOnce(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(f.analytics.dates) != 1 || f.analytics.dates[0] != "2025-05-12" {
		t.Fatalf("expected rollup for 2025-05-12, got %v", f.analytics.dates)
	}
}

func TestSheetSyncHonorsInterval(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2025, 5, 14, 1, 0, 0, 0, time.UTC), Config{SyncInterval: time.Hour}, config.Config{SheetsSpreadsheetID: "sheet-123"})

	if err := f.scheduler.RunOnce(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if f.sync.calls != 1 {
		t.Fatalf("expected sync on first run, got %d", f.sync.calls)
	}

	f.clock.Advance(30 * time.Minute)
	if err := f.scheduler.RunOnce(ctx); err != nil {
		t.Fatalf("early run: %v", err)
	}
	if f.sync.calls != 1 {
		t.Fatalf("sync ran before the interval elapsed, got %d", f.sync.calls)
	}

	f.clock.Advance(31 * time.Minute)
	if err := f.scheduler.RunOnce(ctx); err != nil {
		t.Fatalf("due run: %v", err)
	}
	if f.sync.calls != 2 {
		t.Fatalf("expected second sync after interval, got %d", f.sync.calls)
	}
}

func TestSheetSyncSkippedWithoutSpreadsheet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2025, 5, 15, 1, 0, 0, 0, time.UTC), Config{}, config.Config{})

	if err := f.scheduler.RunOnce(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.sync.calls != 0 {
		t.Fatalf("sync must not run without a configured spreadsheet")
	}
}

func TestEnabledJobsFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, time.Date(2025, 5, 16, 3, 0, 0, 0, time.UTC), Config{
		DailyHour:   2,
		EnabledJobs: []string{"analytics_rollup"},
	}, config.Config{})

	if err := f.scheduler.RunOnce(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.snapshots.calls != 0 {
		t.Fatalf("snapshot job not enabled, got %d calls", f.snapshots.calls)
	}
	if f.analytics.calls != 1 {
		t.Fatalf("expected rollup to run, got %d", f.analytics.calls)
	}
}
