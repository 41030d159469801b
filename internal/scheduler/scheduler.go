package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/smallbiznis/menuboard/internal/analytics/domain"
	"github.com/smallbiznis/menuboard/internal/clock"
	"github.com/smallbiznis/menuboard/internal/config"
	"github.com/smallbiznis/menuboard/internal/currency"
	"github.com/smallbiznis/menuboard/internal/observability/metrics"
	snapshotdomain "github.com/smallbiznis/menuboard/internal/snapshot/domain"
	syncdomain "github.com/smallbiznis/menuboard/internal/sync/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Params struct {
	fx.In

	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	AppConfig config.Config
	Snapshots snapshotdomain.Service
	Analytics analyticsdomain.Service
	Currency  *currency.Service
	Sync      syncdomain.Service

	Locker  *Locker          `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
	Config  Config           `optional:"true"`
}

type Scheduler struct {
	log       *zap.Logger
	cfg       Config
	genID     *snowflake.Node
	clock     clock.Clock
	snapshots snapshotdomain.Service
	analytics analyticsdomain.Service
	currency  *currency.Service
	sync      syncdomain.Service
	locker    *Locker
	metrics   *metrics.Metrics

	syncConfigured bool

	// lastDaily and lastSync are only touched from the run loop.
	lastDaily map[string]string
	lastSync  time.Time
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.GenID == nil || p.Clock == nil || p.Snapshots == nil || p.Analytics == nil || p.Sync == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:            p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:            p.Config.withDefaults(),
		genID:          p.GenID,
		clock:          p.Clock,
		snapshots:      p.Snapshots,
		analytics:      p.Analytics,
		currency:       p.Currency,
		sync:           p.Sync,
		locker:         p.Locker,
		metrics:        p.Metrics,
		syncConfigured: p.AppConfig.SheetsSpreadsheetID != "",
		lastDaily:      make(map[string]string),
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	if s.locker != nil {
		key := "menuboard:job:" + name
		token, ok, err := s.locker.TryLock(ctx, key, s.cfg.LockTTL)
		if err != nil {
			s.log.Warn("job lock unavailable, running unlocked",
				zap.String("job", name),
				zap.Error(err),
			)
		} else if !ok {
			s.log.Debug("job held by another instance", zap.String("job", name))
			s.metrics.RecordJobRun(name, "skipped", 0)
			return nil
		} else {
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
					s.log.Warn("job lock release failed", zap.String("job", name), zap.Error(err))
				}
			}()
		}
	}

	log := s.log.With(
		zap.String("job", name),
		zap.String("run_id", s.genID.Generate().String()),
	)
	log.Info("scheduler.job.start")

	err := fn(ctx)
	elapsed := s.clock.Now().Sub(start)

	if err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
		s.metrics.RecordJobRun(name, "timeout", elapsed)
		log.Warn("scheduler.job.timeout",
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}
	if err != nil {
		s.metrics.RecordJobRun(name, "error", elapsed)
		log.Error("scheduler.job.finish",
			zap.Int64("duration_ms", elapsed.Milliseconds()),
			zap.Error(err),
		)
		return fmt.Errorf("%s: %w", name, err)
	}

	s.metrics.RecordJobRun(name, "ok", elapsed)
	log.Info("scheduler.job.finish", zap.Int64("duration_ms", elapsed.Milliseconds()))
	return nil
}

// RunOnce evaluates every job's schedule against the current clock and
// runs those that are due. Daily jobs only advance their marker on
// success, so a failed run is retried on the next tick.
func (s *Scheduler) RunOnce(parent context.Context) error {
	now := s.clock.Now().UTC()
	var err error

	if s.isJobEnabled("daily_snapshot") && s.dailyDue("daily_snapshot", now) {
		err = errors.Join(err, s.runDaily(parent, "daily_snapshot", now, s.dailySnapshotJob))
	}
	if s.isJobEnabled("analytics_rollup") && s.dailyDue("analytics_rollup", now) {
		err = errors.Join(err, s.runDaily(parent, "analytics_rollup", now, s.analyticsRollupJob))
	}
	if s.isJobEnabled("refresh_rates") && s.currency != nil && s.dailyDue("refresh_rates", now) {
		err = errors.Join(err, s.runDaily(parent, "refresh_rates", now, s.currency.Refresh))
	}
	if s.isJobEnabled("sheet_sync") && s.syncConfigured && s.syncDue(now) {
		err = errors.Join(err, s.runJob(parent, "sheet_sync", s.sheetSyncJob))
		s.lastSync = now
	}

	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) dailySnapshotJob(ctx context.Context) error {
	_, err := s.snapshots.CreateDailySnapshot(ctx, "")
	return err
}

func (s *Scheduler) analyticsRollupJob(ctx context.Context) error {
	yesterday := s.clock.Now().UTC().AddDate(0, 0, -1).Format(dateLayout)
	_, err := s.analytics.AggregateDaily(ctx, yesterday)
	return err
}

func (s *Scheduler) sheetSyncJob(ctx context.Context) error {
	_, err := s.sync.SyncFromSheet(ctx)
	if errors.Is(err, syncdomain.ErrNotConfigured) {
		return nil
	}
	return err
}

func (s *Scheduler) runDaily(parent context.Context, name string, now time.Time, fn func(ctx context.Context) error) error {
	if err := s.runJob(parent, name, fn); err != nil {
		return err
	}
	s.lastDaily[name] = now.Format(dateLayout)
	return nil
}

func (s *Scheduler) dailyDue(name string, now time.Time) bool {
	return now.Hour() >= s.cfg.DailyHour && s.lastDaily[name] != now.Format(dateLayout)
}

func (s *Scheduler) syncDue(now time.Time) bool {
	return s.lastSync.IsZero() || now.Sub(s.lastSync) >= s.cfg.SyncInterval
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// Empty EnabledJobs means everything runs (monolith mode).
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}
