package scheduler

import (
	"time"

	"github.com/smallbiznis/menuboard/internal/config"
)

// Config controls scheduler intervals and job gating.
type Config struct {
	RunInterval time.Duration

	// DailyHour is the UTC hour after which the once-a-day jobs
	// (snapshot, rollup, rates) fire.
	DailyHour int

	SyncInterval time.Duration
	JobTimeout   time.Duration
	LockTTL      time.Duration

	// EnabledJobs limits which jobs run. Empty means all.
	EnabledJobs []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval:  time.Minute,
		DailyHour:    2,
		SyncInterval: time.Hour,
		JobTimeout:   2 * time.Minute,
		LockTTL:      5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.DailyHour < 0 || c.DailyHour > 23 {
		c.DailyHour = defaults.DailyHour
	}
	if c.SyncInterval <= 0 {
		c.SyncInterval = defaults.SyncInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	return c
}

func ProvideConfig(cfg config.Config) Config {
	out := DefaultConfig()
	out.DailyHour = cfg.SnapshotHour
	return out.withDefaults()
}
