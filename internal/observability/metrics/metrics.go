package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the constant labels attached to every instrument.
type Config struct {
	ServiceName string
	Environment string
}

// Metrics exposes application-level prometheus instruments.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	menuMutations   *prometheus.CounterVec
	ordersSubmitted prometheus.Counter
	syncRows        *prometheus.CounterVec
	snapshotRuns    *prometheus.CounterVec
	jobRuns         *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	liveClients     *prometheus.GaugeVec
}

// New registers the menuboard instruments on the default registerer.
func New(cfg Config) *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer, cfg)
}

// NewWithRegisterer registers the instruments on the given registerer.
// Tests pass their own registry to avoid duplicate registration.
func NewWithRegisterer(registerer prometheus.Registerer, cfg Config) *Metrics {
	constLabels := prometheus.Labels{
		"service": orDefault(cfg.ServiceName, "menuboard"),
		"env":     orDefault(cfg.Environment, "unknown"),
	}

	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "menuboard_http_requests_total",
			Help:        "HTTP requests by method, route and status.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "menuboard_http_request_duration_seconds",
			Help:        "HTTP request latency by method and route.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		menuMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "menuboard_menu_mutations_total",
			Help:        "Menu entity mutations by entity and action.",
			ConstLabels: constLabels,
		}, []string{"entity", "action"}),
		ordersSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "menuboard_orders_submitted_total",
			Help:        "Orders transitioned to submitted.",
			ConstLabels: constLabels,
		}),
		syncRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "menuboard_sync_rows_total",
			Help:        "Spreadsheet reconciliation rows by outcome.",
			ConstLabels: constLabels,
		}, []string{"result"}),
		snapshotRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "menuboard_snapshot_runs_total",
			Help:        "Daily snapshot runs by outcome.",
			ConstLabels: constLabels,
		}, []string{"result"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "menuboard_scheduler_job_runs_total",
			Help:        "Scheduler job runs by job and result.",
			ConstLabels: constLabels,
		}, []string{"job", "result"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "menuboard_scheduler_job_duration_seconds",
			Help:        "Scheduler job duration by job.",
			ConstLabels: constLabels,
			Buckets:     []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}, []string{"job"}),
		liveClients: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "menuboard_live_clients",
			Help:        "Connected live event stream clients by topic.",
			ConstLabels: constLabels,
		}, []string{"topic"}),
	}

	registerer.MustRegister(
		m.httpRequests,
		m.httpDuration,
		m.menuMutations,
		m.ordersSubmitted,
		m.syncRows,
		m.snapshotRuns,
		m.jobRuns,
		m.jobDuration,
		m.liveClients,
	)

	return m
}

// GinMiddleware records request counts and latency per route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		method := c.Request.Method

		m.httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) RecordMenuMutation(entity, action string) {
	if m == nil {
		return
	}
	m.menuMutations.WithLabelValues(entity, action).Inc()
}

func (m *Metrics) RecordOrderSubmitted() {
	if m == nil {
		return
	}
	m.ordersSubmitted.Inc()
}

func (m *Metrics) RecordSyncRow(result string) {
	if m == nil {
		return
	}
	m.syncRows.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordSnapshotRun(result string) {
	if m == nil {
		return
	}
	m.snapshotRuns.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordJobRun(job, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, result).Inc()
	m.jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}

func (m *Metrics) LiveClientConnected(topic string) {
	if m == nil {
		return
	}
	m.liveClients.WithLabelValues(topic).Inc()
}

func (m *Metrics) LiveClientDisconnected(topic string) {
	if m == nil {
		return
	}
	m.liveClients.WithLabelValues(topic).Dec()
}

func orDefault(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
