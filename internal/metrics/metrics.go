package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarquote_requests_total",
			Help: "Total number of requests per endpoint",
		},
		[]string{"endpoint"},
	)

	RequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "solarquote_request_duration_seconds",
			Help:    "Request duration in seconds per endpoint and path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "path"},
	)

	RequestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarquote_request_errors_total",
			Help: "Total number of error responses per endpoint and path",
		},
		[]string{"endpoint", "path", "code"},
	)
)

var (
	QuoteCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarquote_quote_cache_total",
			Help: "Quote cache lookups by result (hit or miss)",
		},
		[]string{"result"},
	)

	LeadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "solarquote_leads_total",
			Help: "Total number of captured leads",
		},
	)

	QuoteSystemSizeKW = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "solarquote_quote_system_size_kw",
			Help:    "System size of computed quotes in kW",
			Buckets: []float64{1, 2, 3, 5, 7.5, 10, 15, 20, 30, 50},
		},
	)
)

// ObserveQuote records the outcome of a quote computation.
func ObserveQuote(cached bool, systemSizeKW float64) {
	if cached {
		QuoteCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	QuoteCacheTotal.WithLabelValues("miss").Inc()
	QuoteSystemSizeKW.Observe(systemSizeKW)
}

var (
	DBPoolOpenConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "solarquote_db_pool_open_conns",
			Help: "Open connections in the DB pool per driver",
		},
		[]string{"driver"},
	)

	DBPoolIdleConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "solarquote_db_pool_idle_conns",
			Help: "Idle connections in the DB pool per driver",
		},
		[]string{"driver"},
	)

	DBPoolInUseConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "solarquote_db_pool_in_use_conns",
			Help: "Currently in-use connections per driver",
		},
		[]string{"driver"},
	)

	DBPoolWaitCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "solarquote_db_pool_wait_count",
			Help: "Total number of connections waited for per driver",
		},
		[]string{"driver"},
	)
)

func UpdateDBPoolMetrics(driver string, s sql.DBStats) {
	DBPoolOpenConns.WithLabelValues(driver).Set(float64(s.OpenConnections))
	DBPoolIdleConns.WithLabelValues(driver).Set(float64(s.Idle))
	DBPoolInUseConns.WithLabelValues(driver).Set(float64(s.InUse))
	DBPoolWaitCount.WithLabelValues(driver).Set(float64(s.WaitCount))
}

var (
	ScheduledJobLastRun = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "solarquote_job_last_run_timestamp",
			Help: "Unix timestamp of the last completed run for a job",
		},
		[]string{"job"},
	)

	ScheduledJobLastDurationSeconds = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "solarquote_job_last_duration_seconds",
			Help: "Duration of the last completed run for a job",
		},
		[]string{"job"},
	)

	ScheduledJobFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solarquote_job_failures_total",
			Help: "Total number of failed executions per job",
		},
		[]string{"job"},
	)

	SnapshotsPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "solarquote_snapshots_pruned_total",
			Help: "Total number of quote snapshots removed by the janitor",
		},
	)
)

func UpdateJobMetrics(job string, startedAt time.Time, err error) {
	dur := time.Since(startedAt).Seconds()
	ScheduledJobLastDurationSeconds.WithLabelValues(job).Set(dur)
	ScheduledJobLastRun.WithLabelValues(job).Set(float64(time.Now().Unix()))
	if err != nil {
		ScheduledJobFailuresTotal.WithLabelValues(job).Inc()
	}
}
