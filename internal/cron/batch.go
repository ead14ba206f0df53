package cron

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/bher20/solarquote/internal/metrics"
)

// PoolReporter is implemented by storage backends backed by database/sql.
type PoolReporter interface {
	Driver() string
	Stats() sql.DBStats
}

// RunPoolStats publishes connection pool gauges every interval until ctx is
// cancelled.
func RunPoolStats(ctx context.Context, p PoolReporter, interval time.Duration, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	driver := p.Driver()
	log.Debug("pool stats reporter starting", zap.String("driver", driver), zap.Duration("interval", interval))
	metrics.UpdateDBPoolMetrics(driver, p.Stats())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(driver, p.Stats())
		}
	}
}
