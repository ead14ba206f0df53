package cron

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/bher20/solarquote/internal/metrics"
	"github.com/bher20/solarquote/internal/storage"
)

const (
	// JobName is the scheduled_jobs row the janitor reports to.
	JobName = "prune_quote_snapshots"

	// ScheduleSetting overrides the configured schedule at runtime.
	ScheduleSetting = "janitor_schedule"
	// RetentionSetting overrides the configured retention at runtime
	// (a Go duration such as "720h").
	RetentionSetting = "janitor_retention"

	DefaultSchedule  = "3600"
	DefaultRetention = 30 * 24 * time.Hour

	lockKey int64 = 5170
)

// Janitor prunes quote snapshots older than the retention window.
type Janitor struct {
	st        storage.Storage
	log       *zap.Logger
	schedule  string
	retention time.Duration

	// Poll controls how often the loop checks settings and the next run time.
	Poll time.Duration
	now  func() time.Time
}

func NewJanitor(st storage.Storage, log *zap.Logger, schedule string, retention time.Duration) *Janitor {
	if log == nil {
		log = zap.NewNop()
	}
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Janitor{
		st:        st,
		log:       log.Named("janitor"),
		schedule:  schedule,
		retention: retention,
		Poll:      10 * time.Second,
		now:       time.Now,
	}
}

// NextRun returns the next run time after lastRun. The setting is either a
// positive number of seconds or a standard cron expression; anything else
// falls back to one hour.
func NextRun(setting string, lastRun time.Time) time.Time {
	if v, err := strconv.Atoi(setting); err == nil && v > 0 {
		return lastRun.Add(time.Duration(v) * time.Second)
	}
	if sched, err := cron.ParseStandard(setting); err == nil {
		return sched.Next(lastRun)
	}
	return lastRun.Add(time.Hour)
}

// ValidSchedule reports whether setting is a positive number of seconds or a
// standard cron expression.
func ValidSchedule(setting string) bool {
	if v, err := strconv.Atoi(setting); err == nil {
		return v > 0
	}
	_, err := cron.ParseStandard(setting)
	return err == nil
}

// SetSchedule stores a runtime schedule override picked up on the next poll.
func SetSchedule(ctx context.Context, st storage.Storage, setting string) error {
	if !ValidSchedule(setting) {
		return fmt.Errorf("invalid janitor schedule %q: want seconds or a cron expression", setting)
	}
	return st.SetSetting(ctx, ScheduleSetting, setting)
}

// SetRetention stores a runtime retention override used by the next run.
func SetRetention(ctx context.Context, st storage.Storage, retention time.Duration) error {
	if retention <= 0 {
		return fmt.Errorf("invalid janitor retention %s: must be positive", retention)
	}
	return st.SetSetting(ctx, RetentionSetting, retention.String())
}

func (j *Janitor) currentRetention(ctx context.Context) time.Duration {
	val, err := j.st.GetSetting(ctx, RetentionSetting)
	if err != nil || val == "" {
		return j.retention
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		j.log.Warn("ignoring invalid retention setting", zap.String("value", val))
		return j.retention
	}
	return d
}

// RunOnce prunes expired snapshots a single time. It reports false when
// another instance holds the lock.
func (j *Janitor) RunOnce(ctx context.Context) (int64, bool, error) {
	started := j.now()

	ok, err := j.st.AcquireAdvisoryLock(ctx, lockKey)
	if err != nil {
		j.log.Error("acquire advisory lock failed", zap.Error(err))
		metrics.UpdateJobMetrics(JobName, started, err)
		return 0, false, err
	}
	if !ok {
		j.log.Info("advisory lock held by another worker, skipping run")
		return 0, false, nil
	}

	var (
		pruned int64
		runErr error
	)
	func() {
		defer func() {
			if _, err := j.st.ReleaseAdvisoryLock(ctx, lockKey); err != nil {
				j.log.Error("release advisory lock failed", zap.Error(err))
			}
		}()
		cutoff := started.Add(-j.currentRetention(ctx))
		pruned, runErr = j.st.DeleteQuoteSnapshotsBefore(ctx, cutoff)
	}()

	metrics.UpdateJobMetrics(JobName, started, runErr)
	metrics.SnapshotsPrunedTotal.Add(float64(pruned))

	dur := j.now().Sub(started)
	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}
	if err := j.st.UpdateScheduledJob(ctx, JobName, started, dur, runErr == nil, errMsg); err != nil {
		j.log.Warn("update scheduled_jobs failed", zap.Error(err))
	}

	if runErr != nil {
		j.log.Error("job completed with error", zap.String("job", JobName), zap.Error(runErr), zap.Duration("duration", dur))
	} else {
		j.log.Info("job completed", zap.String("job", JobName), zap.Int64("pruned", pruned), zap.Duration("duration", dur))
	}
	return pruned, true, runErr
}

// Run executes the janitor until ctx is cancelled. The first run happens on
// the first poll tick.
func (j *Janitor) Run(ctx context.Context) error {
	setting := j.schedule
	if val, err := j.st.GetSetting(ctx, ScheduleSetting); err == nil && val != "" {
		setting = val
	}

	ticker := time.NewTicker(j.Poll)
	defer ticker.Stop()

	nextRun := j.now()
	j.log.Info("janitor starting", zap.String("schedule", setting), zap.Duration("retention", j.retention))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if val, err := j.st.GetSetting(ctx, ScheduleSetting); err == nil && val != "" && val != setting {
				j.log.Info("schedule updated", zap.String("from", setting), zap.String("to", val))
				setting = val
				nextRun = NextRun(setting, j.now())
			}

			if j.now().Before(nextRun) {
				continue
			}

			_, _, _ = j.RunOnce(ctx)
			nextRun = NextRun(setting, j.now())
		}
	}
}
