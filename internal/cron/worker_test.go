package cron

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bher20/solarquote/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNextRun(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, base.Add(90*time.Second), NextRun("90", base))
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), NextRun("@daily", base))
	assert.Equal(t, time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC), NextRun("0 * * * *", base))
	assert.Equal(t, base.Add(time.Hour), NextRun("garbage", base))
	assert.Equal(t, base.Add(time.Hour), NextRun("-5", base))
}

func seed(t *testing.T, st storage.Storage, now time.Time) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.SaveQuoteSnapshot(ctx, storage.QuoteSnapshot{ID: "old", Hash: "h-old", CreatedAt: now.Add(-72 * time.Hour)}))
	require.NoError(t, st.SaveQuoteSnapshot(ctx, storage.QuoteSnapshot{ID: "new", Hash: "h-new", CreatedAt: now.Add(-time.Hour)}))
}

func TestJanitor_RunOnce(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	now := time.Now()
	seed(t, st, now)

	j := NewJanitor(st, nil, "", 24*time.Hour)
	pruned, ran, err := j.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, int64(1), pruned)

	snap, _ := st.GetQuoteSnapshot(ctx, "h-new")
	assert.NotNil(t, snap)
	snap, _ = st.GetQuoteSnapshot(ctx, "h-old")
	assert.Nil(t, snap)

	job, err := st.GetScheduledJob(ctx, JobName)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, 1, job.LastSuccess)
}

func TestJanitor_RetentionSettingOverrides(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	seed(t, st, time.Now())
	require.NoError(t, st.SetSetting(ctx, RetentionSetting, "30m"))

	j := NewJanitor(st, nil, "", 24*time.Hour)
	pruned, _, err := j.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pruned)
}

func TestJanitor_SkipsWhenLockHeld(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	seed(t, st, time.Now())

	ok, err := st.AcquireAdvisoryLock(ctx, lockKey)
	require.NoError(t, err)
	require.True(t, ok)

	j := NewJanitor(st, nil, "", time.Hour)
	pruned, ran, err := j.RunOnce(ctx)
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, pruned)
}

type failingStore struct {
	*storage.MemoryStorage
}

func (f failingStore) DeleteQuoteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, errors.New("disk full")
}

func TestJanitor_RecordsFailure(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	j := NewJanitor(failingStore{mem}, nil, "", time.Hour)

	_, ran, err := j.RunOnce(ctx)
	assert.True(t, ran)
	assert.EqualError(t, err, "disk full")

	job, _ := mem.GetScheduledJob(ctx, JobName)
	require.NotNil(t, job)
	assert.Equal(t, 0, job.LastSuccess)
	assert.Equal(t, "disk full", job.LastError)

	ok, _ := mem.AcquireAdvisoryLock(ctx, lockKey)
	assert.True(t, ok, "lock must be released after a failed run")
}

func TestJanitor_RunStopsOnCancel(t *testing.T) {
	st := storage.NewMemory()
	seed(t, st, time.Now())

	j := NewJanitor(st, nil, "3600", 24*time.Hour)
	j.Poll = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	require.Eventually(t, func() bool {
		job, _ := st.GetScheduledJob(context.Background(), JobName)
		return job != nil
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}

type fakePool struct{}

func (fakePool) Driver() string     { return "sqlite" }
func (fakePool) Stats() sql.DBStats { return sql.DBStats{OpenConnections: 2, Idle: 1, InUse: 1} }

func TestRunPoolStats_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunPoolStats(ctx, fakePool{}, time.Millisecond, nil) }()

	time.Sleep(5 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestSetScheduleAndRetention(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()

	require.NoError(t, SetSchedule(ctx, st, "*/15 * * * *"))
	v, _ := st.GetSetting(ctx, ScheduleSetting)
	assert.Equal(t, "*/15 * * * *", v)

	for _, bad := range []string{"", "0", "-5", "every tuesday"} {
		assert.Error(t, SetSchedule(ctx, st, bad), bad)
	}
	v, _ = st.GetSetting(ctx, ScheduleSetting)
	assert.Equal(t, "*/15 * * * *", v, "rejected values must not overwrite")

	require.NoError(t, SetRetention(ctx, st, 48*time.Hour))
	v, _ = st.GetSetting(ctx, RetentionSetting)
	assert.Equal(t, "48h0m0s", v)
	assert.Error(t, SetRetention(ctx, st, 0))

	j := NewJanitor(st, nil, "", time.Hour)
	assert.Equal(t, 48*time.Hour, j.currentRetention(ctx))
}
