package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type GormStorage struct {
	db *gorm.DB

	// locks holds the advisory locks taken by this process. Postgres locks
	// are session scoped, so each one keeps the connection it was taken on
	// until release. Other drivers store a nil conn.
	mu    sync.Mutex
	locks map[int64]*sql.Conn
}

func NewGormStorage(driver, dsn string) (*GormStorage, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		if dsn == "" {
			dsn = "postgres://localhost:5432/solarquote?sslmode=disable"
		}
		dialector = postgres.Open(dsn)
	case "sqlite":
		if dsn == "" {
			dsn = "solarquote.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	return &GormStorage{db: db, locks: make(map[int64]*sql.Conn)}, nil
}

// Migrate creates or updates the tables. Versioned schema changes for
// production databases go through internal/migrate instead.
func (s *GormStorage) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&CatalogEntry{},
		&QuoteSnapshot{},
		&Lead{},
		&Setting{},
		&ScheduledJob{},
	)
}

// Catalog entries

func (s *GormStorage) ListCatalogEntries(ctx context.Context) ([]CatalogEntry, error) {
	var entries []CatalogEntry
	result := s.db.WithContext(ctx).Order("category, id").Find(&entries)
	return entries, result.Error
}

func (s *GormStorage) UpsertCatalogEntry(ctx context.Context, e CatalogEntry) error {
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now()
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category"}, {Name: "option_label"}},
		DoUpdates: clause.AssignmentColumns([]string{"category_name", "watts", "updated_at"}),
	}).Create(&e).Error
}

func (s *GormStorage) DeleteCatalogEntry(ctx context.Context, category, option string) error {
	return s.db.WithContext(ctx).
		Where("category = ? AND option_label = ?", category, option).
		Delete(&CatalogEntry{}).Error
}

// Quote snapshots

func (s *GormStorage) GetQuoteSnapshot(ctx context.Context, hash string) (*QuoteSnapshot, error) {
	var snap QuoteSnapshot
	result := s.db.WithContext(ctx).Order("created_at desc").First(&snap, "hash = ?", hash)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &snap, nil
}

func (s *GormStorage) SaveQuoteSnapshot(ctx context.Context, snap QuoteSnapshot) error {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(&snap).Error
}

func (s *GormStorage) DeleteQuoteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&QuoteSnapshot{})
	return result.RowsAffected, result.Error
}

// Leads

func (s *GormStorage) CreateLead(ctx context.Context, lead Lead) error {
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}
	return s.db.WithContext(ctx).Create(&lead).Error
}

func (s *GormStorage) ListLeads(ctx context.Context, limit int) ([]Lead, error) {
	var leads []Lead
	q := s.db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	result := q.Find(&leads)
	return leads, result.Error
}

// Settings

func (s *GormStorage) GetSetting(ctx context.Context, key string) (string, error) {
	var setting Setting
	result := s.db.WithContext(ctx).First(&setting, "key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", result.Error
	}
	return setting.Value, nil
}

func (s *GormStorage) SetSetting(ctx context.Context, key, value string) error {
	setting := Setting{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		UpdateAll: true,
	}).Create(&setting).Error
}

// Close & Ping

func (s *GormStorage) Close() error {
	s.mu.Lock()
	for key, conn := range s.locks {
		if conn != nil {
			s.unlockOn(context.Background(), conn, key)
		}
		delete(s.locks, key)
	}
	s.mu.Unlock()

	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStorage) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Scheduled Jobs & Locking

func (s *GormStorage) AcquireAdvisoryLock(ctx context.Context, key int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, held := s.locks[key]; held {
		return false, nil
	}
	if s.db.Dialector.Name() != "postgres" {
		// SQLite has no advisory locks; a single instance owns the file.
		s.locks[key] = nil
		return true, nil
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return false, err
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", key).Scan(&ok); err != nil || !ok {
		conn.Close()
		return false, err
	}
	s.locks[key] = conn
	return true, nil
}

// ReleaseAdvisoryLock unlocks key on the connection that acquired it. It
// reports false when this process did not hold the lock.
func (s *GormStorage) ReleaseAdvisoryLock(ctx context.Context, key int64) (bool, error) {
	s.mu.Lock()
	conn, held := s.locks[key]
	delete(s.locks, key)
	s.mu.Unlock()

	if !held {
		return false, nil
	}
	if conn == nil {
		return true, nil
	}
	return s.unlockOn(ctx, conn, key)
}

// unlockOn runs pg_advisory_unlock on conn and returns it to the pool. When
// the unlock fails the connection is discarded, which ends the session and
// with it the lock.
func (s *GormStorage) unlockOn(ctx context.Context, conn *sql.Conn, key int64) (bool, error) {
	defer conn.Close()
	var ok bool
	err := conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", key).Scan(&ok)
	if err != nil || !ok {
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	}
	return ok, err
}

func (s *GormStorage) UpdateScheduledJob(ctx context.Context, name string, started time.Time, dur time.Duration, success bool, errMsg string) error {
	status := 0
	if success {
		status = 1
	}
	job := ScheduledJob{
		Name:           name,
		LastRunAt:      started,
		LastDurationMs: dur.Milliseconds(),
		LastSuccess:    status,
		LastError:      errMsg,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(&job).Error
}

// GetScheduledJob returns the last recorded run of a job, if any.
func (s *GormStorage) GetScheduledJob(ctx context.Context, name string) (*ScheduledJob, error) {
	var job ScheduledJob
	result := s.db.WithContext(ctx).First(&job, "name = ?", name)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &job, nil
}

// Driver returns the dialect name ("sqlite" or "postgres").
func (s *GormStorage) Driver() string {
	return s.db.Dialector.Name()
}

// Stats reports connection pool statistics.
func (s *GormStorage) Stats() sql.DBStats {
	sqlDB, err := s.db.DB()
	if err != nil {
		return sql.DBStats{}
	}
	return sqlDB.Stats()
}
