package storage

import (
	"context"
	"time"
)

// Storage abstracts persistence for catalog entries, cached quotes and leads.
// Lookups return nil, nil on a miss.
type Storage interface {
	// Catalog entries overlay the builtin appliance catalog at startup.
	ListCatalogEntries(ctx context.Context) ([]CatalogEntry, error)
	UpsertCatalogEntry(ctx context.Context, e CatalogEntry) error
	DeleteCatalogEntry(ctx context.Context, category, option string) error

	// Quote snapshots, keyed by input hash.
	GetQuoteSnapshot(ctx context.Context, hash string) (*QuoteSnapshot, error)
	SaveQuoteSnapshot(ctx context.Context, snap QuoteSnapshot) error
	DeleteQuoteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Leads
	CreateLead(ctx context.Context, lead Lead) error
	ListLeads(ctx context.Context, limit int) ([]Lead, error)

	// Settings
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	// Scheduled jobs & locking
	AcquireAdvisoryLock(ctx context.Context, key int64) (bool, error)
	ReleaseAdvisoryLock(ctx context.Context, key int64) (bool, error)
	UpdateScheduledJob(ctx context.Context, name string, started time.Time, dur time.Duration, success bool, errMsg string) error

	Ping(ctx context.Context) error
	// Close releases any resources (no-op for in-memory).
	Close() error
}
