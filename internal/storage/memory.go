package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage implementation, useful for tests and
// simple single-process deployments.
type MemoryStorage struct {
	mu       sync.RWMutex
	catalog  map[string]CatalogEntry
	snaps    map[string][]QuoteSnapshot
	leads    []Lead
	settings map[string]string
	jobs     map[string]ScheduledJob
	locks    map[int64]bool
	nextID   uint
}

// NewMemory returns an empty MemoryStorage.
func NewMemory() *MemoryStorage {
	return &MemoryStorage{
		catalog:  make(map[string]CatalogEntry),
		snaps:    make(map[string][]QuoteSnapshot),
		settings: make(map[string]string),
		jobs:     make(map[string]ScheduledJob),
		locks:    make(map[int64]bool),
	}
}

// NewMemoryWithCatalog returns a MemoryStorage preloaded with catalog entries.
func NewMemoryWithCatalog(entries []CatalogEntry) *MemoryStorage {
	m := NewMemory()
	for _, e := range entries {
		_ = m.UpsertCatalogEntry(context.Background(), e)
	}
	return m
}

func (m *MemoryStorage) Close() error { return nil }

func (m *MemoryStorage) Ping(ctx context.Context) error { return nil }

func catalogKey(category, option string) string { return category + "\x00" + option }

func (m *MemoryStorage) ListCatalogEntries(ctx context.Context) ([]CatalogEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]CatalogEntry, 0, len(m.catalog))
	for _, e := range m.catalog {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemoryStorage) UpsertCatalogEntry(ctx context.Context, e CatalogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := catalogKey(e.Category, e.Option)
	if cur, ok := m.catalog[k]; ok {
		e.ID = cur.ID
	} else {
		m.nextID++
		e.ID = m.nextID
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = time.Now()
	}
	m.catalog[k] = e
	return nil
}

func (m *MemoryStorage) DeleteCatalogEntry(ctx context.Context, category, option string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.catalog, catalogKey(category, option))
	return nil
}

func (m *MemoryStorage) GetQuoteSnapshot(ctx context.Context, hash string) (*QuoteSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.snaps[hash]
	if len(list) == 0 {
		return nil, nil
	}
	cp := list[len(list)-1]
	return &cp, nil
}

func (m *MemoryStorage) SaveQuoteSnapshot(ctx context.Context, snap QuoteSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}
	m.snaps[snap.Hash] = append(m.snaps[snap.Hash], snap)
	return nil
}

func (m *MemoryStorage) DeleteQuoteSnapshotsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for hash, list := range m.snaps {
		kept := list[:0]
		for _, s := range list {
			if s.CreatedAt.Before(cutoff) {
				n++
				continue
			}
			kept = append(kept, s)
		}
		if len(kept) == 0 {
			delete(m.snaps, hash)
		} else {
			m.snaps[hash] = kept
		}
	}
	return n, nil
}

func (m *MemoryStorage) CreateLead(ctx context.Context, lead Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}
	m.leads = append(m.leads, lead)
	return nil
}

// ListLeads returns leads newest first.
func (m *MemoryStorage) ListLeads(ctx context.Context, limit int) ([]Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Lead, 0, len(m.leads))
	for i := len(m.leads) - 1; i >= 0; i-- {
		out = append(out, m.leads[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStorage) GetSetting(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings[key], nil
}

func (m *MemoryStorage) SetSetting(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
	return nil
}

func (m *MemoryStorage) AcquireAdvisoryLock(ctx context.Context, key int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] {
		return false, nil
	}
	m.locks[key] = true
	return true, nil
}

func (m *MemoryStorage) ReleaseAdvisoryLock(ctx context.Context, key int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	held := m.locks[key]
	delete(m.locks, key)
	return held, nil
}

func (m *MemoryStorage) UpdateScheduledJob(ctx context.Context, name string, started time.Time, dur time.Duration, success bool, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := 0
	if success {
		status = 1
	}
	m.jobs[name] = ScheduledJob{
		Name:           name,
		LastRunAt:      started,
		LastDurationMs: dur.Milliseconds(),
		LastSuccess:    status,
		LastError:      errMsg,
	}
	return nil
}

// GetScheduledJob returns the last recorded run of a job, if any.
func (m *MemoryStorage) GetScheduledJob(ctx context.Context, name string) (*ScheduledJob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.jobs[name]
	if !ok {
		return nil, nil
	}
	return &j, nil
}
