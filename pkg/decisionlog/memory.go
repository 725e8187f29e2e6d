package decisionlog

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and ephemeral hosts. It keeps
// at most MaxRecords entries, evicting the oldest when full.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*Record
	max     int
}

// DefaultMemoryMax is the default capacity of a MemoryStore.
const DefaultMemoryMax = 10000

// NewMemoryStore creates a MemoryStore with the given capacity.
// A non-positive max uses DefaultMemoryMax.
func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = DefaultMemoryMax
	}
	return &MemoryStore{max: max}
}

// Store implements Store.
func (m *MemoryStore) Store(_ context.Context, record *Record) error {
	if record == nil {
		return NewStorageError("memory", "store", errNilRecord)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, record)
	if len(m.records) > m.max {
		m.records = m.records[len(m.records)-m.max:]
	}
	return nil
}

// Query implements Store. Records are returned newest first.
func (m *MemoryStore) Query(_ context.Context, filter QueryFilter) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Record
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if filter.Outcome != "" && r.Outcome != filter.Outcome {
			continue
		}
		if !filter.Since.IsZero() && r.Timestamp.Before(filter.Since) {
			continue
		}
		out = append(out, r)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// Count implements Store.
func (m *MemoryStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.records)), nil
}

// DeleteOlderThan implements Store.
func (m *MemoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	var deleted int64
	for _, r := range m.records {
		if r.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return deleted, nil
}

// DeleteOldest implements Store. Records are assumed appended in time order.
func (m *MemoryStore) DeleteOldest(_ context.Context, n int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n <= 0 {
		return 0, nil
	}
	if n > int64(len(m.records)) {
		n = int64(len(m.records))
	}
	m.records = m.records[n:]
	return n, nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	return nil
}
