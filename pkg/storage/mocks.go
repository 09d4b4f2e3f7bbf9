package storage

import (
	"context"
	"sync"
	"time"
)

// MockRecordStore is an in-memory implementation of RecordStore for tests.
type MockRecordStore struct {
	mu     sync.RWMutex
	values map[string]Record

	// Err, when set, is returned by every write.
	Err error
}

// NewMockRecordStore returns a new in-memory RecordStore.
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{values: make(map[string]Record)}
}

func (m *MockRecordStore) UpsertRecord(ctx context.Context, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	now := time.Now().UTC()
	if existing, ok := m.values[record.ID]; ok {
		record.CreatedAt = existing.CreatedAt
	} else if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	m.values[record.ID] = record
	return nil
}

func (m *MockRecordStore) GetRecord(ctx context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.values[id]
	if !ok {
		return nil, nil
	}
	copied := record
	return &copied, nil
}

func (m *MockRecordStore) Close() error { return nil }

// Len reports how many records are stored.
func (m *MockRecordStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

// MockRowSink is an in-memory implementation of RowSink for tests.
type MockRowSink struct {
	mu   sync.RWMutex
	rows []Row

	// Err, when set, is returned by every append.
	Err error
}

// NewMockRowSink returns a new in-memory RowSink.
func NewMockRowSink() *MockRowSink {
	return &MockRowSink{}
}

func (m *MockRowSink) AppendRow(ctx context.Context, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	m.rows = append(m.rows, row)
	return nil
}

func (m *MockRowSink) ListRows(ctx context.Context, sheetRange string, limit int) ([]Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Row, 0, len(m.rows))
	for _, row := range m.rows {
		if row.SheetRange != sheetRange {
			continue
		}
		out = append(out, row)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockRowSink) Close() error { return nil }

// Len reports how many rows have been appended.
func (m *MockRowSink) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}
