package storage

import (
	"context"
	"time"
)

// Record stores one normalized webhook event keyed by its identifier.
type Record struct {
	ID         string
	DataType   string
	Attributes map[string]string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Row is one ordered tabular projection of a normalized record.
type Row struct {
	SheetRange string
	RecordID   string
	DataType   string
	Values     []string
	CreatedAt  time.Time
}

// RecordStore persists normalized records with overwrite-by-key semantics.
type RecordStore interface {
	// UpsertRecord creates or overwrites the record keyed by its ID. There
	// are no conditional writes or version checks.
	UpsertRecord(ctx context.Context, record Record) error
	// GetRecord fetches a record by ID, nil when absent.
	GetRecord(ctx context.Context, id string) (*Record, error)
	Close() error
}

// RowSink appends ordered rows to a tabular range. Appends are independent
// of record-store upserts; the two sinks may diverge if one write fails.
type RowSink interface {
	AppendRow(ctx context.Context, row Row) error
	// ListRows returns rows for a range in append order, up to limit
	// (0 means no limit).
	ListRows(ctx context.Context, sheetRange string, limit int) ([]Row, error)
	Close() error
}
