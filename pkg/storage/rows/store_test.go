package rows

import (
	"context"
	"path/filepath"
	"testing"

	"payhook/pkg/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{
		Driver:      "sqlite",
		DSN:         filepath.Join(t.TempDir(), "rows.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndListRows(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rows := []storage.Row{
		{SheetRange: "Payments!A:J", RecordID: "I-1", DataType: "payment", Values: []string{"I-1", "Donation", "48.31"}},
		{SheetRange: "Payments!A:J", RecordID: "I-2", DataType: "payment", Values: []string{"I-2", "Membership", "10"}},
		{SheetRange: "Refunds!A:C", RecordID: "R-1", DataType: "payment", Values: []string{"R-1"}},
	}
	for _, row := range rows {
		if err := store.AppendRow(ctx, row); err != nil {
			t.Fatalf("append %s: %v", row.RecordID, err)
		}
	}

	got, err := store.ListRows(ctx, "Payments!A:J", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows for the range, got %d", len(got))
	}
	if got[0].RecordID != "I-1" || got[1].RecordID != "I-2" {
		t.Fatalf("rows must come back in append order: %v", got)
	}
	if got[0].Values[1] != "Donation" {
		t.Fatalf("values must round-trip, got %v", got[0].Values)
	}
}

func TestListRowsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"I-1", "I-2", "I-3"} {
		err := store.AppendRow(ctx, storage.Row{SheetRange: "Payments!A:J", RecordID: id, Values: []string{id}})
		if err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	got, err := store.ListRows(ctx, "Payments!A:J", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].RecordID != "I-1" {
		t.Fatalf("expected first two rows, got %v", got)
	}
}

func TestAppendRowRequiresRange(t *testing.T) {
	store := openTestStore(t)
	if err := store.AppendRow(context.Background(), storage.Row{RecordID: "I-1"}); err == nil {
		t.Fatalf("expected missing sheet range error")
	}
}
