package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"chitieu/internal/core"
	ports "chitieu/internal/sheets"
)

func TestMemoryStoreAppendAndFetch(t *testing.T) {
	s := New()
	ctx := context.Background()
	r := core.Record{
		Timestamp: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
		SenderID:  "g1",
		Payment:   core.PaymentOnline,
		Category:  "Mua đồ",
		Amount:    1000,
		Note:      "x",
	}
	if err := s.Append(ctx, r); err != nil {
		t.Fatalf("append: %v", err)
	}
	rows, err := s.FetchAll(ctx)
	if err != nil || len(rows) != 1 {
		t.Fatalf("unexpected fetch: rows=%v err=%v", rows, err)
	}
	// Mutating the returned rows must not leak into the store
	rows[0][ports.ColAmount] = "999"
	again, _ := s.FetchAll(ctx)
	if again[0][ports.ColAmount] != "1000" {
		t.Fatalf("store exposed internal slice: %v", again[0])
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New()
	err := s.Append(context.Background(), core.Record{SenderID: "g1"})
	if !errors.Is(err, core.ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("invalid record was stored")
	}
}

func TestNewWithRowsSeeds(t *testing.T) {
	s := NewWithRows([]ports.Row{ports.Header, {"2025-01-01T00:00:00Z", "g1", core.CashLabel, "A", "1", ""}})
	rows, _ := s.FetchAll(context.Background())
	if len(rows) != 2 {
		t.Fatalf("expected 2 seeded rows, got %d", len(rows))
	}
	recs, skipped := ports.ParseRows(rows)
	if len(recs) != 1 || skipped != 1 {
		t.Fatalf("unexpected parse: %v skipped=%d", recs, skipped)
	}
}
