package sheets

import (
	"testing"
	"time"

	"chitieu/internal/core"
)

func TestToRowParseRow(t *testing.T) {
	r := core.Record{
		Timestamp: time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC),
		SenderID:  "g1",
		Payment:   core.PaymentCash,
		Category:  "Ăn uống",
		Amount:    120000,
		Note:      "",
	}
	row := ToRow(r)
	if len(row) != NumColumns {
		t.Fatalf("row has %d columns", len(row))
	}
	if row[ColPayment] != core.CashLabel || row[ColAmount] != "120000" {
		t.Fatalf("unexpected row: %v", row)
	}
	got, ok := ParseRow(row)
	if !ok {
		t.Fatalf("row should parse: %v", row)
	}
	if !got.Timestamp.Equal(r.Timestamp) || got.SenderID != r.SenderID || got.Payment != r.Payment ||
		got.Category != r.Category || got.Amount != r.Amount || got.Note != r.Note {
		t.Fatalf("got %+v want %+v", got, r)
	}
}

func TestParseRowsToleratesMalformed(t *testing.T) {
	rows := []Row{
		Header,
		{"2025-01-05T03:04:05.123Z", "g1", core.OnlineLabel, "Mua đồ", "50000", "áo"},
		{"2025-01-05T03:04:05Z", "g1", core.CashLabel, "Ăn uống", "abc", ""}, // bad amount
		{"not a date", "g1", core.CashLabel, "Ăn uống", "100", ""},           // bad timestamp
		{"2025-01-05T03:04:05Z", "g1", core.CashLabel},                       // short
		{}, // empty
		{"2025-01-05T03:04:05Z", "g1", core.CashLabel, "Ăn uống", "-5", ""},       // negative
		{"2025-01-06T00:00:00+07:00", "g1", "💵 Tiền mặt", "Ăn uống", "120,000"},   // no note column
		{"2025-01-06T00:00:00Z", "g2", core.CashLabel, "Vui chơi", "1.2e+06", ""}, // float rendering
		{"2025-01-06T00:00:00Z", " ", core.CashLabel, "Vui chơi", "1", ""},        // blank sender
	}
	recs, skipped := ParseRows(rows)
	if len(recs) != 3 || skipped != 7 {
		t.Fatalf("got %d records, %d skipped: %+v", len(recs), skipped, recs)
	}
	if recs[0].Payment != core.PaymentOnline || recs[0].Amount != 50000 || recs[0].Note != "áo" {
		t.Fatalf("unexpected first record: %+v", recs[0])
	}
	if recs[1].Payment != core.PaymentCash || recs[1].Amount != 120000 || recs[1].Note != "" {
		t.Fatalf("unexpected second record: %+v", recs[1])
	}
	if recs[2].Amount != 1200000 || recs[2].SenderID != "g2" {
		t.Fatalf("unexpected third record: %+v", recs[2])
	}
}
