//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"chitieu/internal/core"
	ports "chitieu/internal/sheets"
)

// Requires a real spreadsheet shared with the service account.
func TestIntegration_AppendAndFetch(t *testing.T) {
	if os.Getenv("GOOGLE_SPREADSHEET_ID") == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set")
	}
	ctx := context.Background()
	c, err := NewFromEnv(ctx)
	if err != nil {
		t.Fatalf("NewFromEnv: %v", err)
	}
	if err := c.EnsureHeader(ctx); err != nil {
		t.Fatalf("EnsureHeader: %v", err)
	}

	sender := "integration-" + time.Now().Format("20060102150405")
	rec := core.Record{
		Timestamp: time.Now(),
		SenderID:  sender,
		Payment:   core.PaymentCash,
		Category:  "Ăn uống",
		Amount:    1234,
		Note:      "integration test",
	}
	if err := c.Append(ctx, rec); err != nil {
		t.Fatalf("Append: %v", err)
	}

	rows, err := c.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	records, _ := ports.ParseRows(rows)
	found := false
	for _, r := range records {
		if r.SenderID == sender && r.Amount == 1234 {
			found = true
		}
	}
	if !found {
		t.Errorf("appended record for %s not found in %d records", sender, len(records))
	}
}
