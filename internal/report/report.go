package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chitieu/internal/core"
	"chitieu/internal/sheets"
)

// Aggregate sums the records of senderID that fall inside w. It does not
// mutate its input, so calling it twice yields the same summary.
func Aggregate(records []core.Record, senderID string, w Window) core.Summary {
	var s core.Summary
	index := make(map[string]int)

	for _, r := range records {
		if r.SenderID != senderID || !w.Contains(r.Timestamp) {
			continue
		}

		i, ok := index[r.Category]
		if !ok {
			i = len(s.ByCategory)
			index[r.Category] = i
			s.ByCategory = append(s.ByCategory, core.CategoryTotal{Category: r.Category})
		}

		if r.Payment == core.PaymentCash {
			s.Cash += r.Amount
			s.ByCategory[i].Cash += r.Amount
		} else {
			s.Online += r.Amount
			s.ByCategory[i].Online += r.Amount
		}
	}
	return s
}

// Summarize reads the full history from fetcher and aggregates it. Fetch
// failures are reported as core.ErrStoreUnavailable.
func Summarize(ctx context.Context, fetcher sheets.RecordFetcher, senderID string, w Window) (core.Summary, error) {
	rows, err := fetcher.FetchAll(ctx)
	if err != nil {
		if !errors.Is(err, core.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", core.ErrStoreUnavailable, err)
		}
		return core.Summary{}, fmt.Errorf("fetch records: %w", err)
	}

	records, skipped := sheets.ParseRows(rows)
	if skipped > 0 {
		slog.DebugContext(ctx, "Skipped malformed rows",
			"component", "report",
			"skipped", skipped,
			"total", len(rows))
	}

	summary := Aggregate(records, senderID, w)
	slog.DebugContext(ctx, "Summary computed",
		"component", "report",
		"sender_id", senderID,
		"period", w.Period.String(),
		"categories", len(summary.ByCategory),
		"total", summary.Total())
	return summary, nil
}
