package sheets

import (
	"context"

	"chitieu/internal/core"
)

// Row is one stored record as a fixed-order string tuple:
// timestamp, sender id, payment, category, amount, note.
type Row []string

// Ports for outbound adapters.
type (
	// RecordAppender persists one record. Failures wrap core.ErrStoreUnavailable.
	RecordAppender interface {
		Append(ctx context.Context, r core.Record) error
	}

	// RecordFetcher returns every stored row in append order.
	// Failures wrap core.ErrStoreUnavailable.
	RecordFetcher interface {
		FetchAll(ctx context.Context) ([]Row, error)
	}

	RecordStore interface {
		RecordAppender
		RecordFetcher
	}
)
