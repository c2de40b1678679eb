package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"chitieu/internal/amqp"
	"chitieu/internal/core"
	"chitieu/internal/services"
	"chitieu/internal/sheets"
	"chitieu/internal/storage"
)

// Repository is the slice of the SQLite repository the worker needs.
type Repository interface {
	GetRecord(ctx context.Context, id int64) (storage.StoredRecord, error)
	GetPendingSync(ctx context.Context, limit int) ([]storage.StoredRecord, error)
	CountPending(ctx context.Context) (int64, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// SyncWorker replicates records from SQLite to Google Sheets
type SyncWorker struct {
	storage   Repository
	sheets    sheets.RecordAppender
	batchSize int

	// Serializes syncs so a message and a sweep never append the same record twice
	mu sync.Mutex
}

var _ services.PendingSyncer = (*SyncWorker)(nil)

func NewSyncWorker(storage Repository, sheets sheets.RecordAppender, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncWorker{
		storage:   storage,
		sheets:    sheets,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single record sync message from AMQP.
// Returning an error requeues the message.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	w.mu.Lock()
	defer w.mu.Unlock()

	rec, err := w.storage.GetRecord(ctx, msg.ID)
	if errors.Is(err, storage.ErrRecordNotFound) {
		slog.WarnContext(ctx, "Sync message for unknown record, dropping", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}
	if rec.SyncStatus != storage.SyncPending {
		slog.DebugContext(ctx, "Record already processed, skipping",
			"id", rec.ID, "status", rec.SyncStatus)
		return nil
	}
	return w.syncRecordToSheets(ctx, rec)
}

// ProcessPendingRecords syncs up to limit records that have not been synced
// yet. It is the backup path for lost AMQP messages.
func (w *SyncWorker) ProcessPendingRecords(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = w.batchSize
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	pending, err := w.storage.GetPendingSync(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending records", "count", len(pending))

	synced := 0
	for _, rec := range pending {
		if ctx.Err() != nil {
			return synced, ctx.Err()
		}
		if err := w.syncRecordToSheets(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record", "id", rec.ID, "error", err)
			if errors.Is(err, core.ErrStoreUnavailable) {
				// Sheets is down; the rest of the batch would fail the same way
				return synced, err
			}
			continue
		}
		synced++
	}
	return synced, nil
}

// StartupSyncCheck drains the pending backlog left by worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	count, err := w.storage.CountPending(ctx)
	if err != nil {
		return fmt.Errorf("count pending records for startup check: %w", err)
	}
	if count == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending records on startup, processing...", "count", count)

	total := 0
	for {
		n, err := w.ProcessPendingRecords(ctx, w.batchSize)
		total += n
		if err != nil {
			slog.WarnContext(ctx, "Startup sync stopped early", "synced", total, "error", err)
			return nil
		}
		if n == 0 {
			break
		}
	}

	slog.InfoContext(ctx, "Startup sync completed", "pending", count, "synced", total)
	return nil
}

// syncRecordToSheets appends one record. Invalid records are marked as sync
// errors since retrying cannot fix them; transport failures leave the record
// pending.
func (w *SyncWorker) syncRecordToSheets(ctx context.Context, rec storage.StoredRecord) error {
	if err := w.sheets.Append(ctx, rec.Record); err != nil {
		if errors.Is(err, core.ErrInvalidRecord) {
			if markErr := w.storage.MarkSyncError(ctx, rec.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", rec.ID, "error", markErr)
			}
			return nil
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, rec.ID); err != nil {
		// The row is in the sheet; a retry would duplicate it
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", rec.ID, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced record",
		"id", rec.ID,
		"sender_id", rec.SenderID,
		"category", rec.Category,
		"amount", rec.Amount)
	return nil
}
