package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"chitieu/internal/core"
	ports "chitieu/internal/sheets"

	_ "modernc.org/sqlite"
)

// Sync states of a stored record.
const (
	SyncPending = "pending"
	SyncSynced  = "synced"
	SyncError   = "error"
)

var ErrRecordNotFound = errors.New("record not found")

// StoredRecord is a record with its local ID and replication state.
type StoredRecord struct {
	ID         int64
	SyncStatus string
	core.Record
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// Ensure interface conformance
var _ ports.RecordStore = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Create inserts a record with sync status pending and returns its ID.
func (r *SQLiteRepository) Create(ctx context.Context, rec core.Record) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}
	row, err := r.queries.CreateRecord(ctx, createRecordParams{
		CreatedAt: rec.Timestamp.UTC().Format(time.RFC3339Nano),
		SenderID:  rec.SenderID,
		Payment:   int64(rec.Payment),
		Category:  rec.Category,
		Amount:    rec.Amount,
		Note:      rec.Note,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: create record: %w", core.ErrStoreUnavailable, err)
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", row.ID,
		"sender_id", row.SenderID,
		"payment", rec.Payment.String(),
		"category", row.Category,
		"amount", row.Amount)

	return row.ID, nil
}

// Append implements sheets.RecordAppender
func (r *SQLiteRepository) Append(ctx context.Context, rec core.Record) error {
	_, err := r.Create(ctx, rec)
	return err
}

// FetchAll implements sheets.RecordFetcher. Rows come back in insertion order.
func (r *SQLiteRepository) FetchAll(ctx context.Context) ([]ports.Row, error) {
	items, err := r.queries.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list records: %w", core.ErrStoreUnavailable, err)
	}
	rows := make([]ports.Row, 0, len(items))
	for _, it := range items {
		rec, err := toStored(it)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable record", "id", it.ID, "error", err)
			continue
		}
		rows = append(rows, ports.ToRow(rec.Record))
	}
	return rows, nil
}

// GetRecord loads one record by ID.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id int64) (StoredRecord, error) {
	row, err := r.queries.GetRecord(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredRecord{}, fmt.Errorf("%w: id %d", ErrRecordNotFound, id)
	}
	if err != nil {
		return StoredRecord{}, fmt.Errorf("get record %d: %w", id, err)
	}
	return toStored(row)
}

// GetPendingSync returns up to limit records not yet replicated, oldest first.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]StoredRecord, error) {
	items, err := r.queries.GetPendingSync(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync records: %w", err)
	}
	out := make([]StoredRecord, 0, len(items))
	for _, it := range items {
		rec, err := toStored(it)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// CountPending returns the number of records waiting for replication.
func (r *SQLiteRepository) CountPending(ctx context.Context) (int64, error) {
	n, err := r.queries.CountBySyncStatus(ctx, SyncPending)
	if err != nil {
		return 0, fmt.Errorf("count pending records: %w", err)
	}
	return n, nil
}

// MarkSynced marks a record as successfully replicated
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	n, err := r.queries.MarkSynced(ctx, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("mark record synced: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrRecordNotFound, id)
	}
	slog.InfoContext(ctx, "Record marked as synced", "id", id)
	return nil
}

// MarkSyncError marks a record as having sync errors
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	n, err := r.queries.MarkSyncError(ctx, id)
	if err != nil {
		return fmt.Errorf("mark record sync error: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", ErrRecordNotFound, id)
	}
	slog.WarnContext(ctx, "Record marked with sync error", "id", id)
	return nil
}

func toStored(row recordRow) (StoredRecord, error) {
	ts, err := time.Parse(time.RFC3339Nano, row.CreatedAt)
	if err != nil {
		return StoredRecord{}, fmt.Errorf("parse created_at of record %d: %w", row.ID, err)
	}
	return StoredRecord{
		ID:         row.ID,
		SyncStatus: row.SyncStatus,
		Record: core.Record{
			Timestamp: ts,
			SenderID:  row.SenderID,
			Payment:   core.Payment(row.Payment),
			Category:  row.Category,
			Amount:    row.Amount,
			Note:      row.Note,
		},
	}, nil
}
