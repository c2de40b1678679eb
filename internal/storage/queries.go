package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// recordRow mirrors one row of the records table.
type recordRow struct {
	ID         int64
	CreatedAt  string
	SenderID   string
	Payment    int64
	Category   string
	Amount     int64
	Note       string
	SyncStatus string
	SyncedAt   sql.NullString
}

const recordColumns = `id, created_at, sender_id, payment, category, amount, note, sync_status, synced_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecordRow(s scanner) (recordRow, error) {
	var i recordRow
	err := s.Scan(
		&i.ID,
		&i.CreatedAt,
		&i.SenderID,
		&i.Payment,
		&i.Category,
		&i.Amount,
		&i.Note,
		&i.SyncStatus,
		&i.SyncedAt,
	)
	return i, err
}

const createRecord = `
INSERT INTO records (created_at, sender_id, payment, category, amount, note)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + recordColumns

type createRecordParams struct {
	CreatedAt string
	SenderID  string
	Payment   int64
	Category  string
	Amount    int64
	Note      string
}

func (q *Queries) CreateRecord(ctx context.Context, arg createRecordParams) (recordRow, error) {
	row := q.db.QueryRowContext(ctx, createRecord,
		arg.CreatedAt,
		arg.SenderID,
		arg.Payment,
		arg.Category,
		arg.Amount,
		arg.Note,
	)
	return scanRecordRow(row)
}

const getRecord = `SELECT ` + recordColumns + ` FROM records WHERE id = ?`

func (q *Queries) GetRecord(ctx context.Context, id int64) (recordRow, error) {
	return scanRecordRow(q.db.QueryRowContext(ctx, getRecord, id))
}

const listRecords = `SELECT ` + recordColumns + ` FROM records ORDER BY id`

func (q *Queries) ListRecords(ctx context.Context) ([]recordRow, error) {
	return q.list(ctx, listRecords)
}

const getPendingSync = `
SELECT ` + recordColumns + ` FROM records
WHERE sync_status = 'pending'
ORDER BY id
LIMIT ?`

func (q *Queries) GetPendingSync(ctx context.Context, limit int64) ([]recordRow, error) {
	return q.list(ctx, getPendingSync, limit)
}

const markSynced = `
UPDATE records SET sync_status = 'synced', synced_at = ?
WHERE id = ?`

func (q *Queries) MarkSynced(ctx context.Context, syncedAt string, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, markSynced, syncedAt, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const markSyncError = `UPDATE records SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkSyncError(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, markSyncError, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countBySyncStatus = `SELECT COUNT(*) FROM records WHERE sync_status = ?`

func (q *Queries) CountBySyncStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countBySyncStatus, status).Scan(&n)
	return n, err
}

func (q *Queries) list(ctx context.Context, query string, args ...interface{}) ([]recordRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []recordRow
	for rows.Next() {
		i, err := scanRecordRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
