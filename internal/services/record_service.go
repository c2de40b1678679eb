package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chitieu/internal/core"
	"chitieu/internal/sheets"
)

type (
	// LocalStore is the local ledger records are written to first.
	LocalStore interface {
		Create(ctx context.Context, r core.Record) (int64, error)
		FetchAll(ctx context.Context) ([]sheets.Row, error)
		Close() error
	}

	// SyncPublisher announces a freshly stored record to the sync worker.
	SyncPublisher interface {
		PublishRecordSync(ctx context.Context, id int64) error
		Close() error
	}
)

// RecordService orchestrates record writes across SQLite and AMQP
type RecordService struct {
	storage   LocalStore
	publisher SyncPublisher
}

// Ensure interface conformance
var _ sheets.RecordStore = (*RecordService)(nil)

// NewRecordService wires the local store with an optional publisher. A nil
// publisher leaves records pending for the worker's periodic sweep.
func NewRecordService(storage LocalStore, publisher SyncPublisher) *RecordService {
	return &RecordService{
		storage:   storage,
		publisher: publisher,
	}
}

// Append saves a record locally and publishes a sync message
func (s *RecordService) Append(ctx context.Context, r core.Record) error {
	// Save to SQLite first (fast, reliable)
	id, err := s.storage.Create(ctx, r)
	if err != nil {
		return fmt.Errorf("save record: %w", err)
	}

	if err := s.publishSyncMessage(ctx, id); err != nil {
		// The record is stored locally; the worker sweep picks it up later
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
	}
	return nil
}

// FetchAll reads from the local ledger, which holds every record whether or
// not it has reached the spreadsheet yet.
func (s *RecordService) FetchAll(ctx context.Context) ([]sheets.Row, error) {
	return s.storage.FetchAll(ctx)
}

func (s *RecordService) publishSyncMessage(ctx context.Context, id int64) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping sync message", "id", id)
		return nil
	}
	return s.publisher.PublishRecordSync(ctx, id)
}

// Close closes both storage and AMQP connections
func (s *RecordService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %w", errors.Join(errs...))
	}
	return nil
}
