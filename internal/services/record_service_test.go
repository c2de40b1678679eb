package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"chitieu/internal/core"
	"chitieu/internal/sheets"
)

type fakeLocalStore struct {
	records  []core.Record
	err      error
	closeErr error
	closed   bool
}

func (f *fakeLocalStore) Create(ctx context.Context, r core.Record) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.records = append(f.records, r)
	return int64(len(f.records)), nil
}

func (f *fakeLocalStore) FetchAll(ctx context.Context) ([]sheets.Row, error) {
	rows := make([]sheets.Row, 0, len(f.records))
	for _, r := range f.records {
		rows = append(rows, sheets.ToRow(r))
	}
	return rows, f.err
}

func (f *fakeLocalStore) Close() error {
	f.closed = true
	return f.closeErr
}

type fakePublisher struct {
	published []int64
	err       error
	closed    bool
}

func (f *fakePublisher) PublishRecordSync(ctx context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func testRecord() core.Record {
	return core.Record{
		Timestamp: time.Date(2025, 1, 5, 9, 0, 0, 0, time.UTC),
		SenderID:  "g1",
		Payment:   core.PaymentOnline,
		Category:  "Mua đồ",
		Amount:    250000,
	}
}

func TestRecordService_AppendPublishes(t *testing.T) {
	store := &fakeLocalStore{}
	pub := &fakePublisher{}
	svc := NewRecordService(store, pub)

	if err := svc.Append(context.Background(), testRecord()); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if len(store.records) != 1 {
		t.Fatalf("stored %d records, want 1", len(store.records))
	}
	if len(pub.published) != 1 || pub.published[0] != 1 {
		t.Errorf("published = %v, want [1]", pub.published)
	}
}

func TestRecordService_PublishFailureIsNotFatal(t *testing.T) {
	store := &fakeLocalStore{}
	svc := NewRecordService(store, &fakePublisher{err: errors.New("broker down")})

	if err := svc.Append(context.Background(), testRecord()); err != nil {
		t.Fatalf("Append should succeed when publish fails: %v", err)
	}
	if len(store.records) != 1 {
		t.Errorf("record should still be stored locally")
	}
}

func TestRecordService_NilPublisher(t *testing.T) {
	store := &fakeLocalStore{}
	svc := NewRecordService(store, nil)

	if err := svc.Append(context.Background(), testRecord()); err != nil {
		t.Fatalf("Append: %v", err)
	}
	rows, err := svc.FetchAll(context.Background())
	if err != nil || len(rows) != 1 {
		t.Fatalf("FetchAll = %d rows, err %v", len(rows), err)
	}
}

func TestRecordService_StoreFailure(t *testing.T) {
	wantErr := errors.Join(core.ErrStoreUnavailable, errors.New("disk full"))
	pub := &fakePublisher{}
	svc := NewRecordService(&fakeLocalStore{err: wantErr}, pub)

	err := svc.Append(context.Background(), testRecord())
	if !errors.Is(err, core.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
	if len(pub.published) != 0 {
		t.Errorf("nothing should be published when the local write fails")
	}
}

func TestRecordService_Close(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		svc := &RecordService{}
		if err := svc.Close(); err != nil {
			t.Fatalf("Close should not return error with nil components: %v", err)
		}
	})

	t.Run("closes both and joins errors", func(t *testing.T) {
		store := &fakeLocalStore{closeErr: errors.New("busy")}
		pub := &fakePublisher{}
		svc := NewRecordService(store, pub)

		err := svc.Close()
		if err == nil {
			t.Fatal("expected error from storage close")
		}
		if !store.closed || !pub.closed {
			t.Errorf("both components should be closed: store=%v pub=%v", store.closed, pub.closed)
		}
	})
}
