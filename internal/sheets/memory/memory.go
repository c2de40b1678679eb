package memory

import (
	"context"
	"sync"

	"chitieu/internal/core"
	ports "chitieu/internal/sheets"
)

var _ ports.RecordStore = (*Store)(nil)

// Store keeps rows in process memory. Rows are kept in their serialized form
// so reads go through the same codec as the remote backends.
type Store struct {
	mu   sync.Mutex
	rows []ports.Row
}

func New() *Store {
	return &Store{}
}

// NewWithRows seeds the store, e.g. with rows exported from a sheet.
func NewWithRows(rows []ports.Row) *Store {
	s := New()
	for _, r := range rows {
		s.rows = append(s.rows, append(ports.Row(nil), r...))
	}
	return s
}

// Append stores the record.
func (s *Store) Append(_ context.Context, r core.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, ports.ToRow(r))
	return nil
}

// FetchAll returns a copy of every row in append order.
func (s *Store) FetchAll(_ context.Context) ([]ports.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.Row, len(s.rows))
	for i, r := range s.rows {
		out[i] = append(ports.Row(nil), r...)
	}
	return out, nil
}

// Len returns the number of stored rows.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
