// Package memory is an in-process mirror adapter for development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"finanzas/internal/mirror"
)

type Store struct {
	mu   sync.Mutex
	rows []mirror.Row
}

func New() *Store {
	return &Store{}
}

var _ mirror.TransactionWriter = (*Store)(nil)

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, row mirror.Row) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Store) Rows() []mirror.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mirror.Row(nil), s.rows...)
}
