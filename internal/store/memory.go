package store

import (
	"context"
	"sync"
)

// memoryStore keeps rows in process memory.
// Intended for demos and tests; nothing survives a restart.
type memoryStore struct {
	mu   sync.RWMutex
	rows map[string]map[string][]row // account -> collection -> rows
}

// NewMemory returns a Backend backed by process memory.
func NewMemory() *Backend {
	return newBackend(&memoryStore{rows: make(map[string]map[string][]row)})
}

func (s *memoryStore) list(_ context.Context, account, collection string) ([]row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.rows[account][collection]
	out := make([]row, len(src))
	copy(out, src)
	return out, nil
}

func (s *memoryStore) insert(_ context.Context, account, collection string, r row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	colls, ok := s.rows[account]
	if !ok {
		colls = make(map[string][]row)
		s.rows[account] = colls
	}
	colls[collection] = append(colls[collection], r)
	return nil
}

func (s *memoryStore) replace(_ context.Context, account, collection string, r row) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.rows[account][collection]
	for i := range rows {
		if rows[i].ID == r.ID {
			rows[i].Data = r.Data
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) remove(_ context.Context, account, collection, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.rows[account][collection]
	for i := range rows {
		if rows[i].ID == recordID {
			s.rows[account][collection] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memoryStore) accounts(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.rows))
	for acct, colls := range s.rows {
		for _, rows := range colls {
			if len(rows) > 0 {
				ids = append(ids, acct)
				break
			}
		}
	}
	return ids, nil
}

func (s *memoryStore) close() error { return nil }
