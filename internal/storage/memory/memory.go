// Package memory is an in-process snapshot backend for tests and local runs.
package memory

import (
	"context"
	"sync"

	"caixa/internal/core"
	"caixa/internal/storage"
)

type Store struct {
	mu      sync.Mutex
	entries []core.Entry
	present bool
}

func New() *Store {
	return &Store{}
}

// Seed pre-loads state as if a previous process had saved it.
func Seed(entries []core.Entry) *Store {
	s := &Store{present: true}
	s.entries = append(s.entries, entries...)
	return s
}

func (s *Store) Load(_ context.Context) (storage.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return storage.Snapshot{}, false, nil
	}
	out := make([]core.Entry, len(s.entries))
	copy(out, s.entries)
	return storage.Snapshot{Entries: out}, true, nil
}

func (s *Store) Save(_ context.Context, snap storage.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]core.Entry, len(snap.Entries))
	copy(s.entries, snap.Entries)
	s.present = true
	return nil
}

var _ storage.Snapshotter = (*Store)(nil)
