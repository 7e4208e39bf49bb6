// Package storage defines the snapshot persistence port implemented by the
// file, sqlite, sheets and memory backends. The ledger writes its whole
// state on every mutation; entry volume is low enough that incremental
// logging would buy nothing.
package storage

import (
	"context"
	"errors"

	"caixa/internal/core"
)

// ErrCorruptSnapshot signals persisted state that exists but cannot be
// decoded. Callers must fail startup instead of silently starting empty.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// Snapshot is the full ledger state: every entry in insertion order, with
// the period derivable from each entry's timestamp.
type Snapshot struct {
	Entries []core.Entry
}

// Snapshotter loads and saves the whole ledger state.
type Snapshotter interface {
	// Load restores the last saved snapshot. The bool is false when no
	// prior state exists; malformed state yields ErrCorruptSnapshot.
	Load(ctx context.Context) (Snapshot, bool, error)
	// Save atomically replaces the stored state.
	Save(ctx context.Context, snap Snapshot) error
}
