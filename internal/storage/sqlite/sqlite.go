// Package sqlite persists ledger snapshots in an embedded SQLite database.
// Save replaces all rows in one transaction, keeping the snapshot contract
// identical to the file backend.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"caixa/internal/core"
	"caixa/internal/storage"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (storage.Snapshot, bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, amount_cents, category, recorded_at FROM entries ORDER BY seq`)
	if err != nil {
		return storage.Snapshot{}, false, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		var (
			rec        core.Entry
			kind       string
			cents      int64
			recordedAt string
		)
		if err := rows.Scan(&rec.ID, &kind, &cents, &rec.Category, &recordedAt); err != nil {
			return storage.Snapshot{}, false, fmt.Errorf("scan entry: %w", err)
		}
		k, err := core.ParseKind(kind)
		if err != nil {
			return storage.Snapshot{}, false, fmt.Errorf("%w: kind %q", storage.ErrCorruptSnapshot, kind)
		}
		ts, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return storage.Snapshot{}, false, fmt.Errorf("%w: timestamp %q", storage.ErrCorruptSnapshot, recordedAt)
		}
		rec.Kind = k
		rec.Amount = core.Money{Cents: cents}
		rec.RecordedAt = ts
		if err := rec.Validate(); err != nil {
			return storage.Snapshot{}, false, fmt.Errorf("%w: %v", storage.ErrCorruptSnapshot, err)
		}
		entries = append(entries, rec)
	}
	if err := rows.Err(); err != nil {
		return storage.Snapshot{}, false, fmt.Errorf("iterate entries: %w", err)
	}
	if len(entries) == 0 {
		return storage.Snapshot{}, false, nil
	}
	return storage.Snapshot{Entries: entries}, true, nil
}

func (s *Store) Save(ctx context.Context, snap storage.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (id, kind, amount_cents, category, recorded_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range snap.Entries {
		_, err := stmt.ExecContext(ctx,
			e.ID, string(e.Kind), e.Amount.Cents, e.Category,
			e.RecordedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

var _ storage.Snapshotter = (*Store)(nil)
