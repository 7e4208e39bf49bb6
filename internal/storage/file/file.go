// Package file persists ledger snapshots as a JSON document on local disk.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"caixa/internal/core"
	"caixa/internal/storage"
)

const snapshotVersion = 1

type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

type document struct {
	Version int           `json:"version"`
	Entries []entryRecord `json:"entries"`
}

type entryRecord struct {
	ID          string    `json:"id,omitempty"`
	Kind        string    `json:"kind"`
	AmountCents int64     `json:"amount_cents"`
	Category    string    `json:"category"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// legacyRecord is the flat-list shape written by earlier deployments:
// decimal amounts, no ids, no version envelope.
type legacyRecord struct {
	Kind      string    `json:"kind"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Store) Load(_ context.Context) (storage.Snapshot, bool, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return storage.Snapshot{}, false, nil
	}
	if err != nil {
		return storage.Snapshot{}, false, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}

	entries, err := decode(data)
	if err != nil {
		return storage.Snapshot{}, false, fmt.Errorf("%w: %s: %v", storage.ErrCorruptSnapshot, s.path, err)
	}
	return storage.Snapshot{Entries: entries}, true, nil
}

// periodBucket is the oldest deployment's file shape: a map of "YYYY-MM"
// keys to income/expense lists, records carrying only value and category.
type periodBucket struct {
	Entradas []periodRecord `json:"entradas"`
	Saidas   []periodRecord `json:"saidas"`
}

type periodRecord struct {
	Valor     float64 `json:"valor"`
	Categoria string  `json:"categoria"`
}

func decode(data []byte) ([]core.Entry, error) {
	if isLegacyArray(data) {
		var records []legacyRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
		return fromLegacy(records)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Version == snapshotVersion {
		return fromDocument(doc.Entries)
	}

	// No version envelope. The only other object shape ever written is the
	// period-keyed one; anything else must fail startup rather than load as
	// an empty ledger and mask data loss.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var buckets map[string]periodBucket
	if err := dec.Decode(&buckets); err != nil {
		return nil, fmt.Errorf("unrecognized snapshot shape: %v", err)
	}
	return fromPeriodKeyed(buckets)
}

func fromDocument(records []entryRecord) ([]core.Entry, error) {
	entries := make([]core.Entry, 0, len(records))
	for i, rec := range records {
		kind, err := core.ParseKind(rec.Kind)
		if err != nil {
			return nil, fmt.Errorf("entry %d: kind %q: %w", i, rec.Kind, err)
		}
		e := core.Entry{
			ID:         rec.ID,
			Kind:       kind,
			Amount:     core.Money{Cents: rec.AmountCents},
			Category:   rec.Category,
			RecordedAt: rec.RecordedAt,
		}
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func fromPeriodKeyed(buckets map[string]periodBucket) ([]core.Entry, error) {
	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		if _, err := time.Parse("2006-01", key); err != nil {
			return nil, fmt.Errorf("unrecognized snapshot shape: key %q is not a period", key)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var entries []core.Entry
	for _, key := range keys {
		month, _ := time.Parse("2006-01", key)
		bucket := buckets[key]
		for i, rec := range bucket.Entradas {
			e, err := periodEntry(core.Income, rec, month)
			if err != nil {
				return nil, fmt.Errorf("period %s income %d: %w", key, i, err)
			}
			entries = append(entries, e)
		}
		for i, rec := range bucket.Saidas {
			e, err := periodEntry(core.Expense, rec, month)
			if err != nil {
				return nil, fmt.Errorf("period %s expense %d: %w", key, i, err)
			}
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// periodEntry rebuilds an entry from a record that carried no timestamp of
// its own: the period's first instant keeps it in the right bucket.
func periodEntry(kind core.Kind, rec periodRecord, month time.Time) (core.Entry, error) {
	e := core.Entry{
		ID:         uuid.NewString(),
		Kind:       kind,
		Amount:     core.Money{Cents: int64(math.Round(rec.Valor * 100))},
		Category:   rec.Categoria,
		RecordedAt: month,
	}
	if e.Category == "" {
		e.Category = core.DefaultCategory
	}
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	return e, nil
}

func fromLegacy(records []legacyRecord) ([]core.Entry, error) {
	entries := make([]core.Entry, 0, len(records))
	for i, rec := range records {
		kind, err := core.ParseKind(rec.Kind)
		if err != nil {
			return nil, fmt.Errorf("legacy entry %d: kind %q: %w", i, rec.Kind, err)
		}
		e := core.Entry{
			ID:         uuid.NewString(),
			Kind:       kind,
			Amount:     core.Money{Cents: int64(math.Round(rec.Amount * 100))},
			Category:   rec.Category,
			RecordedAt: rec.Timestamp,
		}
		if e.Category == "" {
			e.Category = core.DefaultCategory
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("legacy entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func isLegacyArray(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			return true
		default:
			return false
		}
	}
	return false
}

// Save writes the snapshot to a temp file and renames it into place, so a
// crash mid-write leaves the previous snapshot intact.
func (s *Store) Save(_ context.Context, snap storage.Snapshot) error {
	doc := document{Version: snapshotVersion, Entries: make([]entryRecord, 0, len(snap.Entries))}
	for _, e := range snap.Entries {
		doc.Entries = append(doc.Entries, entryRecord{
			ID:          e.ID,
			Kind:        string(e.Kind),
			AmountCents: e.Amount.Cents,
			Category:    e.Category,
			RecordedAt:  e.RecordedAt,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory %s: %w", dir, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot %s: %w", s.path, err)
	}
	return nil
}

var _ storage.Snapshotter = (*Store)(nil)
