// Package ledger owns the authoritative collection of entries. All mutation
// goes through Store under one mutex shared by the command path and the
// scheduler path, and every mutation is followed by a synchronous snapshot
// save.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"caixa/internal/core"
	"caixa/internal/log"
	"caixa/internal/storage"
)

// ErrPersistence wraps snapshot write failures. The in-memory mutation is
// rolled back before it is returned, so memory and storage stay consistent.
var ErrPersistence = errors.New("persistence write failed")

// EntryPublisher receives a best-effort event after each recorded entry.
type EntryPublisher interface {
	PublishEntryRecorded(ctx context.Context, e core.Entry) error
}

type Store struct {
	mu      sync.Mutex
	entries []core.Entry

	snap      storage.Snapshotter
	mode      core.PeriodMode
	publisher EntryPublisher
	logger    *log.Logger
	now       func() time.Time
}

type Option func(*Store)

// WithPublisher attaches an event publisher. Publish failures are logged and
// never fail the originating command.
func WithPublisher(p EntryPublisher) Option {
	return func(s *Store) { s.publisher = p }
}

// WithClock overrides the timestamp source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func New(snap storage.Snapshotter, mode core.PeriodMode, logger *log.Logger, opts ...Option) *Store {
	s := &Store{
		snap:   snap,
		mode:   mode,
		logger: logger.WithComponent(log.ComponentLedger),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores state from the snapshot backend. A malformed snapshot is
// fatal: returning it keeps the process from masking data loss by starting
// empty.
func (s *Store) Load(ctx context.Context) error {
	snap, found, err := s.snap.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = snap.Entries
	if found {
		s.logger.InfoContext(ctx, "ledger restored", "entries", len(s.entries))
	} else {
		s.logger.InfoContext(ctx, "no previous ledger state, starting empty")
	}
	return nil
}

// Record parses the amount text, appends a new entry to the current period
// and persists synchronously. The category is normalized here (trimmed,
// lower-cased, defaulted) so every caller gets the same behavior.
func (s *Store) Record(ctx context.Context, kind core.Kind, amountText, category string) (core.Entry, error) {
	amount, err := core.ParseAmount(amountText)
	if err != nil {
		return core.Entry{}, err
	}
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = core.DefaultCategory
	}
	e := core.Entry{
		ID:         uuid.NewString(),
		Kind:       kind,
		Amount:     amount,
		Category:   category,
		RecordedAt: s.now(),
	}
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}

	s.mu.Lock()
	s.entries = append(s.entries, e)
	if err := s.persistLocked(ctx); err != nil {
		// Roll back so a reply reporting failure matches what is stored.
		s.entries = s.entries[:len(s.entries)-1]
		s.mu.Unlock()
		return core.Entry{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "entry recorded",
		log.FieldEntryID, e.ID,
		log.FieldKind, string(e.Kind),
		log.FieldAmountCent, e.Amount.Cents,
		log.FieldCategory, e.Category,
		log.FieldPeriod, core.PeriodKeyAt(e.RecordedAt, s.mode))

	if s.publisher != nil {
		if err := s.publisher.PublishEntryRecorded(ctx, e); err != nil {
			s.logger.WarnContext(ctx, "failed to publish entry event",
				log.FieldEntryID, e.ID, log.FieldError, err)
		}
	}
	return e, nil
}

// Query returns the period's entries in the exact order they were accepted.
// An unknown period yields an empty slice, not an error.
func (s *Store) Query(period string) []core.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Entry
	for _, e := range s.entries {
		if core.PeriodKeyAt(e.RecordedAt, s.mode) == period {
			out = append(out, e)
		}
	}
	return out
}

// Reset clears the entire store. Idempotent: clearing an empty store is a
// successful no-op.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.entries
	s.entries = nil
	if err := s.persistLocked(ctx); err != nil {
		s.entries = previous
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.logger.InfoContext(ctx, "ledger reset", "cleared", len(previous))
	return nil
}

// ResetPeriod clears a single period, keeping everything else.
func (s *Store) ResetPeriod(ctx context.Context, period string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.entries
	kept := make([]core.Entry, 0, len(previous))
	for _, e := range previous {
		if core.PeriodKeyAt(e.RecordedAt, s.mode) != period {
			kept = append(kept, e)
		}
	}
	s.entries = kept
	if err := s.persistLocked(ctx); err != nil {
		s.entries = previous
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.logger.InfoContext(ctx, "period reset",
		log.FieldPeriod, period, "cleared", len(previous)-len(kept))
	return nil
}

// CurrentPeriod returns the period key for the present moment.
func (s *Store) CurrentPeriod() string {
	return core.PeriodKeyAt(s.now(), s.mode)
}

// PreviousPeriod returns the period before the current one. In running mode
// there is only one bucket, so it equals CurrentPeriod.
func (s *Store) PreviousPeriod() string {
	if s.mode == core.Running {
		return core.RunningPeriodKey
	}
	t := s.now()
	firstOfMonth := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return core.PeriodKeyAt(firstOfMonth.AddDate(0, 0, -1), s.mode)
}

// Mode returns the configured period mode.
func (s *Store) Mode() core.PeriodMode {
	return s.mode
}

func (s *Store) persistLocked(ctx context.Context) error {
	out := make([]core.Entry, len(s.entries))
	copy(out, s.entries)
	return s.snap.Save(ctx, storage.Snapshot{Entries: out})
}
