package schedule

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"caixa/internal/log"
)

// ErrAlreadyRunning is returned when Start is called while a previous Start
// is still active. One scheduler instance per process, one loop per
// instance.
var ErrAlreadyRunning = errors.New("scheduler already running")

// Scheduler sleeps until the rule's next fire time, invokes the callback,
// and recomputes. The callback runs on the scheduler goroutine; it shares
// the ledger with the command path, which serializes access internally.
type Scheduler struct {
	rule    Rule
	fire    func(ctx context.Context)
	logger  *log.Logger
	running atomic.Bool
	now     func() time.Time
}

func New(rule Rule, fire func(ctx context.Context), logger *log.Logger) *Scheduler {
	return &Scheduler{
		rule:   rule,
		fire:   fire,
		logger: logger.WithComponent(log.ComponentScheduler),
		now:    time.Now,
	}
}

// Start runs the scheduler loop until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	for {
		next := s.rule.Next(s.now())
		s.logger.InfoContext(ctx, "next scheduled fire", log.FieldNextFire, next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			s.fire(ctx)
			// Next(now) skips today's slot once it has passed, so a
			// fast callback cannot double-fire within the same minute.
		}
	}
}
