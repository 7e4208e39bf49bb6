// Package notify delivers outbound messages with a bounded retry policy.
package notify

import (
	"context"
	"fmt"
	"time"

	"caixa/internal/log"
)

// Deliverer sends one message to one target. The Telegram client implements
// this; tests substitute fakes.
type Deliverer interface {
	Deliver(ctx context.Context, target, text string) error
}

const (
	defaultAttempts = 3
	defaultBackoff  = time.Second
	defaultTimeout  = 10 * time.Second
)

// Notifier wraps a Deliverer with a per-attempt timeout and a small number
// of immediate retries with doubling backoff. After the last attempt it
// gives up; the next scheduled fire is the recovery path.
type Notifier struct {
	deliverer Deliverer
	attempts  int
	backoff   time.Duration
	timeout   time.Duration
	logger    *log.Logger
}

type Option func(*Notifier)

func WithAttempts(n int) Option {
	return func(nf *Notifier) {
		if n > 0 {
			nf.attempts = n
		}
	}
}

func WithBackoff(d time.Duration) Option {
	return func(nf *Notifier) {
		if d > 0 {
			nf.backoff = d
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(nf *Notifier) {
		if d > 0 {
			nf.timeout = d
		}
	}
}

func New(d Deliverer, logger *log.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		deliverer: d,
		attempts:  defaultAttempts,
		backoff:   defaultBackoff,
		timeout:   defaultTimeout,
		logger:    logger.WithComponent(log.ComponentNotify),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Send attempts delivery up to the configured number of times.
func (n *Notifier) Send(ctx context.Context, target, text string) error {
	var lastErr error
	delay := n.backoff
	for attempt := 1; attempt <= n.attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, n.timeout)
		err := n.deliverer.Deliver(attemptCtx, target, text)
		cancel()
		if err == nil {
			if attempt > 1 {
				n.logger.InfoContext(ctx, "delivery succeeded after retry",
					log.FieldAttempt, attempt, log.FieldChatID, target)
			}
			return nil
		}
		lastErr = err
		n.logger.WarnContext(ctx, "delivery attempt failed",
			log.FieldAttempt, attempt, log.FieldChatID, target, log.FieldError, err)

		if attempt == n.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("deliver to %s after %d attempts: %w", target, n.attempts, lastErr)
}
