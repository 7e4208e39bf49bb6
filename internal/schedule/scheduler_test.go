package schedule

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"caixa/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError})
}

func TestStartRefusesSecondInstance(t *testing.T) {
	r := mustRule(t, []int{5}, nil, 9, 0, time.UTC)
	s := New(r, func(context.Context) {}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- s.Start(ctx)
	}()
	<-started
	time.Sleep(20 * time.Millisecond) // let the loop take the running flag

	if err := s.Start(ctx); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second Start = %v, want ErrAlreadyRunning", err)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Start returned %v", err)
	}

	// After the loop exits the flag is released and Start works again.
	ctx2, cancel2 := context.WithCancel(context.Background())
	cancel2()
	if err := s.Start(ctx2); !errors.Is(err, context.Canceled) {
		t.Fatalf("restart = %v", err)
	}
}

func TestSchedulerFires(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var fired atomic.Int32
	s := New(Rule{Hour: 0, Minute: 0, Location: time.UTC}, func(context.Context) {
		fired.Add(1)
		cancel()
	}, testLogger())
	// Pin "now" in the past so the computed fire time has already elapsed
	// and the timer triggers immediately.
	s.now = func() time.Time {
		return time.Date(2025, 8, 31, 23, 59, 59, 0, time.UTC)
	}

	if err := s.Start(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Start = %v", err)
	}
	if fired.Load() == 0 {
		t.Fatalf("expected at least one fire")
	}
}
