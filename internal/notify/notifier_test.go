package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"caixa/internal/log"
)

func testLogger() *log.Logger {
	return log.New(log.Config{Level: slog.LevelError})
}

type fakeDeliverer struct {
	calls    int
	failures int
	lastText string
	lastTo   string
}

func (f *fakeDeliverer) Deliver(_ context.Context, target, text string) error {
	f.calls++
	f.lastTo = target
	f.lastText = text
	if f.calls <= f.failures {
		return errors.New("network down")
	}
	return nil
}

func TestSendFirstTry(t *testing.T) {
	d := &fakeDeliverer{}
	n := New(d, testLogger(), WithBackoff(time.Millisecond))

	if err := n.Send(context.Background(), "123", "olá"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if d.calls != 1 {
		t.Fatalf("calls = %d, want 1", d.calls)
	}
	if d.lastTo != "123" || d.lastText != "olá" {
		t.Fatalf("delivered %q to %q", d.lastText, d.lastTo)
	}
}

func TestSendRetriesThenSucceeds(t *testing.T) {
	d := &fakeDeliverer{failures: 2}
	n := New(d, testLogger(), WithBackoff(time.Millisecond))

	if err := n.Send(context.Background(), "123", "msg"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if d.calls != 3 {
		t.Fatalf("calls = %d, want 3", d.calls)
	}
}

func TestSendGivesUpAfterBoundedAttempts(t *testing.T) {
	d := &fakeDeliverer{failures: 100}
	n := New(d, testLogger(), WithBackoff(time.Millisecond))

	err := n.Send(context.Background(), "123", "msg")
	if err == nil {
		t.Fatalf("expected error after exhausting retries")
	}
	if d.calls != 3 {
		t.Fatalf("calls = %d, want exactly 3", d.calls)
	}
}

func TestSendRespectsContextCancellation(t *testing.T) {
	d := &fakeDeliverer{failures: 100}
	n := New(d, testLogger(), WithBackoff(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := n.Send(ctx, "123", "msg")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if d.calls != 1 {
		t.Fatalf("calls = %d, want 1 (cancelled during backoff)", d.calls)
	}
}
