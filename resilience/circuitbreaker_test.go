package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBreakerStartsClosed(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 3, Timeout: time.Second})
	if b.State() != StateClosed {
		t.Fatalf("expected closed, got %v", b.State())
	}
}

func TestBreakerTripsAfterThreshold(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 3, Timeout: time.Second})
	ctx := context.Background()
	fail := errors.New("fail")

	for i := 0; i < 3; i++ {
		_ = b.Call(ctx, func(context.Context) error { return fail })
	}
	if b.State() != StateOpen {
		t.Fatalf("expected open, got %v", b.State())
	}

	err := b.Call(ctx, func(context.Context) error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreakerResetsOnSuccess(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 3, Timeout: time.Second})
	ctx := context.Background()
	fail := errors.New("fail")

	_ = b.Call(ctx, func(context.Context) error { return fail })
	_ = b.Call(ctx, func(context.Context) error { return fail })
	_ = b.Call(ctx, func(context.Context) error { return nil })
	if b.State() != StateClosed {
		t.Fatalf("expected closed after success, got %v", b.State())
	}
}

func TestBreakerHalfOpenAllowsOneProbe(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerOpts{FailThreshold: 2, Timeout: 5 * time.Second, HalfOpenMax: 1})
	b.now = func() time.Time { return now }
	ctx := context.Background()
	fail := errors.New("fail")

	_ = b.Call(ctx, func(context.Context) error { return fail })
	_ = b.Call(ctx, func(context.Context) error { return fail })
	if b.State() != StateOpen {
		t.Fatalf("expected open, got %v", b.State())
	}

	now = now.Add(6 * time.Second)
	if b.State() != StateHalfOpen {
		t.Fatalf("expected half-open after timeout elapses, got %v", b.State())
	}

	if err := b.Call(ctx, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("expected the half-open probe to succeed, got %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("expected closed after a successful probe, got %v", b.State())
	}
}

func TestRetrySucceedsWithinAttempts(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), RetryOpts{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}, nil, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetryStopsOnTerminalError(t *testing.T) {
	terminal := errors.New("terminal")
	attempts := 0
	err := Retry(context.Background(), RetryOpts{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond},
		func(error) bool { return false },
		func(context.Context) error {
			attempts++
			return terminal
		})
	if !errors.Is(err, terminal) {
		t.Fatalf("expected terminal error returned, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt for a terminal error, got %d", attempts)
	}
}

func TestRetryExhaustsMaxAttempts(t *testing.T) {
	fail := errors.New("always fails")
	attempts := 0
	err := Retry(context.Background(), RetryOpts{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}, nil, func(context.Context) error {
		attempts++
		return fail
	})
	if !errors.Is(err, fail) {
		t.Fatalf("expected final error returned, got %v", err)
	}
	if attempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", attempts)
	}
}
