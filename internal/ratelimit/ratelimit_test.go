package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestBurstIsTenPercent(t *testing.T) {
	l := New(300)

	// Refill is one token per 200ms, so any wait past the burst
	// overshoots the deadline and fails immediately.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	passed := 0
	for i := 0; i < 100; i++ {
		if err := l.Wait(ctx); err != nil {
			break
		}
		passed++
	}
	if passed != 30 {
		t.Errorf("passed = %d, want 30", passed)
	}
}

func TestWaitRespectsContext(t *testing.T) {
	l := New(1)
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("first event should pass: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Wait(ctx); err == nil {
		t.Error("expected Wait to fail on a cancelled context")
	}
}

func TestNilLimiterNeverBlocks(t *testing.T) {
	var l *Limiter
	if err := l.Wait(context.Background()); err != nil {
		t.Errorf("Wait() = %v", err)
	}
}
