package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/fd1az/tokenprice/internal/apperror"
)

var errTransport = errors.New("connection reset")

func TestCircuitBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	cfg := DefaultConfig("rpc")
	cfg.ConsecutiveFailures = 2
	cfg.Timeout = time.Hour
	cb := New[int](cfg)

	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(func() (int, error) { return 0, errTransport }); !errors.Is(err, errTransport) {
			t.Fatalf("call %d: expected transport error, got %v", i, err)
		}
	}

	if cb.State() != gobreaker.StateOpen {
		t.Fatalf("state = %s, want open", cb.State())
	}

	calls := 0
	_, err := cb.Execute(func() (int, error) { calls++; return 1, nil })
	if calls != 0 {
		t.Error("expected fn not to run while open")
	}
	if !apperror.HasCode(err, apperror.CodeCircuitOpen) {
		t.Errorf("expected CodeCircuitOpen, got %v", err)
	}
}

func TestCircuitBreaker_IsSuccessfulKeepsClosed(t *testing.T) {
	errRevert := errors.New("execution reverted")
	cfg := DefaultConfig("rpc")
	cfg.ConsecutiveFailures = 1
	cfg.IsSuccessful = func(err error) bool { return err == nil || errors.Is(err, errRevert) }
	cb := New[int](cfg)

	for i := 0; i < 5; i++ {
		if _, err := cb.Execute(func() (int, error) { return 0, errRevert }); !errors.Is(err, errRevert) {
			t.Fatalf("expected revert to pass through, got %v", err)
		}
	}

	if cb.State() != gobreaker.StateClosed {
		t.Errorf("state = %s, want closed", cb.State())
	}
}
