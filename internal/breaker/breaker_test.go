// v1
// breaker_test.go

package breaker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpensAfterMaxFailures(t *testing.T) {
	b := New("test", Config{MaxFailures: 3, ResetTimeout: time.Minute}, testLogger())
	boom := errors.New("backend down")
	fail := func(ctx context.Context) error { return boom }

	for i := 0; i < 3; i++ {
		if err := b.Execute(context.Background(), fail); !errors.Is(err, boom) {
			t.Fatalf("call %d: got %v want %v", i, err, boom)
		}
	}
	if got := b.State(); got != Open {
		t.Fatalf("state after max failures: got %v want Open", got)
	}
}

func TestFastFailsWhileOpen(t *testing.T) {
	b := New("test", Config{MaxFailures: 1, ResetTimeout: time.Minute}, testLogger())
	calls := 0
	fail := func(ctx context.Context) error {
		calls++
		return errors.New("backend down")
	}

	_ = b.Execute(context.Background(), fail)
	if err := b.Execute(context.Background(), fail); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("op invoked while open: %d calls, want 1", calls)
	}
}

func TestProbeClosesAfterResetTimeout(t *testing.T) {
	b := New("test", Config{MaxFailures: 1, ResetTimeout: 10 * time.Millisecond}, testLogger())

	_ = b.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("backend down")
	})
	if got := b.State(); got != Open {
		t.Fatalf("state: got %v want Open", got)
	}

	time.Sleep(20 * time.Millisecond)

	if err := b.Execute(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("probe call: %v", err)
	}
	if got := b.State(); got != Closed {
		t.Fatalf("state after successful probe: got %v want Closed", got)
	}
}

func TestProbeFailureReopens(t *testing.T) {
	b := New("test", Config{MaxFailures: 1, ResetTimeout: 10 * time.Millisecond}, testLogger())
	boom := errors.New("still down")

	_ = b.Execute(context.Background(), func(ctx context.Context) error { return boom })
	time.Sleep(20 * time.Millisecond)

	if err := b.Execute(context.Background(), func(ctx context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("probe failure: got %v want %v", err, boom)
	}
	if got := b.State(); got != Open {
		t.Fatalf("state after failed probe: got %v want Open", got)
	}
	if err := b.Execute(context.Background(), func(ctx context.Context) error { return nil }); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected fast-fail right after reopen, got %v", err)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	b := New("test", Config{MaxFailures: 2, ResetTimeout: time.Minute}, testLogger())
	boom := errors.New("flaky")

	_ = b.Execute(context.Background(), func(ctx context.Context) error { return boom })
	_ = b.Execute(context.Background(), func(ctx context.Context) error { return nil })
	_ = b.Execute(context.Background(), func(ctx context.Context) error { return boom })

	if got := b.State(); got != Closed {
		t.Fatalf("state: got %v want Closed, success should reset the count", got)
	}
}

func TestDefaultsApplied(t *testing.T) {
	b := New("test", Config{}, testLogger())
	if b.cfg.MaxFailures != defaultMaxFailures {
		t.Fatalf("MaxFailures default: got %d want %d", b.cfg.MaxFailures, defaultMaxFailures)
	}
	if b.cfg.ResetTimeout != defaultResetTimeout {
		t.Fatalf("ResetTimeout default: got %v want %v", b.cfg.ResetTimeout, defaultResetTimeout)
	}
}
