// v1
// breaker.go

// Package breaker fast-fails calls to a backend that keeps erroring so
// one dead sink cannot stall the publishing loop.
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "Closed"
	case Open:
		return "Open"
	case HalfOpen:
		return "HalfOpen"
	default:
		return "Unknown"
	}
}

var ErrOpen = errors.New("circuit breaker is open; fast-fail")

type Config struct {
	MaxFailures  int
	ResetTimeout time.Duration
}

const (
	defaultMaxFailures  = 5
	defaultResetTimeout = 30 * time.Second
)

type Breaker struct {
	name string
	cfg  Config
	log  *slog.Logger

	mu          sync.Mutex
	state       State
	recentFails int
	openedAt    time.Time
}

func New(name string, cfg Config, log *slog.Logger) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = defaultMaxFailures
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = defaultResetTimeout
	}
	b := &Breaker{name: name, cfg: cfg, log: log, state: Closed}
	b.log.Info("breaker_created", "name", name, "maxFailures", cfg.MaxFailures, "resetTimeout", cfg.ResetTimeout.String())
	return b
}

// Execute runs op through the breaker. While open and inside the reset
// window it returns ErrOpen without invoking op; after the window the
// next call is the probe that decides whether the breaker closes again.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	b.mu.Lock()
	state := b.state
	openedAt := b.openedAt
	b.mu.Unlock()

	if state == Open {
		if time.Since(openedAt) < b.cfg.ResetTimeout {
			b.log.Warn("breaker_fast_fail", "name", b.name, "since_open", time.Since(openedAt).String())
			return ErrOpen
		}
		return b.probe(ctx, op)
	}

	err := op(ctx)
	if err == nil {
		b.onSuccess()
		return nil
	}
	b.onFailure(err)
	return err
}

func (b *Breaker) probe(ctx context.Context, op func(ctx context.Context) error) error {
	b.mu.Lock()
	b.state = HalfOpen
	had := b.recentFails
	b.mu.Unlock()
	b.log.Info("breaker_probe_start", "name", b.name, "previous_failures", had)

	if err := op(ctx); err != nil {
		b.log.Warn("breaker_probe_failed", "name", b.name, "error", err.Error())
		b.mu.Lock()
		b.state = Open
		b.openedAt = time.Now()
		b.recentFails++
		b.mu.Unlock()
		return err
	}

	b.mu.Lock()
	b.state = Closed
	b.recentFails = 0
	b.mu.Unlock()
	b.log.Info("breaker_closed_after_probe", "name", b.name)
	return nil
}

func (b *Breaker) onSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Closed {
		b.log.Info("breaker_state_to_closed", "name", b.name, "from", b.state.String())
	}
	b.state = Closed
	b.recentFails = 0
}

func (b *Breaker) onFailure(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recentFails++
	b.log.Warn("operation_failure", "name", b.name, "failures", b.recentFails, "error", err.Error())
	if b.recentFails >= b.cfg.MaxFailures {
		b.state = Open
		b.openedAt = time.Now()
		b.log.Error("breaker_opened", "name", b.name, "maxFailures", b.cfg.MaxFailures)
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
