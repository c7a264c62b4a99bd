// v2
// runner.go

// Package runner drives the simulation: tick the generator on an
// interval, dispatch every snapshot, keep the latest state available
// for the status API.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/GiuBlockchainDEV/hydrosim/internal/engine"
	"github.com/GiuBlockchainDEV/hydrosim/internal/metrics"
	"github.com/GiuBlockchainDEV/hydrosim/internal/sink"
)

// HourProvider supplies the hour of day for a tick. Tests feed fixed
// sequences; production uses the wall clock.
type HourProvider func() int

// Broadcaster pushes each new envelope to live subscribers. Broadcast
// must not block the tick loop.
type Broadcaster interface {
	Broadcast(env sink.Envelope)
}

type Options struct {
	Variant   string
	DeviceID  string
	DeviceKey string

	// Duration bounds the whole run; zero means run until the context
	// is cancelled.
	Duration time.Duration
	Interval time.Duration
	Hour     HourProvider
}

// Status is the point-in-time view served by the HTTP API.
type Status struct {
	Variant     string    `json:"variant"`
	DeviceID    string    `json:"deviceId"`
	StartedAt   time.Time `json:"startedAt"`
	Ticks       int64     `json:"ticks"`
	LastTickAt  time.Time `json:"lastTickAt"`
	LastSuccess bool      `json:"lastDispatchSuccess"`
	LastError   string    `json:"lastDispatchError,omitempty"`
}

type Runner struct {
	log  *slog.Logger
	gen  engine.Generator
	snk  sink.Sink
	m    *metrics.Metrics
	bc   Broadcaster
	opts Options

	mu          sync.Mutex
	startedAt   time.Time
	ticks       int64
	lastTickAt  time.Time
	lastSuccess bool
	lastErr     string
	latest      sink.Envelope
	hasLatest   bool
}

func New(log *slog.Logger, gen engine.Generator, snk sink.Sink, m *metrics.Metrics, bc Broadcaster, opts Options) (*Runner, error) {
	if gen == nil {
		return nil, errors.New("generator is required")
	}
	if snk == nil {
		return nil, errors.New("sink is required")
	}
	if opts.Interval <= 0 {
		return nil, errors.New("interval must be positive")
	}
	if opts.Hour == nil {
		opts.Hour = func() int { return time.Now().Hour() }
	}
	return &Runner{log: log, gen: gen, snk: snk, m: m, bc: bc, opts: opts}, nil
}

// Run ticks until the context ends. The first snapshot goes out
// immediately rather than one interval in.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	r.startedAt = time.Now().UTC()
	r.mu.Unlock()

	if r.opts.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Duration)
		defer cancel()
	}

	r.log.Info("simulation started",
		"variant", r.opts.Variant,
		"deviceId", r.opts.DeviceID,
		"interval", r.opts.Interval.String(),
		"duration", r.opts.Duration.String(),
	)

	t := time.NewTicker(r.opts.Interval)
	defer t.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			ticks := r.ticks
			r.mu.Unlock()
			r.log.Info("simulation stopped", "ticks", ticks)
			return nil
		case <-t.C:
			r.tick(ctx)
		}
	}
}

// tick generates one snapshot and dispatches it. The generator state
// and the latest-envelope view advance even when dispatch fails; the
// next tick simply carries newer values.
func (r *Runner) tick(ctx context.Context) {
	hour := r.opts.Hour()
	snap := r.gen.Tick(hour)
	at := time.Now().UTC()
	env := sink.Envelope{DeviceID: r.opts.DeviceID, SentAt: at, Readings: snap}

	r.mu.Lock()
	r.ticks++
	tick := r.ticks
	r.latest = env
	r.hasLatest = true
	r.mu.Unlock()
	r.m.Tick()

	for _, rd := range snap {
		r.log.Info("reading", "type", rd.Type, "value", rd.Value, "unit", rd.Unit)
		r.m.Reading(r.opts.DeviceID, rd.Type, rd.Value)
	}

	res := r.snk.Publish(ctx, r.opts.DeviceID, r.opts.DeviceKey, at, snap)
	if res.Success {
		r.log.Info("snapshot dispatched", "tick", tick, "hour", hour)
	} else {
		r.log.Warn("dispatch failed; next tick retries", "tick", tick, "error", res.Err)
		r.m.DispatchError(time.Now())
	}

	r.mu.Lock()
	r.lastTickAt = at
	r.lastSuccess = res.Success
	if res.Err != nil {
		r.lastErr = res.Err.Error()
	} else {
		r.lastErr = ""
	}
	r.mu.Unlock()

	if r.bc != nil {
		r.bc.Broadcast(env)
	}
}

func (r *Runner) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		Variant:     r.opts.Variant,
		DeviceID:    r.opts.DeviceID,
		StartedAt:   r.startedAt,
		Ticks:       r.ticks,
		LastTickAt:  r.lastTickAt,
		LastSuccess: r.lastSuccess,
		LastError:   r.lastErr,
	}
}

// Latest returns the most recent envelope; the bool is false until the
// first tick completes.
func (r *Runner) Latest() (sink.Envelope, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.hasLatest
}
