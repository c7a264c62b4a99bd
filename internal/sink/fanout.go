// v1
// fanout.go

package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GiuBlockchainDEV/hydrosim/internal/metrics"
	"github.com/GiuBlockchainDEV/hydrosim/pkg/models"
)

// Fanout delivers each snapshot to every configured sink. One failing
// backend never stops the others; the failures come back joined so the
// caller still sees them.
type Fanout struct {
	log   *slog.Logger
	m     *metrics.Metrics
	sinks []Sink
}

func NewFanout(log *slog.Logger, m *metrics.Metrics, sinks ...Sink) *Fanout {
	return &Fanout{log: log, m: m, sinks: sinks}
}

func (f *Fanout) Name() string { return "fanout" }

func (f *Fanout) Publish(ctx context.Context, deviceID, deviceKey string, at time.Time, snap models.Snapshot) Result {
	var errs []error
	for _, s := range f.sinks {
		start := time.Now()
		res := s.Publish(ctx, deviceID, deviceKey, at, snap)
		f.m.Dispatch(s.Name(), time.Since(start), res.Success)
		if !res.Success {
			f.log.Warn("sink publish failed", "sink", s.Name(), "error", res.Err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), res.Err))
		}
	}
	if len(errs) > 0 {
		return fail(errors.Join(errs...))
	}
	return ok("")
}

func (f *Fanout) Close() error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
