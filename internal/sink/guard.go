// v1
// guard.go

package sink

import (
	"context"
	"time"

	"github.com/GiuBlockchainDEV/hydrosim/internal/breaker"
	"github.com/GiuBlockchainDEV/hydrosim/pkg/models"
)

// Guarded wraps a sink with a circuit breaker. While the breaker is
// open the inner sink is not called at all.
type Guarded struct {
	inner Sink
	brk   *breaker.Breaker
}

func Guard(inner Sink, brk *breaker.Breaker) *Guarded {
	return &Guarded{inner: inner, brk: brk}
}

func (g *Guarded) Name() string { return g.inner.Name() }

func (g *Guarded) Publish(ctx context.Context, deviceID, deviceKey string, at time.Time, snap models.Snapshot) Result {
	var res Result
	err := g.brk.Execute(ctx, func(ctx context.Context) error {
		res = g.inner.Publish(ctx, deviceID, deviceKey, at, snap)
		return res.Err
	})
	if err != nil {
		if res.Err != nil {
			return res
		}
		// breaker fast-failed before the sink ran
		return fail(err)
	}
	return res
}

func (g *Guarded) Close() error {
	return g.inner.Close()
}
