// v1
// independent.go

package engine

import (
	"errors"
	"math"
	"math/rand"

	"github.com/GiuBlockchainDEV/hydrosim/internal/registry"
	"github.com/GiuBlockchainDEV/hydrosim/pkg/models"
)

// oscillator walks one parameter through a slow sine cycle plus uniform
// noise. The internal value stays unrounded; rounding happens only on
// the way out.
type oscillator struct {
	current    float64
	timeIndex  int
	volatility float64
	min, max   float64
}

func (o *oscillator) next(rng *rand.Rand) float64 {
	cycle := math.Sin(float64(o.timeIndex)*0.5) * 0.3
	noise := -o.volatility + rng.Float64()*2*o.volatility
	o.current = clamp(o.current+cycle+noise, o.min, o.max)
	o.timeIndex++
	return round2(o.current)
}

// IndependentModel runs one oscillator per parameter. Parameters never
// influence each other and the hour of day is ignored.
type IndependentModel struct {
	reg  *registry.Registry
	rng  *rand.Rand
	oscs map[string]*oscillator
}

// NewIndependentModel starts every oscillator at its parameter's base
// value, using the drift magnitude as per-step volatility.
func NewIndependentModel(reg *registry.Registry, rng *rand.Rand) (*IndependentModel, error) {
	if reg == nil {
		return nil, errors.New("nil registry")
	}
	if rng == nil {
		return nil, errors.New("nil rng")
	}
	if err := requireCanonical(reg); err != nil {
		return nil, err
	}
	oscs := make(map[string]*oscillator, reg.Len())
	for _, p := range reg.Parameters() {
		oscs[p.ID] = &oscillator{
			current:    p.Base,
			volatility: p.Drift,
			min:        p.Min,
			max:        p.Max,
		}
	}
	return &IndependentModel{reg: reg, rng: rng, oscs: oscs}, nil
}

// Tick advances every oscillator once. The hour argument is accepted so
// both models share the Generator interface, but it has no effect here.
func (m *IndependentModel) Tick(hour int) models.Snapshot {
	_ = hour
	snap := make(models.Snapshot, 0, len(canonical))
	for _, c := range canonical {
		p, _ := m.reg.Lookup(c.param)
		snap = append(snap, models.Reading{
			Type:  c.reading,
			Value: m.oscs[c.param].next(m.rng),
			Unit:  p.Unit,
		})
	}
	return snap
}
