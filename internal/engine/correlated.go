// v2
// correlated.go

package engine

import (
	"errors"
	"math"
	"math/rand"

	"github.com/GiuBlockchainDEV/hydrosim/internal/registry"
	"github.com/GiuBlockchainDEV/hydrosim/pkg/models"
)

// Coupling constants. ph moves against ec around the nominal mix;
// humidity moves against air temperature around the nominal setpoint.
const (
	ecNominal    = 1.5
	phPerEC      = -0.1
	airNominal   = 25.0
	humidityPerC = 0.5
)

// CorrelatedModel generates readings that follow a day/night cycle and
// keeps ph and humidity coupled to ec and air temperature. State carries
// over between ticks; drift accumulates on top of the hourly baseline.
type CorrelatedModel struct {
	reg    *registry.Registry
	rng    *rand.Rand
	values map[string]float64
}

// NewCorrelatedModel seeds every parameter at its base value.
func NewCorrelatedModel(reg *registry.Registry, rng *rand.Rand) (*CorrelatedModel, error) {
	if reg == nil {
		return nil, errors.New("nil registry")
	}
	if rng == nil {
		return nil, errors.New("nil rng")
	}
	if err := requireCanonical(reg); err != nil {
		return nil, err
	}
	values := make(map[string]float64, reg.Len())
	for _, p := range reg.Parameters() {
		values[p.ID] = p.Base
	}
	return &CorrelatedModel{reg: reg, rng: rng, values: values}, nil
}

// Tick advances the model by one step at the given hour of day and
// returns the resulting snapshot.
func (m *CorrelatedModel) Tick(hour int) models.Snapshot {
	m.applyDailyCycle(hour)
	m.applyDrift()
	m.applyCorrelations()
	return m.snapshot()
}

// applyDailyCycle rebases light, both temperatures and humidity on the
// hour of day. The day is anchored at 06:00; temperatures lag the light
// curve by two and four hours. ec and ph are left to drift alone.
func (m *CorrelatedModel) applyDailyCycle(hour int) {
	dp := mod24(hour - 6)

	if hour >= 6 && hour < 18 {
		m.values[registry.ParamLight] = 500 + 400*math.Sin(math.Pi*float64(dp)/12)
	} else {
		m.values[registry.ParamLight] = m.rng.Float64() * 10
	}

	m.values[registry.ParamAirTemp] = 25 + 3*math.Sin(math.Pi*float64(mod24(dp-2))/12)
	m.values[registry.ParamWaterTemp] = 22 + 2*math.Sin(math.Pi*float64(mod24(dp-4))/12)
	m.values[registry.ParamHumidity] = 60 - 5*math.Sin(math.Pi*float64(dp)/12)
}

// applyDrift perturbs every parameter in registry order. Each value is
// clamped to its bounds as soon as it moves so later draws never see an
// out-of-range intermediate.
func (m *CorrelatedModel) applyDrift() {
	for _, p := range m.reg.Parameters() {
		change := m.uniform(-p.Drift, p.Drift) + m.rng.NormFloat64()*p.Noise
		m.values[p.ID] = clamp(m.values[p.ID]+change, p.Min, p.Max)
	}
}

// applyCorrelations nudges ph toward ec and humidity toward air
// temperature, re-clamping against the registry bounds.
func (m *CorrelatedModel) applyCorrelations() {
	ph, _ := m.reg.Lookup(registry.ParamPH)
	hum, _ := m.reg.Lookup(registry.ParamHumidity)

	ecPull := (m.values[registry.ParamEC] - ecNominal) * phPerEC
	m.values[registry.ParamPH] = clamp(m.values[registry.ParamPH]+ecPull, ph.Min, ph.Max)

	airPull := (airNominal - m.values[registry.ParamAirTemp]) * humidityPerC
	m.values[registry.ParamHumidity] = clamp(m.values[registry.ParamHumidity]+airPull, hum.Min, hum.Max)
}

func (m *CorrelatedModel) snapshot() models.Snapshot {
	snap := make(models.Snapshot, 0, len(canonical))
	for _, c := range canonical {
		p, _ := m.reg.Lookup(c.param)
		snap = append(snap, models.Reading{
			Type:  c.reading,
			Value: round2(m.values[c.param]),
			Unit:  p.Unit,
		})
	}
	return snap
}

func (m *CorrelatedModel) uniform(lo, hi float64) float64 {
	return lo + m.rng.Float64()*(hi-lo)
}
