// v1
// generator.go

// Package engine produces synthetic hydroponic sensor snapshots. A
// Generator holds the evolving state of one device; each Tick advances
// that state and returns the six canonical readings.
package engine

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/GiuBlockchainDEV/hydrosim/internal/registry"
	"github.com/GiuBlockchainDEV/hydrosim/pkg/models"
)

// Variant selects the generation model.
type Variant string

const (
	// VariantCorrelated drives light, temperatures and humidity from the
	// hour of day and couples ph to ec and humidity to air temperature.
	VariantCorrelated Variant = "correlated"

	// VariantIndependent runs one free oscillator per parameter with no
	// cross-parameter coupling and no day/night cycle.
	VariantIndependent Variant = "independent"
)

// Generator is the tick interface shared by both models. Implementations
// are not safe for concurrent use; run one per device.
type Generator interface {
	Tick(hour int) models.Snapshot
}

// New builds the generator for the given variant.
func New(v Variant, reg *registry.Registry, rng *rand.Rand) (Generator, error) {
	switch v {
	case VariantCorrelated:
		return NewCorrelatedModel(reg, rng)
	case VariantIndependent:
		return NewIndependentModel(reg, rng)
	default:
		return nil, fmt.Errorf("unknown generator variant %q", v)
	}
}

// canonical fixes the parameter iteration order and maps each registry
// id to its wire reading type. Snapshots always follow this order.
var canonical = []struct {
	param   string
	reading string
}{
	{registry.ParamEC, models.TypeEC},
	{registry.ParamPH, models.TypePH},
	{registry.ParamWaterTemp, models.TypeWaterTemp},
	{registry.ParamAirTemp, models.TypeAirTemp},
	{registry.ParamHumidity, models.TypeHumidity},
	{registry.ParamLight, models.TypeLight},
}

func requireCanonical(reg *registry.Registry) error {
	for _, c := range canonical {
		if _, ok := reg.Lookup(c.param); !ok {
			return fmt.Errorf("registry missing parameter %q", c.param)
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// mod24 wraps an hour offset into [0,24). Go's % keeps the sign of the
// dividend, so negative offsets need the extra +24.
func mod24(h int) int {
	return ((h % 24) + 24) % 24
}
