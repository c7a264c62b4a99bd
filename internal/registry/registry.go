// v1
// internal/registry/registry.go

// Package registry holds the static per-parameter configuration the
// generators evolve: base value, valid range, and the drift/noise
// coefficients of the random walk.
package registry

import "fmt"

// Parameter identifiers used across the engine.
const (
	ParamEC        = "ec"
	ParamPH        = "ph"
	ParamWaterTemp = "water_temp"
	ParamAirTemp   = "air_temp"
	ParamHumidity  = "humidity"
	ParamLight     = "light"
)

// Parameter describes one tracked hydroponic parameter.
type Parameter struct {
	ID    string
	Base  float64
	Min   float64
	Max   float64
	Drift float64 // half-width of the uniform walk per tick
	Noise float64 // stddev of the gaussian component per tick
	Unit  string
}

// Registry is the read-only parameter table. It preserves the order
// parameters were registered in so traversal stays deterministic.
type Registry struct {
	order  []string
	params map[string]Parameter
}

// New validates the given parameters and builds a registry. Malformed
// entries fail fast rather than silently producing out-of-range output.
func New(params []Parameter) (*Registry, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("registry requires at least one parameter")
	}
	r := &Registry{params: make(map[string]Parameter, len(params))}
	for _, p := range params {
		if p.ID == "" {
			return nil, fmt.Errorf("parameter with empty id")
		}
		if _, dup := r.params[p.ID]; dup {
			return nil, fmt.Errorf("duplicate parameter %q", p.ID)
		}
		if p.Min > p.Max {
			return nil, fmt.Errorf("parameter %q: min %g exceeds max %g", p.ID, p.Min, p.Max)
		}
		if p.Drift < 0 {
			return nil, fmt.Errorf("parameter %q: negative drift %g", p.ID, p.Drift)
		}
		if p.Noise < 0 {
			return nil, fmt.Errorf("parameter %q: negative noise %g", p.ID, p.Noise)
		}
		if p.Base < p.Min || p.Base > p.Max {
			return nil, fmt.Errorf("parameter %q: base %g outside [%g, %g]", p.ID, p.Base, p.Min, p.Max)
		}
		r.order = append(r.order, p.ID)
		r.params[p.ID] = p
	}
	return r, nil
}

// Default returns the standard hydroponic parameter table.
func Default() *Registry {
	r, err := New([]Parameter{
		{ID: ParamEC, Base: 1.5, Min: 0.8, Max: 3.0, Drift: 0.1, Noise: 0.05, Unit: "mS/cm"},
		{ID: ParamPH, Base: 6.0, Min: 5.5, Max: 6.5, Drift: 0.05, Noise: 0.02, Unit: "pH"},
		{ID: ParamWaterTemp, Base: 22.0, Min: 18.0, Max: 26.0, Drift: 0.2, Noise: 0.1, Unit: "C"},
		{ID: ParamAirTemp, Base: 25.0, Min: 20.0, Max: 30.0, Drift: 0.5, Noise: 0.2, Unit: "C"},
		{ID: ParamHumidity, Base: 60.0, Min: 50.0, Max: 70.0, Drift: 1.0, Noise: 0.5, Unit: "%"},
		{ID: ParamLight, Base: 500.0, Min: 100.0, Max: 1000.0, Drift: 50.0, Noise: 20.0, Unit: "PPFD"},
	})
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the parameter registered under id.
func (r *Registry) Lookup(id string) (Parameter, bool) {
	p, ok := r.params[id]
	return p, ok
}

// Parameters returns the registered parameters in registration order.
func (r *Registry) Parameters() []Parameter {
	out := make([]Parameter, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.params[id])
	}
	return out
}

// Len reports how many parameters are registered.
func (r *Registry) Len() int { return len(r.order) }
