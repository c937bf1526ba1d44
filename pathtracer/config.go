package pathtracer

import "github.com/lumenforge/lux/dlsc"

// Config fixes the path tracer's integration knobs, spec.md §4.8's
// "fixed knobs: total/diffuse/glossy/specular max depth, Russian-roulette
// depth/threshold, variance clamping, forced direct lighting on escaping
// rays, hybrid backward/forward flag, optional photon-GI cache handle".
type Config struct {
	MaxDepth      int
	DiffuseDepth  int
	GlossyDepth   int
	SpecularDepth int

	RussianRouletteDepth     int
	RussianRouletteThreshold float32

	// VarianceClampMax bounds a single sample's contribution in sqrt
	// space (spec.md's sqrtVarianceClampMaxValue); 0 disables clamping.
	VarianceClampMax float32

	// ForceDirectLightingOnMiss adds infinite-light (environment/sky)
	// radiance to rays that exit the scene even along a non-specular
	// bounce, trading MIS correctness (a small amount of double-counted
	// energy) for faster background convergence. When false, infinite
	// lights are only added on the camera ray's first miss or after a
	// specular bounce, leaving every other case to next-event estimation.
	ForceDirectLightingOnMiss bool

	// HybridBackwardForward reserves spec.md §4.8's bidirectional flag.
	// No bidirectional path tracer is implemented here (see DESIGN.md);
	// the integrator always traces unidirectionally backward from the
	// camera regardless of this flag's value.
	HybridBackwardForward bool

	// Cache, when non-nil, drives light selection for next-event
	// estimation from the direct-lighting sampling cache instead of the
	// scene's global log-power distribution (spec.md §4.7).
	Cache *dlsc.Cache
}

// DefaultConfig returns conservative integration defaults.
func DefaultConfig() Config {
	return Config{
		MaxDepth:                 16,
		DiffuseDepth:             8,
		GlossyDepth:              8,
		SpecularDepth:            8,
		RussianRouletteDepth:     3,
		RussianRouletteThreshold: 0.05,
		VarianceClampMax:         10,
	}
}
