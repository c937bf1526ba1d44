// Package light implements spec.md §3's LightSource tagged variant (point,
// spot, area-on-mesh/triangle-area, distant/sun, environment image, sky)
// and the Distribution1D used both for per-light importance sampling and
// for the DLSC's and scene's light-selection distributions.
//
// Grounded structurally on the teacher's radial/sweep gradient pair
// (gradient_radial.go, gradient_sweep.go): a small parameter struct whose
// ColorAt/computeT methods solve a closed-form geometric equation (ray-circle
// intersection, angular sweep) to turn a query point into a sample value.
// LightSource.Sample/Eval/Pdf play the same role for a shading point instead
// of a pixel: a closed-form or table-driven solve from geometry to a
// radiance/pdf pair. Unlike Material (which returns a BSDF interface per
// kind), Light stays a single tagged struct the way the teacher's brush
// types stay flat rather than being wrapped a second time, since every
// light kind needs the same four-method contract and none needs kind-
// specific auxiliary state beyond its own fields.
package light

import (
	"math"

	"github.com/lumenforge/lux/color"
	"github.com/lumenforge/lux/imagemap"
	"github.com/lumenforge/lux/math3"
	"github.com/lumenforge/lux/mesh"
)

// Kind tags which of the LightSource variants a Light value holds.
type Kind int

const (
	KindPoint Kind = iota
	KindSpot
	KindDistant
	KindTriangleArea
	KindEnvironment
	KindSky
)

// Light is the tagged-variant LightSource of spec.md §3: "a tagged variant
// (point, spot, area-on-mesh, distant/sun, environment image, sky models,
// triangle-area). Each implements sample/eval/pdf."
type Light struct {
	Kind Kind

	// Point, Spot: world-space position and radiant intensity (W/sr).
	Position  math3.Point3
	Intensity color.Spectrum

	// Spot, Distant, Sky: light-facing direction (points away from the
	// light, i.e. the direction light travels).
	Direction math3.Vec3

	// Spot: cosine of the total and inner falloff cone half-angles.
	CosTotalWidth   float32
	CosFalloffStart float32

	// Distant: constant radiance arriving along -Direction.
	Radiance color.Spectrum

	// TriangleArea: one emissive triangle on a mesh.
	Mesh     *mesh.TriangleMesh
	TriIndex int
	TwoSided bool

	// Environment: an equirectangular radiance map, sampled in the space
	// defined by Transform (world <- environment local).
	Map       *imagemap.ImageMap
	Transform math3.Transform

	// Sky: analytic daylight model parameters. SunDir reuses Direction.
	Turbidity float32
}

// IsDelta reports whether the light occupies zero measure (point/spot/
// distant): such lights can never be hit by an escaping camera ray and are
// never sampled by BSDF importance sampling.
func (l *Light) IsDelta() bool {
	return l.Kind == KindPoint || l.Kind == KindSpot || l.Kind == KindDistant
}

// Sample draws an incident direction wi from shading point p toward the
// light, returning the direction, the unoccluded radiance arriving along
// it, its solid-angle pdf, and the distance to the sampled light point
// (math.Inf for infinite lights).
func (l *Light) Sample(p math3.Point3, u1, u2 float32) (wi math3.Vec3, li color.Spectrum, pdf float32, dist float32) {
	switch l.Kind {
	case KindPoint:
		d := l.Position.Sub(p)
		distSq := d.LengthSq()
		dist = float32(math.Sqrt(float64(distSq)))
		wi = d.Div(dist)
		li = l.Intensity.Scale(1 / distSq)
		pdf = 1
		return
	case KindSpot:
		d := l.Position.Sub(p)
		distSq := d.LengthSq()
		dist = float32(math.Sqrt(float64(distSq)))
		wi = d.Div(dist)
		li = l.spotIntensity(wi.Neg()).Scale(1 / distSq)
		pdf = 1
		return
	case KindDistant:
		wi = l.Direction.Neg().Normalize()
		li = l.Radiance
		pdf = 1
		dist = float32(math.Inf(1))
		return
	case KindTriangleArea:
		return l.sampleTriangle(p, u1, u2)
	case KindEnvironment:
		return l.sampleEnvironment(u1, u2)
	case KindSky:
		return l.sampleSky(u1, u2)
	default:
		return math3.Vec3{}, color.Spectrum{}, 0, 0
	}
}

// Eval returns the radiance an escaping ray in direction wi (pointing away
// from the shading point, world space) sees from an infinite-extent light.
// Finite lights (point/spot/triangle-area) always return black here; a ray
// that hits a triangle-area light's geometry is handled by LeHit.
func (l *Light) Eval(wi math3.Vec3) color.Spectrum {
	switch l.Kind {
	case KindDistant:
		if wi.Dot(l.Direction.Neg().Normalize()) > 1-1e-4 {
			return l.Radiance
		}
		return color.Spectrum{}
	case KindEnvironment:
		return l.evalEnvironment(wi)
	case KindSky:
		return l.evalSky(wi)
	default:
		return color.Spectrum{}
	}
}

// Pdf returns the solid-angle density Sample would assign to direction wi
// from point p. Delta lights (point/spot/distant) return 0: they can never
// be hit by BSDF sampling and so contribute no MIS weight from that side.
func (l *Light) Pdf(p math3.Point3, wi math3.Vec3) float32 {
	switch l.Kind {
	case KindTriangleArea:
		return l.pdfTriangle(p, wi)
	case KindEnvironment:
		return 1 / (4 * float32(math.Pi))
	case KindSky:
		if wi.Y <= 0 {
			return 0
		}
		return wi.Y / float32(math.Pi)
	default:
		return 0
	}
}

// LeHit returns the radiance a ray arriving from direction wo (pointing
// away from the light, toward the viewer) sees when it directly
// intersects the light's own emissive geometry at a point with geometric
// normal n. Only KindTriangleArea has geometry a ray can hit directly;
// every other kind returns black here (escaping rays for Environment/Sky/
// Distant are handled by Eval instead, since those have no hittable mesh).
func (l *Light) LeHit(n math3.Normal3, wo math3.Vec3) color.Spectrum {
	if l.Kind != KindTriangleArea {
		return color.Spectrum{}
	}
	cos := n.Dot(wo)
	if cos > 0 || (l.TwoSided && cos < 0) {
		return l.Radiance
	}
	return color.Spectrum{}
}

// Power returns an approximate total radiant power; the scene-wide
// light-selection Distribution1D weights each light by log(1 + Power())
// (spec.md §4.7's "global log-power distribution" fallback).
func (l *Light) Power() float32 {
	switch l.Kind {
	case KindPoint:
		return 4 * float32(math.Pi) * l.Intensity.Y()
	case KindSpot:
		cosRange := (1 + l.CosFalloffStart) / 2
		return 2 * float32(math.Pi) * cosRange * l.Intensity.Y()
	case KindDistant:
		return l.Radiance.Y()
	case KindTriangleArea:
		area := l.triangleArea()
		p := area * l.Radiance.Y() * float32(math.Pi)
		if l.TwoSided {
			p *= 2
		}
		return p
	case KindEnvironment:
		if l.Map == nil {
			return 0
		}
		return 4 * float32(math.Pi) * l.Map.MeanLuminance()
	case KindSky:
		return 4 * float32(math.Pi)
	default:
		return 0
	}
}
