// Package material implements the Material -> BSDF tagged variant of
// spec.md §3 ("Material: a tagged variant producing a BSDF object at a hit
// point from the texture graph's output").
//
// Grounded on the teacher's brush-to-fill dispatch pattern (brush.go,
// since deleted): a small set of paint "kinds" each carrying their own
// parameters, selected by a type switch rather than an interface
// hierarchy with per-kind structs implementing a common method set. Here
// the dispatch is from Material (config + texture references) to BSDF
// (an evaluable local scattering function at one hit point).
package material

import (
	"math"

	"github.com/lumenforge/lux/color"
	"github.com/lumenforge/lux/math3"
	"github.com/lumenforge/lux/texture"
)

// Kind is the material tag.
type Kind int

const (
	KindMatte Kind = iota
	KindMirror
	KindGlass
	KindMetal
	KindMix
)

// Material holds the texture-graph references and parameters for one
// surface kind; GetBSDF evaluates those textures at a hit point and
// returns the corresponding local BSDF.
type Material struct {
	Kind Kind

	// Texture graph node names, resolved against Graph at evaluation time.
	Albedo    string // KindMatte, KindMetal (tint)
	Roughness string // KindMetal
	IOR       float32 // KindGlass only; KindMetal ignores it (MetalBSDF has no Fresnel term)

	// KindMix blends two sub-materials by a scalar Amount node.
	A, B   *Material
	Amount string
}

// GetBSDF evaluates m's textures at hp against graph and constructs the
// BSDF to use for shading at that point.
func (m *Material) GetBSDF(graph *texture.Graph, hp texture.HitPoint, shadingNormal math3.Normal3) (BSDF, error) {
	switch m.Kind {
	case KindMirror:
		return MirrorBSDF{Normal: shadingNormal}, nil
	case KindGlass:
		ior := m.IOR
		if ior == 0 {
			ior = 1.5
		}
		return GlassBSDF{Normal: shadingNormal, IOR: ior}, nil
	case KindMetal:
		albedo, err := evalSpectrum(graph, m.Albedo, hp)
		if err != nil {
			return nil, err
		}
		rough := float32(0.1)
		if m.Roughness != "" {
			v, err := graph.Eval(m.Roughness, hp)
			if err != nil {
				return nil, err
			}
			rough = v.Float()
		}
		return MetalBSDF{Normal: shadingNormal, Albedo: albedo, Roughness: rough}, nil
	case KindMix:
		aBsdf, err := m.A.GetBSDF(graph, hp, shadingNormal)
		if err != nil {
			return nil, err
		}
		bBsdf, err := m.B.GetBSDF(graph, hp, shadingNormal)
		if err != nil {
			return nil, err
		}
		amt, err := graph.Eval(m.Amount, hp)
		if err != nil {
			return nil, err
		}
		return MixBSDF{A: aBsdf, B: bBsdf, Amount: amt.Float()}, nil
	default: // KindMatte
		albedo, err := evalSpectrum(graph, m.Albedo, hp)
		if err != nil {
			return nil, err
		}
		return LambertianBSDF{Normal: shadingNormal, Albedo: albedo}, nil
	}
}

func evalSpectrum(graph *texture.Graph, name string, hp texture.HitPoint) (color.Spectrum, error) {
	if name == "" {
		return color.Spectrum{R: 0.5, G: 0.5, B: 0.5}, nil
	}
	v, err := graph.Eval(name, hp)
	if err != nil {
		return color.Spectrum{}, err
	}
	return color.Spectrum{R: v.R, G: v.G, B: v.B}, nil
}

// BSDF is the local light-response function at a resolved hit point
// (spec.md §9 GLOSSARY: "the local light-response of a surface").
type BSDF interface {
	// Eval returns the BSDF value for the given world-space incoming (wi)
	// and outgoing (wo) directions, both pointing away from the surface.
	Eval(wo, wi math3.Vec3) color.Spectrum
	// Sample draws an incoming direction proportional to the BSDF (or a
	// good importance-sampling approximation of it), returning the
	// sampled direction, its value, and its solid-angle pdf.
	Sample(wo math3.Vec3, u1, u2 float32) (wi math3.Vec3, f color.Spectrum, pdf float32, specular bool)
	// Pdf returns the solid-angle density Sample would assign to wi.
	Pdf(wo, wi math3.Vec3) float32
	// IsSpecular reports whether this BSDF is a delta distribution (so
	// direct-lighting sampling must skip it).
	IsSpecular() bool
}

func cosineSampleHemisphere(n math3.Normal3, u1, u2 float32) (math3.Vec3, float32) {
	r := float32(math.Sqrt(float64(u1)))
	theta := 2 * math.Pi * float64(u2)
	x := r * float32(math.Cos(theta))
	y := r * float32(math.Sin(theta))
	z := float32(math.Sqrt(math.Max(0, float64(1-u1))))
	t, b := coordinateSystem(n)
	local := t.Mul(x).Add(b.Mul(y)).Add(n.Vec3().Mul(z))
	pdf := z / float32(math.Pi)
	return local, pdf
}

// coordinateSystem builds an orthonormal basis (tangent, bitangent) given
// a unit normal, the standard Duff et al. branchless construction.
func coordinateSystem(n math3.Normal3) (math3.Vec3, math3.Vec3) {
	sign := float32(1)
	if n.Z < 0 {
		sign = -1
	}
	a := -1 / (sign + n.Z)
	b := n.X * n.Y * a
	t := math3.V3(1+sign*n.X*n.X*a, sign*b, -sign*n.X)
	bt := math3.V3(b, sign+n.Y*n.Y*a, -n.Y)
	return t, bt
}
