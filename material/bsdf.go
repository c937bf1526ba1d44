package material

import (
	"math"

	"github.com/lumenforge/lux/color"
	"github.com/lumenforge/lux/math3"
)

// LambertianBSDF is a perfectly diffuse reflector.
type LambertianBSDF struct {
	Normal math3.Normal3
	Albedo color.Spectrum
}

func (b LambertianBSDF) Eval(wo, wi math3.Vec3) color.Spectrum {
	if b.Normal.Dot(wi) <= 0 || b.Normal.Dot(wo) <= 0 {
		return color.Spectrum{}
	}
	return b.Albedo.Scale(1 / float32(math.Pi))
}

func (b LambertianBSDF) Sample(wo math3.Vec3, u1, u2 float32) (math3.Vec3, color.Spectrum, float32, bool) {
	n := b.Normal
	if n.Dot(wo) < 0 {
		n = n.Neg()
	}
	wi, pdf := cosineSampleHemisphere(n, u1, u2)
	return wi, b.Eval(wo, wi), pdf, false
}

func (b LambertianBSDF) Pdf(wo, wi math3.Vec3) float32 {
	if b.Normal.Dot(wi) <= 0 || b.Normal.Dot(wo) <= 0 {
		return 0
	}
	return b.Normal.Dot(wi) / float32(math.Pi)
}

func (b LambertianBSDF) IsSpecular() bool { return false }

// MirrorBSDF is a perfect specular reflector (a delta distribution).
type MirrorBSDF struct {
	Normal math3.Normal3
}

func reflect(wo math3.Vec3, n math3.Normal3) math3.Vec3 {
	return n.Vec3().Mul(2 * n.Dot(wo)).Sub(wo)
}

func (b MirrorBSDF) Eval(wo, wi math3.Vec3) color.Spectrum { return color.Spectrum{} }

func (b MirrorBSDF) Sample(wo math3.Vec3, u1, u2 float32) (math3.Vec3, color.Spectrum, float32, bool) {
	n := b.Normal
	if n.Dot(wo) < 0 {
		n = n.Neg()
	}
	wi := reflect(wo, n)
	return wi, color.Spectrum{R: 1, G: 1, B: 1}, 1, true
}

func (b MirrorBSDF) Pdf(wo, wi math3.Vec3) float32 { return 0 }
func (b MirrorBSDF) IsSpecular() bool              { return true }

// GlassBSDF is a perfectly specular dielectric: Fresnel-weighted
// reflection/transmission, also a delta distribution.
type GlassBSDF struct {
	Normal math3.Normal3
	IOR    float32
}

func fresnelDielectric(cosI, etaI, etaT float32) float32 {
	cosI = clamp32(cosI, -1, 1)
	if cosI < 0 {
		etaI, etaT = etaT, etaI
		cosI = -cosI
	}
	sinT := etaI / etaT * float32(math.Sqrt(math.Max(0, float64(1-cosI*cosI))))
	if sinT >= 1 {
		return 1 // total internal reflection
	}
	cosT := float32(math.Sqrt(math.Max(0, float64(1-sinT*sinT))))
	rParl := (etaT*cosI - etaI*cosT) / (etaT*cosI + etaI*cosT)
	rPerp := (etaI*cosI - etaT*cosT) / (etaI*cosI + etaT*cosT)
	return (rParl*rParl + rPerp*rPerp) / 2
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (b GlassBSDF) Eval(wo, wi math3.Vec3) color.Spectrum { return color.Spectrum{} }

func (b GlassBSDF) Sample(wo math3.Vec3, u1, u2 float32) (math3.Vec3, color.Spectrum, float32, bool) {
	n := b.Normal
	cosI := n.Dot(wo)
	entering := cosI > 0
	etaI, etaT := float32(1), b.IOR
	if !entering {
		etaI, etaT = b.IOR, 1
		n = n.Neg()
		cosI = -cosI
	}
	fr := fresnelDielectric(cosI, etaI, etaT)
	if u1 < fr {
		wi := reflect(wo, n)
		return wi, color.Spectrum{R: 1, G: 1, B: 1}.Scale(1), 1, true
	}
	eta := etaI / etaT
	sin2I := float32(math.Max(0, float64(1-cosI*cosI)))
	sin2T := eta * eta * sin2I
	if sin2T >= 1 {
		wi := reflect(wo, n)
		return wi, color.Spectrum{R: 1, G: 1, B: 1}, 1, true
	}
	cosT := float32(math.Sqrt(float64(1 - sin2T)))
	wi := n.Vec3().Mul(-1).Mul(cosT).Sub(wo.Sub(n.Vec3().Mul(cosI)).Mul(eta))
	return wi.Normalize(), color.Spectrum{R: 1, G: 1, B: 1}, 1, true
}

func (b GlassBSDF) Pdf(wo, wi math3.Vec3) float32 { return 0 }
func (b GlassBSDF) IsSpecular() bool              { return true }

// MetalBSDF is a rough conductor, approximated here as an energy-tinted
// specular lobe whose cosine-power exponent is derived from Roughness
// (the GGX microfacet distribution is not implemented; see DESIGN.md).
type MetalBSDF struct {
	Normal    math3.Normal3
	Albedo    color.Spectrum
	Roughness float32
}

func (b MetalBSDF) exponent() float32 {
	r := clamp32(b.Roughness, 1e-3, 1)
	return 2/(r*r) - 2
}

func (b MetalBSDF) Eval(wo, wi math3.Vec3) color.Spectrum {
	n := b.Normal
	if n.Dot(wo) <= 0 || n.Dot(wi) <= 0 {
		return color.Spectrum{}
	}
	r := reflect(wo, n)
	cosAlpha := clamp32(r.Dot(wi), 0, 1)
	exp := b.exponent()
	norm := (exp + 2) / (2 * float32(math.Pi))
	lobe := norm * float32(math.Pow(float64(cosAlpha), float64(exp)))
	return b.Albedo.Scale(lobe)
}

func (b MetalBSDF) Sample(wo math3.Vec3, u1, u2 float32) (math3.Vec3, color.Spectrum, float32, bool) {
	n := b.Normal
	if n.Dot(wo) < 0 {
		n = n.Neg()
	}
	r := reflect(wo, n)
	exp := b.exponent()
	cosTheta := float32(math.Pow(float64(u1), 1/float64(exp+1)))
	sinTheta := float32(math.Sqrt(math.Max(0, float64(1-cosTheta*cosTheta))))
	phi := 2 * math.Pi * float64(u2)
	t, bt := coordinateSystem(math3.N3(r.X, r.Y, r.Z))
	wi := t.Mul(sinTheta * float32(math.Cos(phi))).Add(bt.Mul(sinTheta * float32(math.Sin(phi)))).Add(r.Mul(cosTheta))
	wi = wi.Normalize()
	f := b.Eval(wo, wi)
	pdf := b.Pdf(wo, wi)
	return wi, f, pdf, false
}

func (b MetalBSDF) Pdf(wo, wi math3.Vec3) float32 {
	n := b.Normal
	if n.Dot(wo) <= 0 || n.Dot(wi) <= 0 {
		return 0
	}
	r := reflect(wo, n)
	cosAlpha := clamp32(r.Dot(wi), 0, 1)
	exp := b.exponent()
	norm := (exp + 1) / (2 * float32(math.Pi))
	return norm * float32(math.Pow(float64(cosAlpha), float64(exp)))
}

func (b MetalBSDF) IsSpecular() bool { return false }

// MixBSDF statistically blends two BSDFs by Amount (0 -> all A, 1 -> all
// B), the material-graph analogue of texture.Mix.
type MixBSDF struct {
	A, B   BSDF
	Amount float32
}

func (m MixBSDF) Eval(wo, wi math3.Vec3) color.Spectrum {
	a := m.A.Eval(wo, wi)
	b := m.B.Eval(wo, wi)
	return a.Lerp(b, m.Amount)
}

func (m MixBSDF) Sample(wo math3.Vec3, u1, u2 float32) (math3.Vec3, color.Spectrum, float32, bool) {
	pa := 1 - m.Amount
	if u1 < pa {
		u1r := u1 / pa
		wi, f, pdf, spec := m.A.Sample(wo, u1r, u2)
		return wi, f, pdf * pa, spec
	}
	u1r := (u1 - pa) / m.Amount
	wi, f, pdf, spec := m.B.Sample(wo, u1r, u2)
	return wi, f, pdf * m.Amount, spec
}

func (m MixBSDF) Pdf(wo, wi math3.Vec3) float32 {
	return (1-m.Amount)*m.A.Pdf(wo, wi) + m.Amount*m.B.Pdf(wo, wi)
}

func (m MixBSDF) IsSpecular() bool { return m.A.IsSpecular() && m.B.IsSpecular() }
