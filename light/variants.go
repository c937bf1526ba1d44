package light

import (
	"math"

	"github.com/lumenforge/lux/color"
	"github.com/lumenforge/lux/math3"
)

// spotIntensity applies a quartic falloff (delta^4, with delta the
// normalized position between CosTotalWidth and CosFalloffStart) to a
// direction pointing from the light toward the shading
// point (wo, normalized).
func (l *Light) spotIntensity(wo math3.Vec3) color.Spectrum {
	cosTheta := wo.Dot(l.Direction.Normalize())
	if cosTheta < l.CosTotalWidth {
		return color.Spectrum{}
	}
	if cosTheta > l.CosFalloffStart {
		return l.Intensity
	}
	delta := (cosTheta - l.CosTotalWidth) / (l.CosFalloffStart - l.CosTotalWidth)
	return l.Intensity.Scale(delta * delta * delta * delta)
}

// sampleTriangle draws a uniform point on the emissive triangle via the
// standard sqrt-u1 barycentric construction, then converts the resulting
// area-measure pdf to solid angle at p.
func (l *Light) sampleTriangle(p math3.Point3, u1, u2 float32) (math3.Vec3, color.Spectrum, float32, float32) {
	tri := l.Mesh.Tris[l.TriIndex]
	v0, v1, v2 := l.Mesh.Vertices[tri[0]], l.Mesh.Vertices[tri[1]], l.Mesh.Vertices[tri[2]]
	su1 := float32(math.Sqrt(float64(u1)))
	b0 := 1 - su1
	b1 := u2 * su1
	b2 := 1 - b0 - b1
	pt := math3.Point3{
		X: v0.X*b0 + v1.X*b1 + v2.X*b2,
		Y: v0.Y*b0 + v1.Y*b1 + v2.Y*b2,
		Z: v0.Z*b0 + v1.Z*b1 + v2.Z*b2,
	}
	n := l.Mesh.GeometricNormal(l.TriIndex).Normalize()
	d := pt.Sub(p)
	distSq := d.LengthSq()
	dist := float32(math.Sqrt(float64(distSq)))
	if dist == 0 {
		return math3.Vec3{}, color.Spectrum{}, 0, 0
	}
	wi := d.Div(dist)
	cosAtLight := n.Dot(wi.Neg())
	if !l.TwoSided && cosAtLight <= 0 {
		return wi, color.Spectrum{}, 0, dist
	}
	if l.TwoSided {
		cosAtLight = absf32(cosAtLight)
	}
	area := l.triangleArea()
	pdf := distSq / (cosAtLight * area)
	return wi, l.Radiance, pdf, dist
}

func (l *Light) pdfTriangle(p math3.Point3, wi math3.Vec3) float32 {
	t, _, _, ok := l.Mesh.IntersectTriangle(math3.Ray{Origin: p, Dir: wi, Mint: 1e-4, Maxt: float32(math.MaxFloat32)}, l.TriIndex)
	if !ok {
		return 0
	}
	n := l.Mesh.GeometricNormal(l.TriIndex).Normalize()
	cosAtLight := n.Dot(wi.Neg())
	if l.TwoSided {
		cosAtLight = absf32(cosAtLight)
	} else if cosAtLight <= 0 {
		return 0
	}
	distSq := t * t
	return distSq / (cosAtLight * l.triangleArea())
}

func (l *Light) triangleArea() float32 {
	tri := l.Mesh.Tris[l.TriIndex]
	v0, v1, v2 := l.Mesh.Vertices[tri[0]], l.Mesh.Vertices[tri[1]], l.Mesh.Vertices[tri[2]]
	return v1.Sub(v0).Cross(v2.Sub(v0)).Length() / 2
}

func absf32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

// dirToEquirect maps a world direction to an equirectangular (u, v) pair,
// the standard lat-long parameterization: u from azimuth, v from elevation.
func dirToEquirect(d math3.Vec3) (u, v float32) {
	phi := float32(math.Atan2(float64(d.Z), float64(d.X)))
	theta := float32(math.Acos(float64(clampf(d.Y, -1, 1))))
	u = phi/(2*float32(math.Pi)) + 0.5
	v = theta / float32(math.Pi)
	return
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sampleEnvironment draws a direction uniformly over the sphere and weights
// it by the map's lookup; a full importance-sampled Distribution2D over the
// map's luminance is a documented open decision, not implemented here (see
// DESIGN.md).
func (l *Light) sampleEnvironment(u1, u2 float32) (math3.Vec3, color.Spectrum, float32, float32) {
	z := 1 - 2*u1
	r := float32(math.Sqrt(math.Max(0, float64(1-z*z))))
	phi := 2 * math.Pi * float64(u2)
	localDir := math3.V3(r*float32(math.Cos(phi)), z, r*float32(math.Sin(phi)))
	worldDir := l.Transform.ApplyVector(localDir)
	li := l.evalEnvironment(worldDir)
	return worldDir, li, 1 / (4 * float32(math.Pi)), float32(math.Inf(1))
}

func (l *Light) evalEnvironment(wi math3.Vec3) color.Spectrum {
	if l.Map == nil {
		return color.Spectrum{}
	}
	local := l.Transform.Inverse().ApplyVector(wi).Normalize()
	u, v := dirToEquirect(local)
	return l.Map.GetSpectrum(u, v)
}

// sampleSky draws a cosine-weighted direction over the upper hemisphere
// (pdf y/pi) and evaluates the analytic sky model along it.
func (l *Light) sampleSky(u1, u2 float32) (math3.Vec3, color.Spectrum, float32, float32) {
	r := float32(math.Sqrt(float64(u1)))
	phi := 2 * math.Pi * float64(u2)
	x := r * float32(math.Cos(phi))
	z := r * float32(math.Sin(phi))
	y := float32(math.Sqrt(math.Max(0, float64(1-u1))))
	dir := math3.V3(x, y, z)
	return dir, l.evalSky(dir), y / float32(math.Pi), float32(math.Inf(1))
}

// evalSky is a simplified Preetham-family daylight model: a zenith-to-
// horizon luminance gradient controlled by Turbidity, boosted near the sun
// by a cos^256 glow lobe around the sun direction. This is not a full Hosek-Wilkie
// or Preetham fit (no spectral sky coefficients exist anywhere in the
// example corpus to ground one on); see DESIGN.md.
func (l *Light) evalSky(wi math3.Vec3) color.Spectrum {
	if wi.Y <= 0 {
		return color.Spectrum{}
	}
	turbidity := l.Turbidity
	if turbidity <= 0 {
		turbidity = 2
	}
	zenithGradient := float32(math.Pow(float64(wi.Y), 1/(turbidity*0.3+0.2)))
	base := color.Spectrum{R: 0.3, G: 0.45, B: 0.75}.Scale(zenithGradient)
	horizon := color.Spectrum{R: 0.9, G: 0.85, B: 0.7}.Scale(1 - zenithGradient)
	sky := base.Add(horizon)
	sun := l.Direction.Neg().Normalize()
	cosSun := clampf(wi.Dot(sun), -1, 1)
	glow := float32(math.Pow(float64(math.Max(0, float64(cosSun))), 256))
	return sky.Add(color.Spectrum{R: 8, G: 7.5, B: 6.5}.Scale(glow))
}
