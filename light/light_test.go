package light

import (
	"math"
	"testing"

	"github.com/lumenforge/lux/color"
	"github.com/lumenforge/lux/math3"
	"github.com/lumenforge/lux/mesh"
)

func TestPointLight_SampleFallsOffByInverseSquare(t *testing.T) {
	l := &Light{Kind: KindPoint, Position: math3.P3(0, 0, 2), Intensity: color.Gray(100)}
	p := math3.P3(0, 0, 0)
	wi, li, pdf, dist := l.Sample(p, 0, 0)
	if pdf != 1 {
		t.Fatalf("expected delta pdf 1, got %v", pdf)
	}
	if math.Abs(float64(dist-2)) > 1e-4 {
		t.Fatalf("expected distance 2, got %v", dist)
	}
	want := float32(100) / 4
	if math.Abs(float64(li.R-want)) > 1e-3 {
		t.Fatalf("li.R = %v, want %v", li.R, want)
	}
	if wi.Z != 1 {
		t.Fatalf("wi = %v, want +Z", wi)
	}
}

func TestSpotLight_OutsideConeIsBlack(t *testing.T) {
	l := &Light{
		Kind: KindSpot, Position: math3.P3(0, 0, 1), Direction: math3.V3(0, 0, 1),
		Intensity: color.Gray(10), CosTotalWidth: 0.9, CosFalloffStart: 0.95,
	}
	_, li, _, _ := l.Sample(math3.P3(10, 0, 0), 0, 0)
	if !li.IsBlack() {
		t.Fatalf("expected black outside the cone, got %v", li)
	}
}

func TestDistantLight_IsAlwaysAtInfinity(t *testing.T) {
	l := &Light{Kind: KindDistant, Direction: math3.V3(0, -1, 0), Radiance: color.Gray(1)}
	_, _, _, dist := l.Sample(math3.P3(0, 0, 0), 0, 0)
	if !math.IsInf(float64(dist), 1) {
		t.Fatalf("expected infinite distance, got %v", dist)
	}
}

func triLight(radiance color.Spectrum) *Light {
	v := []math3.Point3{math3.P3(-1, 0, -1), math3.P3(1, 0, -1), math3.P3(0, 0, 1)}
	m, _ := mesh.NewTriangleMesh(v, [][3]int32{{0, 1, 2}})
	return &Light{Kind: KindTriangleArea, Mesh: m, TriIndex: 0, Radiance: radiance}
}

func TestTriangleAreaLight_SampleLiesOnPlane(t *testing.T) {
	l := triLight(color.Gray(5))
	p := math3.P3(0, 5, 0)
	wi, li, pdf, dist := l.Sample(p, 0.3, 0.7)
	if li.IsBlack() {
		t.Fatal("front-facing sample should not be black")
	}
	if pdf <= 0 || dist <= 0 {
		t.Fatalf("expected positive pdf/dist, got pdf=%v dist=%v", pdf, dist)
	}
	hitPoint := p.Add(wi.Mul(dist))
	if math.Abs(float64(hitPoint.Y)) > 1e-3 {
		t.Fatalf("sampled point %v not on the y=0 triangle plane", hitPoint)
	}
}

func TestDistribution1D_SampleDiscreteRespectsWeights(t *testing.T) {
	d := NewDistribution1D([]float32{1, 0, 3})
	idx, pmf := d.SampleDiscrete(0.99)
	if idx != 2 {
		t.Fatalf("expected index 2 for u near 1, got %v", idx)
	}
	if math.Abs(float64(pmf-0.75)) > 1e-5 {
		t.Fatalf("pmf = %v, want 0.75", pmf)
	}
}

func TestDistribution1D_AllZeroFallsBackToUniform(t *testing.T) {
	d := NewDistribution1D([]float32{0, 0, 0, 0})
	idx, pmf := d.SampleDiscrete(0.6)
	if idx != 2 {
		t.Fatalf("expected uniform bucket index 2, got %v", idx)
	}
	if math.Abs(float64(pmf-0.25)) > 1e-5 {
		t.Fatalf("pmf = %v, want 0.25", pmf)
	}
}

func TestSkyLight_ZeroBelowHorizon(t *testing.T) {
	l := &Light{Kind: KindSky, Direction: math3.V3(0, -1, 0), Turbidity: 3}
	got := l.Eval(math3.V3(0, -0.5, 0))
	if !got.IsBlack() {
		t.Fatalf("expected black below the horizon, got %v", got)
	}
}
