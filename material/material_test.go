package material

import (
	"math"
	"testing"

	"github.com/lumenforge/lux/color"
	"github.com/lumenforge/lux/math3"
	"github.com/lumenforge/lux/texture"
)

func constGraph(name string, v texture.Value) *texture.Graph {
	g := texture.NewGraph()
	g.Add(name, texture.Constant{Value: v})
	return g
}

func TestGetBSDF_MatteDispatchesLambertian(t *testing.T) {
	m := &Material{Kind: KindMatte, Albedo: "albedo"}
	g := constGraph("albedo", texture.Value{R: 0.8, G: 0.2, B: 0.2})
	bsdf, err := m.GetBSDF(g, texture.HitPoint{}, math3.N3(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := bsdf.(LambertianBSDF); !ok {
		t.Fatalf("got %T, want LambertianBSDF", bsdf)
	}
}

func TestGetBSDF_MirrorDispatch(t *testing.T) {
	m := &Material{Kind: KindMirror}
	bsdf, err := m.GetBSDF(nil, texture.HitPoint{}, math3.N3(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := bsdf.(MirrorBSDF); !ok {
		t.Fatalf("got %T, want MirrorBSDF", bsdf)
	}
}

func TestLambertianBSDF_SamplePdfMatchesCosineLaw(t *testing.T) {
	n := math3.N3(0, 0, 1)
	b := LambertianBSDF{Normal: n, Albedo: color.Spectrum{R: 1, G: 1, B: 1}}
	wo := math3.V3(0, 0, 1)
	wi, f, pdf, specular := b.Sample(wo, 0.3, 0.7)
	if specular {
		t.Fatal("lambertian should not report specular")
	}
	if wi.Dot(n.Vec3()) <= 0 {
		t.Fatalf("sampled direction %v not in the upper hemisphere", wi)
	}
	wantPdf := b.Pdf(wo, wi)
	if math.Abs(float64(pdf-wantPdf)) > 1e-5 {
		t.Fatalf("Sample pdf %v != Pdf() %v", pdf, wantPdf)
	}
	if f.IsBlack() {
		t.Fatal("expected nonzero reflectance for aligned directions")
	}
}

func TestMirrorBSDF_ReflectsAboutNormal(t *testing.T) {
	n := math3.N3(0, 0, 1)
	b := MirrorBSDF{Normal: n}
	wo := math3.V3(1, 0, 1).Normalize()
	wi, _, pdf, specular := b.Sample(wo, 0.1, 0.1)
	if !specular {
		t.Fatal("mirror must report specular")
	}
	if pdf != 1 {
		t.Fatalf("expected delta pdf 1, got %v", pdf)
	}
	want := math3.V3(-1, 0, 1).Normalize()
	if !wi.Approx(want, 1e-4) {
		t.Fatalf("reflected direction %v, want %v", wi, want)
	}
}

func TestMixBSDF_BlendsEnergyAtAmountHalf(t *testing.T) {
	n := math3.N3(0, 0, 1)
	a := LambertianBSDF{Normal: n, Albedo: color.Spectrum{R: 1}}
	bb := LambertianBSDF{Normal: n, Albedo: color.Spectrum{B: 1}}
	mix := MixBSDF{A: a, B: bb, Amount: 0.5}
	wo := math3.V3(0, 0, 1)
	wi := math3.V3(0.1, 0, 1).Normalize()
	got := mix.Eval(wo, wi)
	want := a.Eval(wo, wi).Lerp(bb.Eval(wo, wi), 0.5)
	if got != want {
		t.Fatalf("Eval() = %v, want %v", got, want)
	}
}

func TestMetalBSDF_RoughnessOneIsWideLobe(t *testing.T) {
	n := math3.N3(0, 0, 1)
	b := MetalBSDF{Normal: n, Albedo: color.Spectrum{R: 1, G: 1, B: 1}, Roughness: 1}
	wo := math3.V3(0, 0, 1)
	wi := math3.V3(0, 0, 1)
	if b.Eval(wo, wi).IsBlack() {
		t.Fatal("expected nonzero reflectance along the mirror direction")
	}
}
