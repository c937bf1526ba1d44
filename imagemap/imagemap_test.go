package imagemap

import (
	"math"
	"testing"

	"github.com/lumenforge/lux/color"
)

func TestTexel_WrapModes(t *testing.T) {
	cases := []struct {
		name          string
		mode          WrapMode
		s, t          int
		w, h          int
		wantX, wantY  int
		wantConstant  bool
		wantWhite     bool
	}{
		{"repeat positive", WrapRepeat, 5, 2, 4, 4, 1, 2, false, false},
		{"repeat negative", WrapRepeat, -1, -1, 4, 4, 3, 3, false, false},
		{"clamp high", WrapClamp, 10, 10, 4, 4, 3, 3, false, false},
		{"clamp low", WrapClamp, -5, -5, 4, 4, 0, 0, false, false},
		{"black out of range", WrapBlack, -1, 0, 4, 4, 0, 0, true, false},
		{"white out of range", WrapWhite, 4, 0, 4, 4, 0, 0, true, true},
		{"in range passthrough", WrapWhite, 2, 2, 4, 4, 2, 2, false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			x, y, constant, white := texel(c.s, c.t, c.w, c.h, c.mode)
			if x != c.wantX || y != c.wantY || constant != c.wantConstant || white != c.wantWhite {
				t.Fatalf("texel(%d,%d) = (%d,%d,%v,%v), want (%d,%d,%v,%v)",
					c.s, c.t, x, y, constant, white, c.wantX, c.wantY, c.wantConstant, c.wantWhite)
			}
		})
	}
}

func TestConvertStorage_RoundTrip(t *testing.T) {
	src := NewFloatStorage(4, 4, 3)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetChannel(x, y, 0, float32(x)/4)
			src.SetChannel(x, y, 1, float32(y)/4)
			src.SetChannel(x, y, 2, 0.5)
		}
	}
	asByte := ConvertStorage(src, Byte)
	back := ConvertStorage(asByte, Float)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			for c := 0; c < 3; c++ {
				got := back.GetChannel(x, y, c)
				want := src.GetChannel(x, y, c)
				if math.Abs(float64(got-want)) > 1.0/255.0+1e-6 {
					t.Fatalf("channel (%d,%d,%d): got %v want %v", x, y, c, got, want)
				}
			}
		}
	}
}

func TestGetSpectrum_BilinearMidpoint(t *testing.T) {
	s := NewFloatStorage(2, 2, 3)
	s.SetChannel(0, 0, 0, 0)
	s.SetChannel(1, 0, 0, 1)
	s.SetChannel(0, 1, 0, 0)
	s.SetChannel(1, 1, 0, 1)
	im := New(s)
	im.Filter = FilterBilinear
	im.Wrap = WrapClamp
	px := im.GetSpectrum(0.5, 0.25)
	if px.R < 0.45 || px.R > 0.55 {
		t.Fatalf("expected ~0.5 midway between texel centers, got %v", px.R)
	}
}

func TestSpace_LUXCORE_AppliedDuringSample(t *testing.T) {
	s := NewFloatStorage(1, 1, 3)
	s.SetChannel(0, 0, 0, 0.5)
	s.SetChannel(0, 0, 1, 0.5)
	s.SetChannel(0, 0, 2, 0.5)
	im := New(s)
	im.Space = color.LUXCORESpace(2.2)
	px := im.GetSpectrum(0.5, 0.5)
	want := float32(math.Pow(0.5, 2.2))
	if math.Abs(float64(px.R-want)) > 1e-4 {
		t.Fatalf("got %v want %v", px.R, want)
	}
}

func TestGetDuv_ConstantImageIsZero(t *testing.T) {
	s := NewFloatStorage(8, 8, 1)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			s.SetChannel(x, y, 0, 0.3)
		}
	}
	im := New(s)
	d := im.GetDuv(0.5, 0.5)
	if !d.DSdu.IsBlack() || !d.DSdv.IsBlack() {
		t.Fatalf("expected zero derivative on constant image, got %+v", d)
	}
}

func TestGenerateMips_SelectsSmallestSufficientLevel(t *testing.T) {
	s := NewFloatStorage(8, 8, 1)
	im := New(s)
	GenerateMips(im)
	lvl := im.selectLevel(3, 3)
	if lvl.Width() < 3 || lvl.Height() < 3 {
		t.Fatalf("selected level %dx%d does not satisfy hint 3x3", lvl.Width(), lvl.Height())
	}
	if lvl.Width() > 4 || lvl.Height() > 4 {
		t.Fatalf("selected level %dx%d is not the smallest sufficient one", lvl.Width(), lvl.Height())
	}
}

func TestMapCache_GetOrLoad(t *testing.T) {
	c := NewMapCache(4)
	calls := 0
	loader := func() (*ImageMap, error) {
		calls++
		return New(NewByteStorage(1, 1, 1)), nil
	}
	if _, err := c.GetOrLoad("a", loader); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetOrLoad("a", loader); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("loader called %d times, want 1", calls)
	}
}

func TestResizeForBudget_Shrinks(t *testing.T) {
	s := NewByteStorage(64, 64, 4)
	out := ResizeForBudget(s, 64*64*4/4)
	if out.Width()*out.Height()*out.Format().BytesPerPixel() > 64*64*4/4 {
		t.Fatalf("resize did not meet budget: %dx%d", out.Width(), out.Height())
	}
}
