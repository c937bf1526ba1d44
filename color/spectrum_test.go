package color

import "testing"

func TestSpectrum_Y(t *testing.T) {
	white := Spectrum{1, 1, 1}
	if y := white.Y(); y < 0.999 || y > 1.001 {
		t.Errorf("Y() of white = %v, want ~1", y)
	}
}

func TestSpectrum_HasNaN(t *testing.T) {
	ok := Spectrum{1, 2, 3}
	if ok.HasNaN() {
		t.Errorf("HasNaN() = true for finite spectrum")
	}
	bad := Spectrum{R: float32(nan())}
	if !bad.HasNaN() {
		t.Errorf("HasNaN() = false for NaN spectrum")
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestSpectrum_Clamp(t *testing.T) {
	s := Spectrum{-1, 2, 5}
	got := s.Clamp(3)
	if want := (Spectrum{0, 2, 3}); got != want {
		t.Errorf("Clamp(3) = %v, want %v", got, want)
	}
}
