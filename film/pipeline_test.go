package film

import "testing"

func TestDefaultPipeline_GammaCorrectsAfterToneMap(t *testing.T) {
	buf := []float32{0.5, 0.5, 0.5}
	p := DefaultPipeline()
	p.Run(buf, 1, 1, 3)
	// tone map scales the single pixel to 1.0 luminance-max, then gamma
	// 2.2 lifts 1.0 to 1.0 (a fixed point), so the result should stay 1.
	for _, v := range buf {
		if v < 0.99 || v > 1.01 {
			t.Fatalf("got %v, want ~1.0", buf)
		}
	}
}

func TestGammaCorrect_LeavesAlphaUntouched(t *testing.T) {
	buf := []float32{1, 1, 1, 0.5}
	GammaCorrect{Gamma: 2.2}.Apply(buf, 1, 1, 4)
	if buf[3] != 0.5 {
		t.Fatalf("alpha should pass through unchanged, got %v", buf[3])
	}
}

func TestFilm_SetPipelineSwapsAtomically(t *testing.T) {
	f := New(1, 1)
	custom := NewPipeline(GammaCorrect{Gamma: 1})
	f.SetPipeline(custom)
	if f.Pipeline() != custom {
		t.Fatal("expected SetPipeline to replace the active pipeline")
	}
}

func TestOIDNAdapter_NilDenoiseIsNoOp(t *testing.T) {
	buf := []float32{0.25, 0.25, 0.25}
	OIDNAdapter{}.Apply(buf, 1, 1, 3)
	if buf[0] != 0.25 {
		t.Fatalf("expected unstubbed OIDNAdapter to be a no-op, got %v", buf)
	}
}

func TestConvolution_IdentityKernelPreservesImage(t *testing.T) {
	buf := []float32{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0, 1.1, 1.2}
	want := append([]float32(nil), buf...)
	k := Convolution{Kernel: [][]float32{{1}}}
	k.Apply(buf, 2, 2, 3)
	for i := range buf {
		if diff := buf[i] - want[i]; diff > 1e-5 || diff < -1e-5 {
			t.Fatalf("identity kernel changed pixel %d: got %v want %v", i, buf[i], want[i])
		}
	}
}
