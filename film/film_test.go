package film

import "testing"

func TestFilm_SplatAccumulatesWeightedAverage(t *testing.T) {
	f := New(2, 2)
	f.Splat(0, 0, RGB, []float32{1, 0, 0}, 1)
	f.Splat(0, 0, RGB, []float32{0, 1, 0}, 1)
	out, err := f.Output(RGB, false)
	if err != nil {
		t.Fatal(err)
	}
	got := out[0:3]
	if got[0] != 0.5 || got[1] != 0.5 || got[2] != 0 {
		t.Fatalf("got %v, want [0.5 0.5 0]", got)
	}
}

func TestFilm_SplatOutsideSubregionIsDropped(t *testing.T) {
	f := New(4, 4)
	f.SetSubregion(1, 1, 3, 3)
	f.Splat(0, 0, RGB, []float32{1, 1, 1}, 1)
	out, _ := f.Output(RGB, false)
	if out[0] != 0 || out[1] != 0 || out[2] != 0 {
		t.Fatalf("splat outside subregion should be dropped, got %v", out[:3])
	}
}

func TestFilm_ClearZeroesAllChannels(t *testing.T) {
	f := New(1, 1, Alpha)
	f.Splat(0, 0, RGB, []float32{1, 1, 1}, 1)
	f.Splat(0, 0, Alpha, []float32{1}, 1)
	f.Clear()
	rgb, _ := f.Output(RGB, false)
	alpha, _ := f.Output(Alpha, false)
	if rgb[0] != 0 || alpha[0] != 0 {
		t.Fatalf("expected zeroed buffers after Clear, got rgb=%v alpha=%v", rgb, alpha)
	}
}

func TestFilm_AddFilmMergesWeightedSums(t *testing.T) {
	a := New(1, 1)
	b := New(1, 1)
	a.Splat(0, 0, RGB, []float32{1, 0, 0}, 1)
	b.Splat(0, 0, RGB, []float32{0, 1, 0}, 1)
	if err := a.AddFilm(b, [4]int{0, 0, 1, 1}, 0, 0); err != nil {
		t.Fatal(err)
	}
	out, _ := a.Output(RGB, false)
	if out[0] != 0.5 || out[1] != 0.5 {
		t.Fatalf("got %v, want an equal blend of both films' contributions", out[:3])
	}
}

func TestFilm_OutputRejectsDisabledChannel(t *testing.T) {
	f := New(1, 1)
	if _, err := f.Output(Depth, false); err == nil {
		t.Fatal("expected an error for a channel never enabled")
	}
}

func TestFilm_WeightlessChannelResolvesToRawSum(t *testing.T) {
	f := New(1, 1, Depth)
	f.Splat(0, 0, Depth, []float32{5}, 1)
	f.Splat(0, 0, Depth, []float32{3}, 1)
	out, _ := f.Output(Depth, false)
	if out[0] != 8 {
		t.Fatalf("got %v, want raw sum 8 (weightless channel has no average)", out[0])
	}
}
