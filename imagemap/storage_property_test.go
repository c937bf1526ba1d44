package imagemap

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

// TestByteStorage_SetGetChannelRoundTripsWithinQuantizationError is a
// property check for spec.md §8: writing a channel value in [0, 1] to
// byteStorage and reading it back must never differ by more than one
// 8-bit quantization step.
func TestByteStorage_SetGetChannelRoundTripsWithinQuantizationError(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		w := rapid.IntRange(1, 8).Draw(t, "w")
		h := rapid.IntRange(1, 8).Draw(t, "h")
		ch := rapid.IntRange(1, 4).Draw(t, "ch")
		x := rapid.IntRange(0, w-1).Draw(t, "x")
		y := rapid.IntRange(0, h-1).Draw(t, "y")
		c := rapid.IntRange(0, ch-1).Draw(t, "c")
		v := rapid.Float32Range(0, 1).Draw(t, "v")

		s := NewByteStorage(w, h, ch)
		s.SetChannel(x, y, c, v)
		got := s.GetChannel(x, y, c)

		const quantStep = 1.0 / 255.0
		if diff := math.Abs(float64(got - v)); diff > quantStep {
			t.Fatalf("GetChannel(%v) = %v, want within %v of %v", c, got, quantStep, v)
		}
	})
}
