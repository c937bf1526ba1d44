package color

import (
	"math"
	"sync"
)

// gammaLUT holds a precomputed byte->linear inverse-gamma table for one
// gamma value, mirroring the teacher's internal/color/lut.go fixed sRGB
// table but generalized to an arbitrary exponent since LUXCORE(gamma) is
// configured per image-map rather than fixed at 2.2/2.4.
type gammaLUT struct {
	gamma float64
	table [256]float32
}

func buildGammaLUT(gamma float64) *gammaLUT {
	lut := &gammaLUT{gamma: gamma}
	exp := 1.0
	if gamma != 0 {
		exp = gamma
	}
	for i := 0; i < 256; i++ {
		s := float64(i) / 255.0
		lut.table[i] = float32(math.Pow(s, exp))
	}
	return lut
}

var gammaLUTCache sync.Map // float64 -> *gammaLUT

func lutFor(gamma float64) *gammaLUT {
	if v, ok := gammaLUTCache.Load(gamma); ok {
		return v.(*gammaLUT)
	}
	lut := buildGammaLUT(gamma)
	actual, _ := gammaLUTCache.LoadOrStore(gamma, lut)
	return actual.(*gammaLUT)
}

// InverseGammaByte converts a single byte-quantized sRGB-like component to
// linear float32 via a cached lookup table, O(1) per pixel the way
// SRGBToLinearFast is in the teacher.
func InverseGammaByte(s uint8, gamma float64) float32 {
	return lutFor(gamma).table[s]
}

// InverseGammaSpectrumByte converts a byte-packed RGB triplet in one call.
func InverseGammaSpectrumByte(r, g, b uint8, gamma float64) Spectrum {
	lut := lutFor(gamma)
	return Spectrum{lut.table[r], lut.table[g], lut.table[b]}
}
