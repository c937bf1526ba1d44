package color

import (
	"fmt"
	"math"
	"sync"
)

// Mode selects a color-space conversion strategy for an image-map, per
// spec.md §4.3.
type Mode int

const (
	// NOP performs no conversion.
	NOP Mode = iota
	// LUXCORE applies a per-pixel inverse-gamma transform.
	LUXCORE
	// OCIO delegates to an OpenColorIO-compatible transform.
	OCIO
)

// Space is a tagged-variant color-space descriptor. Exactly one of the
// mode-specific fields is meaningful, selected by Mode.
type Space struct {
	Mode Mode

	// Gamma is used when Mode == LUXCORE.
	Gamma float64

	// ConfigName/ColorSpaceName are used when Mode == OCIO.
	ConfigName     string
	ColorSpaceName string
}

// NOPSpace returns the no-op color space.
func NOPSpace() Space { return Space{Mode: NOP} }

// LUXCORESpace returns a per-pixel inverse-gamma color space.
func LUXCORESpace(gamma float64) Space { return Space{Mode: LUXCORE, Gamma: gamma} }

// OCIOSpace returns an OCIO-delegated color space descriptor.
func OCIOSpace(configName, colorSpaceName string) Space {
	return Space{Mode: OCIO, ConfigName: configName, ColorSpaceName: colorSpaceName}
}

// OCIOTransform is implemented by an externally supplied OpenColorIO
// binding. lux carries only the adapter interface: no OCIO binding exists
// anywhere in the example corpus (see DESIGN.md), so OCIO mode is a no-op
// unless the caller registers a transform via RegisterOCIO.
type OCIOTransform interface {
	// Apply converts a single linear-promoted pixel using the named
	// config and color space.
	Apply(configName, colorSpaceName string, px Spectrum) (Spectrum, error)
}

var (
	ocioMu   sync.RWMutex
	ocioImpl OCIOTransform
)

// RegisterOCIO installs the process-wide OCIO transform implementation.
// Passing nil disables OCIO conversion (Convert then behaves as NOP for
// OCIO-tagged spaces).
func RegisterOCIO(t OCIOTransform) {
	ocioMu.Lock()
	defer ocioMu.Unlock()
	ocioImpl = t
}

// Convert applies the color space's conversion to a single pixel. Per
// spec.md §4.3, conversion always promotes to float RGB internally; callers
// owning a narrower storage type demote the result themselves.
func (s Space) Convert(px Spectrum) (Spectrum, error) {
	switch s.Mode {
	case NOP:
		return px, nil
	case LUXCORE:
		return inverseGamma(px, s.Gamma), nil
	case OCIO:
		ocioMu.RLock()
		impl := ocioImpl
		ocioMu.RUnlock()
		if impl == nil {
			return px, nil
		}
		return impl.Apply(s.ConfigName, s.ColorSpaceName, px)
	default:
		return Spectrum{}, fmt.Errorf("color: unknown mode %d", s.Mode)
	}
}

// inverseGamma raises each channel to the power gamma, undoing a 1/gamma
// encoding. Values are not restricted to a byte-quantized domain so no LUT
// applies here directly; byte-backed image maps go through gammaLUT
// (lut.go) instead.
func inverseGamma(px Spectrum, gamma float64) Spectrum {
	if gamma == 1 || gamma == 0 {
		return px
	}
	return Spectrum{
		R: float32(math.Pow(float64(px.R), gamma)),
		G: float32(math.Pow(float64(px.G), gamma)),
		B: float32(math.Pow(float64(px.B), gamma)),
	}
}
