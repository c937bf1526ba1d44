// Package imagemap implements the image-map store and pipeline of
// spec.md §4.3: typed 2-D pixel arrays (byte/half/float x 1..4 channels),
// wrap/filter policies, mip selection by hint, channel reduction and
// pluggable resize policies.
//
// Storage layout and format metadata are adapted from the teacher's
// internal/image package (Format/FormatInfo table, ImageBuf), generalized
// from a fixed set of RGBA8-family formats to the spec's two independent
// axes (element type x channel count).
package imagemap

import "fmt"

// ElementType is the per-channel storage precision.
type ElementType uint8

const (
	Byte ElementType = iota
	Half
	Float
)

func (e ElementType) String() string {
	switch e {
	case Byte:
		return "byte"
	case Half:
		return "half"
	case Float:
		return "float"
	default:
		return "unknown"
	}
}

// BytesPerElement returns the storage width of one channel value.
func (e ElementType) BytesPerElement() int {
	switch e {
	case Byte:
		return 1
	case Half:
		return 2
	case Float:
		return 4
	default:
		return 0
	}
}

// Format fully describes a pixel's storage layout: element precision and
// channel count (1..4), matching spec.md §3's "storage variants:
// {byte,half,float} x {1,2,3,4} channels".
type Format struct {
	Elem     ElementType
	Channels int
}

// NewFormat validates and constructs a Format.
func NewFormat(elem ElementType, channels int) (Format, error) {
	if channels < 1 || channels > 4 {
		return Format{}, fmt.Errorf("imagemap: channel count %d out of range [1,4]", channels)
	}
	return Format{Elem: elem, Channels: channels}, nil
}

// BytesPerPixel returns the number of bytes occupied by one pixel.
func (f Format) BytesPerPixel() int { return f.Elem.BytesPerElement() * f.Channels }

// RowBytes returns the number of bytes in one row of width pixels.
func (f Format) RowBytes(width int) int { return f.BytesPerPixel() * width }

// String renders a format like "float4" or "byte1".
func (f Format) String() string { return fmt.Sprintf("%s%d", f.Elem, f.Channels) }
