package imagemap

import (
	stdimage "image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// ResizePolicy governs how an ImageMap's on-disk resolution is reduced
// before use, per spec.md §4.3 "Resize policies".
type ResizePolicy int

const (
	// ResizeNone keeps the image at its native resolution.
	ResizeNone ResizePolicy = iota
	// ResizeMemoryBudget downsamples so the full-resolution level fits
	// within a caller-supplied byte budget.
	ResizeMemoryBudget
	// ResizeMinUse downsamples to the smallest size that still covers the
	// largest mip hint ever requested of this map (approximated here by a
	// caller-supplied target size, since usage is tracked by the caller).
	ResizeMinUse
)

// Resize rescales s to exactly (w, h) using a Catmull-Rom kernel, adapted
// from the teacher's text/draw_emoji.go emoji-bitmap scaling
// (xdraw.CatmullRom.Scale over an image.Image/draw.Image pair).
func Resize(s Storage, w, h int) Storage {
	if w == s.Width() && h == s.Height() {
		return s.Clone()
	}
	src := toRGBA(s)
	dst := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return fromRGBA(dst, s.Format())
}

// ResizeForBudget returns s, or a downsampled copy, such that the pixel
// data occupies at most maxBytes.
func ResizeForBudget(s Storage, maxBytes int) Storage {
	bpp := s.Format().BytesPerPixel()
	w, h := s.Width(), s.Height()
	for w*h*bpp > maxBytes && (w > 1 || h > 1) {
		w = max(1, w/2)
		h = max(1, h/2)
	}
	if w == s.Width() && h == s.Height() {
		return s
	}
	return Resize(s, w, h)
}

func toRGBA(s Storage) *stdimage.RGBA {
	w, h, ch := s.Width(), s.Height(), s.Format().Channels
	img := stdimage.NewRGBA(stdimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, a := channelsToRGBA(s, x, y, ch)
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: a})
		}
	}
	return img
}

func channelsToRGBA(s Storage, x, y, ch int) (r, g, b, a uint8) {
	switch ch {
	case 1:
		v := quantizeByte(s.GetChannel(x, y, 0))
		return v, v, v, 255
	case 2:
		v := quantizeByte(s.GetChannel(x, y, 0))
		return v, v, v, quantizeByte(s.GetChannel(x, y, 1))
	case 3:
		return quantizeByte(s.GetChannel(x, y, 0)), quantizeByte(s.GetChannel(x, y, 1)), quantizeByte(s.GetChannel(x, y, 2)), 255
	default:
		return quantizeByte(s.GetChannel(x, y, 0)), quantizeByte(s.GetChannel(x, y, 1)), quantizeByte(s.GetChannel(x, y, 2)), quantizeByte(s.GetChannel(x, y, 3))
	}
}

func fromRGBA(img *stdimage.RGBA, f Format) Storage {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := NewStorage(f, w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
			switch f.Channels {
			case 1:
				dst.SetChannel(x, y, 0, float32(c.R)/255.0)
			case 2:
				dst.SetChannel(x, y, 0, float32(c.R)/255.0)
				dst.SetChannel(x, y, 1, float32(c.A)/255.0)
			case 3:
				dst.SetChannel(x, y, 0, float32(c.R)/255.0)
				dst.SetChannel(x, y, 1, float32(c.G)/255.0)
				dst.SetChannel(x, y, 2, float32(c.B)/255.0)
			default:
				dst.SetChannel(x, y, 0, float32(c.R)/255.0)
				dst.SetChannel(x, y, 1, float32(c.G)/255.0)
				dst.SetChannel(x, y, 2, float32(c.B)/255.0)
				dst.SetChannel(x, y, 3, float32(c.A)/255.0)
			}
		}
	}
	return dst
}
