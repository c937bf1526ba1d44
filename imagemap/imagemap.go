package imagemap

import (
	"math"

	"github.com/lumenforge/lux/color"
)

// FilterMode selects point or bilinear texel reconstruction.
type FilterMode int

const (
	FilterNearest FilterMode = iota
	FilterBilinear
)

// ChannelSelect reduces a multi-channel lookup to a single scalar, per
// spec.md §4.3 "Channel selection".
type ChannelSelect int

const (
	ChannelMean ChannelSelect = iota // weighted-mean luminance
	Channel0
	Channel1
	Channel2
	Channel3
)

// ImageMap is a pixel store plus its computed spectrum mean and luminance
// mean (spec.md §3). A map may hold several precomputed resolutions
// (levels), the smallest of which satisfies the mip-selection policy in
// §4.3.
type ImageMap struct {
	levels []Storage // index 0 = highest resolution
	Wrap   WrapMode
	Filter FilterMode
	Space  color.Space

	meanSpectrum   color.Spectrum
	meanLuminance  float32
	meansComputed  bool
}

// New constructs a single-level ImageMap over storage s.
func New(s Storage) *ImageMap {
	im := &ImageMap{levels: []Storage{s}, Wrap: WrapClamp, Filter: FilterBilinear, Space: color.NOPSpace()}
	im.computeMeans()
	return im
}

// AddMipLevel appends a precomputed smaller level. Levels must be added in
// decreasing size order; GenerateMips (mip.go) does this automatically.
func (im *ImageMap) AddMipLevel(s Storage) { im.levels = append(im.levels, s) }

// Storage returns the full-resolution backing storage.
func (im *ImageMap) Storage() Storage { return im.levels[0] }

// Width/Height report the full-resolution dimensions.
func (im *ImageMap) Width() int  { return im.levels[0].Width() }
func (im *ImageMap) Height() int { return im.levels[0].Height() }

func (im *ImageMap) computeMeans() {
	s := im.levels[0]
	w, h, ch := s.Width(), s.Height(), s.Format().Channels
	if w == 0 || h == 0 {
		im.meansComputed = true
		return
	}
	var sum color.Spectrum
	var lumSum float32
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := readSpectrum(s, x, y, ch)
			sum = sum.Add(px)
			lumSum += px.Y()
		}
	}
	n := float32(w * h)
	im.meanSpectrum = sum.Scale(1 / n)
	im.meanLuminance = lumSum / n
	im.meansComputed = true
}

// MeanSpectrum returns the precomputed average pixel value.
func (im *ImageMap) MeanSpectrum() color.Spectrum { return im.meanSpectrum }

// MeanLuminance returns the precomputed average luminance.
func (im *ImageMap) MeanLuminance() float32 { return im.meanLuminance }

func readSpectrum(s Storage, x, y, ch int) color.Spectrum {
	switch ch {
	case 1:
		v := s.GetChannel(x, y, 0)
		return color.Gray(v)
	default:
		return color.Spectrum{
			R: s.GetChannel(x, y, 0),
			G: s.GetChannel(x, y, 1),
			B: s.GetChannel(x, y, 2),
		}
	}
}

// selectLevel implements the mip-selection policy of spec.md §4.3: "pick
// the smallest stored level whose dimensions both meet or exceed the hint;
// else the largest available."
func (im *ImageMap) selectLevel(widthHint, heightHint int) Storage {
	best := im.levels[0]
	bestArea := best.Width() * best.Height()
	found := false
	for _, lvl := range im.levels {
		if lvl.Width() >= widthHint && lvl.Height() >= heightHint {
			area := lvl.Width() * lvl.Height()
			if !found || area < bestArea {
				best, bestArea, found = lvl, area, true
			}
		}
	}
	if found {
		return best
	}
	// Fallback: largest available.
	largest := im.levels[0]
	largestArea := largest.Width() * largest.Height()
	for _, lvl := range im.levels[1:] {
		area := lvl.Width() * lvl.Height()
		if area > largestArea {
			largest, largestArea = lvl, area
		}
	}
	return largest
}

// uvToTexel maps continuous (u, v) texture coordinates to the fractional
// texel grid for the given storage.
func uvToTexel(s Storage, u, v float32) (fx, fy float32) {
	return u*float32(s.Width()), v*float32(s.Height())
}

func (im *ImageMap) fetchRaw(s Storage, sx, sy int) color.Spectrum {
	x, y, constant, isWhite := texel(sx, sy, s.Width(), s.Height(), im.Wrap)
	if constant {
		if isWhite {
			return color.Spectrum{R: 1, G: 1, B: 1}
		}
		return color.Spectrum{}
	}
	return readSpectrum(s, x, y, s.Format().Channels)
}

func (im *ImageMap) fetchAlphaRaw(s Storage, sx, sy int) float32 {
	ch := s.Format().Channels
	if ch != 2 && ch != 4 {
		return 1
	}
	x, y, constant, isWhite := texel(sx, sy, s.Width(), s.Height(), im.Wrap)
	if constant {
		if isWhite {
			return 1
		}
		return 0
	}
	return s.GetChannel(x, y, ch-1)
}

func (im *ImageMap) sample(s Storage, u, v float32, fetch func(Storage, int, int) float32) float32 {
	fx, fy := uvToTexel(s, u, v)
	if im.Filter == FilterNearest {
		return fetch(s, int(math.Floor(float64(fx))), int(math.Floor(float64(fy))))
	}
	// Bilinear, texel centers at half-integers (teacher precedent:
	// internal/image/interp.go SampleBilinear's fx-0.5 convention).
	fx -= 0.5
	fy -= 0.5
	x0 := int(math.Floor(float64(fx)))
	y0 := int(math.Floor(float64(fy)))
	tx := fx - float32(x0)
	ty := fy - float32(y0)
	v00 := fetch(s, x0, y0)
	v10 := fetch(s, x0+1, y0)
	v01 := fetch(s, x0, y0+1)
	v11 := fetch(s, x0+1, y0+1)
	top := v00 + (v10-v00)*tx
	bot := v01 + (v11-v01)*tx
	return top + (bot-top)*ty
}

// GetSpectrum samples the color channels at (u, v), applying the map's
// color space conversion.
func (im *ImageMap) GetSpectrum(u, v float32) color.Spectrum {
	return im.GetSpectrumMip(u, v, im.Width(), im.Height())
}

// GetSpectrumMip is GetSpectrum with an explicit mip hint.
func (im *ImageMap) GetSpectrumMip(u, v float32, widthHint, heightHint int) color.Spectrum {
	s := im.selectLevel(widthHint, heightHint)
	r := im.sample(s, u, v, func(s Storage, x, y int) float32 { return im.fetchRaw(s, x, y).R })
	g := im.sample(s, u, v, func(s Storage, x, y int) float32 { return im.fetchRaw(s, x, y).G })
	b := im.sample(s, u, v, func(s Storage, x, y int) float32 { return im.fetchRaw(s, x, y).B })
	px := color.Spectrum{R: r, G: g, B: b}
	if converted, err := im.Space.Convert(px); err == nil {
		return converted
	}
	return px
}

// GetFloat samples a single scalar, reducing multi-channel pixels per sel.
func (im *ImageMap) GetFloat(u, v float32, sel ChannelSelect) float32 {
	s := im.selectLevel(im.Width(), im.Height())
	ch := s.Format().Channels
	idx := 0
	switch sel {
	case Channel0:
		idx = 0
	case Channel1:
		idx = min(1, ch-1)
	case Channel2:
		idx = min(2, ch-1)
	case Channel3:
		idx = min(3, ch-1)
	case ChannelMean:
		px := im.GetSpectrum(u, v)
		return px.Y()
	}
	return im.sample(s, u, v, func(s Storage, x, y int) float32 {
		xx, yy, constant, isWhite := texel(x, y, s.Width(), s.Height(), im.Wrap)
		if constant {
			if isWhite {
				return 1
			}
			return 0
		}
		return s.GetChannel(xx, yy, idx)
	})
}

// GetAlpha samples the alpha channel (1 for formats without alpha).
func (im *ImageMap) GetAlpha(u, v float32) float32 {
	s := im.selectLevel(im.Width(), im.Height())
	return im.sample(s, u, v, im.fetchAlphaRaw)
}

// Duv holds the central-difference partial derivatives used for bump and
// normal perturbation (spec.md §4.3 "GetDuv").
type Duv struct {
	DSdu, DSdv color.Spectrum
}

// GetDuv computes central-difference partials at (u, v) with texel step
// size 1/width, 1/height.
func (im *ImageMap) GetDuv(u, v float32) Duv {
	s := im.selectLevel(im.Width(), im.Height())
	du := 1.0 / float32(s.Width())
	dv := 1.0 / float32(s.Height())
	px := im.GetSpectrum(u+du, v)
	mx := im.GetSpectrum(u-du, v)
	py := im.GetSpectrum(u, v+dv)
	my := im.GetSpectrum(u, v-dv)
	return Duv{
		DSdu: px.Sub(mx).Scale(0.5 / du),
		DSdv: py.Sub(my).Scale(0.5 / dv),
	}
}
