package film

import "math"

// Stage transforms an RGB(A) raster in place. buf is width*height*comps
// float32 linear-light values; comps is 3 or 4. Grounded on the teacher's
// render/layers.go Composite: an ordered list of operations applied to a
// pixel buffer, generalized from "blend layers" to "process radiance".
type Stage interface {
	Apply(buf []float32, width, height, comps int)
}

// Pipeline is spec.md §4.5's ordered imaging-pipeline stage chain:
// "tone-map, gamma-correction, contour-line, bloom, convolution, OIDN
// denoiser adapter, ...". Stages run in list order, single-threaded per
// pipeline (different film indices may run their pipelines in parallel,
// left to the caller).
type Pipeline struct {
	stages []Stage
}

// NewPipeline returns a pipeline running stages in order.
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: append([]Stage(nil), stages...)}
}

// DefaultPipeline is spec.md §4.5's default: "auto-linear-tone-map ->
// gamma-correction".
func DefaultPipeline() *Pipeline {
	return NewPipeline(AutoLinearToneMap{}, GammaCorrect{Gamma: 2.2})
}

// Run applies every stage in order to buf.
func (p *Pipeline) Run(buf []float32, width, height, comps int) {
	if p == nil {
		return
	}
	for _, s := range p.stages {
		s.Apply(buf, width, height, comps)
	}
}

// AutoLinearToneMap rescales the buffer by a single factor chosen so the
// brightest pixel (by luminance) maps to 1.0, a simple auto-exposure tone
// map. Degenerates to a no-op on an all-black buffer.
type AutoLinearToneMap struct{}

func (AutoLinearToneMap) Apply(buf []float32, width, height, comps int) {
	var maxLum float32
	n := width * height
	for i := 0; i < n; i++ {
		base := i * comps
		lum := 0.2126*buf[base] + 0.7152*buf[base+1] + 0.0722*buf[base+2]
		if lum > maxLum {
			maxLum = lum
		}
	}
	if maxLum <= 0 {
		return
	}
	scale := 1 / maxLum
	colorComps := comps
	if comps == 4 {
		colorComps = 3 // alpha passes through untouched
	}
	for i := 0; i < n; i++ {
		base := i * comps
		for c := 0; c < colorComps; c++ {
			buf[base+c] *= scale
		}
	}
}

// GammaCorrect raises every color component to 1/Gamma, converting linear
// radiance to display-referred values.
type GammaCorrect struct {
	Gamma float32
}

func (g GammaCorrect) Apply(buf []float32, width, height, comps int) {
	gamma := g.Gamma
	if gamma <= 0 {
		gamma = 2.2
	}
	inv := 1 / gamma
	colorComps := comps
	if comps == 4 {
		colorComps = 3
	}
	n := width * height
	for i := 0; i < n; i++ {
		base := i * comps
		for c := 0; c < colorComps; c++ {
			v := buf[base+c]
			if v <= 0 {
				buf[base+c] = 0
				continue
			}
			buf[base+c] = float32(math.Pow(float64(v), float64(inv)))
		}
	}
}

// ContourLine quantizes luminance into Levels bands and darkens pixels that
// sit on a band boundary, producing cartoon-style contour lines.
type ContourLine struct {
	Levels int
}

func (c ContourLine) Apply(buf []float32, width, height, comps int) {
	levels := c.Levels
	if levels < 2 {
		levels = 8
	}
	colorComps := comps
	if comps == 4 {
		colorComps = 3
	}
	n := width * height
	for i := 0; i < n; i++ {
		base := i * comps
		lum := 0.2126*buf[base] + 0.7152*buf[base+1] + 0.0722*buf[base+2]
		band := lum * float32(levels)
		frac := band - float32(math.Floor(float64(band)))
		if frac < 0.08 {
			for c := 0; c < colorComps; c++ {
				buf[base+c] *= 0.2
			}
		}
	}
}

// Bloom adds a (2*Radius+1)-square box blur of the over-bright pixels
// (those above Threshold) back onto the image, scaled by Intensity.
type Bloom struct {
	Threshold float32
	Intensity float32
	Radius    int
}

func (b Bloom) Apply(buf []float32, width, height, comps int) {
	threshold := b.Threshold
	if threshold <= 0 {
		threshold = 1
	}
	intensity := b.Intensity
	if intensity <= 0 {
		intensity = 0.25
	}
	radius := b.Radius
	if radius <= 0 {
		radius = 2
	}
	colorComps := comps
	if comps == 4 {
		colorComps = 3
	}

	bright := make([]float32, width*height*colorComps)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			base := (y*width + x) * comps
			lum := 0.2126*buf[base] + 0.7152*buf[base+1] + 0.0722*buf[base+2]
			if lum <= threshold {
				continue
			}
			bb := (y*width + x) * colorComps
			for c := 0; c < colorComps; c++ {
				bright[bb+c] = buf[base+c]
			}
		}
	}

	blurred := make([]float32, len(bright))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum [4]float32
			var count float32
			for dy := -radius; dy <= radius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= height {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= width {
						continue
					}
					nb := (ny*width + nx) * colorComps
					for c := 0; c < colorComps; c++ {
						sum[c] += bright[nb+c]
					}
					count++
				}
			}
			bb := (y*width + x) * colorComps
			for c := 0; c < colorComps; c++ {
				blurred[bb+c] = sum[c] / count
			}
		}
	}

	n := width * height
	for i := 0; i < n; i++ {
		base := i * comps
		bb := i * colorComps
		for c := 0; c < colorComps; c++ {
			buf[base+c] += blurred[bb+c] * intensity
		}
	}
}

// Convolution applies a normalized NxN kernel (e.g. sharpen, edge-detect)
// to each color component independently.
type Convolution struct {
	Kernel [][]float32
}

func (k Convolution) Apply(buf []float32, width, height, comps int) {
	kh := len(k.Kernel)
	if kh == 0 {
		return
	}
	kw := len(k.Kernel[0])
	if kw == 0 {
		return
	}
	var sum float32
	for _, row := range k.Kernel {
		for _, v := range row {
			sum += v
		}
	}
	if sum == 0 {
		sum = 1
	}
	colorComps := comps
	if comps == 4 {
		colorComps = 3
	}
	src := append([]float32(nil), buf...)
	halfH, halfW := kh/2, kw/2
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var acc [4]float32
			for ky := 0; ky < kh; ky++ {
				ny := y + ky - halfH
				if ny < 0 || ny >= height {
					continue
				}
				for kx := 0; kx < kw; kx++ {
					nx := x + kx - halfW
					if nx < 0 || nx >= width {
						continue
					}
					w := k.Kernel[ky][kx]
					nb := (ny*width + nx) * comps
					for c := 0; c < colorComps; c++ {
						acc[c] += src[nb+c] * w
					}
				}
			}
			base := (y*width + x) * comps
			for c := 0; c < colorComps; c++ {
				buf[base+c] = acc[c] / sum
			}
		}
	}
}

// OIDNAdapter is a stub stage representing spec.md §4.5's "OIDN denoiser
// adapter" slot. No OIDN binding exists in this module (see DESIGN.md); when
// Denoise is unset it is a no-op pass-through so a configured pipeline that
// names it still runs deterministically.
type OIDNAdapter struct {
	Denoise func(buf []float32, width, height, comps int)
}

func (o OIDNAdapter) Apply(buf []float32, width, height, comps int) {
	if o.Denoise != nil {
		o.Denoise(buf, width, height, comps)
	}
}
