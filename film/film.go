package film

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// buffer is one channel's {sum, weight} accumulator, spec.md §4.5: "a 2-D
// buffer of {sum, weight} pairs (or just sum for weightless channels)".
type buffer struct {
	sum    []float32 // width*height*components
	weight []float32 // width*height, nil if the channel has no weight
}

func newBuffer(width, height int, ch Channel) buffer {
	b := buffer{sum: make([]float32, width*height*ch.Components())}
	if ch.HasWeight() {
		b.weight = make([]float32, width*height)
	}
	return b
}

func (b buffer) clear() {
	for i := range b.sum {
		b.sum[i] = 0
	}
	for i := range b.weight {
		b.weight[i] = 0
	}
}

// Film is spec.md §4.5's accumulation buffer: a width x height matrix of
// per-pixel {sum, weight} accumulators, one per enabled channel. Splat is
// the sole write path used by a sampler/worker; AddFilm merges one film's
// contributions into another, the weighted-sum algebra the concurrency
// model (spec.md §5) uses to fold per-thread films into the shared film at
// tile completion instead of contending on per-pixel atomics.
type Film struct {
	mu     sync.Mutex
	width  int
	height int
	// subX0, subY0, subX1, subY1 bound the active subregion
	// (film.subregion property, spec.md §6); splats outside it are dropped.
	subX0, subY0, subX1, subY1 int

	channels map[Channel]buffer
	order    []Channel // enabled channels, in the order they were enabled

	pipeline atomic.Pointer[Pipeline] // swapped atomically (see pipeline.go)
}

// New creates a film of the given dimensions with the given channels
// enabled. RGB is always enabled; it is the pipeline's input. Output for a
// channel that was never enabled returns an error.
func New(width, height int, channels ...Channel) *Film {
	f := &Film{
		width:    width,
		height:   height,
		subX0:    0,
		subY0:    0,
		subX1:    width,
		subY1:    height,
		channels: make(map[Channel]buffer),
	}
	f.enable(RGB)
	for _, ch := range channels {
		f.enable(ch)
	}
	f.pipeline.Store(DefaultPipeline())
	return f
}

func (f *Film) enable(ch Channel) {
	if !ch.valid() {
		return
	}
	if _, ok := f.channels[ch]; ok {
		return
	}
	f.channels[ch] = newBuffer(f.width, f.height, ch)
	f.order = append(f.order, ch)
}

// SetSubregion restricts splats and output to the rectangle
// [x0,y0)-[x1,y1), spec.md §6's film.subregion property.
func (f *Film) SetSubregion(x0, y0, x1, y1 int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subX0, f.subY0, f.subX1, f.subY1 = x0, y0, x1, y1
}

// Width and Height return the film's full pixel dimensions.
func (f *Film) Width() int  { return f.width }
func (f *Film) Height() int { return f.height }

// HasChannel reports whether ch is enabled on this film.
func (f *Film) HasChannel(ch Channel) bool {
	_, ok := f.channels[ch]
	return ok
}

// Clear zeroes every enabled channel's buffers atomically with respect to
// Splat/AddFilm (spec.md §4.5's "clear() zeroes all buffers atomically").
func (f *Film) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.order {
		f.channels[ch].clear()
	}
}

// Splat adds one weighted sample to (x, y) on channel ch: the sole write
// path a sampler uses, per spec.md §4.5. value must carry ch.Components()
// elements; extra elements are ignored, missing ones are treated as zero.
func (f *Film) Splat(x, y int, ch Channel, value []float32, weight float32) {
	if x < f.subX0 || x >= f.subX1 || y < f.subY0 || y >= f.subY1 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.channels[ch]
	if !ok {
		return
	}
	n := ch.Components()
	base := (y*f.width + x) * n
	for i := 0; i < n && i < len(value); i++ {
		b.sum[base+i] += value[i] * weight
	}
	if b.weight != nil {
		b.weight[y*f.width+x] += weight
	}
}

// AddFilm merges src's contributions into f, optionally restricted to a
// source rectangle copied to a destination origin. Only channels present
// on both films participate, per spec.md §9's "many-to-many add film
// merging" and its weighted-sum algebra: sums and weights simply add.
func (f *Film) AddFilm(src *Film, srcRect [4]int, dstX, dstY int) error {
	if src == nil {
		return fmt.Errorf("film: AddFilm: nil source")
	}
	sx0, sy0, sx1, sy1 := srcRect[0], srcRect[1], srcRect[2], srcRect[3]
	if sx1 <= sx0 || sy1 <= sy0 {
		sx0, sy0, sx1, sy1 = 0, 0, src.width, src.height
	}
	src.mu.Lock()
	defer src.mu.Unlock()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range src.order {
		db, ok := f.channels[ch]
		if !ok {
			continue
		}
		sb := src.channels[ch]
		n := ch.Components()
		for sy := sy0; sy < sy1; sy++ {
			dy := dstY + (sy - sy0)
			if dy < 0 || dy >= f.height {
				continue
			}
			for sx := sx0; sx < sx1; sx++ {
				dx := dstX + (sx - sx0)
				if dx < 0 || dx >= f.width {
					continue
				}
				sBase := (sy*src.width + sx) * n
				dBase := (dy*f.width + dx) * n
				for i := 0; i < n; i++ {
					db.sum[dBase+i] += sb.sum[sBase+i]
				}
				if db.weight != nil && sb.weight != nil {
					db.weight[dy*f.width+dx] += sb.weight[sy*src.width+sx]
				}
			}
		}
	}
	return nil
}

// resolved returns the average value of one channel pixel: sum/weight when
// the channel carries a weight (and weight > 0), else the raw sum.
func (f *Film) resolved(ch Channel, x, y int) [4]float32 {
	var out [4]float32
	b, ok := f.channels[ch]
	if !ok {
		return out
	}
	n := ch.Components()
	base := (y*f.width + x) * n
	w := float32(1)
	if b.weight != nil {
		w = b.weight[y*f.width+x]
		if w <= 0 {
			return out
		}
	}
	for i := 0; i < n; i++ {
		out[i] = b.sum[base+i] / w
	}
	return out
}

// Output materializes channel ch as a flat float32 raster
// (width*height*components), spec.md §4.5's getOutput. When runPipeline is
// true and ch is RGB or RGBA, the active imaging pipeline runs first
// (RGB_IMAGEPIPELINE / RGBA_IMAGEPIPELINE of spec.md §6); runPipeline is a
// no-op for every other channel, since only the RGB/RGBA views are
// display-oriented.
func (f *Film) Output(ch Channel, runPipeline bool) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.HasChannel(ch) {
		return nil, fmt.Errorf("film: channel %s not enabled", ch)
	}
	n := ch.Components()
	out := make([]float32, f.width*f.height*n)
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			px := f.resolved(ch, x, y)
			base := (y*f.width + x) * n
			copy(out[base:base+n], px[:n])
		}
	}
	if runPipeline && (ch == RGB || ch == RGBA) {
		p := f.Pipeline()
		p.Run(out, f.width, f.height, n)
	}
	return out, nil
}

// Pipeline returns the currently active imaging pipeline.
func (f *Film) Pipeline() *Pipeline {
	return f.pipeline.Load()
}

// SetPipeline atomically replaces the imaging pipeline, spec.md §4.5:
// "Replacing film.imagepipelines.* properties replaces the chain
// atomically". Grounded on the teacher's logger.go atomic.Pointer swap.
func (f *Film) SetPipeline(p *Pipeline) {
	if p == nil {
		p = DefaultPipeline()
	}
	f.pipeline.Store(p)
}

// ConvergenceMax returns the maximum value currently held in the
// CONVERGENCE channel, used by halt.noisethreshold checks and the
// convergence-monotonicity invariant of spec.md §8.
func (f *Film) ConvergenceMax() float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.channels[Convergence]
	if !ok {
		return 0
	}
	var max float32
	for _, v := range b.sum {
		if v > max {
			max = v
		}
	}
	return max
}

// SampleCountTotal sums the SAMPLECOUNT channel across every pixel; it
// returns 0 when the channel is not enabled.
func (f *Film) SampleCountTotal() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.channels[SampleCount]
	if !ok {
		return 0
	}
	var total float64
	for _, v := range b.sum {
		total += float64(v)
	}
	return total
}

func clampFloat(v, lo, hi float32) float32 {
	if math.IsNaN(float64(v)) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
