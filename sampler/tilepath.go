package sampler

// TilePathSampler is spec.md §4.6's "a deterministic inner sampler (Sobol)
// per pixel inside a tile, driven by the tile repository": the tile
// repository assigns each pixel a stable index, and TilePathSampler
// derives that pixel's Sobol scramble seed from it, so resuming a render
// reproduces exactly the same per-pixel sequence regardless of which
// worker services the pixel this time.
//
// Grounded on the teacher's internal/parallel.Tile addressing scheme
// (px, py) -> a stable per-tile pixel offset; here the pixel's film
// coordinate (x, y), mixed with the base seed, seeds its independent Sobol
// stream instead of indexing a pixel buffer.
type TilePathSampler struct {
	baseSeed uint64
	pixelX   int
	pixelY   int
	inner    *SobolSampler
}

// NewTilePathSampler returns a sampler for the pixel at (pixelX, pixelY),
// scrambled deterministically from baseSeed so every pixel in the render
// gets an independent, reproducible stream.
func NewTilePathSampler(baseSeed uint64, pixelX, pixelY int) *TilePathSampler {
	seed := pixelSeed(baseSeed, pixelX, pixelY)
	return &TilePathSampler{
		baseSeed: baseSeed,
		pixelX:   pixelX,
		pixelY:   pixelY,
		inner:    NewSobolSampler(seed),
	}
}

func pixelSeed(baseSeed uint64, x, y int) uint64 {
	return splitmix64(baseSeed ^ (uint64(uint32(x))<<32 | uint64(uint32(y))))
}

func (s *TilePathSampler) RequestSamples(n int) { s.inner.RequestSamples(n) }
func (s *TilePathSampler) Get(dim int) float64  { return s.inner.Get(dim) }

// Clone returns an independent stream at the same pixel, reseeded with
// seed as its base seed, for workers that need a scratch sampler without
// disturbing the pixel's resumable sequence. To target a different pixel,
// callers use NewTilePathSampler.
func (s *TilePathSampler) Clone(seed uint64) Sampler {
	return &TilePathSampler{baseSeed: seed, pixelX: s.pixelX, pixelY: s.pixelY, inner: NewSobolSampler(pixelSeed(seed, s.pixelX, s.pixelY))}
}

func (s *TilePathSampler) State() State {
	st := s.inner.State()
	st.Kind = KindTilePath
	st.Extra = []uint64{s.baseSeed, uint64(uint32(s.pixelX)), uint64(uint32(s.pixelY))}
	return st
}

func (s *TilePathSampler) Restore(st State) {
	if len(st.Extra) >= 3 {
		s.baseSeed = st.Extra[0]
		s.pixelX = int(int32(st.Extra[1]))
		s.pixelY = int(int32(st.Extra[2]))
	}
	s.inner.Restore(State{Kind: KindSobol, Seed: st.Seed, SampleIndex: st.SampleIndex})
}
