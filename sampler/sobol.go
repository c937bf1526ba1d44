package sampler

// SobolSampler is spec.md §4.6's low-discrepancy variant: "a per-path
// scramble seed plus a Van-der-Corput-based fast path for higher
// dimensions". No Joe-Kuo direction-number table exists anywhere in the
// example corpus to ground a true Sobol sequence on, so every dimension
// uses the scrambled van der Corput radical inverse the spec already names
// as the fast path for high dimensions (documented as an open decision in
// DESIGN.md): each dimension gets its own scramble word derived from the
// stream seed, which keeps dimensions decorrelated without a direction
// vector table.
type SobolSampler struct {
	seed        uint64
	sampleIndex uint64
}

// NewSobolSampler returns a Sobol-family sampler scrambled by seed.
func NewSobolSampler(seed uint64) *SobolSampler {
	return &SobolSampler{seed: seed}
}

func (s *SobolSampler) RequestSamples(n int) {
	s.sampleIndex++
}

// dimScramble derives dimension dim's scramble word from the stream seed,
// so two dimensions of the same sample index never collide.
func (s *SobolSampler) dimScramble(dim int) uint64 {
	return splitmix64(s.seed ^ (uint64(dim+1) * 0x9E3779B97F4A7C15))
}

func (s *SobolSampler) Get(dim int) float64 {
	return vanDerCorput(s.sampleIndex, s.dimScramble(dim))
}

func (s *SobolSampler) Clone(seed uint64) Sampler {
	return NewSobolSampler(seed)
}

func (s *SobolSampler) State() State {
	return State{Kind: KindSobol, Seed: s.seed, SampleIndex: s.sampleIndex}
}

func (s *SobolSampler) Restore(st State) {
	s.seed = st.Seed
	s.sampleIndex = st.SampleIndex
}
