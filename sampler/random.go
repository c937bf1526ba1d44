package sampler

import "math/rand/v2"

// RandomSampler draws every dimension independently from a PRNG, spec.md
// §4.6's "Random — independent" variant.
//
// math/rand/v2 (standard library) is used rather than a third-party PRNG:
// no RNG library appears anywhere in the example corpus's dependency
// graph, and PCG (rand/v2's default source) already gives the
// splittable-stream property Clone needs.
type RandomSampler struct {
	rng         *rand.Rand
	seed        uint64
	sampleIndex uint64
	dims        int
}

// NewRandomSampler returns an independent sampler seeded deterministically
// from seed.
func NewRandomSampler(seed uint64) *RandomSampler {
	return &RandomSampler{
		rng:  rand.New(rand.NewPCG(seed, splitmix64(seed))),
		seed: seed,
	}
}

func (s *RandomSampler) RequestSamples(n int) {
	s.dims = n
	s.sampleIndex++
}

func (s *RandomSampler) Get(dim int) float64 {
	return s.rng.Float64()
}

func (s *RandomSampler) Clone(seed uint64) Sampler {
	return NewRandomSampler(seed)
}

// State for RandomSampler cannot reproduce the exact PRNG cursor (rand/v2
// does not expose one), only the seed and sample count; Restore re-seeds
// and advances sampleIndex bookkeeping only. Since RandomSampler's
// dimensions are independent draws rather than a deterministic function of
// (seed, index), an exact resume is not possible with an unscrambled PRNG
// source — recorded as an open decision in DESIGN.md. Callers that need
// exact resumability should use SobolSampler or TilePathSampler instead.
func (s *RandomSampler) State() State {
	return State{Kind: KindRandom, Seed: s.seed, SampleIndex: s.sampleIndex}
}

func (s *RandomSampler) Restore(st State) {
	s.seed = st.Seed
	s.sampleIndex = st.SampleIndex
	s.rng = rand.New(rand.NewPCG(st.Seed, splitmix64(st.Seed)))
}
