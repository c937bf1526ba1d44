package sampler

import "math/rand/v2"

// MetropolisSampler is spec.md §4.6's mutation-based variant: "a
// largeStepProbability, using a proposal record and an accept/reject
// test." A large step redraws every dimension independently (guaranteeing
// ergodicity); a small step perturbs the current sample point by a small
// uniform offset (exploring the local neighborhood of a high-
// contribution path). The caller drives Accept/Reject after evaluating the
// proposed path's contribution.
type MetropolisSampler struct {
	rng                   *rand.Rand
	seed                  uint64
	sampleIndex           uint64
	largeStepProbability  float64
	mutationSize          float64
	current               []float64
	proposed              []float64
	isLargeStep           bool
	proposalsSinceAccept  uint64
}

// NewMetropolisSampler returns a Metropolis sampler that takes a large
// (independent, uniform) step with probability largeStepProbability and a
// small perturbation step otherwise.
func NewMetropolisSampler(seed uint64, largeStepProbability float64) *MetropolisSampler {
	if largeStepProbability < 0 || largeStepProbability > 1 {
		largeStepProbability = 0.3
	}
	return &MetropolisSampler{
		rng:                  rand.New(rand.NewPCG(seed, splitmix64(seed))),
		seed:                 seed,
		largeStepProbability: largeStepProbability,
		mutationSize:         1.0 / 1024,
	}
}

// RequestSamples begins a new proposal of n dimensions: a large step
// redraws every dimension uniformly; a small step perturbs the previously
// accepted sample (padding with fresh uniform draws if the dimension count
// grew since the last accepted sample, e.g. a longer bounced path).
func (m *MetropolisSampler) RequestSamples(n int) {
	m.sampleIndex++
	m.isLargeStep = m.rng.Float64() < m.largeStepProbability

	if m.proposed == nil || len(m.proposed) < n {
		grown := make([]float64, n)
		copy(grown, m.proposed)
		m.proposed = grown
	}
	m.proposed = m.proposed[:n]

	for i := 0; i < n; i++ {
		switch {
		case m.isLargeStep || i >= len(m.current):
			m.proposed[i] = m.rng.Float64()
		default:
			m.proposed[i] = mutate(m.current[i], m.mutationSize, m.rng.Float64())
		}
	}
}

// mutate perturbs v by a small signed offset scaled by size, wrapping
// around [0, 1) so a mutation near a boundary stays in range.
func mutate(v, size, u float64) float64 {
	delta := (u - 0.5) * 2 * size
	v += delta
	if v >= 1 {
		v -= 1
	}
	if v < 0 {
		v += 1
	}
	return v
}

func (m *MetropolisSampler) Get(dim int) float64 {
	if dim < 0 || dim >= len(m.proposed) {
		return 0
	}
	return m.proposed[dim]
}

// IsLargeStep reports whether the current proposal was a large (fully
// independent) step, informing the caller's acceptance bookkeeping.
func (m *MetropolisSampler) IsLargeStep() bool { return m.isLargeStep }

// Accept commits the current proposal as the new reference sample,
// spec.md §4.6's "accept/reject test" resolving to acceptance.
func (m *MetropolisSampler) Accept() {
	if cap(m.current) < len(m.proposed) {
		m.current = make([]float64, len(m.proposed))
	}
	m.current = m.current[:len(m.proposed)]
	copy(m.current, m.proposed)
	m.proposalsSinceAccept = 0
}

// Reject discards the current proposal; the next RequestSamples mutates
// from the same reference sample again.
func (m *MetropolisSampler) Reject() {
	m.proposalsSinceAccept++
}

func (m *MetropolisSampler) Clone(seed uint64) Sampler {
	return NewMetropolisSampler(seed, m.largeStepProbability)
}

func (m *MetropolisSampler) State() State {
	extra := make([]uint64, 0, len(m.current)+1)
	extra = append(extra, uint64(len(m.current)))
	for _, v := range m.current {
		extra = append(extra, float64Bits(v))
	}
	return State{Kind: KindMetropolis, Seed: m.seed, SampleIndex: m.sampleIndex, Extra: extra}
}

func (m *MetropolisSampler) Restore(st State) {
	m.seed = st.Seed
	m.sampleIndex = st.SampleIndex
	m.rng = rand.New(rand.NewPCG(st.Seed, splitmix64(st.Seed)))
	if len(st.Extra) == 0 {
		m.current = nil
		return
	}
	n := int(st.Extra[0])
	m.current = make([]float64, n)
	for i := 0; i < n && i+1 < len(st.Extra); i++ {
		m.current[i] = float64FromBits(st.Extra[i+1])
	}
}
