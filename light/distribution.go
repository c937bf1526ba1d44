package light

import "sort"

// Distribution1D is a piecewise-constant probability distribution over a
// discrete set of weighted items (here, lights), built once from a function
// table and queried by binary search in O(log n) with O(1) pdf lookup, per
// spec.md §4.7.
type Distribution1D struct {
	funcVals []float32
	cdf      []float32
	integral float32
}

// NewDistribution1D builds a distribution over funcVals, a non-negative
// weight per item. A distribution with no items or with all-zero weights
// falls back to a uniform distribution over the given count, so callers
// never need to special-case the empty-power case themselves.
func NewDistribution1D(funcVals []float32) *Distribution1D {
	n := len(funcVals)
	d := &Distribution1D{funcVals: append([]float32(nil), funcVals...), cdf: make([]float32, n+1)}
	sum := float32(0)
	for i, f := range funcVals {
		sum += f
		d.cdf[i+1] = sum
	}
	if sum == 0 {
		for i := range d.cdf {
			d.cdf[i] = float32(i) / float32(n)
		}
		d.integral = 0
		return d
	}
	for i := range d.cdf {
		d.cdf[i] /= sum
	}
	d.integral = sum / float32(n)
	return d
}

// Len reports the number of items in the distribution.
func (d *Distribution1D) Len() int { return len(d.funcVals) }

// SampleDiscrete returns the index of the item selected by u in [0,1) and
// its discrete pmf.
func (d *Distribution1D) SampleDiscrete(u float32) (index int, pmf float32) {
	n := len(d.funcVals)
	if n == 0 {
		return 0, 0
	}
	i := sort.Search(len(d.cdf), func(i int) bool { return d.cdf[i] > u }) - 1
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	pmf = d.cdf[i+1] - d.cdf[i]
	if pmf == 0 {
		pmf = 1 / float32(n)
	}
	return i, pmf
}

// Pdf returns the discrete pmf of item index.
func (d *Distribution1D) Pdf(index int) float32 {
	if index < 0 || index >= len(d.funcVals) {
		return 0
	}
	pmf := d.cdf[index+1] - d.cdf[index]
	if pmf == 0 {
		return 1 / float32(len(d.funcVals))
	}
	return pmf
}

// Integral returns the average function value the distribution was built
// from, used by callers that need an unnormalized total power estimate.
func (d *Distribution1D) Integral() float32 { return d.integral }

// FuncVals returns the weight table the distribution was built from, used
// by persistence layers (e.g. lux/dlsc) that need to serialize and later
// reconstruct an equivalent distribution via NewDistribution1D.
func (d *Distribution1D) FuncVals() []float32 {
	return append([]float32(nil), d.funcVals...)
}
