// Package dlsc implements spec.md §4.7's direct-lighting sampling cache: for
// a shading point (p, n, isVolume), return a 1-D light-importance
// distribution reflecting actual visible power at that location, the main
// variance-reduction technique for scenes with many occluded or weak
// lights.
//
// Grounded on lux/light's Distribution1D (reused verbatim as the
// per-entry distribution type) and lux/scene's Intersect (the shadow-ray
// test every per-entry sample uses) plus its sorted-name iteration
// discipline for determinism. The clustering and radius-estimation
// algorithms have no literal corpus precedent (no example repo implements
// a spatial light cache); they follow spec.md §4.7's build algorithm
// directly and are documented as domain algorithms in DESIGN.md.
package dlsc

import (
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/lumenforge/lux/bvh"
	"github.com/lumenforge/lux/light"
	"github.com/lumenforge/lux/math3"
	"github.com/lumenforge/lux/scene"
)

// Params configures the cache build, spec.md §4.7/§6's
// "lightstrategy.entry.*"/"lightstrategy.visibilitymap.*" knobs.
type Params struct {
	LookUpRadius      float32 // 0 means auto-derive from TargetHitRate
	LookUpNormalAngle float32 // radians; max normal deviation within a cluster
	TargetHitRate     float32 // fraction of particles that should have a neighbor within LookUpRadius

	MaxPathDepth int // visibility-sampling camera path depth (informational; paths are supplied by the caller)

	EntryMaxPasses            int
	EntryWarmUpSamples        int
	EntryConvergenceThreshold float32

	Workers int // 0 means GOMAXPROCS
}

// DefaultParams returns the cache's conservative defaults.
func DefaultParams() Params {
	return Params{
		LookUpNormalAngle:         25 * math.Pi / 180,
		TargetHitRate:             0.9,
		EntryMaxPasses:            8,
		EntryWarmUpSamples:        4,
		EntryConvergenceThreshold: 0.05,
	}
}

// Particle is one visibility-sampling sample collected along a camera path
// (spec.md §4.7 step 1): "(point, list of (BSDF, volumeInfo))", simplified
// here to the point/normal/isVolume triple the clustering step actually
// consumes — the BSDF itself only matters to the path tracer that produced
// the particle, not to the cache.
type Particle struct {
	Point    math3.Point3
	Normal   math3.Normal3
	IsVolume bool
}

// Entry is one cache cluster: a representative shading point plus the
// light-importance distribution estimated for it.
type Entry struct {
	Point    math3.Point3
	Normal   math3.Normal3
	IsVolume bool
	Dist     *light.Distribution1D
	Keys     []string // light names, in the order Dist indexes them
}

// Cache is the built, immutable-after-build DLSC, spec.md §4.7's "the cache
// is immutable after build".
type Cache struct {
	params  Params
	entries []entryItem
	accel   *bvh.BVH[entryItem]
}

// queryMaxDist bounds GetLightDistribution's nearest-entry search; a
// query farther than this from every entry falls back to the scene's
// global distribution rather than picking an arbitrarily distant entry.
const queryMaxDist = 1e10

type entryItem struct {
	entry Entry
	bbox  math3.BBox3
}

func (it entryItem) Bounds() math3.BBox3 { return it.bbox }

// Build runs spec.md §4.7's steps 2-6 over particles already collected by
// a path tracer's visibility pass (step 1). scn supplies the light
// dictionary and the shadow-ray accelerator used to estimate per-light
// visible luminance.
func Build(particles []Particle, scn *scene.Scene, params Params) (*Cache, error) {
	radius := params.LookUpRadius
	if radius <= 0 {
		radius = estimateRadius(particles, params.TargetHitRate)
	}

	clusters := cluster(particles, radius, params.LookUpNormalAngle)

	lightKeys := scn.LightKeys()
	entries := make([]Entry, len(clusters))
	workers := params.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	parallelFor(len(clusters), workers, func(i int) {
		entries[i] = buildEntry(clusters[i], scn, lightKeys, params)
	})

	items := make([]entryItem, len(entries))
	for i, e := range entries {
		items[i] = entryItem{entry: e, bbox: math3.BBoxFromPoint(e.Point)}
	}
	return &Cache{params: params, entries: items, accel: bvh.Build(items)}, nil
}

// cluster groups particles by spatial proximity (radius) and normal
// alignment (normalAngle), spec.md §4.7 step 3. Greedy single pass: each
// unclaimed particle seeds a new cluster and claims every remaining
// particle within range; O(n^2) but the particle counts a DLSC build
// operates on (visibility.maxSampleCount) are small relative to path
// count.
func cluster(particles []Particle, radius, normalAngle float32) [][]Particle {
	claimed := make([]bool, len(particles))
	cosLimit := float32(math.Cos(float64(normalAngle)))
	var clusters [][]Particle
	for i := range particles {
		if claimed[i] {
			continue
		}
		claimed[i] = true
		group := []Particle{particles[i]}
		for j := i + 1; j < len(particles); j++ {
			if claimed[j] {
				continue
			}
			if particles[i].IsVolume != particles[j].IsVolume {
				continue
			}
			if particles[i].Point.DistanceSq(particles[j].Point) > radius*radius {
				continue
			}
			if particles[i].Normal.DotNormal(particles[j].Normal) < cosLimit {
				continue
			}
			claimed[j] = true
			group = append(group, particles[j])
		}
		clusters = append(clusters, group)
	}
	return clusters
}

// estimateRadius derives LookUpRadius automatically so the resulting
// radius achieves targetHitRate over particles (spec.md §4.7 step 2): the
// targetHitRate-th percentile of each particle's nearest-neighbor
// distance, so by construction that fraction of particles has a neighbor
// within the chosen radius.
func estimateRadius(particles []Particle, targetHitRate float32) float32 {
	if len(particles) < 2 {
		return 1
	}
	if targetHitRate <= 0 || targetHitRate > 1 {
		targetHitRate = 0.9
	}
	nearest := make([]float32, len(particles))
	for i := range particles {
		best := float32(math.MaxFloat32)
		for j := range particles {
			if i == j {
				continue
			}
			d := particles[i].Point.DistanceSq(particles[j].Point)
			if d < best {
				best = d
			}
		}
		nearest[i] = float32(math.Sqrt(float64(best)))
	}
	sort.Slice(nearest, func(a, b int) bool { return nearest[a] < nearest[b] })
	idx := int(float32(len(nearest)-1) * targetHitRate)
	return nearest[idx]
}

// buildEntry estimates per-light visible luminance for one cluster's
// representative point (spec.md §4.7 step 4): up to params.EntryMaxPasses
// shadow-ray passes per light, skipping delta-trivial visibility only in
// the sense that a delta light still needs exactly one shadow ray per
// pass rather than an area sample; warmUpSamples passes run before the
// convergence test begins.
func buildEntry(cluster []Particle, scn *scene.Scene, lightKeys []string, params Params) Entry {
	rep := cluster[0]
	var sumPoint math3.Vec3
	var sumNormal math3.Vec3
	for _, p := range cluster {
		sumPoint = sumPoint.Add(p.Point.ToVec3())
		sumNormal = sumNormal.Add(p.Normal.Vec3())
	}
	n := float32(len(cluster))
	point := math3.P3(sumPoint.X/n, sumPoint.Y/n, sumPoint.Z/n)
	normal := sumNormal.Normalize().N3()

	weights := make([]float32, len(lightKeys))
	for i, name := range lightKeys {
		l, ok := scn.Light(name)
		if !ok {
			continue
		}
		weights[i] = estimateVisibleLuminance(point, normal, rep.IsVolume, l, scn, params)
	}

	return Entry{
		Point:    point,
		Normal:   normal,
		IsVolume: rep.IsVolume,
		Dist:     light.NewDistribution1D(weights),
		Keys:     lightKeys,
	}
}

func estimateVisibleLuminance(p math3.Point3, n math3.Normal3, isVolume bool, l *light.Light, scn *scene.Scene, params Params) float32 {
	passes := params.EntryMaxPasses
	if passes <= 0 {
		passes = 8
	}
	warmUp := params.EntryWarmUpSamples
	threshold := params.EntryConvergenceThreshold
	if threshold <= 0 {
		threshold = 0.05
	}

	var accum, prevMean float32
	var count float32
	for pass := 0; pass < passes; pass++ {
		u1, u2 := haltonPair(pass)
		wi, li, pdf, dist := l.Sample(p, u1, u2)
		if pdf > 0 {
			cos := n.Dot(wi)
			if cos > 0 && !isOccluded(p, wi, dist, scn) {
				accum += li.Y() * cos / pdf
			}
		}
		count++

		if pass+1 >= warmUp && count > 0 {
			mean := accum / count
			if prevMean > 0 {
				rel := float32(math.Abs(float64((mean - prevMean) / prevMean)))
				if rel < threshold {
					return mean
				}
			}
			prevMean = mean
		}
	}
	if count == 0 {
		return 0
	}
	return accum / count
}

func isOccluded(p math3.Point3, wi math3.Vec3, dist float32, scn *scene.Scene) bool {
	ray := math3.NewRay(p, wi)
	if dist > 0 && dist < 1e29 {
		ray.Maxt = dist * 0.999
	}
	_, hit := scn.Intersect(ray)
	return hit
}

// haltonPair is a cheap deterministic 2-D low-discrepancy sequence (base-2,
// base-3 radical inverses) used to drive the per-entry shadow-ray passes;
// no RNG state needs to survive a cache rebuild since entries are rebuilt
// from scratch each time.
func haltonPair(i int) (float32, float32) {
	return radicalInverse(i, 2), radicalInverse(i, 3)
}

func radicalInverse(i, base int) float32 {
	var f, invBase, sum float64 = 1, 1.0 / float64(base), 0
	for n := i; n > 0; n /= base {
		f *= invBase
		sum += f * float64(n%base)
	}
	return float32(sum)
}

// parallelFor runs fn(i) for i in [0,n) across up to workers goroutines,
// grounded on internal/parallel.WorkerPool's ExecuteAll barrier shape
// (submit n items, block until all complete) without the queue/work-
// stealing machinery that infrastructure needs for long-lived workers —
// a DLSC build is a single bounded fan-out, not a persistent pool.
func parallelFor(n, workers int, fn func(i int)) {
	if n == 0 {
		return
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	var wg sync.WaitGroup
	next := make(chan int)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range next {
				fn(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		next <- i
	}
	close(next)
	wg.Wait()
}

// GetLightDistribution is spec.md §4.7's query: return the distribution of
// the nearest entry matching isVolume with normal within
// params.LookUpNormalAngle, or (nil, false) so the caller falls back to
// the scene's global log-power distribution.
func (c *Cache) GetLightDistribution(p math3.Point3, n math3.Normal3, isVolume bool) (*light.Distribution1D, []string, bool) {
	if c.accel == nil {
		return nil, nil, false
	}
	cosLimit := float32(math.Cos(float64(c.params.LookUpNormalAngle)))
	item, _, found := c.accel.Nearest(p, queryMaxDist, func(it entryItem) bool {
		return it.entry.IsVolume == isVolume && it.entry.Normal.DotNormal(n) >= cosLimit
	})
	if !found {
		return nil, nil, false
	}
	return item.entry.Dist, item.entry.Keys, true
}

// Len returns the number of entries the cache built.
func (c *Cache) Len() int { return len(c.entries) }
