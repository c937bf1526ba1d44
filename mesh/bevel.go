package mesh

import (
	"math"

	"github.com/lumenforge/lux/bvh"
	"github.com/lumenforge/lux/math3"
)

// BevelCylinder is the rounded-edge geometry derived for one convex shared
// edge, per spec.md §3/§4.1.
type BevelCylinder struct {
	Axis   math3.Point3 // a point on the cylinder's axis line
	Dir    math3.Vec3   // unit axis direction, parallel to the shared edge
	Radius float32
	// CapLo/CapHi are the axis parameters (distance along Dir from Axis)
	// of the two end caps, after corner reconciliation snaps them toward
	// the reconciled corner points.
	CapLo, CapHi float32
}

// BevelBoundingCylinder is the inflated, axis-aligned fast-reject bound
// around one BevelCylinder (spec.md §4.1 step 6).
type BevelBoundingCylinder struct {
	Cyl    BevelCylinder
	Bounds math3.BBox3
}

func (b BevelBoundingCylinder) Bounds3() math3.BBox3 { return b.Bounds }

type bevelData struct {
	cylinders []BevelBoundingCylinder
	tree      *bvh.BVH[boundedBevel]
	radius    float32
}

type boundedBevel struct {
	idx    int
	bounds math3.BBox3
}

func (b boundedBevel) Bounds() math3.BBox3 { return b.bounds }

const bevelConvexityEps = 1e-4
const bevelInflate = 1.05

// edgeKey canonicalizes an undirected edge between two vertex indices.
type edgeKey struct{ a, b int32 }

func newEdgeKey(a, b int32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

type edgeRecord struct {
	tris [2]int  // triangle indices sharing this edge; second is -1 if boundary
	v    [2]int32 // the two "opposite" vertices (one per adjacent triangle), -1 if absent
}

// BuildBevel runs the full bevel preprocessing pipeline of spec.md §4.1
// steps 1-7 and attaches the result to m. A non-positive radius disables
// bevel entirely (step "Failure semantics").
func (m *TriangleMesh) BuildBevel(radius float32) error {
	if radius <= 0 {
		m.bevel = nil
		return nil
	}

	edges := make(map[edgeKey]*edgeRecord)
	for triIdx, tri := range m.Tris {
		edgesOf := [3][2]int32{{tri[0], tri[1]}, {tri[1], tri[2]}, {tri[2], tri[0]}}
		opposite := [3]int32{tri[2], tri[0], tri[1]}
		for i, e := range edgesOf {
			k := newEdgeKey(e[0], e[1])
			rec, ok := edges[k]
			if !ok {
				rec = &edgeRecord{tris: [2]int{triIdx, -1}, v: [2]int32{opposite[i], -1}}
				edges[k] = rec
				continue
			}
			rec.tris[1] = triIdx
			rec.v[1] = opposite[i]
		}
	}

	type cornerAccum struct {
		sum   math3.Vec3
		count int
	}
	corners := make(map[int32]*cornerAccum)

	addCorner := func(vi int32, axisPoint math3.Point3) {
		acc, ok := corners[vi]
		if !ok {
			acc = &cornerAccum{}
			corners[vi] = acc
		}
		acc.sum = acc.sum.Add(axisPoint.Sub(m.Vertices[vi]))
		acc.count++
	}

	var cylinders []BevelBoundingCylinder
	var cylEdgeVerts [][2]int32 // k.a, k.b per cylinder, parallel to cylinders
	for k, rec := range edges {
		if rec.tris[1] < 0 {
			continue // boundary edge, no second triangle to dihedral-test
		}
		n0 := m.GeometricNormal(rec.tris[0]).Normalize()
		n1 := m.GeometricNormal(rec.tris[1]).Normalize()
		v0 := m.Vertices[rec.v[0]]
		v1 := m.Vertices[rec.v[1]]
		if !isConvexDihedral(n0, v0, v1) {
			continue
		}

		h := n0.Vec3().Add(n1.Vec3()).Neg().Normalize()
		cosAlpha := absf32(h.Dot(n0.Vec3()))
		alpha := math.Pi/2 - math.Acos(float64(clampUnit(cosAlpha)))
		if math.Abs(alpha) < 1e-5 {
			continue // degenerate edge, silently skip (failure semantics)
		}
		dist := float64(radius) / math.Sin(alpha)

		a, b := m.Vertices[k.a], m.Vertices[k.b]
		edgeDir := b.Sub(a).Normalize()
		axisPoint := a.Add(h.Mul(float32(dist)))

		cyl := BevelCylinder{
			Axis:   axisPoint,
			Dir:    edgeDir,
			Radius: radius,
			CapLo:  0,
			CapHi:  a.Distance(b),
		}

		addCorner(k.a, axisPoint)
		addCorner(k.b, axisPoint)

		cylinders = append(cylinders, BevelBoundingCylinder{Cyl: cyl})
		cylEdgeVerts = append(cylEdgeVerts, [2]int32{k.a, k.b})
	}

	// Corner reconciliation (step 5): at each logical vertex touched by
	// more than one convex bevel edge, average the per-edge axis points
	// meeting there into one reconciled corner point, then snap every
	// incident cylinder's cap to that corner's projection onto its own
	// axis line. This is what keeps the flat end caps of edges fanning
	// out of a corner (e.g. 3 edges meeting at a cube corner) coplanar
	// with each other instead of each terminating at its own unrelated
	// per-edge plane.
	cornerPoint := make(map[int32]math3.Point3, len(corners))
	for vi, acc := range corners {
		avgOffset := acc.sum.Mul(1 / float32(acc.count))
		cornerPoint[vi] = m.Vertices[vi].Add(avgOffset)
	}
	for i := range cylinders {
		cyl := &cylinders[i].Cyl
		va, vb := cylEdgeVerts[i][0], cylEdgeVerts[i][1]
		pa := cornerPoint[va].Sub(cyl.Axis).Dot(cyl.Dir)
		pb := cornerPoint[vb].Sub(cyl.Axis).Dot(cyl.Dir)
		if pa > pb {
			pa, pb = pb, pa
		}
		cyl.CapLo, cyl.CapHi = pa, pb
		cylinders[i].Bounds = inflateBounds(cylinderBounds(*cyl), bevelInflate)
	}

	boundedItems := make([]boundedBevel, len(cylinders))
	for i, c := range cylinders {
		boundedItems[i] = boundedBevel{idx: i, bounds: c.Bounds}
	}

	m.bevel = &bevelData{
		cylinders: cylinders,
		tree:      bvh.Build(boundedItems),
		radius:    radius,
	}
	return nil
}

func clampUnit(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// isConvexDihedral implements spec.md §4.1 step 3: "n0 . normalize(v1-v0) < -eps".
func isConvexDihedral(n0 math3.Normal3, v0, v1 math3.Point3) bool {
	dir := v1.Sub(v0).Normalize()
	return n0.Dot(dir) < -bevelConvexityEps
}

func cylinderBounds(c BevelCylinder) math3.BBox3 {
	lo := c.Axis.Add(c.Dir.Mul(c.CapLo))
	hi := c.Axis.Add(c.Dir.Mul(c.CapHi))
	r := math3.V3(c.Radius, c.Radius, c.Radius)
	bb := math3.EmptyBBox3()
	bb = bb.UnionPoint(lo.Add(r.Neg()))
	bb = bb.UnionPoint(lo.Add(r))
	bb = bb.UnionPoint(hi.Add(r.Neg()))
	bb = bb.UnionPoint(hi.Add(r))
	return bb
}

func inflateBounds(bb math3.BBox3, factor float32) math3.BBox3 {
	c := bb.Centroid()
	half := bb.Diagonal().Mul(0.5 * factor)
	return math3.BBox3{Min: c.Add(half.Neg()), Max: c.Add(half)}
}

// intersectBevel implements spec.md §4.1's intersectBevel: given a regular
// triangle hit, check whether the hit point lies inside any bounding
// cylinder; if so, solve the ray/cylinder quadratic for the side surface
// (clipped to the cylinder's cap range; the flat caps are not intersected)
// and return the closer of the bevel hit or the original triangle hit.
func (bd *bevelData) intersectBevel(ray math3.Ray, triHit Hit) (Hit, bool) {
	candidates := bd.tree.WithinRadius(triHit.P, bd.radius*float32(bevelInflate)*2, func(boundedBevel) bool { return true })
	if len(candidates) == 0 {
		return triHit, false
	}

	best := triHit
	bestT := triHit.T
	foundBevel := false
	for _, cand := range candidates {
		cyl := bd.cylinders[cand.idx].Cyl
		if t, n, ok := intersectCylinder(ray, cyl, ray.Mint, bestT); ok {
			bestT = t
			best = Hit{T: t, P: ray.At(t), Normal: n, TriIndex: triHit.TriIndex, Beveled: true}
			foundBevel = true
		}
	}
	return best, foundBevel
}

// intersectCylinder solves the quadratic for an infinite cylinder of the
// given axis/direction/radius, clipped to [CapLo, CapHi] along Dir (flat
// caps, not spherical, matching the edge-bounded bevel construction
// above), and returns the minimal t in (mint, maxt).
func intersectCylinder(ray math3.Ray, c BevelCylinder, mint, maxt float32) (float32, math3.Normal3, bool) {
	// Work in the frame where the cylinder axis is the origin/Dir line.
	oc := ray.Origin.Sub(c.Axis)
	d := ray.Dir
	dDotAxis := d.Dot(c.Dir)
	ocDotAxis := oc.Dot(c.Dir)

	dPerp := d.Sub(c.Dir.Mul(dDotAxis))
	ocPerp := oc.Sub(c.Dir.Mul(ocDotAxis))

	a := dPerp.Dot(dPerp)
	b := 2 * dPerp.Dot(ocPerp)
	cc := ocPerp.Dot(ocPerp) - c.Radius*c.Radius

	if a < 1e-12 {
		return 0, math3.Normal3{}, false
	}
	disc := b*b - 4*a*cc
	if disc < 0 {
		return 0, math3.Normal3{}, false
	}
	sq := float32(math.Sqrt(float64(disc)))
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	if t0 > t1 {
		t0, t1 = t1, t0
	}

	for _, t := range [2]float32{t0, t1} {
		if t <= mint || t >= maxt {
			continue
		}
		axisParam := ocDotAxis + t*dDotAxis
		if axisParam < c.CapLo || axisParam > c.CapHi {
			continue
		}
		p := ray.At(t)
		proj := c.Axis.Add(c.Dir.Mul(axisParam))
		n := p.Sub(proj).Normalize()
		return t, math3.N3(n.X, n.Y, n.Z), true
	}
	return 0, math3.Normal3{}, false
}
