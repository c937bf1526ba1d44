// Package bvh implements the generic bounding-volume hierarchy used to
// accelerate ray/primitive and point queries throughout lux (spec.md
// §4.2): triangle meshes, bevel cylinders, and the DLSC spatial index all
// instantiate BVH[T] over their own element type.
//
// There is no literal BVH precedent in the example corpus; the generic
// indexed-container shape (a flat node array walked by integer index
// rather than a pointer tree, same idea as a flat slice-backed tree) is
// grounded structurally on the teacher's cache.ShardedCache and
// internal/parallel.TileGrid, both of which index fixed-size records by
// integer rather than by pointer chasing.
package bvh

import (
	"sort"

	"github.com/lumenforge/lux/math3"
)

// Bounded is the constraint every BVH element must satisfy: it must expose
// its own axis-aligned bounding box.
type Bounded interface {
	Bounds() math3.BBox3
}

// node is the 32-byte-class record of spec.md §4.2: two bounds points plus
// packed leaf/interior data. leafCount == 0 marks an interior node whose
// right child lives at rightOrFirst; leafCount > 0 marks a leaf whose
// primitives start at rightOrFirst (an index into BVH.order).
type node struct {
	bounds      math3.BBox3
	rightOrFirst int32
	leafCount    int32
	axis         int8
}

// BVH is a generic, immutable-after-Build bounding volume hierarchy over
// any Bounded element type.
type BVH[T Bounded] struct {
	items []T
	order []int32 // permutation of item indices, leaves reference contiguous runs
	nodes []node
}

const maxLeafSize = 4

// Build constructs a BVH over items using a median-split builder (spec.md
// §4.2: "SAH-ish median-split"), recursively partitioning along the
// bounding box's largest axis.
func Build[T Bounded](items []T) *BVH[T] {
	b := &BVH[T]{items: items}
	b.order = make([]int32, len(items))
	for i := range b.order {
		b.order[i] = int32(i)
	}
	if len(items) == 0 {
		return b
	}
	b.nodes = make([]node, 0, 2*len(items))
	b.build(0, len(items))
	return b
}

func (b *BVH[T]) boundsOf(lo, hi int) math3.BBox3 {
	bb := math3.EmptyBBox3()
	for i := lo; i < hi; i++ {
		bb = bb.Union(b.items[b.order[i]].Bounds())
	}
	return bb
}

// build constructs the subtree over order[lo:hi] and returns its node
// index in b.nodes.
func (b *BVH[T]) build(lo, hi int) int32 {
	bb := b.boundsOf(lo, hi)
	idx := int32(len(b.nodes))
	b.nodes = append(b.nodes, node{bounds: bb})

	n := hi - lo
	if n <= maxLeafSize {
		b.nodes[idx].leafCount = int32(n)
		b.nodes[idx].rightOrFirst = int32(lo)
		return idx
	}

	axis := bb.MaxExtentAxis()
	slice := b.order[lo:hi]
	sort.Slice(slice, func(i, j int) bool {
		return centroidComponent(b.items[slice[i]].Bounds(), axis) < centroidComponent(b.items[slice[j]].Bounds(), axis)
	})
	mid := lo + n/2

	leftIdx := b.build(lo, mid)
	_ = leftIdx // left child is always idx+1 by construction order
	rightIdx := b.build(mid, hi)

	b.nodes[idx].leafCount = 0
	b.nodes[idx].rightOrFirst = rightIdx
	b.nodes[idx].axis = int8(axis)
	return idx
}

func centroidComponent(bb math3.BBox3, axis int) float32 {
	c := bb.Centroid()
	switch axis {
	case 0:
		return c.X
	case 1:
		return c.Y
	default:
		return c.Z
	}
}

// Len returns the number of items indexed.
func (b *BVH[T]) Len() int { return len(b.items) }

// Bounds returns the whole tree's root bounding box.
func (b *BVH[T]) Bounds() math3.BBox3 {
	if len(b.nodes) == 0 {
		return math3.EmptyBBox3()
	}
	return b.nodes[0].bounds
}

// visit performs an iterative traversal driven by an explicit stack of
// node indices, calling visitLeaf for every leaf node whose bounds the
// predicate accepts. Nodes store no skip index, so the walk is not
// stackless.
func (b *BVH[T]) visit(accept func(bb math3.BBox3) bool, visitLeaf func(lo, hi int)) {
	if len(b.nodes) == 0 {
		return
	}
	// Explicit stack avoids recursion; left child is always the node
	// immediately following its parent (construction order), so only the
	// right-child/leaf-start index needs to be stored per node.
	stack := make([]int32, 0, 64)
	stack = append(stack, 0)
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &b.nodes[idx]
		if !accept(n.bounds) {
			continue
		}
		if n.leafCount > 0 {
			visitLeaf(int(n.rightOrFirst), int(n.rightOrFirst+n.leafCount))
			continue
		}
		stack = append(stack, n.rightOrFirst) // right subtree
		stack = append(stack, idx+1)           // left subtree
	}
}

// IntersectRay walks the tree testing only nodes whose bounds the ray's
// slab test passes, calling test on every candidate item in encounter
// order (not necessarily sorted by distance); test returns that item's hit
// distance and whether it was hit, and the traversal keeps the closest
// distance seen so far to reject nodes beyond it.
func (b *BVH[T]) IntersectRay(ray math3.Ray, test func(item T) (t float32, hit bool)) (T, float32, bool) {
	var best T
	bestT := ray.Maxt
	found := false
	b.visit(func(bb math3.BBox3) bool {
		probe := ray
		probe.Maxt = bestT
		_, _, ok := bb.IntersectRay(probe)
		return ok
	}, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			item := b.items[b.order[i]]
			if t, ok := test(item); ok && t < bestT {
				bestT = t
				best = item
				found = true
			}
		}
	})
	return best, bestT, found
}

// Nearest returns the item closest to p satisfying predicate accept, within
// maxDist, per spec.md §4.2 "Nearest" query.
func (b *BVH[T]) Nearest(p math3.Point3, maxDist float32, accept func(item T) bool) (T, float32, bool) {
	var best T
	bestDistSq := maxDist * maxDist
	found := false
	b.visit(func(bb math3.BBox3) bool {
		return bboxDistSq(bb, p) <= bestDistSq
	}, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			item := b.items[b.order[i]]
			if !accept(item) {
				continue
			}
			d := itemDistSq(item, p)
			if d < bestDistSq {
				bestDistSq = d
				best = item
				found = true
			}
		}
	})
	return best, bestDistSq, found
}

// WithinRadius collects every item within radius of p satisfying accept,
// per spec.md §4.2 "WithinRadius" query.
func (b *BVH[T]) WithinRadius(p math3.Point3, radius float32, accept func(item T) bool) []T {
	radiusSq := radius * radius
	var out []T
	b.visit(func(bb math3.BBox3) bool {
		return bboxDistSq(bb, p) <= radiusSq
	}, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			item := b.items[b.order[i]]
			if !accept(item) {
				continue
			}
			if itemDistSq(item, p) <= radiusSq {
				out = append(out, item)
			}
		}
	})
	return out
}

func bboxDistSq(bb math3.BBox3, p math3.Point3) float32 {
	dx := axisDist(p.X, bb.Min.X, bb.Max.X)
	dy := axisDist(p.Y, bb.Min.Y, bb.Max.Y)
	dz := axisDist(p.Z, bb.Min.Z, bb.Max.Z)
	return dx*dx + dy*dy + dz*dz
}

func axisDist(v, lo, hi float32) float32 {
	if v < lo {
		return lo - v
	}
	if v > hi {
		return v - hi
	}
	return 0
}

func itemDistSq[T Bounded](item T, p math3.Point3) float32 {
	bb := item.Bounds()
	c := bb.Centroid()
	dx, dy, dz := c.X-p.X, c.Y-p.Y, c.Z-p.Z
	return dx*dx + dy*dy + dz*dz
}
