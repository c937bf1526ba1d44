package math3

// BBox3 is an axis-aligned bounding box. An empty box has Min components
// greater than the corresponding Max components; EmptyBBox3 constructs one.
type BBox3 struct {
	Min, Max Point3
}

// EmptyBBox3 returns a degenerate box suitable as the identity element for
// repeated Union calls.
func EmptyBBox3() BBox3 {
	return BBox3{
		Min: Point3{X: inf, Y: inf, Z: inf},
		Max: Point3{X: -inf, Y: -inf, Z: -inf},
	}
}

// BBoxFromPoint returns the degenerate box containing only p.
func BBoxFromPoint(p Point3) BBox3 { return BBox3{Min: p, Max: p} }

// Union returns the smallest box containing both b and o.
func (b BBox3) Union(o BBox3) BBox3 {
	return BBox3{
		Min: Point3{min(b.Min.X, o.Min.X), min(b.Min.Y, o.Min.Y), min(b.Min.Z, o.Min.Z)},
		Max: Point3{max(b.Max.X, o.Max.X), max(b.Max.Y, o.Max.Y), max(b.Max.Z, o.Max.Z)},
	}
}

// UnionPoint returns the smallest box containing b and p.
func (b BBox3) UnionPoint(p Point3) BBox3 {
	return b.Union(BBoxFromPoint(p))
}

// Contains reports whether p lies within the box (inclusive).
func (b BBox3) Contains(p Point3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Diagonal returns the vector from Min to Max.
func (b BBox3) Diagonal() Vec3 { return b.Max.Sub(b.Min) }

// Centroid returns the box's midpoint.
func (b BBox3) Centroid() Point3 {
	return Point3{
		(b.Min.X + b.Max.X) / 2,
		(b.Min.Y + b.Max.Y) / 2,
		(b.Min.Z + b.Max.Z) / 2,
	}
}

// SurfaceArea returns the box's surface area, used by SAH-style BVH
// builders to score split candidates.
func (b BBox3) SurfaceArea() float32 {
	d := b.Diagonal()
	if d.X < 0 || d.Y < 0 || d.Z < 0 {
		return 0
	}
	return 2 * (d.X*d.Y + d.Y*d.Z + d.Z*d.X)
}

// MaxExtentAxis returns the index (0=X, 1=Y, 2=Z) of the box's longest
// axis, used to choose a BVH split dimension.
func (b BBox3) MaxExtentAxis() int {
	d := b.Diagonal()
	switch {
	case d.X > d.Y && d.X > d.Z:
		return 0
	case d.Y > d.Z:
		return 1
	default:
		return 2
	}
}

// IntersectRay returns the [tmin, tmax] parameter interval of the ray's
// intersection with the box using the slab method, and whether it is
// non-empty within the ray's own [Mint, Maxt] range.
func (b BBox3) IntersectRay(r Ray) (tmin, tmax float32, hit bool) {
	tmin, tmax = r.Mint, r.Maxt
	origin := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float32{r.Dir.X, r.Dir.Y, r.Dir.Z}
	bmin := [3]float32{b.Min.X, b.Min.Y, b.Min.Z}
	bmax := [3]float32{b.Max.X, b.Max.Y, b.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if dir[axis] == 0 {
			if origin[axis] < bmin[axis] || origin[axis] > bmax[axis] {
				return 0, 0, false
			}
			continue
		}
		invD := 1 / dir[axis]
		t0 := (bmin[axis] - origin[axis]) * invD
		t1 := (bmax[axis] - origin[axis]) * invD
		if invD < 0 {
			t0, t1 = t1, t0
		}
		tmin = max(tmin, t0)
		tmax = min(tmax, t1)
		if tmin > tmax {
			return 0, 0, false
		}
	}
	return tmin, tmax, true
}
