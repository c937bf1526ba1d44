package mesh

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/lumenforge/lux/math3"
)

// TestTriangleMesh_BoundsContainAllVertices is a property check for spec.md
// §8: a mesh's Bounds() must always contain every vertex of the mesh, for
// any vertex/triangle set NewTriangleMesh accepts.
func TestTriangleMesh_BoundsContainAllVertices(t *testing.T) {
	coord := rapid.Float32Range(-1000, 1000)
	point := rapid.Custom(func(t *rapid.T) math3.Point3 {
		return math3.P3(coord.Draw(t, "x"), coord.Draw(t, "y"), coord.Draw(t, "z"))
	})

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(3, 12).Draw(t, "n")
		verts := make([]math3.Point3, n)
		for i := range verts {
			verts[i] = point.Draw(t, "vert")
		}

		numTris := rapid.IntRange(1, n/3+1).Draw(t, "numTris")
		tris := make([][3]int32, numTris)
		for i := range tris {
			a := int32(rapid.IntRange(0, n-1).Draw(t, "a"))
			b := int32(rapid.IntRange(0, n-1).Draw(t, "b"))
			c := int32(rapid.IntRange(0, n-1).Draw(t, "c"))
			tris[i] = [3]int32{a, b, c}
		}

		m, err := NewTriangleMesh(verts, tris)
		if err != nil {
			t.Fatal(err)
		}
		bounds := m.Bounds()
		for _, v := range verts {
			if !bounds.Contains(v) {
				t.Fatalf("bounds %v does not contain vertex %v", bounds, v)
			}
		}
	})
}

// TestBuildBevel_PreservesEdgeMidpointInscribedRadius is spec.md §8's
// "bevel preserves edge midpoints" property: at any point along a convex
// edge (the edge's midpoint is as representative as any, since the
// cylinder's cross-section is constant along its axis except at the
// corner-reconciled caps), the rounded surface is a circle of radius r
// tangent to both adjoining faces, i.e. the cylinder axis sits exactly r
// away from each face plane. This is derived independently of BuildBevel's
// own h/dist formula, from the geometry of the cube's 90-degree edge
// between its -Z face (plane z=0) and +X face (plane x=1): a circle
// inscribed in that corner with radius r has its center at (1-r, r) in the
// (x,z) cross-section.
func TestBuildBevel_PreservesEdgeMidpointInscribedRadius(t *testing.T) {
	const r = 0.05
	cube, err := unitCube()
	if err != nil {
		t.Fatal(err)
	}
	if err := cube.BuildBevel(r); err != nil {
		t.Fatal(err)
	}
	if cube.bevel == nil {
		t.Fatal("expected bevel data")
	}

	const tol = 1e-4
	var found bool
	for _, c := range cube.bevel.cylinders {
		cyl := c.Cyl
		// Identify the (1,0,0)-(1,1,0) edge's cylinder: axis parallel to Y,
		// lying in the -Z/+X corner.
		if math.Abs(float64(cyl.Dir.Y)) < 0.99 {
			continue
		}
		if math.Abs(float64(cyl.Axis.X-(1-r))) > tol || math.Abs(float64(cyl.Axis.Z-r)) > tol {
			continue
		}
		found = true

		distToNegZFace := cyl.Axis.Z     // plane z=0, normal (0,0,-1)
		distToPosXFace := 1 - cyl.Axis.X // plane x=1, normal (1,0,0)
		if math.Abs(float64(distToNegZFace-r)) > tol {
			t.Fatalf("axis distance to -Z face = %v, want r=%v", distToNegZFace, r)
		}
		if math.Abs(float64(distToPosXFace-r)) > tol {
			t.Fatalf("axis distance to +X face = %v, want r=%v", distToPosXFace, r)
		}

		// The rounded surface at the edge midpoint (y=0.5, inside
		// [CapLo, CapHi], away from either corner-reconciled cap) must lie
		// exactly r from the axis, by intersecting a ray shot straight down
		// the inward bisector through the expected tangent point.
		bisector := math3.V3(-1, 0, 1).Normalize()
		mid := cyl.Axis.Add(math3.V3(0, 0.5, 0))
		tangentPoint := mid.Add(bisector.Mul(-r))
		origin := tangentPoint.Add(bisector.Mul(-10 * r))
		ray := math3.NewRay(origin, bisector)
		tHit, _, ok := intersectCylinder(ray, cyl, ray.Mint, 1e30)
		if !ok {
			t.Fatal("expected the bisector ray to hit the rounded surface at the edge midpoint")
		}
		hitP := ray.At(tHit)
		dist := hitP.Sub(mid).Length()
		if math.Abs(float64(dist-r)) > tol {
			t.Fatalf("edge-midpoint surface distance from axis = %v, want r=%v", dist, r)
		}
	}
	if !found {
		t.Fatal("expected to find the (1,0,0)-(1,1,0) edge's bevel cylinder")
	}
}
