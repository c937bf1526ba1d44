package mesh

import (
	"math"
	"testing"

	"github.com/lumenforge/lux/math3"
)

func unitCube() (*TriangleMesh, error) {
	v := []math3.Point3{
		math3.P3(0, 0, 0), math3.P3(1, 0, 0), math3.P3(1, 1, 0), math3.P3(0, 1, 0),
		math3.P3(0, 0, 1), math3.P3(1, 0, 1), math3.P3(1, 1, 1), math3.P3(0, 1, 1),
	}
	tris := [][3]int32{
		{0, 1, 2}, {0, 2, 3}, // -Z
		{4, 6, 5}, {4, 7, 6}, // +Z
		{0, 4, 5}, {0, 5, 1}, // -Y
		{3, 2, 6}, {3, 6, 7}, // +Y
		{0, 3, 7}, {0, 7, 4}, // -X
		{1, 5, 6}, {1, 6, 2}, // +X
	}
	return NewTriangleMesh(v, tris)
}

func TestNewTriangleMesh_RejectsOutOfRangeIndex(t *testing.T) {
	v := []math3.Point3{math3.P3(0, 0, 0), math3.P3(1, 0, 0), math3.P3(0, 1, 0)}
	_, err := NewTriangleMesh(v, [][3]int32{{0, 1, 5}})
	if err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestIntersect_HitsFrontFace(t *testing.T) {
	cube, err := unitCube()
	if err != nil {
		t.Fatal(err)
	}
	ray := math3.NewRay(math3.P3(0.5, 0.5, -5), math3.V3(0, 0, 1))
	hit, ok := cube.Intersect(ray)
	if !ok {
		t.Fatal("expected a hit")
	}
	if math.Abs(float64(hit.T-5)) > 1e-4 {
		t.Fatalf("got t=%v, want ~5", hit.T)
	}
}

func TestIntersect_MissesAwayFromCube(t *testing.T) {
	cube, err := unitCube()
	if err != nil {
		t.Fatal(err)
	}
	ray := math3.NewRay(math3.P3(10, 10, -5), math3.V3(0, 0, 1))
	if _, ok := cube.Intersect(ray); ok {
		t.Fatal("expected a miss")
	}
}

func TestBuildBevel_NonPositiveRadiusDisablesBevel(t *testing.T) {
	cube, _ := unitCube()
	if err := cube.BuildBevel(0); err != nil {
		t.Fatal(err)
	}
	if cube.bevel != nil {
		t.Fatal("expected bevel data to be nil for radius 0")
	}
}

func TestBuildBevel_ProducesCylindersForConvexEdges(t *testing.T) {
	cube, _ := unitCube()
	if err := cube.BuildBevel(0.05); err != nil {
		t.Fatal(err)
	}
	if cube.bevel == nil || len(cube.bevel.cylinders) == 0 {
		t.Fatal("expected at least one bevel cylinder on a convex cube")
	}
}

func TestInstance_BoundsTracksTransform(t *testing.T) {
	cube, _ := unitCube()
	inst := &Instance{Base: cube, Transform: math3.Translate(math3.V3(10, 0, 0))}
	bb := inst.Bounds()
	if bb.Min.X < 9.9 || bb.Max.X > 11.1 {
		t.Fatalf("unexpected instance bounds %+v", bb)
	}
}

func TestInstance_IntersectRoundTrips(t *testing.T) {
	cube, _ := unitCube()
	inst := &Instance{Base: cube, Transform: math3.Translate(math3.V3(5, 0, 0))}
	ray := math3.NewRay(math3.P3(5.5, 0.5, -5), math3.V3(0, 0, 1))
	hit, ok := inst.IntersectInstance(ray)
	if !ok {
		t.Fatal("expected a hit through the instance transform")
	}
	if math.Abs(float64(hit.P.Z)) > 1e-3 {
		t.Fatalf("unexpected hit point %+v", hit.P)
	}
}
