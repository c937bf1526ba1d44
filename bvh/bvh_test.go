package bvh

import (
	"testing"

	"github.com/lumenforge/lux/math3"
)

type sphere struct {
	center math3.Point3
	radius float32
}

func (s sphere) Bounds() math3.BBox3 {
	r := math3.V3(s.radius, s.radius, s.radius)
	return math3.BBox3{Min: s.center.Add(r.Neg()), Max: s.center.Add(r)}
}

func TestBuild_EmptyIsSafe(t *testing.T) {
	b := Build[sphere](nil)
	if b.Len() != 0 {
		t.Fatalf("expected empty BVH")
	}
	if _, _, ok := b.IntersectRay(math3.NewRay(math3.P3(0, 0, 0), math3.V3(0, 0, 1)), func(sphere) (float32, bool) { return 0, false }); ok {
		t.Fatalf("expected no hit on empty tree")
	}
}

func TestBuild_NearestFindsClosest(t *testing.T) {
	items := []sphere{
		{center: math3.P3(0, 0, 0), radius: 1},
		{center: math3.P3(10, 0, 0), radius: 1},
		{center: math3.P3(-5, 5, 5), radius: 1},
	}
	b := Build(items)
	got, _, ok := b.Nearest(math3.P3(9, 0, 0), 100, func(sphere) bool { return true })
	if !ok {
		t.Fatal("expected a match")
	}
	if got.center.X != 10 {
		t.Fatalf("got nearest center %v, want x=10", got.center)
	}
}

func TestBuild_WithinRadius(t *testing.T) {
	items := []sphere{
		{center: math3.P3(0, 0, 0), radius: 1},
		{center: math3.P3(1, 0, 0), radius: 1},
		{center: math3.P3(50, 0, 0), radius: 1},
	}
	b := Build(items)
	got := b.WithinRadius(math3.P3(0, 0, 0), 2, func(sphere) bool { return true })
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
}

func TestBuild_IntersectRayHitsNearestBox(t *testing.T) {
	items := []sphere{
		{center: math3.P3(0, 0, 5), radius: 1},
		{center: math3.P3(0, 0, 10), radius: 1},
	}
	b := Build(items)
	ray := math3.NewRay(math3.P3(0, 0, 0), math3.V3(0, 0, 1))
	got, _, ok := b.IntersectRay(ray, func(s sphere) (float32, bool) {
		return s.center.Z, true
	})
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.center.Z != 5 {
		t.Fatalf("got hit at z=%v, want the nearer box at z=5", got.center.Z)
	}
}
