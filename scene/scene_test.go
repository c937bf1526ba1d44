package scene

import (
	"testing"

	"github.com/lumenforge/lux/color"
	"github.com/lumenforge/lux/imagemap"
	"github.com/lumenforge/lux/light"
	"github.com/lumenforge/lux/material"
	"github.com/lumenforge/lux/math3"
	"github.com/lumenforge/lux/mesh"
)

func unitTriangleMesh(t *testing.T) *mesh.TriangleMesh {
	t.Helper()
	v := []math3.Point3{math3.P3(0, 0, 0), math3.P3(1, 0, 0), math3.P3(0, 1, 0)}
	m, err := mesh.NewTriangleMesh(v, [][3]int32{{0, 1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func newTestScene(t *testing.T) *Scene {
	t.Helper()
	return New(imagemap.NewMapCache(16))
}

func TestScene_AddObject_RejectsUndefinedMeshReference(t *testing.T) {
	s := newTestScene(t)
	if err := s.AddObject("tri", NewObject("missing", "", math3.Identity())); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err == nil {
		t.Fatal("expected undefined-reference ConfigError")
	}
}

func TestScene_Start_BuildsBoundsAndAccelerator(t *testing.T) {
	s := newTestScene(t)
	if err := s.AddMesh("tri", unitTriangleMesh(t)); err != nil {
		t.Fatal(err)
	}
	if err := s.AddMaterial("m", &material.Material{Kind: material.KindMatte}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddObject("obj", NewObject("tri", "m", math3.Identity())); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if !s.IsFrozen() {
		t.Fatal("expected scene to be frozen after Start")
	}
	bb := s.Bounds()
	if bb.Max.X < 0.9 || bb.Max.Y < 0.9 {
		t.Fatalf("unexpected bounds %+v", bb)
	}
}

func TestScene_Intersect_HitsRegisteredObject(t *testing.T) {
	s := newTestScene(t)
	if err := s.AddMesh("tri", unitTriangleMesh(t)); err != nil {
		t.Fatal(err)
	}
	if err := s.AddObject("obj", NewObject("tri", "", math3.Identity())); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	ray := math3.NewRay(math3.P3(0.1, 0.1, -5), math3.V3(0, 0, 1))
	hit, ok := s.Intersect(ray)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Object != "obj" {
		t.Fatalf("got object %q, want obj", hit.Object)
	}
}

func TestScene_LightDistribution_OrdersByPower(t *testing.T) {
	s := newTestScene(t)
	if err := s.AddLight("dim", &light.Light{Kind: light.KindPoint, Intensity: color.Gray(1)}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddLight("bright", &light.Light{Kind: light.KindPoint, Intensity: color.Gray(100)}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddMesh("tri", unitTriangleMesh(t)); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	dist := s.LightDistribution()
	if dist == nil {
		t.Fatal("expected a light distribution")
	}
	// keys sort alphabetically ("bright" before "dim"); "bright" carries
	// nearly all the power, so it occupies almost the entire [0,1) CDF span
	// and a low-u sample should land on it.
	idx, _ := dist.SampleDiscrete(0.01)
	if s.LightKeys()[idx] != "bright" {
		t.Fatalf("expected the brighter light near u=0.01, got %q", s.LightKeys()[idx])
	}
}

func TestScene_BeginSceneEdit_ReopensMutation(t *testing.T) {
	s := newTestScene(t)
	if err := s.AddMesh("tri", unitTriangleMesh(t)); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.AddMesh("tri2", unitTriangleMesh(t)); err == nil {
		t.Fatal("expected edit to be rejected while frozen")
	}
	s.BeginSceneEdit()
	if err := s.AddMesh("tri2", unitTriangleMesh(t)); err != nil {
		t.Fatal(err)
	}
}
