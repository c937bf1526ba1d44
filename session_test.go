package lux

import (
	"math"
	"os"
	"testing"
	"time"

	"github.com/lumenforge/lux/color"
	"github.com/lumenforge/lux/film"
	"github.com/lumenforge/lux/imagemap"
	"github.com/lumenforge/lux/light"
	"github.com/lumenforge/lux/material"
	"github.com/lumenforge/lux/math3"
	"github.com/lumenforge/lux/mesh"
	"github.com/lumenforge/lux/pathtracer"
	"github.com/lumenforge/lux/scene"
)

func buildTestScene(t *testing.T) *scene.Scene {
	t.Helper()
	s := scene.New(imagemap.NewMapCache(16))

	verts := []math3.Point3{math3.P3(-5, -5, 0), math3.P3(5, -5, 0), math3.P3(0, 5, 0)}
	m, err := mesh.NewTriangleMesh(verts, [][3]int32{{0, 1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AddMesh("emitter", m); err != nil {
		t.Fatal(err)
	}
	if err := s.AddMaterial("white", &material.Material{Kind: material.KindMatte}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddLight("sun", &light.Light{Kind: light.KindTriangleArea, Mesh: m, TriIndex: 0, Radiance: color.Gray(5), TwoSided: true}); err != nil {
		t.Fatal(err)
	}
	obj := scene.NewObject("emitter", "white", math3.Identity())
	obj.LightName = "sun"
	if err := s.AddObject("emitterObj", obj); err != nil {
		t.Fatal(err)
	}

	cam := scene.NewCamera(math3.P3(0, 0, 10), math3.P3(0, 0, 0), math3.V3(0, 1, 0), float32(60*math.Pi/180))
	if err := s.SetCamera(cam); err != nil {
		t.Fatal(err)
	}
	return s
}

func testRenderConfig() pathtracer.RenderConfig {
	cfg := pathtracer.DefaultRenderConfig()
	cfg.AASamplesPerAxis = 2
	cfg.Workers = 2
	cfg.ConvergenceThreshold = 0
	return cfg
}

func TestSession_StartRequiresCreated(t *testing.T) {
	s := buildTestScene(t)
	f := film.New(8, 8)
	sess := NewSession(s, f, pathtracer.New(pathtracer.DefaultConfig()), testRenderConfig(), HaltConditions{})
	if err := sess.Start(); err != nil {
		t.Fatal(err)
	}
	if err := sess.Start(); err == nil {
		t.Fatal("expected an error starting an already-Started session")
	}
}

func TestSession_RenderFor_ReachesDoneByTargetSamples(t *testing.T) {
	s := buildTestScene(t)
	f := film.New(8, 8)
	sess := NewSession(s, f, pathtracer.New(pathtracer.DefaultConfig()), testRenderConfig(), HaltConditions{})
	if err := sess.Start(); err != nil {
		t.Fatal(err)
	}
	if err := sess.RenderFor(0); err != nil {
		t.Fatal(err)
	}
	if sess.State() != Started {
		t.Fatalf("state = %v, want Started (convergence exit, not a halt)", sess.State())
	}
	stats := sess.Stats()
	if stats.SamplesPerPel <= 0 {
		t.Fatalf("expected positive SamplesPerPel after rendering, got %v", stats.SamplesPerPel)
	}
}

func TestSession_HaltSPP_StopsEarly(t *testing.T) {
	s := buildTestScene(t)
	f := film.New(8, 8)
	sess := NewSession(s, f, pathtracer.New(pathtracer.DefaultConfig()), testRenderConfig(), HaltConditions{SamplesPerPel: 1})
	if err := sess.Start(); err != nil {
		t.Fatal(err)
	}
	if err := sess.RenderFor(0); err != nil {
		t.Fatal(err)
	}
	stats := sess.Stats()
	if !stats.Halted || stats.HaltReason != "halt.spp" {
		t.Fatalf("expected halt.spp to fire, got Halted=%v Reason=%q", stats.Halted, stats.HaltReason)
	}
	if sess.State() != Stopped {
		t.Fatalf("state = %v, want Stopped after a halt condition fires", sess.State())
	}
}

func TestSession_PauseBlocksRenderForUntilResume(t *testing.T) {
	s := buildTestScene(t)
	f := film.New(64, 64)
	cfg := testRenderConfig()
	cfg.AASamplesPerAxis = 16 // enough passes that RenderFor is still running when Pause fires
	sess := NewSession(s, f, pathtracer.New(pathtracer.DefaultConfig()), cfg, HaltConditions{})
	if err := sess.Start(); err != nil {
		t.Fatal(err)
	}

	renderDone := make(chan error, 1)
	go func() { renderDone <- sess.RenderFor(0) }()

	time.Sleep(20 * time.Millisecond)
	if err := sess.Pause(); err != nil {
		t.Fatal(err)
	}

	select {
	case <-renderDone:
		t.Fatal("RenderFor returned while session was Paused")
	case <-time.After(50 * time.Millisecond):
	}

	if err := sess.Resume(); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-renderDone:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RenderFor did not return after Resume")
	}
}

func TestSession_BeginEndSceneEdit_RebuildsRunner(t *testing.T) {
	s := buildTestScene(t)
	f := film.New(8, 8)
	sess := NewSession(s, f, pathtracer.New(pathtracer.DefaultConfig()), testRenderConfig(), HaltConditions{})
	if err := sess.Start(); err != nil {
		t.Fatal(err)
	}
	if err := sess.BeginSceneEdit(); err != nil {
		t.Fatal(err)
	}
	if sess.State() != InSceneEdit {
		t.Fatalf("state = %v, want InSceneEdit", sess.State())
	}
	if err := sess.EndSceneEdit(); err != nil {
		t.Fatal(err)
	}
	if sess.State() != Started {
		t.Fatalf("state = %v, want Started after EndSceneEdit", sess.State())
	}
}

func TestSession_SaveLoadResumeFile_RoundTrips(t *testing.T) {
	s := buildTestScene(t)
	f := film.New(8, 8)
	haltOneSample := HaltConditions{SamplesPerPel: 1}
	sess := NewSession(s, f, pathtracer.New(pathtracer.DefaultConfig()), testRenderConfig(), haltOneSample)
	if err := sess.Start(); err != nil {
		t.Fatal(err)
	}
	if err := sess.RenderFor(0); err != nil {
		t.Fatal(err)
	}

	name := t.TempDir() + "/render.rsm"
	if err := sess.SaveResumeFile(name); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(name)

	s2 := buildTestScene(t)
	loaded, err := LoadResumeFile(name, s2, pathtracer.New(pathtracer.DefaultConfig()))
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Film().Width() != f.Width() || loaded.Film().Height() != f.Height() {
		t.Fatalf("loaded film dims = %dx%d, want %dx%d", loaded.Film().Width(), loaded.Film().Height(), f.Width(), f.Height())
	}
	if loaded.runner.Pass() != sess.runner.Pass() {
		t.Fatalf("loaded pass = %d, want %d", loaded.runner.Pass(), sess.runner.Pass())
	}
}
