// Command luxrender renders a small built-in demonstration scene with the
// lux path tracer and saves the result to an image file.
package main

import (
	"flag"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/lumenforge/lux"
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

func main() {
	var (
		width   = flag.Int("width", 640, "output image width")
		height  = flag.Int("height", 480, "output image height")
		output  = flag.String("output", "render.png", "output file")
		aa      = flag.Int("aa", 4, "antialiasing samples per pixel axis (total spp is this squared)")
		workers = flag.Int("workers", 0, "worker goroutines (0 = GOMAXPROCS)")
		haltSPP = flag.Int("halt-spp", 0, "stop once this many samples per pixel accumulate (0 = run to convergence)")
		resume  = flag.String("resume", "", "save a resume file here after rendering finishes")
		verbose = flag.Bool("v", false, "enable info-level logging")
	)
	flag.Parse()

	if *verbose {
		lux.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))
	}

	scn := buildDemoScene()
	if err := scn.Start(); err != nil {
		log.Fatalf("building scene: %v", err)
	}

	f := film.New(*width, *height, film.RGB, film.Convergence)
	cfg := pathtracer.DefaultRenderConfig()
	cfg.AASamplesPerAxis = *aa
	cfg.Workers = *workers

	sess := lux.NewSession(scn, f, pathtracer.New(pathtracer.DefaultConfig()), cfg, lux.HaltConditions{
		SamplesPerPel: *haltSPP,
	})
	if err := sess.Start(); err != nil {
		log.Fatalf("starting session: %v", err)
	}

	start := time.Now()
	if err := sess.RenderFor(0); err != nil {
		log.Fatalf("rendering: %v", err)
	}

	stats := sess.Stats()
	log.Printf("rendered %.1f spp in %s (%.0f samples/sec)", stats.SamplesPerPel, time.Since(start), stats.SamplesPerSec)

	if *resume != "" {
		if err := sess.SaveResumeFile(*resume); err != nil {
			log.Fatalf("saving resume file: %v", err)
		}
		log.Printf("resume state saved to %s", *resume)
	}

	if err := f.SaveOutput(*output, film.RGB, true); err != nil {
		log.Fatalf("saving output: %v", err)
	}
	log.Printf("image saved to %s (%dx%d)", *output, *width, *height)
}

// buildDemoScene assembles a small Cornell-box-style scene: a ground quad,
// an emissive quad overhead, and a raised block, entirely from built-in
// primitives so the command has no external asset dependency.
func buildDemoScene() *scene.Scene {
	scn := scene.New(imagemap.NewMapCache(64))

	addQuad := func(name string, p0, p1, p2, p3 math3.Point3) *mesh.TriangleMesh {
		verts := []math3.Point3{p0, p1, p2, p3}
		tris := [][3]int32{{0, 1, 2}, {0, 2, 3}}
		m, err := mesh.NewTriangleMesh(verts, tris)
		if err != nil {
			log.Fatalf("building mesh %s: %v", name, err)
		}
		if err := scn.AddMesh(name, m); err != nil {
			log.Fatalf("adding mesh %s: %v", name, err)
		}
		return m
	}

	addQuad("ground",
		math3.P3(-5, -2, -5), math3.P3(5, -2, -5),
		math3.P3(5, -2, 5), math3.P3(-5, -2, 5))
	addQuad("block",
		math3.P3(-1, -2, -1), math3.P3(1, -2, -1),
		math3.P3(1, 0, -1), math3.P3(-1, 0, -1))
	emitter := addQuad("emitter",
		math3.P3(-2, 4, -2), math3.P3(2, 4, -2),
		math3.P3(2, 4, 2), math3.P3(-2, 4, 2))

	if err := scn.AddMaterial("white", &material.Material{Kind: material.KindMatte}); err != nil {
		log.Fatalf("adding material: %v", err)
	}
	if err := scn.AddMaterial("mirror", &material.Material{Kind: material.KindMirror}); err != nil {
		log.Fatalf("adding material: %v", err)
	}

	if err := scn.AddLight("sun", &light.Light{
		Kind:     light.KindTriangleArea,
		Mesh:     emitter,
		TriIndex: 0,
		Radiance: color.Gray(8),
		TwoSided: false,
	}); err != nil {
		log.Fatalf("adding light: %v", err)
	}

	groundObj := scene.NewObject("ground", "white", math3.Identity())
	if err := scn.AddObject("groundObj", groundObj); err != nil {
		log.Fatalf("adding object: %v", err)
	}
	blockObj := scene.NewObject("block", "mirror", math3.Identity())
	if err := scn.AddObject("blockObj", blockObj); err != nil {
		log.Fatalf("adding object: %v", err)
	}
	emitterObj := scene.NewObject("emitter", "white", math3.Identity())
	emitterObj.LightName = "sun"
	if err := scn.AddObject("emitterObj", emitterObj); err != nil {
		log.Fatalf("adding object: %v", err)
	}

	cam := scene.NewCamera(math3.P3(0, 1, 8), math3.P3(0, -0.5, 0), math3.V3(0, 1, 0), float32(50*math.Pi/180))
	if err := scn.SetCamera(cam); err != nil {
		log.Fatalf("setting camera: %v", err)
	}
	return scn
}
