// Package lux implements a physically-based, CPU-only offline path
// tracer: scene graph, BVH-accelerated mesh and bevel geometry, an
// image-map/texture pipeline, a direct-lighting sampling cache, and a
// tile-parallel path-tracing render session with pause/resume/scene-edit
// and resume-file checkpointing.
//
// # Quick Start
//
//	cache := imagemap.NewMapCache(256)
//	scn := scene.New(cache)
//	// ... scn.AddMesh/AddMaterial/AddLight/AddObject/SetCamera ...
//	if err := scn.Start(); err != nil {
//		log.Fatal(err)
//	}
//
//	f := film.New(1920, 1080, film.RGB)
//	integ := pathtracer.New(pathtracer.DefaultConfig())
//	sess := lux.NewSession(scn, f, integ, pathtracer.DefaultRenderConfig(), lux.HaltConditions{SamplesPerPel: 256})
//	if err := sess.Start(); err != nil {
//		log.Fatal(err)
//	}
//	if err := sess.RenderFor(0); err != nil {
//		log.Fatal(err)
//	}
//	sess.Film().SaveOutput("out.png", film.RGB, true)
//
// # Architecture
//
// The library is organized into:
//   - math3/color/imagemap/texture: the numeric and shading foundation
//   - bvh/mesh/scene/light: the scene graph and its spatial accelerators
//   - sampler/dlsc/pathtracer: the sampling and integration pipeline
//   - film: the accumulation buffer and imaging pipeline
//   - propbag: the flat property-bag configuration layer
//   - the root package: RenderSession, the lifecycle state machine tying
//     the above together
//
// # Coordinate System
//
// Right-handed, column-vector transforms; normals are transformed by the
// inverse-transpose of the object-to-world matrix (spec.md §6).
//
// # Concurrency
//
// A RenderSession's render loop dispatches each pass's tiles across an
// internal worker pool; the scene, mesh BVH, bevel data, texture graph,
// light definitions, DLSC and image-maps are immutable for the duration
// of a pass and rebuilt only across a BeginSceneEdit/EndSceneEdit window.
package lux
