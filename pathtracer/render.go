package pathtracer

import (
	"fmt"

	"github.com/lumenforge/lux/film"
	"github.com/lumenforge/lux/internal/parallel"
	"github.com/lumenforge/lux/sampler"
	"github.com/lumenforge/lux/scene"
)

// dimsPerPixel reserves the sample dimensions a pixel's AA jitter and
// lens sampling consume before the integrator's own per-bounce
// dimensions begin.
const dimsPerPixel = 4

// RenderConfig configures one Render call's tiling, sampling and
// termination policy, spec.md §4.8/§6's "aaSamples", "halt.spp" and
// worker-count knobs.
type RenderConfig struct {
	TileSize             int
	Workers              int
	Seed                 uint64
	AASamplesPerAxis     int     // total samples per pixel is this value squared
	ConvergenceThreshold float32 // film.ConvergenceMax() stop threshold; 0 disables
}

// DefaultRenderConfig returns conservative tiling/sampling defaults.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{TileSize: DefaultTileSize, AASamplesPerAxis: 4, ConvergenceThreshold: 0.01}
}

// Runner drives one or more passes of in over scn into f, holding its tile
// repository and worker pool open across calls so a caller (the root
// package's RenderSession) can interleave pause/stop checks and halt-
// condition evaluation between passes instead of blocking until
// completion. Render is the non-interactive convenience wrapper that runs
// a Runner to completion in one call.
type Runner struct {
	cam    *scene.Camera
	scn    *scene.Scene
	f      *film.Film
	in     *Integrator
	cfg    RenderConfig
	repo   *TileRepository
	pool   *parallel.WorkerPool
	pass   int
	target int
}

// NewRunner builds a Runner for scn/f/in/cfg. scn must have a camera set.
func NewRunner(scn *scene.Scene, f *film.Film, in *Integrator, cfg RenderConfig) (*Runner, error) {
	cam := scn.Camera()
	if cam == nil {
		return nil, fmt.Errorf("pathtracer: scene has no camera")
	}
	target := cfg.AASamplesPerAxis * cfg.AASamplesPerAxis
	if target <= 0 {
		target = 16
	}
	return &Runner{
		cam:    cam,
		scn:    scn,
		f:      f,
		in:     in,
		cfg:    cfg,
		repo:   NewTileRepository(f.Width(), f.Height(), cfg.TileSize),
		pool:   parallel.NewWorkerPool(cfg.Workers),
		target: target,
	}, nil
}

// Close tears down the runner's worker pool. Idempotent-safe to call once
// the runner is done.
func (r *Runner) Close() { r.pool.Close() }

// Pass reports the next pass index RunPass will execute.
func (r *Runner) Pass() int { return r.pass }

// Done reports whether every tile has delivered its target sample count.
func (r *Runner) Done() bool { return r.repo.AllDone() }

// TileState exposes the runner's per-tile sample counts and done flags,
// the "renderState" spec.md §6's .rsm resume file persists.
func (r *Runner) TileState() (samples []int, done []bool) { return r.repo.TileState() }

// Restore overwrites the runner's pass counter and per-tile state from a
// previously captured snapshot, used when resuming a saved render.
func (r *Runner) Restore(pass int, samples []int, done []bool) error {
	if err := r.repo.RestoreTileState(samples, done); err != nil {
		return err
	}
	r.pass = pass
	return nil
}

// RunPass dispatches one pass over every pending tile, splatting each
// pixel's radiance estimate into the film, and reports whether the film
// has now converged (spec.md §4.8's tile-done criteria: target sample
// count reached, or — when the caller enabled the Convergence channel —
// the film's convergence metric fell below threshold). Returns false with
// no error when tiles remain pending for a future call.
func (r *Runner) RunPass() (done bool, err error) {
	pending := r.repo.PendingTiles()
	if len(pending) == 0 {
		return true, nil
	}

	width, height := r.f.Width(), r.f.Height()
	work := make([]func(), len(pending))
	for i, t := range pending {
		t := t
		work[i] = func() {
			renderTilePass(t, r.pass, r.cam, r.scn, r.f, r.in, r.cfg.Seed, width, height)
			t.Samples++
			if t.Samples >= r.target {
				r.repo.MarkDone(t)
			}
		}
	}
	r.pool.ExecuteAll(work)
	r.pass++

	if r.repo.AllDone() {
		return true, nil
	}
	if r.cfg.ConvergenceThreshold > 0 && r.pass > 1 && r.f.HasChannel(film.Convergence) && r.f.ConvergenceMax() <= r.cfg.ConvergenceThreshold {
		return true, nil
	}
	return false, nil
}

// Render drives in over scn's camera into f, dispatching tile work across
// an internal/parallel.WorkerPool until every tile has delivered
// aaSamples² samples per pixel or the film's convergence metric falls
// below cfg.ConvergenceThreshold (spec.md §4.8's tile-repository done
// criteria), whichever comes first.
func Render(scn *scene.Scene, f *film.Film, in *Integrator, cfg RenderConfig) error {
	r, err := NewRunner(scn, f, in, cfg)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		done, err := r.RunPass()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// renderTilePass renders pass-th sample of every pixel in t, splatting
// each pixel's radiance estimate into f.
func renderTilePass(t *Tile, pass int, cam *scene.Camera, scn *scene.Scene, f *film.Film, in *Integrator, seed uint64, width, height int) {
	aspect := float32(width) / float32(height)
	for y := t.Y; y < t.Y+t.Height; y++ {
		for x := t.X; x < t.X+t.Width; x++ {
			samp := sampler.NewTilePathSampler(seed, x, y)
			st := samp.State()
			st.SampleIndex = uint64(pass + 1)
			samp.Restore(st)

			jx, jy := float32(samp.Get(0)), float32(samp.Get(1))
			sx := (2*(float32(x)+jx)/float32(width) - 1) * aspect
			sy := 1 - 2*(float32(y)+jy)/float32(height)
			lensU, lensV := float32(samp.Get(2)), float32(samp.Get(3))

			ray := cam.GenerateRay(sx, sy, lensU, lensV)
			L := in.Li(ray, scn, samp, dimsPerPixel)
			f.Splat(x, y, film.RGB, []float32{L.R, L.G, L.B}, 1)
		}
	}
}
