package lux

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lumenforge/lux/film"
	"github.com/lumenforge/lux/pathtracer"
	"github.com/lumenforge/lux/scene"
)

// State is a RenderSession's lifecycle state, spec.md §4.9's
// "Created → Started → (Paused ↔ Started ↔ InSceneEdit) → Stopped".
type State int

const (
	Created State = iota
	Started
	Paused
	InSceneEdit
	Stopped
)

func (s State) String() string {
	switch s {
	case Created:
		return "Created"
	case Started:
		return "Started"
	case Paused:
		return "Paused"
	case InSceneEdit:
		return "InSceneEdit"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// HaltConditions are spec.md §6's recognized `halt.*` properties.
// A zero value field means that condition never fires.
type HaltConditions struct {
	Time           time.Duration // halt.time
	SamplesPerPel  int           // halt.spp
	NoiseThreshold float32       // halt.noisethreshold: convergence-channel max below this value halts
}

// Stats is the snapshot updateStats() refreshes, spec.md §4.9: "sample
// counts, sample/sec, elapsed time, per-channel convergence metrics".
// Reads and writes both go through Session's statsMu, the "single
// reader-writer lock; readers are updateStats()" of spec.md §5.
type Stats struct {
	Pass           int
	SamplesPerPel  float64
	SamplesPerSec  float64
	Elapsed        time.Duration
	ConvergenceMax float32
	Halted         bool
	HaltReason     string
	Fatal          error
}

// RenderSession is spec.md §4.9's session: the owner of one scene, one
// film, one path tracer configuration, and the accelerators/worker pool
// built from them. Grounded on scene.Scene's editing-gated mutation
// pattern (requireEditing/BeginSceneEdit/EndSceneEdit), generalized one
// level up to the state machine that wraps Scene, Film and the render
// loop together.
type RenderSession struct {
	mu    sync.Mutex
	state State

	scn *scene.Scene
	f   *film.Film
	in  *pathtracer.Integrator
	cfg pathtracer.RenderConfig
	halt HaltConditions

	runner *pathtracer.Runner

	statsMu sync.Mutex
	stats   Stats
	started time.Time

	resumeCond *sync.Cond
}

// NewSession returns a Created session over scn/f, using in's integrator
// configuration and cfg's tiling/sampling policy. scn may still be
// mutated (scene-edit mode) until Start.
func NewSession(scn *scene.Scene, f *film.Film, in *pathtracer.Integrator, cfg pathtracer.RenderConfig, halt HaltConditions) *RenderSession {
	s := &RenderSession{scn: scn, f: f, in: in, cfg: cfg, halt: halt, state: Created}
	s.resumeCond = sync.NewCond(&s.mu)
	return s
}

// State returns the session's current lifecycle state.
func (s *RenderSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start freezes the scene (building the mesh BVH, light distribution, and
// any other accelerator whose dependency changed) and builds the
// session's tile runner and worker pool, spec.md §4.9's "builds all
// accelerators and spawns workers". RenderFor drives the actual render
// loop; Start only performs the one-time accelerator/runner build so
// callers can inspect session state before committing CPU time.
func (s *RenderSession) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Created {
		return &InvariantError{Reason: fmt.Sprintf("Start called in state %s, want Created", s.state)}
	}
	if !s.scn.IsFrozen() {
		if err := s.scn.Start(); err != nil {
			return err
		}
	}
	runner, err := pathtracer.NewRunner(s.scn, s.f, s.in, s.cfg)
	if err != nil {
		return err
	}
	s.runner = runner
	s.state = Started
	s.started = time.Now()
	return nil
}

// Pause blocks subsequent tile pulls without releasing accelerators,
// spec.md §4.9. The current pass in flight still completes.
func (s *RenderSession) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Started {
		return &InvariantError{Reason: fmt.Sprintf("Pause called in state %s, want Started", s.state)}
	}
	s.state = Paused
	return nil
}

// Resume unblocks a Paused session's tile pulls.
func (s *RenderSession) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Paused {
		return &InvariantError{Reason: fmt.Sprintf("Resume called in state %s, want Paused", s.state)}
	}
	s.state = Started
	s.resumeCond.Broadcast()
	return nil
}

// BeginSceneEdit is an implicit pause plus a flag granting mutation rights
// to the scene, spec.md §4.9.
func (s *RenderSession) BeginSceneEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Started && s.state != Paused {
		return &InvariantError{Reason: fmt.Sprintf("BeginSceneEdit called in state %s", s.state)}
	}
	s.scn.BeginSceneEdit()
	s.state = InSceneEdit
	return nil
}

// EndSceneEdit rebuilds only the accelerators whose dependencies changed
// (scene.Scene.EndSceneEdit's dirty-bit discipline) and resumes rendering.
func (s *RenderSession) EndSceneEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != InSceneEdit {
		return &InvariantError{Reason: fmt.Sprintf("EndSceneEdit called in state %s, want InSceneEdit", s.state)}
	}
	if err := s.scn.EndSceneEdit(); err != nil {
		return err
	}
	runner, err := pathtracer.NewRunner(s.scn, s.f, s.in, s.cfg)
	if err != nil {
		return err
	}
	if s.runner != nil {
		s.runner.Close()
	}
	s.runner = runner
	s.state = Started
	s.resumeCond.Broadcast()
	return nil
}

// Stop closes the tile runner's worker pool and moves the session to
// Stopped. The Scene (with its accelerators and light tables) and the Film
// are left as they are.
func (s *RenderSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Stopped {
		return
	}
	if s.runner != nil {
		s.runner.Close()
	}
	s.state = Stopped
	s.resumeCond.Broadcast()
}

// waitIfPaused blocks the calling goroutine (the session's single render
// loop, not a worker — workers never see pause/stop directly) while the
// session is Paused or under scene edit, spec.md §5: "pause() is soft:
// workers finish the current tile then park on a condition variable."
func (s *RenderSession) waitIfPaused() (stop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.state == Paused || s.state == InSceneEdit {
		s.resumeCond.Wait()
	}
	return s.state == Stopped
}

// RenderFor runs the session's render loop, dispatching one tile-runner
// pass at a time and checking pause/stop/halt conditions between passes
// (spec.md §5: "Timeouts: halt.time is enforced in updateStats... the
// session transitions to Stopped on the next tile boundary"), until
// either the film converges, a halt condition fires, budget expires, or
// the session is stopped. budget <= 0 means no time limit beyond the halt
// conditions themselves.
func (s *RenderSession) RenderFor(budget time.Duration) error {
	s.mu.Lock()
	if s.state != Started {
		s.mu.Unlock()
		return &InvariantError{Reason: fmt.Sprintf("RenderFor called in state %s, want Started", s.state)}
	}
	runner := s.runner
	s.mu.Unlock()

	deadline := time.Time{}
	if budget > 0 {
		deadline = time.Now().Add(budget)
	}

	for {
		if stop := s.waitIfPaused(); stop {
			return nil
		}
		if s.State() == Stopped {
			return nil
		}

		done, err := runner.RunPass()
		s.updateStats(runner)
		if err != nil {
			s.statsMu.Lock()
			s.stats.Fatal = err
			s.statsMu.Unlock()
			return err
		}
		if done {
			return nil
		}
		if halted, reason := s.checkHalt(); halted {
			s.statsMu.Lock()
			s.stats.Halted = true
			s.stats.HaltReason = reason
			s.statsMu.Unlock()
			s.mu.Lock()
			s.state = Stopped
			s.mu.Unlock()
			return nil
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return nil
		}
	}
}

// updateStats refreshes sample counts, sample/sec, elapsed time and
// per-channel convergence metrics, spec.md §4.9's updateStats().
func (s *RenderSession) updateStats(r *pathtracer.Runner) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	elapsed := time.Since(s.started)
	samples, _ := r.TileState()
	spp := 0.0
	if len(samples) > 0 {
		total := 0
		for _, v := range samples {
			total += v
		}
		spp = float64(total) / float64(len(samples))
	}
	sps := 0.0
	if elapsed > 0 {
		sps = spp * float64(s.f.Width()*s.f.Height()) / elapsed.Seconds()
	}
	s.stats.Pass = r.Pass()
	s.stats.SamplesPerPel = spp
	s.stats.SamplesPerSec = sps
	s.stats.Elapsed = elapsed
	if s.f.HasChannel(film.Convergence) {
		s.stats.ConvergenceMax = s.f.ConvergenceMax()
	}
}

// checkHalt evaluates halt.time/halt.spp/halt.noisethreshold against the
// last-refreshed stats snapshot.
func (s *RenderSession) checkHalt() (bool, string) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()

	if s.halt.Time > 0 && s.stats.Elapsed >= s.halt.Time {
		return true, "halt.time"
	}
	if s.halt.SamplesPerPel > 0 && s.stats.SamplesPerPel >= float64(s.halt.SamplesPerPel) {
		return true, "halt.spp"
	}
	if s.halt.NoiseThreshold > 0 && s.f.HasChannel(film.Convergence) && s.stats.ConvergenceMax <= s.halt.NoiseThreshold {
		return true, "halt.noisethreshold"
	}
	return false, ""
}

// Stats returns the most recent stats snapshot.
func (s *RenderSession) Stats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.stats
}

// statsPrinter formats sample/sec figures with locale-appropriate grouping
// (e.g. "1,234,567" rather than a bare %.0f) for progress reporting.
var statsPrinter = message.NewPrinter(language.English)

// String renders the snapshot as a one-line progress report, the form a
// session driver prints between passes or on a halt condition firing.
func (s Stats) String() string {
	status := fmt.Sprintf("pass %d, %.2f spp", s.Pass, s.SamplesPerPel)
	status += statsPrinter.Sprintf(", %.0f samples/sec, %s elapsed", s.SamplesPerSec, s.Elapsed.Round(time.Millisecond))
	if s.Halted {
		status += fmt.Sprintf(", halted (%s)", s.HaltReason)
	}
	return status
}

// Film returns the session's film.
func (s *RenderSession) Film() *film.Film { return s.f }

// Scene returns the session's scene.
func (s *RenderSession) Scene() *scene.Scene { return s.scn }
