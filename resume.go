package lux

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lumenforge/lux/film"
	"github.com/lumenforge/lux/pathtracer"
	"github.com/lumenforge/lux/scene"
)

// resumeMagic and resumeVersion identify the .rsm resume file format of
// spec.md §6: "{properties, scene, renderState, film}". Scene content
// itself is not re-serialized here — see the Open decision on the .rsm
// layout in DESIGN.md — so the persisted layout is {renderConfig, haltConditions, renderState,
// film}; the caller supplies the matching *scene.Scene at load time.
const (
	resumeMagic   uint32 = 0x4c58_5253 // "LXRS"
	resumeVersion uint32 = 1
)

// SaveResumeFile safe-saves the session's render configuration, halt
// conditions, tile/pass state and film to name, spec.md §4.9's
// saveResumeFile. Follows the temp-file-then-rename pattern dlsc.Cache and
// film.Film already use for their own persistent formats.
func (s *RenderSession) SaveResumeFile(name string) error {
	s.mu.Lock()
	runner := s.runner
	cfg := s.cfg
	halt := s.halt
	s.mu.Unlock()

	if runner == nil {
		return &InvariantError{Reason: "SaveResumeFile called before Start"}
	}

	tmp := name + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return &ResourceError{Source: name, Reason: err.Error()}
	}
	if err := writeResumeFile(out, cfg, halt, runner, s.f); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return &ResourceError{Source: name, Reason: err.Error()}
	}
	return os.Rename(tmp, name)
}

func writeResumeFile(w io.Writer, cfg pathtracer.RenderConfig, halt HaltConditions, runner *pathtracer.Runner, f *film.Film) error {
	bw := bufio.NewWriter(w)

	hdr := []uint32{resumeMagic, resumeVersion}
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return err
	}

	rc := []int64{
		int64(cfg.TileSize), int64(cfg.Workers), int64(cfg.Seed),
		int64(cfg.AASamplesPerAxis),
	}
	if err := binary.Write(bw, binary.LittleEndian, rc); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, cfg.ConvergenceThreshold); err != nil {
		return err
	}

	ht := []int64{int64(halt.Time), int64(halt.SamplesPerPel)}
	if err := binary.Write(bw, binary.LittleEndian, ht); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, halt.NoiseThreshold); err != nil {
		return err
	}

	samples, done := runner.TileState()
	if err := binary.Write(bw, binary.LittleEndian, int64(runner.Pass())); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, int64(len(samples))); err != nil {
		return err
	}
	samples32 := make([]int32, len(samples))
	for i, v := range samples {
		samples32[i] = int32(v)
	}
	if err := binary.Write(bw, binary.LittleEndian, samples32); err != nil {
		return err
	}
	doneBits := make([]byte, len(done))
	for i, v := range done {
		if v {
			doneBits[i] = 1
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, doneBits); err != nil {
		return err
	}

	if err := f.Serialize(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// LoadResumeFile loads a session previously saved by SaveResumeFile,
// replaying it against scn (which must describe the same scene the
// session was saved with — see the Open decision on scene persistence in
// DESIGN.md) and in. The returned session is Started and ready for
// RenderFor to continue exactly where the saved render left off.
func LoadResumeFile(name string, scn *scene.Scene, in *pathtracer.Integrator) (*RenderSession, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, &ResourceError{Source: name, Reason: err.Error()}
	}
	defer f.Close()
	return readResumeFile(f, scn, in)
}

func readResumeFile(r io.Reader, scn *scene.Scene, in *pathtracer.Integrator) (*RenderSession, error) {
	var hdr [2]uint32
	if err := binary.Read(r, binary.LittleEndian, hdr[:]); err != nil {
		return nil, &ResourceError{Reason: "resume: reading header: " + err.Error()}
	}
	if hdr[0] != resumeMagic {
		return nil, &ResourceError{Reason: fmt.Sprintf("resume: bad magic %#x", hdr[0])}
	}
	if hdr[1] != resumeVersion {
		return nil, &ResourceError{Reason: fmt.Sprintf("resume: unsupported version %d", hdr[1])}
	}

	var rc [4]int64
	if err := binary.Read(r, binary.LittleEndian, rc[:]); err != nil {
		return nil, &ResourceError{Reason: "resume: reading render config: " + err.Error()}
	}
	var convergence float32
	if err := binary.Read(r, binary.LittleEndian, &convergence); err != nil {
		return nil, &ResourceError{Reason: "resume: reading convergence threshold: " + err.Error()}
	}
	cfg := pathtracer.RenderConfig{
		TileSize:             int(rc[0]),
		Workers:              int(rc[1]),
		Seed:                 uint64(rc[2]),
		AASamplesPerAxis:     int(rc[3]),
		ConvergenceThreshold: convergence,
	}

	var ht [2]int64
	if err := binary.Read(r, binary.LittleEndian, ht[:]); err != nil {
		return nil, &ResourceError{Reason: "resume: reading halt conditions: " + err.Error()}
	}
	var noiseThreshold float32
	if err := binary.Read(r, binary.LittleEndian, &noiseThreshold); err != nil {
		return nil, &ResourceError{Reason: "resume: reading noise threshold: " + err.Error()}
	}
	halt := HaltConditions{
		Time:           time.Duration(ht[0]),
		SamplesPerPel:  int(ht[1]),
		NoiseThreshold: noiseThreshold,
	}

	var passAndCount [2]int64
	if err := binary.Read(r, binary.LittleEndian, passAndCount[:]); err != nil {
		return nil, &ResourceError{Reason: "resume: reading render state header: " + err.Error()}
	}
	pass := int(passAndCount[0])
	n := int(passAndCount[1])

	samples32 := make([]int32, n)
	if err := binary.Read(r, binary.LittleEndian, samples32); err != nil {
		return nil, &ResourceError{Reason: "resume: reading tile samples: " + err.Error()}
	}
	samples := make([]int, n)
	for i, v := range samples32 {
		samples[i] = int(v)
	}

	doneBits := make([]byte, n)
	if err := binary.Read(r, binary.LittleEndian, doneBits); err != nil {
		return nil, &ResourceError{Reason: "resume: reading tile done flags: " + err.Error()}
	}
	done := make([]bool, n)
	for i, v := range doneBits {
		done[i] = v != 0
	}

	loadedFilm, err := film.Deserialize(r)
	if err != nil {
		return nil, err
	}

	sess := NewSession(scn, loadedFilm, in, cfg, halt)
	if err := sess.Start(); err != nil {
		return nil, err
	}
	if err := sess.runner.Restore(pass, samples, done); err != nil {
		return nil, &ResourceError{Reason: "resume: restoring tile state: " + err.Error()}
	}
	return sess, nil
}
