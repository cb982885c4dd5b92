package build

import (
	"sort"
	"strconv"

	"github.com/slipway-sh/slipwayd/internal/runtime"
)

// Tracks configuration accumulated while executing build steps.
//
// State flows linearly through the pipeline, the way ENV, WORKDIR, and USER
// directives accumulate through a Dockerfile: once set, a value applies to
// every subsequent step and to the exported image.
type stepState struct {
	workdir string
	uid     int // -1 until a user has been adopted.
	env     map[string]string
}

// Creates a new [stepState] with default values.
func newStepState() *stepState {
	return &stepState{
		uid: -1,
		env: make(map[string]string),
	}
}

// Adopts the given uid for all subsequent steps.
func (s *stepState) setUser(uid int) {
	s.uid = uid
}

// Sets the working directory for all subsequent steps.
func (s *stepState) setWorkdir(dir string) {
	s.workdir = dir
}

// Merges environment entries into the accumulated state.
func (s *stepState) mergeEnv(env map[string]string) {
	for k, v := range env {
		s.env[k] = v
	}
}

// Formats the environment as a sorted list of "key=value" strings.
//
// Sorting keeps exported image configs byte-identical across builds of the
// same manifest.
func (s *stepState) environ() []string {
	env := make([]string, 0, len(s.env))
	for k, v := range s.env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}

// Returns the exec overrides for the current state.
func (s *stepState) execOpts() runtime.ExecOpts {
	opts := runtime.ExecOpts{
		Env:     s.environ(),
		Workdir: s.workdir,
	}
	if s.uid >= 0 {
		opts.User = strconv.Itoa(s.uid)
	}
	return opts
}
