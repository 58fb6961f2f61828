package strain

import (
	"fmt"
	"sync"
	"time"
)

// RunInfo tracks the lifecycle of a single measurement run and issues
// unique iteration numbers to measurement units created during it.
type RunInfo interface {
	// Started returns true once Start has been called and until Stop is
	// called. A started run may no longer be running; see Running.
	Started() bool
	// Running returns true while the run is started and its time and
	// iteration budgets are not yet exhausted. Running implies Started.
	Running() bool
	// NextIteration returns the next unique, monotonically increasing
	// iteration number, starting at 0.
	NextIteration() uint64
	// Start begins the run.
	Start()
	// Stop ends the run. Stopping is terminal: a stopped run is neither
	// started nor running until Reset.
	Stop()
	// Reset discards the run's progress. A live run keeps going with a
	// fresh measurement window; any other run returns to its zero state.
	Reset()
}

// Run is a time and/or iteration bounded RunInfo. The zero value is an
// unbounded run that has not been started.
type Run struct {
	duration time.Duration
	maxIters uint64

	mu         sync.Mutex
	started    bool
	stopped    bool
	startedAt  time.Time
	endedAt    time.Time
	iterations uint64
}

// NewRun returns a new Run with no bounds which are overridden by the
// optionally provided opts.
func NewRun(opts ...func(*Run)) *Run {
	r := &Run{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Duration returns a functional option which bounds a Run to the given
// wall clock duration. After it elapses the Run is no longer running but
// remains started until Stop, so that the last iteration in flight can
// still be reported.
func Duration(d time.Duration) func(*Run) {
	return func(r *Run) { r.duration = d }
}

// Iterations returns a functional option which bounds a Run to n
// iterations.
func Iterations(n uint64) func(*Run) {
	return func(r *Run) { r.maxIters = n }
}

// Started implements RunInfo.
func (r *Run) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started && !r.stopped
}

// Running implements RunInfo.
func (r *Run) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started || r.stopped {
		return false
	}
	if r.duration > 0 && time.Since(r.startedAt) >= r.duration {
		return false
	}
	if r.maxIters > 0 && r.iterations >= r.maxIters {
		return false
	}
	return true
}

// NextIteration implements RunInfo.
func (r *Run) NextIteration() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.iterations
	r.iterations++
	return i
}

// Start implements RunInfo. Starting an already started Run has no effect.
func (r *Run) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	r.startedAt = time.Now()
}

// Stop implements RunInfo. Stopping an unstarted Run has no effect.
func (r *Run) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started || r.stopped {
		return
	}
	r.stopped = true
	r.endedAt = time.Now()
}

// Reset implements RunInfo. A live Run keeps its bounds and restarts its
// measurement window with the iteration counter back at 0, which is how
// results accumulated during a warm-up phase are discarded. A stopped or
// unstarted Run returns fully to the zero state.
func (r *Run) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.iterations = 0
	if r.started && !r.stopped {
		r.startedAt = time.Now()
		return
	}
	r.started = false
	r.stopped = false
	r.startedAt = time.Time{}
	r.endedAt = time.Time{}
}

// RunTime returns the wall clock time the Run has been running for, or
// the total time of a stopped Run. It returns 0 for an unstarted Run.
func (r *Run) RunTime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case !r.started:
		return 0
	case r.stopped:
		return r.endedAt.Sub(r.startedAt)
	default:
		return time.Since(r.startedAt)
	}
}

// String returns a pretty-printed description of the run, e.g.:
//
//	Run{128 iterations in 2.5s}
func (r *Run) String() string {
	r.mu.Lock()
	iters := r.iterations
	r.mu.Unlock()
	return fmt.Sprintf("Run{%d iterations in %s}", iters, r.RunTime())
}

var _ RunInfo = (*Run)(nil)
