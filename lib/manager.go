package strain

import (
	"fmt"
	"sync"
)

// ReportManager owns the registry of active Reporters, gates measurement
// unit creation and dispatch on the state of the current run, and fans
// out report and lifecycle calls to every registered Reporter.
//
// All methods are safe for concurrent use: one goroutine may drive
// iterations with NewMeasurementUnit and Report while others register or
// unregister Reporters and drive lifecycle transitions.
type ReportManager struct {
	observe Observer

	mu        sync.RWMutex
	run       RunInfo
	reporters map[Reporter]struct{}
}

// NewReportManager returns a new ReportManager with no Reporters and no
// RunInfo, modified by the optionally provided opts. A RunInfo must be
// assigned with SetRunInfo before units can be created or reported.
func NewReportManager(opts ...func(*ReportManager)) *ReportManager {
	rm := &ReportManager{
		observe:   func(Event) {},
		reporters: make(map[Reporter]struct{}),
	}
	for _, opt := range opts {
		opt(rm)
	}
	return rm
}

// WithObserver returns a functional option which installs fn as the
// manager's diagnostic hook. The manager calls fn synchronously on
// notable transitions and failures; see Event.
func WithObserver(fn Observer) func(*ReportManager) {
	return func(rm *ReportManager) { rm.observe = fn }
}

// NewMeasurementUnit returns a new MeasurementUnit carrying the next
// unique iteration number, or nil if the run is not running. A nil unit
// is not an error: it tells the iteration driver to skip the iteration
// because the run has not started yet or has already finished.
func (rm *ReportManager) NewMeasurementUnit() *MeasurementUnit {
	rm.mu.RLock()
	run := rm.run
	rm.mu.RUnlock()

	if run == nil || !run.Running() {
		rm.observe(Event{Kind: EventUnitSkipped})
		return nil
	}

	return newMeasurementUnit(run.NextIteration())
}

// SetRunInfo assigns the RunInfo of the current run and pushes it to
// every registered Reporter before returning.
func (rm *ReportManager) SetRunInfo(ri RunInfo) {
	rm.mu.Lock()
	rm.run = ri
	reporters := rm.snapshotLocked()
	rm.mu.Unlock()

	rm.observe(Event{Kind: EventRunInfoSet})
	for _, r := range reporters {
		r.SetRunInfo(ri)
	}
}

// RunInfo returns the RunInfo of the current run, or nil if none has
// been assigned yet.
func (rm *ReportManager) RunInfo() RunInfo {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.run
}

// Report dispatches mu to every Reporter registered at the moment of the
// call. Each unit must be reported exactly once.
//
// The call is a no-op if the run has never been started or is fully
// stopped. The gate is Started, not Running, so that the final iteration
// of a run whose budget is exhausted can still be reported.
//
// A failing Reporter does not prevent dispatch to the remaining ones.
// Every failure is emitted to the observer as it occurs; if any Reporter
// failed the call returns a single ReportingError carrying the last
// failure and the failure count.
func (rm *ReportManager) Report(mu *MeasurementUnit) error {
	rm.mu.RLock()
	run := rm.run
	reporters := rm.snapshotLocked()
	rm.mu.RUnlock()

	if run == nil || !run.Started() {
		rm.observe(Event{Kind: EventReportSkipped, Unit: mu})
		return nil
	}

	var agg *ReportingError
	for _, r := range reporters {
		if err := r.Report(mu); err != nil {
			rm.observe(Event{Kind: EventReportError, Unit: mu, Reporter: r, Err: err})
			agg = agg.with(err)
		}
	}
	return agg.or()
}

// Reset resets the run to its zero state and forwards the reset to every
// registered Reporter. It is used to discard results accumulated during
// a warm-up phase. Reporter failures are isolated and aggregated the same
// way as in Report.
func (rm *ReportManager) Reset() error {
	rm.observe(Event{Kind: EventReset})
	return rm.transition(EventResetError, RunInfo.Reset, Reporter.Reset)
}

// Start starts the run and then every registered Reporter. The run
// transitions first so that a Reporter starting background activity
// immediately observes a running lifecycle. Reporter failures are
// isolated and aggregated the same way as in Report.
func (rm *ReportManager) Start() error {
	rm.observe(Event{Kind: EventStart})
	return rm.transition(EventStartError, RunInfo.Start, Reporter.Start)
}

// Stop stops the run and then every registered Reporter. Reporter
// failures are isolated and aggregated the same way as in Report.
func (rm *ReportManager) Stop() error {
	rm.observe(Event{Kind: EventStop})
	return rm.transition(EventStopError, RunInfo.Stop, Reporter.Stop)
}

func (rm *ReportManager) transition(kind EventKind, run func(RunInfo), reporter func(Reporter) error) error {
	rm.mu.RLock()
	ri := rm.run
	reporters := rm.snapshotLocked()
	rm.mu.RUnlock()

	if ri != nil {
		run(ri)
	}

	var agg *ReportingError
	for _, r := range reporters {
		if err := reporter(r); err != nil {
			rm.observe(Event{Kind: kind, Reporter: r, Err: err})
			agg = agg.with(err)
		}
	}
	return agg.or()
}

// Register adds r to the registry and assigns it the manager's current
// RunInfo, making it eligible for the next Report or lifecycle call.
// Registering the same Reporter twice has no further effect.
func (rm *ReportManager) Register(r Reporter) {
	rm.mu.Lock()
	r.SetRunInfo(rm.run)
	rm.reporters[r] = struct{}{}
	rm.mu.Unlock()
	rm.observe(Event{Kind: EventRegister, Reporter: r})
}

// Unregister removes r from the registry. It is a no-op if r is not
// registered. A dispatch already in progress may still deliver to r.
func (rm *ReportManager) Unregister(r Reporter) {
	rm.mu.Lock()
	delete(rm.reporters, r)
	rm.mu.Unlock()
	rm.observe(Event{Kind: EventUnregister, Reporter: r})
}

// Reporters returns a snapshot of the currently registered Reporters.
// Mutating the returned slice has no effect on the registry.
func (rm *ReportManager) Reporters() []Reporter {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.snapshotLocked()
}

func (rm *ReportManager) snapshotLocked() []Reporter {
	reporters := make([]Reporter, 0, len(rm.reporters))
	for r := range rm.reporters {
		reporters = append(reporters, r)
	}
	return reporters
}

// A ReportingError aggregates the Reporter failures of one dispatch. It
// carries the last failure encountered and the total failure count;
// earlier failures are reported through the manager's observer as they
// occur.
type ReportingError struct {
	Last     error
	Failures int
}

// Error implements the error interface.
func (e *ReportingError) Error() string {
	if e.Failures > 1 {
		return fmt.Sprintf("%d reporters failed, last: %s", e.Failures, e.Last)
	}
	return fmt.Sprintf("reporter failed: %s", e.Last)
}

// Unwrap returns the last failure encountered.
func (e *ReportingError) Unwrap() error { return e.Last }

func (e *ReportingError) with(err error) *ReportingError {
	if e == nil {
		return &ReportingError{Last: err, Failures: 1}
	}
	e.Last = err
	e.Failures++
	return e
}

// or converts a nil *ReportingError into a nil error.
func (e *ReportingError) or() error {
	if e == nil {
		return nil
	}
	return e
}
