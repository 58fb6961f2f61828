package strain

import (
	"fmt"

	"github.com/rs/zerolog"
)

// EventKind identifies the transition or failure an Event describes.
type EventKind string

const (
	// EventUnitSkipped: NewMeasurementUnit was called while the run was
	// not running and returned no unit.
	EventUnitSkipped EventKind = "unit.skipped"
	// EventReportSkipped: Report was called before the run started or
	// after it fully stopped and performed no dispatch.
	EventReportSkipped EventKind = "report.skipped"
	// EventReportError: a Reporter failed to consume a unit.
	EventReportError EventKind = "report.error"
	// EventRunInfoSet: the manager's RunInfo was replaced.
	EventRunInfoSet EventKind = "runinfo.set"
	// EventRegister and EventUnregister: registry changes.
	EventRegister   EventKind = "reporter.register"
	EventUnregister EventKind = "reporter.unregister"
	// EventReset, EventStart, EventStop: lifecycle transitions, emitted
	// before the transition is fanned out.
	EventReset EventKind = "run.reset"
	EventStart EventKind = "run.start"
	EventStop  EventKind = "run.stop"
	// EventResetError, EventStartError, EventStopError: a Reporter
	// failed a lifecycle transition.
	EventResetError EventKind = "reset.error"
	EventStartError EventKind = "start.error"
	EventStopError  EventKind = "stop.error"
)

// An Event describes one notable transition or failure inside a
// ReportManager. Reporter, Unit and Err are set only where they apply.
type Event struct {
	Kind     EventKind
	Reporter Reporter
	Unit     *MeasurementUnit
	Err      error
}

// An Observer receives diagnostic Events from a ReportManager. Observers
// are called synchronously on the calling goroutine and must not block.
type Observer func(Event)

// LogObserver returns an Observer which writes every Event to the given
// structured logger. Failures log at warn level, everything else at
// debug.
func LogObserver(log zerolog.Logger) Observer {
	return func(ev Event) {
		e := log.Debug()
		if ev.Err != nil {
			e = log.Warn().Err(ev.Err)
		}
		if ev.Unit != nil {
			e = e.Uint64("iteration", ev.Unit.Iteration())
		}
		if ev.Reporter != nil {
			e = e.Str("reporter", fmt.Sprintf("%T", ev.Reporter))
		}
		e.Str("event", string(ev.Kind)).Msg("")
	}
}
