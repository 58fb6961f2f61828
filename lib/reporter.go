package strain

// Reporter consumes MeasurementUnits and participates in run lifecycle
// transitions. Concrete Reporters are registered with a ReportManager,
// which assigns them its current RunInfo and fans out Report, Reset,
// Start and Stop calls.
//
// Report must treat the unit as read-only: the same unit is handed to
// every registered Reporter.
type Reporter interface {
	// SetRunInfo hands the Reporter the RunInfo of the current run.
	// Called at registration time and again whenever the manager's
	// RunInfo is replaced. It may be invoked while the manager holds
	// its internal lock, so it must store the reference and return
	// without calling back into the ReportManager.
	SetRunInfo(ri RunInfo)

	// Report consumes one measurement unit.
	Report(mu *MeasurementUnit) error

	// Reset discards everything accumulated so far, typically after a
	// warm-up phase.
	Reset() error

	// Start begins reporting. Reporters with background activity such as
	// periodic sampling start it here; the run is already started when
	// Start is called.
	Start() error

	// Stop ceases all reporting activity.
	Stop() error
}
