package strain

import (
	"fmt"
	"time"
)

// A MeasurementUnit records the raw results of a single iteration. It is
// created through ReportManager.NewMeasurementUnit, populated by the
// iteration driver, and then handed back for reporting, at which point it
// becomes read-only shared state fanned out to every registered Reporter.
type MeasurementUnit struct {
	iteration uint64
	created   time.Time

	startTime time.Time
	stopTime  time.Time
	totalTime time.Duration

	results map[string]interface{}
}

func newMeasurementUnit(iteration uint64) *MeasurementUnit {
	return &MeasurementUnit{
		iteration: iteration,
		created:   time.Now(),
		results:   make(map[string]interface{}),
	}
}

// Iteration returns the unique iteration number this unit was created for.
func (m *MeasurementUnit) Iteration() uint64 { return m.iteration }

// Created returns the time at which this unit was created.
func (m *MeasurementUnit) Created() time.Time { return m.created }

// StartMeasure marks the beginning of a measured window. Windows may be
// opened and closed repeatedly; their durations accumulate in TotalTime.
func (m *MeasurementUnit) StartMeasure() {
	m.startTime = time.Now()
	m.stopTime = time.Time{}
}

// StopMeasure closes the window opened by the last StartMeasure and adds
// its duration to TotalTime.
func (m *MeasurementUnit) StopMeasure() {
	m.stopTime = time.Now()
	m.totalTime += m.stopTime.Sub(m.startTime)
}

// TotalTime returns the accumulated duration of all closed measured
// windows.
func (m *MeasurementUnit) TotalTime() time.Duration { return m.totalTime }

// LastTime returns the duration of the last closed measured window, or -1
// if no window has been closed yet.
func (m *MeasurementUnit) LastTime() time.Duration {
	if m.startTime.IsZero() || m.stopTime.IsZero() {
		return -1
	}
	return m.stopTime.Sub(m.startTime)
}

// SetResult stores a named measured value. Values are opaque to the
// reporting core and are only interpreted by individual Reporters.
func (m *MeasurementUnit) SetResult(name string, value interface{}) {
	m.results[name] = value
}

// Result returns the measured value stored under name, or nil.
func (m *MeasurementUnit) Result(name string) interface{} {
	return m.results[name]
}

// Results returns a copy of all named measured values.
func (m *MeasurementUnit) Results() map[string]interface{} {
	rs := make(map[string]interface{}, len(m.results))
	for name, value := range m.results {
		rs[name] = value
	}
	return rs
}

// String returns a pretty-printed description of the unit, e.g.:
//
//	MeasurementUnit{#42, 15ms}
func (m *MeasurementUnit) String() string {
	return fmt.Sprintf("MeasurementUnit{#%d, %s}", m.iteration, m.totalTime)
}
