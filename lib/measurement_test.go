package strain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMeasurementUnitMeasure(t *testing.T) {
	t.Parallel()

	mu := newMeasurementUnit(7)
	if got, want := mu.Iteration(), uint64(7); got != want {
		t.Errorf("Iteration() = %d, want %d", got, want)
	}
	if got := mu.LastTime(); got != -1 {
		t.Errorf("LastTime() before any window = %s, want -1", got)
	}

	mu.StartMeasure()
	time.Sleep(5 * time.Millisecond)
	mu.StopMeasure()

	first := mu.TotalTime()
	if first < 5*time.Millisecond {
		t.Errorf("TotalTime() = %s, want >= 5ms", first)
	}
	if got, want := mu.LastTime(), first; got != want {
		t.Errorf("LastTime() = %s, want %s", got, want)
	}

	// A second window accumulates on top of the first.
	mu.StartMeasure()
	time.Sleep(5 * time.Millisecond)
	mu.StopMeasure()

	if got := mu.TotalTime(); got <= first {
		t.Errorf("TotalTime() = %s after second window, want > %s", got, first)
	}
}

func TestMeasurementUnitResults(t *testing.T) {
	t.Parallel()

	mu := newMeasurementUnit(0)
	mu.SetResult("latency", 150*time.Millisecond)
	mu.SetResult("bytes", uint64(2048))

	if got, want := mu.Result("latency"), 150*time.Millisecond; got != want {
		t.Errorf("Result(latency) = %v, want %v", got, want)
	}
	if got := mu.Result("missing"); got != nil {
		t.Errorf("Result(missing) = %v, want nil", got)
	}

	want := map[string]interface{}{
		"latency": 150 * time.Millisecond,
		"bytes":   uint64(2048),
	}
	if diff := cmp.Diff(want, mu.Results()); diff != "" {
		t.Errorf("Results() mismatch (-want +got):\n%s", diff)
	}

	// Results returns a copy: mutating it must not affect the unit.
	mu.Results()["latency"] = nil
	if got := mu.Result("latency"); got != 150*time.Millisecond {
		t.Errorf("Result(latency) = %v after mutating copy, want %v", got, 150*time.Millisecond)
	}
}
