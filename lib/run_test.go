package strain

import (
	"sync"
	"testing"
	"time"
)

func TestRunLifecycle(t *testing.T) {
	t.Parallel()

	r := NewRun()
	if r.Started() || r.Running() {
		t.Fatalf("zero value: Started() = %v, Running() = %v, want false, false", r.Started(), r.Running())
	}

	r.Start()
	if !r.Started() || !r.Running() {
		t.Fatalf("after Start: Started() = %v, Running() = %v, want true, true", r.Started(), r.Running())
	}

	r.Stop()
	if r.Started() || r.Running() {
		t.Fatalf("after Stop: Started() = %v, Running() = %v, want false, false", r.Started(), r.Running())
	}

	r.Reset()
	if got, want := r.NextIteration(), uint64(0); got != want {
		t.Errorf("after Reset: NextIteration() = %d, want %d", got, want)
	}
	r.Start()
	if !r.Running() {
		t.Error("a reset run should be startable again")
	}
}

func TestRunNextIteration(t *testing.T) {
	t.Parallel()

	r := NewRun()
	for want := uint64(0); want < 100; want++ {
		if got := r.NextIteration(); got != want {
			t.Fatalf("NextIteration() = %d, want %d", got, want)
		}
	}
}

func TestRunNextIterationUnique(t *testing.T) {
	t.Parallel()

	const (
		goroutines = 8
		perG       = 1000
	)

	r := NewRun()
	seen := make([][]uint64, goroutines)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				seen[g] = append(seen[g], r.NextIteration())
			}
		}(g)
	}
	wg.Wait()

	unique := make(map[uint64]struct{}, goroutines*perG)
	for _, is := range seen {
		for _, i := range is {
			if _, dup := unique[i]; dup {
				t.Fatalf("iteration %d issued twice", i)
			}
			unique[i] = struct{}{}
		}
	}

	if got, want := len(unique), goroutines*perG; got != want {
		t.Errorf("issued %d unique iterations, want %d", got, want)
	}
}

func TestRunIterationBudget(t *testing.T) {
	t.Parallel()

	r := NewRun(Iterations(2))
	r.Start()

	r.NextIteration()
	if !r.Running() {
		t.Fatal("run should still be running with budget left")
	}
	r.NextIteration()

	// Budget exhausted: no longer running, but started until Stop so the
	// final iteration can still be reported.
	if r.Running() {
		t.Error("run should not be running with its budget exhausted")
	}
	if !r.Started() {
		t.Error("run should remain started until Stop")
	}

	r.Stop()
	if r.Started() {
		t.Error("run should not be started after Stop")
	}
}

func TestRunDurationBudget(t *testing.T) {
	t.Parallel()

	r := NewRun(Duration(10 * time.Millisecond))
	r.Start()
	if !r.Running() {
		t.Fatal("run should be running right after Start")
	}

	time.Sleep(20 * time.Millisecond)

	if r.Running() {
		t.Error("run should not be running past its duration")
	}
	if !r.Started() {
		t.Error("run should remain started until Stop")
	}
}

func TestRunResetLive(t *testing.T) {
	t.Parallel()

	r := NewRun()
	r.Start()
	r.NextIteration()
	r.NextIteration()

	r.Reset()

	if !r.Started() || !r.Running() {
		t.Error("a live run should keep going through Reset")
	}
	if got, want := r.NextIteration(), uint64(0); got != want {
		t.Errorf("after Reset: NextIteration() = %d, want %d", got, want)
	}
}

func TestRunTime(t *testing.T) {
	t.Parallel()

	r := NewRun()
	if got := r.RunTime(); got != 0 {
		t.Errorf("unstarted run: RunTime() = %s, want 0", got)
	}

	r.Start()
	time.Sleep(5 * time.Millisecond)
	r.Stop()

	total := r.RunTime()
	if total < 5*time.Millisecond {
		t.Errorf("RunTime() = %s, want >= 5ms", total)
	}

	time.Sleep(5 * time.Millisecond)
	if got := r.RunTime(); got != total {
		t.Errorf("stopped run: RunTime() = %s, want %s", got, total)
	}
}
