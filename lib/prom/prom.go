// Package prom provides a Reporter which exposes the progress of a
// measurement run as Prometheus metrics.
package prom

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	strain "github.com/strainlab/strain/lib"
)

// Reporter observes measurement units and exposes run progress as a
// Prometheus metrics endpoint. The endpoint is served while the run is
// started and torn down when it stops. Reset swaps all collectors for
// fresh ones so that warm-up results do not leak into the scraped
// series.
type Reporter struct {
	addr string
	srv  *http.Server

	mu       sync.Mutex
	run      strain.RunInfo
	registry *prometheus.Registry
	handler  http.Handler

	units         prometheus.Counter
	lastIteration prometheus.Gauge
	unitSeconds   prometheus.Histogram
	values        *prometheus.GaugeVec
}

// NewReporter returns a new Reporter which serves its metrics on the
// given listen address, e.g. "0.0.0.0:8880".
func NewReporter(addr string) *Reporter {
	r := &Reporter{addr: addr}
	r.rebuild()
	return r
}

// rebuild replaces the registry and all collectors. Callers must hold no
// locks; rebuild takes r.mu itself.
func (r *Reporter) rebuild() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.registry = prometheus.NewRegistry()

	r.units = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "units_total",
		Help: "Measurement units reported",
	})
	r.registry.MustRegister(r.units)

	r.lastIteration = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "last_iteration",
		Help: "Iteration number of the last reported measurement unit",
	})
	r.registry.MustRegister(r.lastIteration)

	r.unitSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "unit_seconds",
		Help:    "Measured time per unit",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
	})
	r.registry.MustRegister(r.unitSeconds)

	r.values = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "measurement_value",
		Help: "Last numeric measured value per result name",
	}, []string{"name"})
	r.registry.MustRegister(r.values)

	r.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "run_running",
		Help: "Whether the run is currently running",
	}, func() float64 {
		r.mu.Lock()
		run := r.run
		r.mu.Unlock()
		if run != nil && run.Running() {
			return 1
		}
		return 0
	}))

	r.handler = promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Handler returns an http.Handler serving the reporter's current
// metrics. It remains valid across Reset.
func (r *Reporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		h := r.handler
		r.mu.Unlock()
		h.ServeHTTP(w, req)
	})
}

// SetRunInfo implements strain.Reporter.
func (r *Reporter) SetRunInfo(ri strain.RunInfo) {
	r.mu.Lock()
	r.run = ri
	r.mu.Unlock()
}

// Report implements strain.Reporter.
func (r *Reporter) Report(mu *strain.MeasurementUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.units.Inc()
	r.lastIteration.Set(float64(mu.Iteration()))
	r.unitSeconds.Observe(mu.TotalTime().Seconds())

	for name, value := range mu.Results() {
		if v, ok := numeric(value); ok {
			r.values.WithLabelValues(name).Set(v)
		}
	}

	return nil
}

// Reset implements strain.Reporter by swapping all collectors for fresh
// ones.
func (r *Reporter) Reset() error {
	r.rebuild()
	return nil
}

// Start implements strain.Reporter by starting the metrics endpoint.
func (r *Reporter) Start() error {
	r.srv = &http.Server{Addr: r.addr, Handler: r.Handler()}
	go r.srv.ListenAndServe()
	return nil
}

// Stop implements strain.Reporter by shutting the metrics endpoint down.
func (r *Reporter) Stop() error {
	if r.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.srv.Shutdown(ctx)
}

func numeric(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case time.Duration:
		return v.Seconds(), true
	default:
		return 0, false
	}
}

var _ strain.Reporter = (*Reporter)(nil)
