// Package metrics records operational metrics for report runs behind a small,
// backend-agnostic interface.
//
// The package keeps one process-wide Backend that defaults to a no-op, so the
// recording helpers are always safe to call even when no metrics system is
// configured. Concrete systems live in subpackages (prompush, datadog) and are
// installed with SetBackend.
//
// Recorded series:
//
//	reportmerge_step_total{job,step,status}             ingest, merge, publish
//	reportmerge_step_duration_seconds{job,step,status}
//	reportmerge_rows_total{job,kind}                    input_xtm, output, ...
//	reportmerge_warnings_total{job,kind}                validate.Kind values
package metrics

import (
	"sync"
	"time"
)

// Metric names shared with the backends.
const (
	StepTotal    = "reportmerge_step_total"
	StepDuration = "reportmerge_step_duration_seconds"
	RowsTotal    = "reportmerge_rows_total"
	WarningTotal = "reportmerge_warnings_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep counts one execution of step and observes its duration.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{"job": job, "step": step, "status": status}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// Time runs fn and records it as step. It returns fn's error.
func Time(job, step string, fn func() error) error {
	start := time.Now()
	err := fn()
	RecordStep(job, step, err, time.Since(start))
	return err
}

// RecordRows adds n rows of the given kind. Non-positive n is ignored.
func RecordRows(job, kind string, n int) {
	if n <= 0 {
		return
	}
	current().IncCounter(RowsTotal, float64(n), Labels{"job": job, "kind": kind})
}

// RecordWarnings adds n warnings of the given kind. Non-positive n is ignored.
func RecordWarnings(job, kind string, n int) {
	if n <= 0 {
		return
	}
	current().IncCounter(WarningTotal, float64(n), Labels{"job": job, "kind": kind})
}
