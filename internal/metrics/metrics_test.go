package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory Backend for tests.
type fakeBackend struct {
	mu sync.Mutex

	counters   []call
	histograms []call
	flushCount int
}

type call struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, call{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histograms = append(f.histograms, call{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

// install swaps in a fake for the duration of the test.
func install(t *testing.T) *fakeBackend {
	t.Helper()
	orig := current()
	t.Cleanup(func() { SetBackend(orig) })
	fb := &fakeBackend{}
	SetBackend(fb)
	return fb
}

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	fb := install(t)

	RecordStep("reportmerge", "merge", nil, 2*time.Second)
	RecordStep("reportmerge", "publish", errors.New("boom"), 1500*time.Millisecond)

	require.Len(t, fb.counters, 2)
	require.Len(t, fb.histograms, 2)

	assert.Equal(t, call{StepTotal, 1, Labels{"job": "reportmerge", "step": "merge", "status": "success"}}, fb.counters[0])
	assert.Equal(t, "failure", fb.counters[1].labels["status"])
	assert.Equal(t, StepDuration, fb.histograms[0].name)
	assert.InDelta(t, 2.0, fb.histograms[0].value, 0.001)
	assert.InDelta(t, 1.5, fb.histograms[1].value, 0.001)
}

func TestTime_ReturnsError(t *testing.T) {
	fb := install(t)

	want := errors.New("ingest failed")
	err := Time("j", "ingest", func() error { return want })

	require.ErrorIs(t, err, want)
	require.Len(t, fb.counters, 1)
	assert.Equal(t, "failure", fb.counters[0].labels["status"])
}

func TestRecordRowsAndWarnings(t *testing.T) {
	fb := install(t)

	RecordRows("j", "input_xtm", 3)
	RecordRows("j", "output", 0)
	RecordWarnings("j", "missing_column", 2)
	RecordWarnings("j", "empty_table", -1)

	require.Len(t, fb.counters, 2)
	assert.Equal(t, call{RowsTotal, 3, Labels{"job": "j", "kind": "input_xtm"}}, fb.counters[0])
	assert.Equal(t, call{WarningTotal, 2, Labels{"job": "j", "kind": "missing_column"}}, fb.counters[1])
}

func TestSetBackendAndFlush(t *testing.T) {
	fb := install(t)

	require.NoError(t, Flush())
	assert.Equal(t, 1, fb.flushCount)

	SetBackend(nil)
	assert.Same(t, fb, current())
}
