package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportmerge/internal/metrics"
)

// counterValue reads the current value of a Counter.
func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	require.NotNil(t, m.GetCounter())
	return m.GetCounter().GetValue()
}

// summaryCount reads the sample count of one SummaryVec child.
func summaryCount(t *testing.T, v *prometheus.SummaryVec, labels ...string) uint64 {
	t.Helper()
	metric, ok := v.WithLabelValues(labels...).(prometheus.Metric)
	require.True(t, ok)
	m := &dto.Metric{}
	require.NoError(t, metric.Write(m))
	return m.GetSummary().GetSampleCount()
}

func TestNewBackend(t *testing.T) {
	t.Parallel()

	_, err := NewBackend("job", "")
	require.Error(t, err)

	b, err := NewBackend("", "http://pushgateway:9091")
	require.NoError(t, err)
	assert.Equal(t, "reportmerge", b.jobName)
}

func TestIncCounterRouting(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("j", "http://example.com")
	require.NoError(t, err)

	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "merge", "status": "success"})
	b.IncCounter(metrics.RowsTotal, 4, metrics.Labels{"kind": "output"})
	b.IncCounter(metrics.WarningTotal, 2, metrics.Labels{"kind": "missing_column"})
	b.IncCounter("unknown", 10, metrics.Labels{"kind": "output"})

	assert.Equal(t, 1.0, counterValue(t, b.stepCounter.WithLabelValues("merge", "success")))
	assert.Equal(t, 4.0, counterValue(t, b.rowCounter.WithLabelValues("output")))
	assert.Equal(t, 2.0, counterValue(t, b.warningCounter.WithLabelValues("missing_column")))
}

func TestZeroBackendIsSafe(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter(metrics.StepTotal, 1, nil)
	b.IncCounter(metrics.RowsTotal, 1, nil)
	b.ObserveHistogram(metrics.StepDuration, 1, nil)
}

func TestObserveHistogram(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("j", "http://example.com")
	require.NoError(t, err)

	b.ObserveHistogram(metrics.StepDuration, 1.5, metrics.Labels{"step": "publish", "status": "success"})
	b.ObserveHistogram("other", 1.5, metrics.Labels{"step": "publish", "status": "success"})

	assert.EqualValues(t, 1, summaryCount(t, b.stepDuration, "publish", "success"))
}

func TestFlush(t *testing.T) {
	t.Parallel()

	var path, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		path, body = r.URL.Path, string(b)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	b, err := NewBackend("nightly", srv.URL)
	require.NoError(t, err)
	b.IncCounter(metrics.RowsTotal, 3, metrics.Labels{"kind": "output"})

	require.NoError(t, b.Flush())
	assert.True(t, strings.HasSuffix(path, "/job/nightly"), path)
	assert.NotEmpty(t, body)
}
