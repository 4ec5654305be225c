package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/dsviz/internal/pacing"
)

func TestObserveOperation(t *testing.T) {
	m := New(nil)

	m.ObserveOperation("stack", "push", OutcomeOK, 3)
	m.ObserveOperation("stack", "push", OutcomeOK, 3)
	m.ObserveOperation("stack", "push", OutcomeRejected, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("stack", "push", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("stack", "push", OutcomeRejected)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.traceLen))
}

func TestObserverCounters(t *testing.T) {
	m := New(nil)

	m.FramePublished("tree-visualization")
	m.FramePublished("tree-visualization")
	m.AnimationCancelled("tree-visualization")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.published.WithLabelValues("tree-visualization")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cancelled.WithLabelValues("tree-visualization")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation("array", "insert", OutcomeOK, 4)
		m.FramePublished("array-visualization")
		m.AnimationCancelled("array-visualization")
	})
}

func TestHandlerExportsPoolGauges(t *testing.T) {
	m := New(func() pacing.PoolMetrics {
		return pacing.PoolMetrics{Active: 2, Waiting: 4, Completed: 7, Cancelled: 3}
	})
	m.ObserveOperation("queue", "enqueue", OutcomeOK, 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "dsviz_pool_active 2")
	assert.Contains(t, body, "dsviz_pool_waiting 4")
	assert.Contains(t, body, "dsviz_pool_completed 7")
	assert.Contains(t, body, "dsviz_pool_cancelled 3")
	assert.True(t, strings.Contains(body, `dsviz_operations_total{operation="enqueue",outcome="ok",structure="queue"} 1`))
}
