package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/haugen/internal/contracts"
)

func TestRecorder_RecordSummary(t *testing.T) {
	r := New()

	summary := contracts.NewStageSummary("metric:net_income")
	summary.Processed = 10
	summary.Succeeded = 7
	summary.RecordSkip(contracts.ErrStale)
	summary.RecordSkip(contracts.ErrStale)
	summary.RecordSkip(contracts.ErrMissingFile)
	summary.Duration = 250 * time.Millisecond

	r.RecordSummary(summary)

	assert.Equal(t, 10.0, testutil.ToFloat64(r.processed.WithLabelValues("metric:net_income")))
	assert.Equal(t, 7.0, testutil.ToFloat64(r.succeeded.WithLabelValues("metric:net_income")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.skipped.WithLabelValues("metric:net_income", "stale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.skipped.WithLabelValues("metric:net_income", "missing_file")))
}

func TestRecorder_IndependentRegistries(t *testing.T) {
	// two recorders must not collide on registration
	a := New()
	b := New()
	a.RecordFailure("score")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.failures.WithLabelValues("score")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.failures.WithLabelValues("score")))
}

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	r.RecordSummary(contracts.NewStageSummary("noop"))
	r.RecordFailure("noop")
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.RecordFailure("filter")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `haugen_stage_failures_total{stage="filter"} 1`))
}
