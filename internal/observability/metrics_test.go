package observability

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestJobLifecycleCounters(t *testing.T) {
	m := NewMetrics()

	m.JobsSubmitted.Inc()
	m.JobStarted()
	if got := testutil.ToFloat64(m.JobsProcessing); got != 1 {
		t.Fatalf("expected 1 processing job, got %v", got)
	}

	m.JobFinished("transform", 1.5)
	if got := testutil.ToFloat64(m.JobsProcessing); got != 0 {
		t.Fatalf("expected 0 processing jobs, got %v", got)
	}

	m.JobFailed("rewrite_failed")
	m.JobFailed("")
	if got := testutil.ToFloat64(m.JobsFailed.WithLabelValues("rewrite_failed")); got != 1 {
		t.Fatalf("expected 1 rewrite_failed, got %v", got)
	}
	if got := testutil.ToFloat64(m.JobsFailed.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("expected blank code to count as unknown, got %v", got)
	}
}

func TestHandlerServesExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveHTTPRequest("POST", "/api/v1/jobs", "202", 0.012)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "redraft_http_requests_total") {
		t.Fatalf("expected http counter in exposition output, got:\n%s", body)
	}
}
