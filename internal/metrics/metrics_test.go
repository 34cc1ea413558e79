package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ObserveMatch("exact")
	m.ObserveMatch("exact")
	m.ObserveMatch("none")
	m.ObserveCommand("add", "ok")
	m.ObserveStoreError("save")
	m.SetKeywords(3)

	if got := testutil.ToFloat64(m.matches.WithLabelValues("exact")); got != 2 {
		t.Errorf("exact matches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.matches.WithLabelValues("none")); got != 1 {
		t.Errorf("none matches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.commands.WithLabelValues("add", "ok")); got != 1 {
		t.Errorf("add/ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.storeErrors.WithLabelValues("save")); got != 1 {
		t.Errorf("save errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.keywords); got != 3 {
		t.Errorf("keywords gauge = %v, want 3", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveMatch("exact")
	m.ObserveCommand("add", "ok")
	m.ObserveStoreError("load")
	m.SetKeywords(1)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveMatch("substring")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `autoreply_match_total{outcome="substring"} 1`) {
		t.Errorf("exposition missing match counter:\n%s", body)
	}
}
