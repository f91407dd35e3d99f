package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRouterMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRouterMetrics(reg)

	m.ObserveRoute("faq")
	m.ObserveRoute("faq")
	m.ObserveGuardrail("input", "blocked")
	m.ObserveEscalation("critical", true)
	m.ObservePipeline("", 0.25)

	if got := testutil.ToFloat64(m.routedTotal.WithLabelValues("faq")); got != 2 {
		t.Fatalf("expected 2 faq routes, got %v", got)
	}
	if got := testutil.ToFloat64(m.guardrailTotal.WithLabelValues("input", "blocked")); got != 1 {
		t.Fatalf("expected 1 blocked input, got %v", got)
	}
	if got := testutil.ToFloat64(m.escalationsTotal.WithLabelValues("critical", "true")); got != 1 {
		t.Fatalf("expected 1 escalation, got %v", got)
	}
	if got := testutil.CollectAndCount(m.pipelineLatency); got != 1 {
		t.Fatalf("expected one latency series, got %d", got)
	}
}

func TestRouterMetricsDuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRouterMetrics(reg)
	defer func() {
		if recover() == nil {
			t.Fatal("expected duplicate registration to panic")
		}
	}()
	NewRouterMetrics(reg)
}

func TestRouterMetricsNilSafe(t *testing.T) {
	var m *RouterMetrics
	m.ObserveRoute("supervisor")
	m.ObserveGuardrail("output", "error")
	m.ObserveEscalation("high", false)
	m.ObservePipeline("blocked_by_guardrails", 0.1)
}
