package metrics

import "github.com/prometheus/client_golang/prometheus"

// RouterMetrics exposes counters/histograms for the request pipeline.
type RouterMetrics struct {
	routedTotal      *prometheus.CounterVec
	guardrailTotal   *prometheus.CounterVec
	escalationsTotal *prometheus.CounterVec
	pipelineLatency  *prometheus.HistogramVec
}

func NewRouterMetrics(reg prometheus.Registerer) *RouterMetrics {
	m := &RouterMetrics{
		routedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "support",
			Subsystem: "router",
			Name:      "routed_total",
			Help:      "Requests dispatched, by handling agent",
		}, []string{"agent"}),
		guardrailTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "support",
			Subsystem: "guardrail",
			Name:      "checks_total",
			Help:      "Content filter outcomes by direction",
		}, []string{"direction", "outcome"}),
		escalationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "support",
			Subsystem: "emergency",
			Name:      "escalations_total",
			Help:      "Emergency escalations by severity and delivery result",
		}, []string{"severity", "delivered"}),
		pipelineLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "support",
			Subsystem: "gate",
			Name:      "pipeline_latency_seconds",
			Help:      "Latency of a full gate pass",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.routedTotal, m.guardrailTotal, m.escalationsTotal, m.pipelineLatency)
	return m
}

func (m *RouterMetrics) ObserveRoute(agent string) {
	if m == nil {
		return
	}
	m.routedTotal.WithLabelValues(agent).Inc()
}

// ObserveGuardrail records a filter pass; outcome is passed, blocked or error.
func (m *RouterMetrics) ObserveGuardrail(direction, outcome string) {
	if m == nil {
		return
	}
	m.guardrailTotal.WithLabelValues(direction, outcome).Inc()
}

func (m *RouterMetrics) ObserveEscalation(severity string, delivered bool) {
	if m == nil {
		return
	}
	label := "false"
	if delivered {
		label = "true"
	}
	m.escalationsTotal.WithLabelValues(severity, label).Inc()
}

func (m *RouterMetrics) ObservePipeline(status string, seconds float64) {
	if m == nil {
		return
	}
	if status == "" {
		status = "ok"
	}
	m.pipelineLatency.WithLabelValues(status).Observe(seconds)
}
