package metrics

import "github.com/prometheus/client_golang/prometheus"

// PrescriptionMetrics exposes counters/histograms for the parse-and-process
// pipeline.
type PrescriptionMetrics struct {
	parseTotal      *prometheus.CounterVec
	gateBlocked     prometheus.Counter
	workflowTotal   *prometheus.CounterVec
	workflowLatency prometheus.Histogram
}

func NewPrescriptionMetrics(reg prometheus.Registerer) *PrescriptionMetrics {
	m := &PrescriptionMetrics{
		parseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "prescription",
			Name:      "parse_total",
			Help:      "Total prescription text parses by detected format",
		}, []string{"format"}),
		gateBlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "prescription",
			Name:      "ambiguity_blocked_total",
			Help:      "Total sends refused by the herb ambiguity gate",
		}),
		workflowTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "prescription",
			Name:      "workflow_total",
			Help:      "Total workflow runs by outcome",
		}, []string{"result"}),
		workflowLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "prescription",
			Name:      "workflow_latency_seconds",
			Help:      "Latency of full prescription workflow runs",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.parseTotal, m.gateBlocked, m.workflowTotal, m.workflowLatency)
	return m
}

func (m *PrescriptionMetrics) ObserveParse(format string) {
	if m == nil {
		return
	}
	m.parseTotal.WithLabelValues(format).Inc()
}

func (m *PrescriptionMetrics) ObserveGateBlocked() {
	if m == nil {
		return
	}
	m.gateBlocked.Inc()
}

func (m *PrescriptionMetrics) ObserveWorkflow(result string, seconds float64) {
	if m == nil {
		return
	}
	m.workflowTotal.WithLabelValues(result).Inc()
	m.workflowLatency.Observe(seconds)
}

// InventoryMetrics counts stock movements triggered by chat sends.
type InventoryMetrics struct {
	deductionsTotal *prometheus.CounterVec
}

func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	m := &InventoryMetrics{
		deductionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "inventory",
			Name:      "deductions_total",
			Help:      "Total per-herb stock deductions by status",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.deductionsTotal)
	return m
}

func (m *InventoryMetrics) ObserveDeduction(status string) {
	if m == nil {
		return
	}
	m.deductionsTotal.WithLabelValues(status).Inc()
}
