package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// PortalMetrics exposes counters/histograms for the portal's page and
// backend traffic. A nil receiver is a no-op so wiring stays optional.
type PortalMetrics struct {
	pageRequests   *prometheus.CounterVec
	backendLatency *prometheus.HistogramVec
}

func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	m := &PortalMetrics{
		pageRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicportal",
			Subsystem: "http",
			Name:      "page_requests_total",
			Help:      "Total portal page and fragment requests",
		}, []string{"method", "status"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinicportal",
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Latency of clinic backend calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.pageRequests, m.backendLatency)
	return m
}

func (m *PortalMetrics) ObservePageRequest(method string, status int) {
	if m == nil {
		return
	}
	m.pageRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// ObserveBackendCall records one backend round trip. Status 0 means the
// request never got a response.
func (m *PortalMetrics) ObserveBackendCall(operation string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.backendLatency.WithLabelValues(operation, strconv.Itoa(status)).Observe(seconds)
}
