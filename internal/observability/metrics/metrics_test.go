package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestObservePageRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPortalMetrics(reg)

	m.ObservePageRequest("GET", 200)
	m.ObservePageRequest("GET", 200)
	m.ObservePageRequest("POST", 500)

	mf := gather(t, reg, "clinicportal_http_page_requests_total")
	require.NotNil(t, mf)
	require.Len(t, mf.GetMetric(), 2)

	for _, metric := range mf.GetMetric() {
		labels := map[string]string{}
		for _, lp := range metric.GetLabel() {
			labels[lp.GetName()] = lp.GetValue()
		}
		switch labels["status"] {
		case "200":
			assert.Equal(t, "GET", labels["method"])
			assert.Equal(t, float64(2), metric.GetCounter().GetValue())
		case "500":
			assert.Equal(t, "POST", labels["method"])
			assert.Equal(t, float64(1), metric.GetCounter().GetValue())
		default:
			t.Fatalf("unexpected status label %q", labels["status"])
		}
	}
}

func TestObserveBackendCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPortalMetrics(reg)

	m.ObserveBackendCall("ListDoctors", 200, 0.05)
	m.ObserveBackendCall("ListDoctors", 200, 0.15)

	mf := gather(t, reg, "clinicportal_backend_call_duration_seconds")
	require.NotNil(t, mf)
	require.Len(t, mf.GetMetric(), 1)
	assert.Equal(t, uint64(2), mf.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *PortalMetrics
	assert.NotPanics(t, func() {
		m.ObservePageRequest("GET", 200)
		m.ObserveBackendCall("WaitingList", 0, 1.0)
	})
}
