package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncTransition("client", "deactivate")
	m.IncTransition("client", "deactivate")
	m.AddCascade("client", 3)
	m.AddCascade("card", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("client", "deactivate")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.CascadeContracts.WithLabelValues("client")))
	// zero-sized cascades do not create a series
	assert.Equal(t, 1, testutil.CollectAndCount(m.CascadeContracts, "cardhub_cascade_contracts_total"))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncTransition("card", "deactivate")
		m.AddCascade("card", 1)
	})
}
