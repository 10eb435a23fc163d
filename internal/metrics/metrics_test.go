package metrics_test

import (
	"testing"

	"socios/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.IncrementMembersRegistered()
	m.IncrementMembersRegistered()
	m.IncrementMembersDeleted()
	m.IncrementDocumentsUploaded("Voter ID")
	m.IncrementExports()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MembersRegistered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MembersDeleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsUploaded.WithLabelValues("Voter ID")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Exports))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.IncrementMembersRegistered()
		m.IncrementDocumentsUploaded("x")
	})
}
