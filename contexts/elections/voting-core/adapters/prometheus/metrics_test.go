package promadapter

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCountOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	metrics.CastCompleted("recorded")
	metrics.CastCompleted("recorded")
	metrics.CastCompleted("invalid_or_used_token")
	metrics.TokenChecked("valid")
	metrics.TokensIssued(25)
	metrics.TallyComputed("single")

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.casts.WithLabelValues("recorded")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.casts.WithLabelValues("invalid_or_used_token")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.checks.WithLabelValues("valid")), 0)
	assert.InDelta(t, 25, testutil.ToFloat64(metrics.issued), 0)

	expected := `
# HELP ballotbox_tallies_total Tallies computed by ballot type
# TYPE ballotbox_tallies_total counter
ballotbox_tallies_total{ballot_type="single"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "ballotbox_tallies_total"))
}

func TestMetricsRegisterOncePerRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
	assert.NotPanics(t, func() { NewMetrics(prometheus.NewRegistry()) })
}
