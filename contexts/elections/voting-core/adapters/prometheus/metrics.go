package promadapter

import (
	"ballotbox/contexts/elections/voting-core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ballotbox"

type Metrics struct {
	casts   *prometheus.CounterVec
	checks  *prometheus.CounterVec
	issued  prometheus.Counter
	tallies *prometheus.CounterVec
}

// NewMetrics registers the voting-core collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		casts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_casts_total",
			Help:      "Vote cast attempts by outcome",
		}, []string{"outcome"}),
		checks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_checks_total",
			Help:      "Voter token pre-flight checks by outcome",
		}, []string{"outcome"}),
		issued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Voter tokens issued",
		}),
		tallies: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tallies_total",
			Help:      "Tallies computed by ballot type",
		}, []string{"ballot_type"}),
	}
}

func (m *Metrics) CastCompleted(outcome string) {
	m.casts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TokenChecked(outcome string) {
	m.checks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TokensIssued(count int) {
	m.issued.Add(float64(count))
}

func (m *Metrics) TallyComputed(ballotType string) {
	m.tallies.WithLabelValues(ballotType).Inc()
}

var _ ports.Metrics = (*Metrics)(nil)
