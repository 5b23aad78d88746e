package application

import "ballotbox/contexts/elections/voting-core/ports"

type noopMetrics struct{}

func (noopMetrics) CastCompleted(string) {}
func (noopMetrics) TokenChecked(string)  {}
func (noopMetrics) TokensIssued(int)     {}
func (noopMetrics) TallyComputed(string) {}

func ResolveMetrics(metrics ports.Metrics) ports.Metrics {
	if metrics == nil {
		return noopMetrics{}
	}
	return metrics
}
