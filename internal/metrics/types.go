package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service is the Prometheus-backed Metrics implementation.
type Service struct {
	MatchesSubmitted           prometheus.Counter
	MatchesApproved            prometheus.Counter
	MatchesRejected            prometheus.Counter
	TournamentMatchesApproved  prometheus.Counter
	ClaimCodesIssued           prometheus.Counter
	ClaimCodesRedeemed         prometheus.Counter
	ApprovalDuration           prometheus.Histogram
	NotifSent                  prometheus.Counter
	NotifFailed                prometheus.Counter
	StartupTimeSeconds         prometheus.Gauge
}
