package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation
// (e.g., Prometheus).
type Metrics interface {
	IncMatchesSubmitted()
	IncMatchesApproved()
	IncMatchesRejected()
	IncTournamentMatchesApproved()
	IncClaimCodesIssued()
	IncClaimCodesRedeemed()
	ObserveApprovalDuration(seconds float64)
	IncNotifSent()
	IncNotifFailed()
	SetStartupTime(seconds float64)
}
