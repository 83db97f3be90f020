package metrics

import "sync"

// Mock is a no-op Metrics implementation that records call counts.
type Mock struct {
	mu sync.Mutex

	MatchesSubmittedCount          int
	MatchesApprovedCount           int
	MatchesRejectedCount           int
	TournamentMatchesApprovedCount int
	ClaimCodesIssuedCount          int
	ClaimCodesRedeemedCount        int
	ApprovalDurations              []float64
	NotifSentCount                 int
	NotifFailedCount               int
	StartupTime                    float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) IncMatchesSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesSubmittedCount++
}

func (m *Mock) IncMatchesApproved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesApprovedCount++
}

func (m *Mock) IncMatchesRejected() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesRejectedCount++
}

func (m *Mock) IncTournamentMatchesApproved() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TournamentMatchesApprovedCount++
}

func (m *Mock) IncClaimCodesIssued() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClaimCodesIssuedCount++
}

func (m *Mock) IncClaimCodesRedeemed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClaimCodesRedeemedCount++
}

func (m *Mock) ObserveApprovalDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ApprovalDurations = append(m.ApprovalDurations, seconds)
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifSentCount++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifFailedCount++
}

func (m *Mock) SetStartupTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTime = seconds
}
