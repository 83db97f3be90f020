package access

// MockChecker is a configurable Checker for tests.
type MockChecker struct {
	Admins     map[string]bool
	ScoreAuths map[string]bool
}

// NewMockChecker creates an empty MockChecker; tests mark principals in the
// Admins and ScoreAuths maps directly.
func NewMockChecker() *MockChecker {
	return &MockChecker{
		Admins:     make(map[string]bool),
		ScoreAuths: make(map[string]bool),
	}
}

func (m *MockChecker) IsAdmin(principal string) bool {
	return m.Admins[principal]
}

func (m *MockChecker) IsScoreAuthAdmin(principal string) bool {
	return m.ScoreAuths[principal]
}

func (m *MockChecker) CanApproveScores(principal string) bool {
	return m.IsAdmin(principal) || m.IsScoreAuthAdmin(principal)
}
