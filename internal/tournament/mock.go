package tournament

import (
	"fmt"
	"sync"

	"github.com/spinhall/clubhouse/internal/club"
)

// MockStore is a mock implementation of the TournamentStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	StateFunc        func() (*State, error)
	StatusFunc       func() (Status, error)
	IsActiveFunc     func() (bool, error)
	AnnounceFunc     func() error
	StartFunc        func() error
	PauseFunc        func() error
	ResumeFunc       func() error
	EndFunc          func() error
	ResetFunc        func() error
	RegisterFunc     func(principal string) error
	UnregisterFunc   func(principal string) error
	PlayersFunc      func() ([]Player, error)
	SubmitMatchFunc  func(round int, playerA, playerB string, scoreA, scoreB int, tableNumber *int) (*Match, error)
	GetMatchFunc     func(round, index int) (*Match, error)
	MatchesFunc      func() ([]Match, error)
	ApproveMatchFunc func(round, index int) (*ApprovalOutcome, error)
	RejectMatchFunc  func(round, index int, reason *string) (bool, error)
	StandingsFunc    func() ([]StandingsRow, error)

	// Call records
	TransitionCalls   []string
	RegisterCalls     []string
	UnregisterCalls   []string
	ApproveMatchCalls []struct{ Round, Index int }
	RejectMatchCalls  []struct {
		Round, Index int
		Reason       *string
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) recordTransition(name string) {
	m.mu.Lock()
	m.TransitionCalls = append(m.TransitionCalls, name)
	m.mu.Unlock()
}

func (m *MockStore) State() (*State, error) {
	if m.StateFunc != nil {
		return m.StateFunc()
	}
	return &State{Status: StatusNotStarted}, nil
}

func (m *MockStore) Status() (Status, error) {
	if m.StatusFunc != nil {
		return m.StatusFunc()
	}
	return StatusNotStarted, nil
}

func (m *MockStore) IsActive() (bool, error) {
	if m.IsActiveFunc != nil {
		return m.IsActiveFunc()
	}
	return false, nil
}

func (m *MockStore) Announce() error {
	m.recordTransition("announce")
	if m.AnnounceFunc != nil {
		return m.AnnounceFunc()
	}
	return nil
}

func (m *MockStore) Start() error {
	m.recordTransition("start")
	if m.StartFunc != nil {
		return m.StartFunc()
	}
	return nil
}

func (m *MockStore) Pause() error {
	m.recordTransition("pause")
	if m.PauseFunc != nil {
		return m.PauseFunc()
	}
	return nil
}

func (m *MockStore) Resume() error {
	m.recordTransition("resume")
	if m.ResumeFunc != nil {
		return m.ResumeFunc()
	}
	return nil
}

func (m *MockStore) End() error {
	m.recordTransition("end")
	if m.EndFunc != nil {
		return m.EndFunc()
	}
	return nil
}

func (m *MockStore) Reset() error {
	m.recordTransition("reset")
	if m.ResetFunc != nil {
		return m.ResetFunc()
	}
	return nil
}

func (m *MockStore) Register(principal string) error {
	m.mu.Lock()
	m.RegisterCalls = append(m.RegisterCalls, principal)
	m.mu.Unlock()
	if m.RegisterFunc != nil {
		return m.RegisterFunc(principal)
	}
	return nil
}

func (m *MockStore) Unregister(principal string) error {
	m.mu.Lock()
	m.UnregisterCalls = append(m.UnregisterCalls, principal)
	m.mu.Unlock()
	if m.UnregisterFunc != nil {
		return m.UnregisterFunc(principal)
	}
	return nil
}

func (m *MockStore) Players() ([]Player, error) {
	if m.PlayersFunc != nil {
		return m.PlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) SubmitMatch(round int, playerA, playerB string, scoreA, scoreB int, tableNumber *int) (*Match, error) {
	if m.SubmitMatchFunc != nil {
		return m.SubmitMatchFunc(round, playerA, playerB, scoreA, scoreB, tableNumber)
	}
	return &Match{Round: round, PlayerA: playerA, PlayerB: playerB, ScoreA: scoreA, ScoreB: scoreB, Status: club.StatusPending}, nil
}

func (m *MockStore) GetMatch(round, index int) (*Match, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(round, index)
	}
	return nil, fmt.Errorf("%w: tournament match %d/%d", club.ErrNotFound, round, index)
}

func (m *MockStore) Matches() ([]Match, error) {
	if m.MatchesFunc != nil {
		return m.MatchesFunc()
	}
	return nil, nil
}

func (m *MockStore) ApproveMatch(round, index int) (*ApprovalOutcome, error) {
	m.mu.Lock()
	m.ApproveMatchCalls = append(m.ApproveMatchCalls, struct{ Round, Index int }{round, index})
	m.mu.Unlock()
	if m.ApproveMatchFunc != nil {
		return m.ApproveMatchFunc(round, index)
	}
	return &ApprovalOutcome{Applied: &club.AppliedResult{}, Match: &Match{Round: round, Index: index}}, nil
}

func (m *MockStore) RejectMatch(round, index int, reason *string) (bool, error) {
	m.mu.Lock()
	m.RejectMatchCalls = append(m.RejectMatchCalls, struct {
		Round, Index int
		Reason       *string
	}{round, index, reason})
	m.mu.Unlock()
	if m.RejectMatchFunc != nil {
		return m.RejectMatchFunc(round, index, reason)
	}
	return false, nil
}

func (m *MockStore) Standings() ([]StandingsRow, error) {
	if m.StandingsFunc != nil {
		return m.StandingsFunc()
	}
	return nil, nil
}
