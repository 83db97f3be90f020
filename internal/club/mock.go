package club

import (
	"database/sql"
	"sync"
)

// MockStore is a mock implementation of the ClubStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	GetMemberFunc                 func(principal string) (*Member, error)
	ListMembersFunc               func() ([]Member, error)
	DirectoryFunc                 func() ([]DirectoryEntry, error)
	LeaderboardFunc               func() ([]RankedMember, error)
	UpdateProfileFunc             func(principal, name string, photoKey *string) error
	UpdateMemberPhotoFunc         func(principal, photoKey string) error
	DeleteMemberFunc              func(principal string) error
	CreateMemberWithClaimCodeFunc func(name string, photoKey *string) (string, error)
	ClaimMemberFunc               func(code, principal string) (*Member, error)
	UnclaimedMembersFunc          func() ([]ClaimRecord, error)
	SubmitMatchFunc               func(playerA, playerB string, scoreA, scoreB int) (*Match, error)
	GetMatchFunc                  func(id string) (*Match, error)
	PendingMatchesFunc            func() ([]Match, error)
	ApprovedMatchesFunc           func() ([]Match, error)
	MatchHistoryFunc              func(principal string) ([]Match, error)
	ApproveMatchFunc              func(id string) (*AppliedResult, error)
	RejectMatchFunc               func(id string, reason *string) error
	InTxFunc                      func(fn func(tx *sql.Tx) error) error
	ApplyResultTxFunc             func(tx *sql.Tx, playerA, playerB string, scoreA, scoreB int) (*AppliedResult, error)

	// Call records
	SubmitMatchCalls []struct {
		PlayerA, PlayerB string
		ScoreA, ScoreB   int
	}
	ApproveMatchCalls []string
	RejectMatchCalls  []struct {
		ID     string
		Reason *string
	}
	DeleteMemberCalls []string
	ClaimMemberCalls  []struct{ Code, Principal string }
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) GetMember(principal string) (*Member, error) {
	if m.GetMemberFunc != nil {
		return m.GetMemberFunc(principal)
	}
	return nil, ErrNotFound
}

func (m *MockStore) ListMembers() ([]Member, error) {
	if m.ListMembersFunc != nil {
		return m.ListMembersFunc()
	}
	return nil, nil
}

func (m *MockStore) Directory() ([]DirectoryEntry, error) {
	if m.DirectoryFunc != nil {
		return m.DirectoryFunc()
	}
	return nil, nil
}

func (m *MockStore) Leaderboard() ([]RankedMember, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc()
	}
	return nil, nil
}

func (m *MockStore) UpdateProfile(principal, name string, photoKey *string) error {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(principal, name, photoKey)
	}
	return nil
}

func (m *MockStore) UpdateMemberPhoto(principal, photoKey string) error {
	if m.UpdateMemberPhotoFunc != nil {
		return m.UpdateMemberPhotoFunc(principal, photoKey)
	}
	return nil
}

func (m *MockStore) DeleteMember(principal string) error {
	m.mu.Lock()
	m.DeleteMemberCalls = append(m.DeleteMemberCalls, principal)
	m.mu.Unlock()
	if m.DeleteMemberFunc != nil {
		return m.DeleteMemberFunc(principal)
	}
	return nil
}

func (m *MockStore) CreateMemberWithClaimCode(name string, photoKey *string) (string, error) {
	if m.CreateMemberWithClaimCodeFunc != nil {
		return m.CreateMemberWithClaimCodeFunc(name, photoKey)
	}
	return "MOCKCODE", nil
}

func (m *MockStore) ClaimMember(code, principal string) (*Member, error) {
	m.mu.Lock()
	m.ClaimMemberCalls = append(m.ClaimMemberCalls, struct{ Code, Principal string }{code, principal})
	m.mu.Unlock()
	if m.ClaimMemberFunc != nil {
		return m.ClaimMemberFunc(code, principal)
	}
	return nil, ErrNotFound
}

func (m *MockStore) UnclaimedMembers() ([]ClaimRecord, error) {
	if m.UnclaimedMembersFunc != nil {
		return m.UnclaimedMembersFunc()
	}
	return nil, nil
}

func (m *MockStore) SubmitMatch(playerA, playerB string, scoreA, scoreB int) (*Match, error) {
	m.mu.Lock()
	m.SubmitMatchCalls = append(m.SubmitMatchCalls, struct {
		PlayerA, PlayerB string
		ScoreA, ScoreB   int
	}{playerA, playerB, scoreA, scoreB})
	m.mu.Unlock()
	if m.SubmitMatchFunc != nil {
		return m.SubmitMatchFunc(playerA, playerB, scoreA, scoreB)
	}
	return &Match{PlayerA: playerA, PlayerB: playerB, ScoreA: scoreA, ScoreB: scoreB, Status: StatusPending}, nil
}

func (m *MockStore) GetMatch(id string) (*Match, error) {
	if m.GetMatchFunc != nil {
		return m.GetMatchFunc(id)
	}
	return nil, ErrNotFound
}

func (m *MockStore) PendingMatches() ([]Match, error) {
	if m.PendingMatchesFunc != nil {
		return m.PendingMatchesFunc()
	}
	return nil, nil
}

func (m *MockStore) ApprovedMatches() ([]Match, error) {
	if m.ApprovedMatchesFunc != nil {
		return m.ApprovedMatchesFunc()
	}
	return nil, nil
}

func (m *MockStore) MatchHistory(principal string) ([]Match, error) {
	if m.MatchHistoryFunc != nil {
		return m.MatchHistoryFunc(principal)
	}
	return nil, nil
}

func (m *MockStore) ApproveMatch(id string) (*AppliedResult, error) {
	m.mu.Lock()
	m.ApproveMatchCalls = append(m.ApproveMatchCalls, id)
	m.mu.Unlock()
	if m.ApproveMatchFunc != nil {
		return m.ApproveMatchFunc(id)
	}
	return &AppliedResult{}, nil
}

func (m *MockStore) RejectMatch(id string, reason *string) error {
	m.mu.Lock()
	m.RejectMatchCalls = append(m.RejectMatchCalls, struct {
		ID     string
		Reason *string
	}{id, reason})
	m.mu.Unlock()
	if m.RejectMatchFunc != nil {
		return m.RejectMatchFunc(id, reason)
	}
	return nil
}

func (m *MockStore) InTx(fn func(tx *sql.Tx) error) error {
	if m.InTxFunc != nil {
		return m.InTxFunc(fn)
	}
	return fn(nil)
}

func (m *MockStore) ApplyResultTx(tx *sql.Tx, playerA, playerB string, scoreA, scoreB int) (*AppliedResult, error) {
	if m.ApplyResultTxFunc != nil {
		return m.ApplyResultTxFunc(tx, playerA, playerB, scoreA, scoreB)
	}
	return &AppliedResult{PlayerA: playerA, PlayerB: playerB}, nil
}
