package ladder

import (
	"fmt"
	"testing"

	"github.com/spinhall/clubhouse/internal/access"
	"github.com/spinhall/clubhouse/internal/club"
	"github.com/spinhall/clubhouse/internal/metrics"
	"github.com/spinhall/clubhouse/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *club.MockStore, *access.MockChecker, *metrics.Mock, *pubsub.Mock) {
	store := club.NewMock()
	checker := access.NewMockChecker()
	m := metrics.NewMock()
	ps := pubsub.NewMock("test-project")
	return New(store, checker, m, ps), store, checker, m, ps
}

func pendingMatch(id, playerA, playerB string, scoreA, scoreB int) *club.Match {
	return &club.Match{
		ID:      id,
		PlayerA: playerA,
		PlayerB: playerB,
		ScoreA:  scoreA,
		ScoreB:  scoreB,
		Status:  club.StatusPending,
	}
}

func TestSubmitMatchAsPlayerA(t *testing.T) {
	svc, store, _, m, _ := newTestService()

	match, err := svc.SubmitMatch("alice", "alice", "bob", 3, 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", match.PlayerA)
	assert.Equal(t, club.StatusPending, match.Status)
	assert.Len(t, store.SubmitMatchCalls, 1)
	assert.Equal(t, 1, m.MatchesSubmittedCount)
}

func TestSubmitMatchOnBehalfRequiresAdmin(t *testing.T) {
	svc, store, checker, _, _ := newTestService()

	_, err := svc.SubmitMatch("carol", "alice", "bob", 3, 1)
	assert.ErrorIs(t, err, club.ErrForbidden)
	assert.Empty(t, store.SubmitMatchCalls)

	checker.Admins["carol"] = true
	_, err = svc.SubmitMatch("carol", "alice", "bob", 3, 1)
	assert.NoError(t, err)
	assert.Len(t, store.SubmitMatchCalls, 1)
}

func TestSubmitMatchValidation(t *testing.T) {
	svc, store, _, _, _ := newTestService()

	tests := []struct {
		name             string
		playerA, playerB string
		scoreA, scoreB   int
	}{
		{"self play", "alice", "alice", 3, 1},
		{"tie", "alice", "bob", 2, 2},
		{"negative score", "alice", "bob", -1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SubmitMatch("alice", tt.playerA, tt.playerB, tt.scoreA, tt.scoreB)
			assert.ErrorIs(t, err, club.ErrInvalidInput)
		})
	}
	assert.Empty(t, store.SubmitMatchCalls)
}

func TestSubmitMatchUnauthenticated(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, err := svc.SubmitMatch("", "alice", "bob", 3, 1)
	assert.ErrorIs(t, err, club.ErrForbidden)
}

func TestApproveMatchByOpponent(t *testing.T) {
	svc, store, _, m, ps := newTestService()
	store.GetMatchFunc = func(id string) (*club.Match, error) {
		return pendingMatch(id, "alice", "bob", 3, 1), nil
	}
	store.ApproveMatchFunc = func(id string) (*club.AppliedResult, error) {
		return &club.AppliedResult{
			PlayerA: "alice", PlayerB: "bob",
			RatingChangeA: 20, RatingChangeB: -20,
			NewRatingA: 1220, NewRatingB: 1180,
		}, nil
	}

	applied, err := svc.ApproveMatch("bob", "m1")
	require.NoError(t, err)
	assert.Equal(t, 1220, applied.NewRatingA)
	assert.Equal(t, []string{"m1"}, store.ApproveMatchCalls)
	assert.Equal(t, 1, m.MatchesApprovedCount)
	assert.Len(t, m.ApprovalDurations, 1)
	assert.Equal(t, 1, ps.SentCount(string(pubsub.EventRatingChanged)))
}

func TestApproveMatchSelfApprovalForbidden(t *testing.T) {
	svc, store, checker, _, _ := newTestService()
	store.GetMatchFunc = func(id string) (*club.Match, error) {
		return pendingMatch(id, "alice", "bob", 3, 1), nil
	}
	// Even a score authority cannot approve a match they submitted.
	checker.ScoreAuths["alice"] = true

	_, err := svc.ApproveMatch("alice", "m1")
	assert.ErrorIs(t, err, club.ErrForbidden)
	assert.Empty(t, store.ApproveMatchCalls)
}

func TestApproveMatchAdminOverridesSelfApproval(t *testing.T) {
	svc, store, checker, _, _ := newTestService()
	store.GetMatchFunc = func(id string) (*club.Match, error) {
		return pendingMatch(id, "alice", "bob", 3, 1), nil
	}
	store.ApproveMatchFunc = func(id string) (*club.AppliedResult, error) {
		return &club.AppliedResult{PlayerA: "alice", PlayerB: "bob"}, nil
	}
	checker.Admins["alice"] = true

	_, err := svc.ApproveMatch("alice", "m1")
	assert.NoError(t, err)
}

func TestApproveMatchByScoreAuthAdmin(t *testing.T) {
	svc, store, checker, _, _ := newTestService()
	store.GetMatchFunc = func(id string) (*club.Match, error) {
		return pendingMatch(id, "alice", "bob", 3, 1), nil
	}
	store.ApproveMatchFunc = func(id string) (*club.AppliedResult, error) {
		return &club.AppliedResult{PlayerA: "alice", PlayerB: "bob"}, nil
	}
	checker.ScoreAuths["carol"] = true

	_, err := svc.ApproveMatch("carol", "m1")
	assert.NoError(t, err)
}

func TestApproveMatchByStrangerForbidden(t *testing.T) {
	svc, store, _, _, _ := newTestService()
	store.GetMatchFunc = func(id string) (*club.Match, error) {
		return pendingMatch(id, "alice", "bob", 3, 1), nil
	}

	_, err := svc.ApproveMatch("dave", "m1")
	assert.ErrorIs(t, err, club.ErrForbidden)
}

func TestApproveMatchAlreadyResolved(t *testing.T) {
	svc, store, _, _, _ := newTestService()
	store.GetMatchFunc = func(id string) (*club.Match, error) {
		match := pendingMatch(id, "alice", "bob", 3, 1)
		match.Status = club.StatusApproved
		return match, nil
	}

	_, err := svc.ApproveMatch("bob", "m1")
	assert.ErrorIs(t, err, club.ErrNotFound)
	assert.Empty(t, store.ApproveMatchCalls)
}

func TestRejectMatchRequiresReason(t *testing.T) {
	svc, store, _, _, _ := newTestService()
	store.GetMatchFunc = func(id string) (*club.Match, error) {
		return pendingMatch(id, "alice", "bob", 3, 1), nil
	}

	assert.ErrorIs(t, svc.RejectMatch("bob", "m1", ""), club.ErrInvalidInput)
	assert.ErrorIs(t, svc.RejectMatch("bob", "m1", "   "), club.ErrInvalidInput)

	long := ""
	for i := 0; i < 26; i++ {
		long += "0123456789"
	}
	assert.ErrorIs(t, svc.RejectMatch("bob", "m1", long), club.ErrInvalidInput)
	assert.Empty(t, store.RejectMatchCalls)
}

func TestRejectMatchByOpponent(t *testing.T) {
	svc, store, _, m, _ := newTestService()
	store.GetMatchFunc = func(id string) (*club.Match, error) {
		return pendingMatch(id, "alice", "bob", 3, 1), nil
	}

	err := svc.RejectMatch("bob", "m1", "wrong score")
	require.NoError(t, err)
	require.Len(t, store.RejectMatchCalls, 1)
	assert.Equal(t, "wrong score", *store.RejectMatchCalls[0].Reason)
	assert.Equal(t, 1, m.MatchesRejectedCount)
}

func TestCreateMemberRequiresScoreAuthority(t *testing.T) {
	svc, _, checker, m, _ := newTestService()

	_, err := svc.CreateMemberWithClaimCode("dave", "New Player", nil)
	assert.ErrorIs(t, err, club.ErrForbidden)

	checker.ScoreAuths["dave"] = true
	code, err := svc.CreateMemberWithClaimCode("dave", "New Player", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, code)
	assert.Equal(t, 1, m.ClaimCodesIssuedCount)
}

func TestClaimMemberAccount(t *testing.T) {
	svc, store, _, m, _ := newTestService()
	store.ClaimMemberFunc = func(code, principal string) (*club.Member, error) {
		return &club.Member{Principal: principal, Name: "New Player", Rating: 1200}, nil
	}

	member, err := svc.ClaimMemberAccount("eve", "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "eve", member.Principal)
	assert.Equal(t, 1, m.ClaimCodesRedeemedCount)
}

func TestDeleteMemberAdminOnly(t *testing.T) {
	svc, store, checker, _, _ := newTestService()

	assert.ErrorIs(t, svc.DeleteMember("bob", "alice"), club.ErrForbidden)
	assert.Empty(t, store.DeleteMemberCalls)

	checker.Admins["bob"] = true
	assert.NoError(t, svc.DeleteMember("bob", "alice"))
	assert.Equal(t, []string{"alice"}, store.DeleteMemberCalls)
}

func rankedMembers(n int) []club.RankedMember {
	members := make([]club.RankedMember, n)
	for i := range members {
		members[i] = club.RankedMember{
			Member: club.Member{
				Principal: fmt.Sprintf("player-%02d", i),
				Name:      fmt.Sprintf("Player %02d", i),
				Rating:    2000 - i*10,
			},
			Rank: i + 1,
		}
	}
	return members
}

func TestCategoryLeaderboardsEvenSplit(t *testing.T) {
	svc, store, _, _, _ := newTestService()
	store.LeaderboardFunc = func() ([]club.RankedMember, error) {
		return rankedMembers(16), nil
	}

	boards, err := svc.CategoryLeaderboards()
	require.NoError(t, err)
	require.Len(t, boards, 8)
	for i, board := range boards {
		assert.Equal(t, CategoryNames[i], board.CategoryName)
		assert.Len(t, board.Players, 2)
	}
	// Global ranks are preserved and contiguous across categories.
	assert.Equal(t, 1, boards[0].Players[0].Rank)
	assert.Equal(t, 3, boards[1].Players[0].Rank)
	assert.Equal(t, 16, boards[7].Players[1].Rank)
}

func TestCategoryLeaderboardsRemainderToFront(t *testing.T) {
	svc, store, _, _, _ := newTestService()
	store.LeaderboardFunc = func() ([]club.RankedMember, error) {
		return rankedMembers(19), nil
	}

	boards, err := svc.CategoryLeaderboards()
	require.NoError(t, err)
	// 19 = 3+3+3+2+2+2+2+2: the three extra members land in the
	// highest-rated categories.
	sizes := make([]int, len(boards))
	for i, board := range boards {
		sizes[i] = len(board.Players)
	}
	assert.Equal(t, []int{3, 3, 3, 2, 2, 2, 2, 2}, sizes)
}

func TestCategoryLeaderboardsFewerPlayersThanCategories(t *testing.T) {
	svc, store, _, _, _ := newTestService()
	store.LeaderboardFunc = func() ([]club.RankedMember, error) {
		return rankedMembers(3), nil
	}

	boards, err := svc.CategoryLeaderboards()
	require.NoError(t, err)
	require.Len(t, boards, 8)
	assert.Len(t, boards[0].Players, 1)
	assert.Len(t, boards[1].Players, 1)
	assert.Len(t, boards[2].Players, 1)
	for _, board := range boards[3:] {
		assert.Empty(t, board.Players)
	}
}
