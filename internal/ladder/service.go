package ladder

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spinhall/clubhouse/internal/access"
	"github.com/spinhall/clubhouse/internal/club"
	"github.com/spinhall/clubhouse/internal/metrics"
	"github.com/spinhall/clubhouse/internal/pubsub"
)

// New creates a new ladder Service.
func New(store club.ClubStore, checker access.Checker, metrics metrics.Metrics, ps pubsub.PubSubClient) *Service {
	return &Service{
		store:   store,
		checker: checker,
		metrics: metrics,
		pubsub:  ps,
	}
}

// SubmitMatch records a pending match score. Ordinary members may only
// submit matches they played as playerA; admins may submit on behalf of two
// arbitrary players.
func (s *Service) SubmitMatch(caller, playerA, playerB string, scoreA, scoreB int) (*club.Match, error) {
	if caller == "" {
		return nil, fmt.Errorf("%w: authentication required", club.ErrForbidden)
	}
	if playerA == playerB {
		return nil, fmt.Errorf("%w: a player cannot play themselves", club.ErrInvalidInput)
	}
	if scoreA < 0 || scoreB < 0 {
		return nil, fmt.Errorf("%w: scores must be non-negative", club.ErrInvalidInput)
	}
	if scoreA == scoreB {
		return nil, fmt.Errorf("%w: ties are not allowed", club.ErrInvalidInput)
	}
	if caller != playerA && !s.checker.IsAdmin(caller) {
		return nil, fmt.Errorf("%w: only admins may submit on behalf of other players", club.ErrForbidden)
	}

	match, err := s.store.SubmitMatch(playerA, playerB, scoreA, scoreB)
	if err != nil {
		return nil, err
	}
	s.metrics.IncMatchesSubmitted()
	return match, nil
}

// authorizeResolution applies the shared approval rule: the opponent
// (playerB) or a score authority may resolve a match, and playerA may never
// resolve their own submission unless they hold full admin rights.
func (s *Service) authorizeResolution(caller string, playerA, playerB string) error {
	if caller == "" {
		return fmt.Errorf("%w: authentication required", club.ErrForbidden)
	}
	if caller == playerA && !s.checker.IsAdmin(caller) {
		return fmt.Errorf("%w: players cannot approve their own submissions", club.ErrForbidden)
	}
	if caller != playerB && !s.checker.CanApproveScores(caller) {
		return fmt.Errorf("%w: only the opponent or a score authority may resolve this match", club.ErrForbidden)
	}
	return nil
}

// ApproveMatch commits a pending match score, applying the Elo update to
// both players atomically.
func (s *Service) ApproveMatch(caller, matchID string) (*club.AppliedResult, error) {
	match, err := s.store.GetMatch(matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != club.StatusPending {
		return nil, fmt.Errorf("%w: no pending match %s", club.ErrNotFound, matchID)
	}
	if err := s.authorizeResolution(caller, match.PlayerA, match.PlayerB); err != nil {
		return nil, err
	}

	start := time.Now()
	applied, err := s.store.ApproveMatch(matchID)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveApprovalDuration(time.Since(start).Seconds())
	s.metrics.IncMatchesApproved()

	s.publishRatingChanged(applied, match.ScoreA, match.ScoreB, false)
	return applied, nil
}

// RejectMatch marks a pending match rejected. A non-empty reason is
// required for regular matches.
func (s *Service) RejectMatch(caller, matchID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Errorf("%w: a rejection reason is required", club.ErrInvalidInput)
	}
	if len(reason) > MaxRejectionReasonLen {
		return fmt.Errorf("%w: rejection reason exceeds %d characters", club.ErrInvalidInput, MaxRejectionReasonLen)
	}

	match, err := s.store.GetMatch(matchID)
	if err != nil {
		return err
	}
	if match.Status != club.StatusPending {
		return fmt.Errorf("%w: no pending match %s", club.ErrNotFound, matchID)
	}
	if err := s.authorizeResolution(caller, match.PlayerA, match.PlayerB); err != nil {
		return err
	}

	if err := s.store.RejectMatch(matchID, &reason); err != nil {
		return err
	}
	s.metrics.IncMatchesRejected()
	return nil
}

// CreateMemberWithClaimCode pre-creates a member record and returns its
// one-time claim code. Admins and score-auth admins may create members.
func (s *Service) CreateMemberWithClaimCode(caller, name string, photoKey *string) (string, error) {
	if !s.checker.IsAdmin(caller) && !s.checker.IsScoreAuthAdmin(caller) {
		return "", fmt.Errorf("%w: only admins may create members", club.ErrForbidden)
	}
	code, err := s.store.CreateMemberWithClaimCode(name, photoKey)
	if err != nil {
		return "", err
	}
	s.metrics.IncClaimCodesIssued()
	return code, nil
}

// ClaimMemberAccount redeems a claim code for the calling identity.
func (s *Service) ClaimMemberAccount(caller, code string) (*club.Member, error) {
	if caller == "" {
		return nil, fmt.Errorf("%w: authentication required", club.ErrForbidden)
	}
	member, err := s.store.ClaimMember(code, caller)
	if err != nil {
		return nil, err
	}
	s.metrics.IncClaimCodesRedeemed()
	return member, nil
}

// DeleteMember removes a member from directory and leaderboard views.
// Admin only; match history is not cascaded.
func (s *Service) DeleteMember(caller, principal string) error {
	if !s.checker.IsAdmin(caller) {
		return fmt.Errorf("%w: only admins may delete members", club.ErrForbidden)
	}
	return s.store.DeleteMember(principal)
}

// Leaderboard returns the global leaderboard, recomputed from the store.
func (s *Service) Leaderboard() ([]club.RankedMember, error) {
	return s.store.Leaderboard()
}

// CategoryLeaderboards partitions the global leaderboard into the eight
// categories. Sizes differ by at most one; when the membership does not
// divide evenly the extra members go to the higher-rated categories.
func (s *Service) CategoryLeaderboards() ([]CategoryLeaderboard, error) {
	ranked, err := s.store.Leaderboard()
	if err != nil {
		return nil, err
	}

	n := len(ranked)
	base := n / len(CategoryNames)
	remainder := n % len(CategoryNames)

	boards := make([]CategoryLeaderboard, len(CategoryNames))
	offset := 0
	for i, name := range CategoryNames {
		size := base
		if i < remainder {
			size++
		}
		boards[i] = CategoryLeaderboard{
			CategoryName: name,
			Players:      ranked[offset : offset+size],
		}
		offset += size
	}
	return boards, nil
}

func (s *Service) publishRatingChanged(applied *club.AppliedResult, scoreA, scoreB int, isTournament bool) {
	event := pubsub.RatingChangedEvent{
		PlayerA:       applied.PlayerA,
		PlayerB:       applied.PlayerB,
		ScoreA:        scoreA,
		ScoreB:        scoreB,
		RatingChangeA: applied.RatingChangeA,
		RatingChangeB: applied.RatingChangeB,
		NewRatingA:    applied.NewRatingA,
		NewRatingB:    applied.NewRatingB,
		Tournament:    isTournament,
	}
	if memberA, err := s.store.GetMember(applied.PlayerA); err == nil {
		event.PlayerAName = memberA.Name
	}
	if memberB, err := s.store.GetMember(applied.PlayerB); err == nil {
		event.PlayerBName = memberB.Name
	}
	if err := s.pubsub.SendMessage(string(pubsub.EventRatingChanged), event); err != nil {
		log.Error("Failed to publish rating change", "error", err, "playerA", applied.PlayerA, "playerB", applied.PlayerB)
	}
}
