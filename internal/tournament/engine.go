package tournament

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spinhall/clubhouse/internal/access"
	"github.com/spinhall/clubhouse/internal/club"
	"github.com/spinhall/clubhouse/internal/metrics"
	"github.com/spinhall/clubhouse/internal/pubsub"
)

// MaxRejectionReasonLen caps rejection reasons for tournament matches. The
// reason itself is optional.
const MaxRejectionReasonLen = 255

// Engine wraps the tournament store with authorization and event
// publishing. Lifecycle operations are admin only; match submission and
// approval follow the same rules as regular matches.
type Engine struct {
	store   TournamentStore
	members club.ClubStore
	checker access.Checker
	metrics metrics.Metrics
	pubsub  pubsub.PubSubClient
}

// NewEngine creates a new tournament Engine.
func NewEngine(store TournamentStore, members club.ClubStore, checker access.Checker, m metrics.Metrics, ps pubsub.PubSubClient) *Engine {
	return &Engine{
		store:   store,
		members: members,
		checker: checker,
		metrics: m,
		pubsub:  ps,
	}
}

func (e *Engine) requireAdmin(caller string) error {
	if !e.checker.IsAdmin(caller) {
		return fmt.Errorf("%w: only admins may manage the tournament", club.ErrForbidden)
	}
	return nil
}

// Announce opens a new tournament for registration.
func (e *Engine) Announce(caller string) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	return e.store.Announce()
}

// Start begins play.
func (e *Engine) Start(caller string) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	return e.store.Start()
}

// Pause suspends play without losing state.
func (e *Engine) Pause(caller string) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	return e.store.Pause()
}

// Resume continues a paused tournament.
func (e *Engine) Resume(caller string) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	return e.store.Resume()
}

// End completes the tournament and publishes the final standings.
func (e *Engine) End(caller string) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if err := e.store.End(); err != nil {
		return err
	}
	e.publishStandings(0, true)
	return nil
}

// Reset discards a completed tournament.
func (e *Engine) Reset(caller string) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	return e.store.Reset()
}

// Register signs the caller up for the tournament.
func (e *Engine) Register(caller string) error {
	if caller == "" {
		return fmt.Errorf("%w: authentication required", club.ErrForbidden)
	}
	return e.store.Register(caller)
}

// Unregister withdraws the caller from the tournament.
func (e *Engine) Unregister(caller string) error {
	if caller == "" {
		return fmt.Errorf("%w: authentication required", club.ErrForbidden)
	}
	return e.store.Unregister(caller)
}

// AddPlayer registers another member, admin only.
func (e *Engine) AddPlayer(caller, principal string) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	return e.store.Register(principal)
}

// RemovePlayer withdraws another member, admin only.
func (e *Engine) RemovePlayer(caller, principal string) error {
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	return e.store.Unregister(principal)
}

// SubmitMatch records a tournament match the caller played as playerA.
func (e *Engine) SubmitMatch(caller string, round int, playerB string, scoreA, scoreB int, tableNumber *int) (*Match, error) {
	if caller == "" {
		return nil, fmt.Errorf("%w: authentication required", club.ErrForbidden)
	}
	return e.store.SubmitMatch(round, caller, playerB, scoreA, scoreB, tableNumber)
}

// SubmitMatchWithPlayers records a match between two arbitrary registered
// players, admin only.
func (e *Engine) SubmitMatchWithPlayers(caller string, round int, playerA, playerB string, scoreA, scoreB int, tableNumber *int) (*Match, error) {
	if caller != playerA && !e.checker.IsAdmin(caller) {
		return nil, fmt.Errorf("%w: only admins may submit on behalf of other players", club.ErrForbidden)
	}
	return e.store.SubmitMatch(round, playerA, playerB, scoreA, scoreB, tableNumber)
}

func (e *Engine) authorizeResolution(caller, playerA, playerB string) error {
	if caller == "" {
		return fmt.Errorf("%w: authentication required", club.ErrForbidden)
	}
	if caller == playerA && !e.checker.IsAdmin(caller) {
		return fmt.Errorf("%w: players cannot approve their own submissions", club.ErrForbidden)
	}
	if caller != playerB && !e.checker.CanApproveScores(caller) {
		return fmt.Errorf("%w: only the opponent or a score authority may resolve this match", club.ErrForbidden)
	}
	return nil
}

// ApproveMatch commits a pending tournament match: ratings, stats and match
// status change in one transaction. When the approval closes its round the
// current standings are published.
func (e *Engine) ApproveMatch(caller string, round, index int) (*ApprovalOutcome, error) {
	m, err := e.store.GetMatch(round, index)
	if err != nil {
		return nil, err
	}
	if m.Status != club.StatusPending {
		return nil, fmt.Errorf("%w: no pending tournament match %d/%d", club.ErrNotFound, round, index)
	}
	if err := e.authorizeResolution(caller, m.PlayerA, m.PlayerB); err != nil {
		return nil, err
	}

	outcome, err := e.store.ApproveMatch(round, index)
	if err != nil {
		return nil, err
	}
	e.metrics.IncTournamentMatchesApproved()

	e.publishRatingChanged(outcome.Applied, m.ScoreA, m.ScoreB)
	if outcome.RoundComplete {
		e.publishStandings(round, false)
	}
	return outcome, nil
}

// RejectMatch marks a pending tournament match rejected. The reason is
// optional here, unlike regular matches. A rejection resolves the match, so
// when it is the last pending one in its round the standings are published.
func (e *Engine) RejectMatch(caller string, round, index int, reason string) error {
	reason = strings.TrimSpace(reason)
	if len(reason) > MaxRejectionReasonLen {
		return fmt.Errorf("%w: rejection reason exceeds %d characters", club.ErrInvalidInput, MaxRejectionReasonLen)
	}

	m, err := e.store.GetMatch(round, index)
	if err != nil {
		return err
	}
	if m.Status != club.StatusPending {
		return fmt.Errorf("%w: no pending tournament match %d/%d", club.ErrNotFound, round, index)
	}
	if err := e.authorizeResolution(caller, m.PlayerA, m.PlayerB); err != nil {
		return err
	}

	var stored *string
	if reason != "" {
		stored = &reason
	}
	roundComplete, err := e.store.RejectMatch(round, index, stored)
	if err != nil {
		return err
	}
	if roundComplete {
		e.publishStandings(round, false)
	}
	return nil
}

// State returns the full tournament snapshot.
func (e *Engine) State() (*State, error) {
	return e.store.State()
}

// Standings returns the current tournament standings.
func (e *Engine) Standings() ([]StandingsRow, error) {
	return e.store.Standings()
}

// IsActive reports whether play is currently open.
func (e *Engine) IsActive() (bool, error) {
	return e.store.IsActive()
}

func (e *Engine) publishRatingChanged(applied *club.AppliedResult, scoreA, scoreB int) {
	event := pubsub.RatingChangedEvent{
		PlayerA:       applied.PlayerA,
		PlayerB:       applied.PlayerB,
		ScoreA:        scoreA,
		ScoreB:        scoreB,
		RatingChangeA: applied.RatingChangeA,
		RatingChangeB: applied.RatingChangeB,
		NewRatingA:    applied.NewRatingA,
		NewRatingB:    applied.NewRatingB,
		Tournament:    true,
	}
	if memberA, err := e.members.GetMember(applied.PlayerA); err == nil {
		event.PlayerAName = memberA.Name
	}
	if memberB, err := e.members.GetMember(applied.PlayerB); err == nil {
		event.PlayerBName = memberB.Name
	}
	if err := e.pubsub.SendMessage(string(pubsub.EventRatingChanged), event); err != nil {
		log.Error("Failed to publish rating change", "error", err, "playerA", applied.PlayerA, "playerB", applied.PlayerB)
	}
}

func (e *Engine) publishStandings(round int, final bool) {
	standings, err := e.store.Standings()
	if err != nil {
		log.Error("Failed to load standings for publishing", "error", err)
		return
	}
	event := pubsub.TournamentStandingsEvent{
		Rows:  make([]pubsub.StandingsRow, len(standings)),
		Round: round,
		Final: final,
	}
	for i, r := range standings {
		event.Rows[i] = pubsub.StandingsRow{
			Principal: r.Principal,
			Name:      r.Name,
			Wins:      r.Wins,
			Losses:    r.Losses,
			GamesWon:  r.GamesWon,
			GamesLost: r.GamesLost,
			Points:    r.Points,
			Rank:      r.Rank,
		}
	}
	if err := e.pubsub.SendMessage(string(pubsub.EventTournamentStandings), event); err != nil {
		log.Error("Failed to publish tournament standings", "error", err)
	}
}
