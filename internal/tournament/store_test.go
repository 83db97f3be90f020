package tournament_test

import (
	"database/sql"
	"testing"

	"github.com/spinhall/clubhouse/internal/club"
	"github.com/spinhall/clubhouse/internal/database"
	"github.com/spinhall/clubhouse/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (tournament.TournamentStore, *sql.DB, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	members := club.New(db)
	store := tournament.New(db, members)
	return store, db, dbTeardown
}

func addMember(t *testing.T, db *sql.DB, principal, name string, rating int) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO members (principal, name, rating, created_at) VALUES (?, ?, ?, 0)",
		principal, name, rating,
	)
	require.NoError(t, err)
}

// startedTournament announces and starts a tournament with the given
// members registered.
func startedTournament(t *testing.T, store tournament.TournamentStore, db *sql.DB, principals ...string) {
	t.Helper()
	require.NoError(t, store.Announce())
	for _, p := range principals {
		addMember(t, db, p, "Player "+p, 1200)
		require.NoError(t, store.Register(p))
	}
	require.NoError(t, store.Start())
}

func TestLifecycleTransitions(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	status, err := store.Status()
	require.NoError(t, err)
	assert.Equal(t, tournament.StatusNotStarted, status)

	// Start before announce is invalid.
	assert.ErrorIs(t, store.Start(), club.ErrInvalidState)

	require.NoError(t, store.Announce())
	assert.ErrorIs(t, store.Announce(), club.ErrInvalidState)

	require.NoError(t, store.Start())
	active, err := store.IsActive()
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, store.Pause())
	assert.ErrorIs(t, store.Pause(), club.ErrInvalidState)
	require.NoError(t, store.Resume())

	require.NoError(t, store.End())
	status, err = store.Status()
	require.NoError(t, err)
	assert.Equal(t, tournament.StatusCompleted, status)

	// Reset only applies to a completed tournament; after it the
	// tournament is back to idle.
	require.NoError(t, store.Reset())
	assert.ErrorIs(t, store.Reset(), club.ErrInvalidState)
	status, err = store.Status()
	require.NoError(t, err)
	assert.Equal(t, tournament.StatusNotStarted, status)
}

func TestEndFromPaused(t *testing.T) {
	store, _, teardown := setupTestStore(t)
	defer teardown()

	require.NoError(t, store.Announce())
	require.NoError(t, store.Start())
	require.NoError(t, store.Pause())
	require.NoError(t, store.End())
}

func TestAnnounceAfterCompletionClearsPreviousTournament(t *testing.T) {
	store, db, teardown := setupTestStore(t)
	defer teardown()

	startedTournament(t, store, db, "alice", "bob")
	_, err := store.SubmitMatch(1, "alice", "bob", 2, 0, nil)
	require.NoError(t, err)
	require.NoError(t, store.End())

	require.NoError(t, store.Announce())

	players, err := store.Players()
	require.NoError(t, err)
	assert.Empty(t, players)

	matches, err := store.Matches()
	require.NoError(t, err)
	assert.Empty(t, matches)

	state, err := store.State()
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentRound)
	assert.Nil(t, state.StartedAt)
}

func TestRegistration(t *testing.T) {
	store, db, teardown := setupTestStore(t)
	defer teardown()
	addMember(t, db, "alice", "Alice", 1200)

	// Registration requires an announced or active tournament.
	assert.ErrorIs(t, store.Register("alice"), club.ErrInvalidState)

	require.NoError(t, store.Announce())
	require.NoError(t, store.Register("alice"))

	// Duplicate registration conflicts.
	assert.ErrorIs(t, store.Register("alice"), club.ErrConflict)

	// Unknown member cannot register.
	assert.ErrorIs(t, store.Register("ghost"), club.ErrNotFound)

	// Unregistering someone not registered is NotFound.
	assert.ErrorIs(t, store.Unregister("bob"), club.ErrNotFound)

	require.NoError(t, store.Unregister("alice"))
	players, err := store.Players()
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestSubmitMatchValidation(t *testing.T) {
	store, db, teardown := setupTestStore(t)
	defer teardown()
	startedTournament(t, store, db, "alice", "bob")

	// Only decided best-of-three scores are accepted.
	for _, score := range [][2]int{{3, 1}, {2, 2}, {0, 0}, {1, 1}, {2, 3}} {
		_, err := store.SubmitMatch(1, "alice", "bob", score[0], score[1], nil)
		assert.ErrorIs(t, err, club.ErrInvalidInput, "score %d-%d", score[0], score[1])
	}

	_, err := store.SubmitMatch(0, "alice", "bob", 2, 0, nil)
	assert.ErrorIs(t, err, club.ErrInvalidInput)

	_, err = store.SubmitMatch(1, "alice", "alice", 2, 0, nil)
	assert.ErrorIs(t, err, club.ErrInvalidInput)

	// Both players must be registered.
	addMember(t, db, "carol", "Carol", 1200)
	_, err = store.SubmitMatch(1, "alice", "carol", 2, 0, nil)
	assert.ErrorIs(t, err, club.ErrNotFound)
}

func TestSubmitMatchRequiresActive(t *testing.T) {
	store, db, teardown := setupTestStore(t)
	defer teardown()
	startedTournament(t, store, db, "alice", "bob")
	require.NoError(t, store.Pause())

	_, err := store.SubmitMatch(1, "alice", "bob", 2, 0, nil)
	assert.ErrorIs(t, err, club.ErrInvalidState)
}

func TestSubmitMatchAdvancesCurrentRound(t *testing.T) {
	store, db, teardown := setupTestStore(t)
	defer teardown()
	startedTournament(t, store, db, "alice", "bob", "carol", "dave")

	m1, err := store.SubmitMatch(1, "alice", "bob", 2, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m1.Index)

	m2, err := store.SubmitMatch(1, "carol", "dave", 2, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, m2.Index)

	m3, err := store.SubmitMatch(2, "alice", "carol", 2, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m3.Index)

	state, err := store.State()
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentRound)
	assert.Len(t, state.Matches, 3)
}

func TestApproveMatchUpdatesRatingsAndStats(t *testing.T) {
	store, db, teardown := setupTestStore(t)
	defer teardown()
	members := club.New(db)
	startedTournament(t, store, db, "alice", "bob")

	_, err := store.SubmitMatch(1, "alice", "bob", 2, 1, nil)
	require.NoError(t, err)

	outcome, err := store.ApproveMatch(1, 0)
	require.NoError(t, err)
	// Equal 1200 ratings, fresh players: K=40, expected 0.5 → ±20.
	assert.Equal(t, 20, outcome.Applied.RatingChangeA)
	assert.Equal(t, -20, outcome.Applied.RatingChangeB)
	assert.True(t, outcome.RoundComplete)

	alice, err := members.GetMember("alice")
	require.NoError(t, err)
	assert.Equal(t, 1220, alice.Rating)

	standings, err := store.Standings()
	require.NoError(t, err)
	require.Len(t, standings, 2)
	assert.Equal(t, "alice", standings[0].Principal)
	assert.Equal(t, 1, standings[0].Wins)
	assert.Equal(t, 2, standings[0].GamesWon)
	assert.Equal(t, 1, standings[0].GamesLost)
	assert.Equal(t, tournament.PointsPerWin, standings[0].Points)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, "bob", standings[1].Principal)
	assert.Equal(t, 1, standings[1].Losses)
	assert.Equal(t, 0, standings[1].Points)
}

func TestApproveMatchTwiceFails(t *testing.T) {
	store, db, teardown := setupTestStore(t)
	defer teardown()
	members := club.New(db)
	startedTournament(t, store, db, "alice", "bob")

	_, err := store.SubmitMatch(1, "alice", "bob", 2, 0, nil)
	require.NoError(t, err)

	_, err = store.ApproveMatch(1, 0)
	require.NoError(t, err)

	_, err = store.ApproveMatch(1, 0)
	assert.ErrorIs(t, err, club.ErrNotFound)

	// Ratings changed exactly once.
	alice, err := members.GetMember("alice")
	require.NoError(t, err)
	assert.Equal(t, 1220, alice.Rating)
}

func TestRoundCompletionReportedOnLastApproval(t *testing.T) {
	store, db, teardown := setupTestStore(t)
	defer teardown()
	startedTournament(t, store, db, "alice", "bob", "carol", "dave")

	_, err := store.SubmitMatch(1, "alice", "bob", 2, 0, nil)
	require.NoError(t, err)
	_, err = store.SubmitMatch(1, "carol", "dave", 2, 1, nil)
	require.NoError(t, err)

	outcome, err := store.ApproveMatch(1, 0)
	require.NoError(t, err)
	assert.False(t, outcome.RoundComplete)

	outcome, err = store.ApproveMatch(1, 1)
	require.NoError(t, err)
	assert.True(t, outcome.RoundComplete)
}

func TestRejectMatchLeavesRatings(t *testing.T) {
	store, db, teardown := setupTestStore(t)
	defer teardown()
	members := club.New(db)
	startedTournament(t, store, db, "alice", "bob")

	_, err := store.SubmitMatch(1, "alice", "bob", 2, 0, nil)
	require.NoError(t, err)

	// Tournament rejections may omit the reason.
	_, err = store.RejectMatch(1, 0, nil)
	require.NoError(t, err)

	alice, err := members.GetMember("alice")
	require.NoError(t, err)
	assert.Equal(t, 1200, alice.Rating)

	// Rejection is terminal.
	_, err = store.ApproveMatch(1, 0)
	assert.ErrorIs(t, err, club.ErrNotFound)
	_, err = store.RejectMatch(1, 0, nil)
	assert.ErrorIs(t, err, club.ErrNotFound)
}

func TestRoundCompletionReportedOnLastRejection(t *testing.T) {
	store, db, teardown := setupTestStore(t)
	defer teardown()
	startedTournament(t, store, db, "alice", "bob", "carol", "dave")

	_, err := store.SubmitMatch(1, "alice", "bob", 2, 0, nil)
	require.NoError(t, err)
	_, err = store.SubmitMatch(1, "carol", "dave", 2, 1, nil)
	require.NoError(t, err)

	outcome, err := store.ApproveMatch(1, 0)
	require.NoError(t, err)
	assert.False(t, outcome.RoundComplete)

	// Rejecting the last pending match resolves the round too.
	complete, err := store.RejectMatch(1, 1, nil)
	require.NoError(t, err)
	assert.True(t, complete)
}

func TestStandingsOrdering(t *testing.T) {
	store, db, teardown := setupTestStore(t)
	defer teardown()
	startedTournament(t, store, db, "alice", "bob", "carol", "dave")

	// Round 1: alice beats bob 2-0, carol beats dave 2-1.
	_, err := store.SubmitMatch(1, "alice", "bob", 2, 0, nil)
	require.NoError(t, err)
	_, err = store.SubmitMatch(1, "carol", "dave", 2, 1, nil)
	require.NoError(t, err)
	_, err = store.ApproveMatch(1, 0)
	require.NoError(t, err)
	_, err = store.ApproveMatch(1, 1)
	require.NoError(t, err)

	standings, err := store.Standings()
	require.NoError(t, err)
	require.Len(t, standings, 4)

	// Alice and carol both have 2 points, 1 win and 2 games won, so name
	// ascending decides between them.
	assert.Equal(t, "alice", standings[0].Principal)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, "carol", standings[1].Principal)
	assert.Equal(t, 2, standings[1].Rank)
	// Dave took a game off carol, bob took none.
	assert.Equal(t, "dave", standings[2].Principal)
	assert.Equal(t, "bob", standings[3].Principal)
}
