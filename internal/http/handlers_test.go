package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spinhall/clubhouse/internal/club"
	"github.com/spinhall/clubhouse/internal/config"
	"github.com/spinhall/clubhouse/internal/database"
	"github.com/spinhall/clubhouse/internal/gallery"
	"github.com/spinhall/clubhouse/internal/ladder"
	"github.com/spinhall/clubhouse/internal/metrics"
	"github.com/spinhall/clubhouse/internal/notifier"
	"github.com/spinhall/clubhouse/internal/pubsub"
	"github.com/spinhall/clubhouse/internal/schedule"
	"github.com/spinhall/clubhouse/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	accesspkg "github.com/spinhall/clubhouse/internal/access"
)

type testServer struct {
	*Server
	notifier *notifier.Mock
	pubsub   *pubsub.Mock
	blobs    *gallery.MockBlobStore
}

// setupTestServer initializes a new server with a test database and mock
// collaborators.
func setupTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	clubStore := club.New(db)
	accessStore := accesspkg.New(db)
	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	ps := pubsub.NewMock("TEST")
	notif := notifier.NewMock()
	blobs := gallery.NewMockBlobStore()

	ladderSvc := ladder.New(clubStore, accessStore, metricsSvc, ps)
	tournamentStore := tournament.New(db, clubStore)
	tournamentEngine := tournament.NewEngine(tournamentStore, clubStore, accessStore, metricsSvc, ps)
	galleryStore := gallery.New(db)
	scheduleStore := schedule.New(db)

	server := NewServer(
		clubStore, ladderSvc, tournamentEngine, accessStore,
		galleryStore, blobs, scheduleStore,
		notif, metricsSvc, metricsHandler, config.Config{}, ps,
	)

	teardown := func() {
		if dbTeardown != nil {
			dbTeardown()
		}
	}
	return &testServer{Server: server, notifier: notif, pubsub: ps, blobs: blobs}, teardown
}

// addMember creates and claims a member directly, bypassing the HTTP flow.
func (ts *testServer) addMember(t *testing.T, principal, name string) {
	t.Helper()
	code, err := ts.Store.CreateMemberWithClaimCode(name, nil)
	require.NoError(t, err)
	_, err = ts.Store.ClaimMember(code, principal)
	require.NoError(t, err)
}

// makeAdmin bootstraps the principal as the admin.
func (ts *testServer) makeAdmin(t *testing.T, principal string) {
	t.Helper()
	require.NoError(t, ts.Access.InitializeAccessControl(principal))
	require.True(t, ts.Access.IsAdmin(principal))
}

// do performs a request against the server as the given principal.
func (ts *testServer) do(t *testing.T, method, target, principal string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if principal != "" {
		req.Header.Set(PrincipalHeader, principal)
	}
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	ts, teardown := setupTestServer(t)
	defer teardown()

	rec := ts.do(t, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK!", rec.Body.String())
}

func TestClaimFlowOverHTTP(t *testing.T) {
	ts, teardown := setupTestServer(t)
	defer teardown()
	ts.makeAdmin(t, "admin")

	rec := ts.do(t, "POST", "/members", "admin", map[string]any{"name": "Lin Wei"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ClaimCode string `json:"claim_code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ClaimCode)

	// Non-admins may not pre-create members.
	rec = ts.do(t, "POST", "/members", "rando", map[string]any{"name": "Nobody"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, "POST", "/claim", "lin", map[string]any{"code": created.ClaimCode})
	require.Equal(t, http.StatusOK, rec.Code)
	var member club.Member
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &member))
	assert.Equal(t, "lin", member.Principal)
	assert.Equal(t, 1200, member.Rating)

	// Same code again is gone.
	rec = ts.do(t, "POST", "/claim", "other", map[string]any{"code": created.ClaimCode})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMatchWorkflowOverHTTP(t *testing.T) {
	ts, teardown := setupTestServer(t)
	defer teardown()
	ts.addMember(t, "alice", "Alice")
	ts.addMember(t, "bob", "Bob")

	rec := ts.do(t, "POST", "/matches", "alice", map[string]any{
		"player_b": "bob", "score_a": 3, "score_b": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var match club.Match
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &match))
	assert.Equal(t, "alice", match.PlayerA)
	assert.Equal(t, club.StatusPending, match.Status)

	// Alice cannot approve her own submission.
	rec = ts.do(t, "POST", "/matches/"+match.ID+"/approve", "alice", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Bob can.
	rec = ts.do(t, "POST", "/matches/"+match.ID+"/approve", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var applied club.AppliedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &applied))
	assert.Equal(t, 1220, applied.NewRatingA)
	assert.Equal(t, 1180, applied.NewRatingB)

	// The approval published a rating-changed event.
	assert.Equal(t, 1, ts.pubsub.SentCount(string(pubsub.EventRatingChanged)))

	// Approving again 404s.
	rec = ts.do(t, "POST", "/matches/"+match.ID+"/approve", "bob", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRejectRequiresReasonOverHTTP(t *testing.T) {
	ts, teardown := setupTestServer(t)
	defer teardown()
	ts.addMember(t, "alice", "Alice")
	ts.addMember(t, "bob", "Bob")

	rec := ts.do(t, "POST", "/matches", "alice", map[string]any{
		"player_b": "bob", "score_a": 3, "score_b": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var match club.Match
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &match))

	rec = ts.do(t, "POST", "/matches/"+match.ID+"/reject", "bob", map[string]any{"reason": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, "POST", "/matches/"+match.ID+"/reject", "bob", map[string]any{"reason": "wrong score"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSubmitTieRejected(t *testing.T) {
	ts, teardown := setupTestServer(t)
	defer teardown()
	ts.addMember(t, "alice", "Alice")
	ts.addMember(t, "bob", "Bob")

	rec := ts.do(t, "POST", "/matches", "alice", map[string]any{
		"player_b": "bob", "score_a": 2, "score_b": 2,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLeaderboardEndpoints(t *testing.T) {
	ts, teardown := setupTestServer(t)
	defer teardown()
	ts.addMember(t, "alice", "Alice")
	ts.addMember(t, "bob", "Bob")

	rec := ts.do(t, "GET", "/leaderboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ranked []club.RankedMember
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranked))
	require.Len(t, ranked, 2)
	assert.Equal(t, 1, ranked[0].Rank)

	rec = ts.do(t, "GET", "/leaderboard/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var boards []ladder.CategoryLeaderboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &boards))
	require.Len(t, boards, 8)
	assert.Equal(t, "Expert Pros", boards[0].CategoryName)
}

func TestTournamentLifecycleOverHTTP(t *testing.T) {
	ts, teardown := setupTestServer(t)
	defer teardown()
	ts.makeAdmin(t, "admin")
	ts.addMember(t, "alice", "Alice")
	ts.addMember(t, "bob", "Bob")

	// Lifecycle is admin only.
	rec := ts.do(t, "POST", "/tournament/announce", "alice", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, "POST", "/tournament/announce", "admin", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, ts.notifier.TournamentAnnouncements)

	// Players register themselves.
	rec = ts.do(t, "POST", "/tournament/register", "alice", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = ts.do(t, "POST", "/tournament/register", "alice", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = ts.do(t, "POST", "/tournament/register", "bob", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, "POST", "/tournament/start", "admin", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// Submitting out of lifecycle order conflicts.
	rec = ts.do(t, "POST", "/tournament/start", "admin", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, "POST", "/tournament/matches", "alice", map[string]any{
		"round": 1, "player_b": "bob", "score_a": 2, "score_b": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var match tournament.Match
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &match))
	assert.Equal(t, 1, match.Round)
	assert.Equal(t, 0, match.Index)

	rec = ts.do(t, "POST", "/tournament/matches/1/0/approve", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var outcome tournament.ApprovalOutcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.True(t, outcome.RoundComplete)

	rec = ts.do(t, "GET", "/tournament/standings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var standings []tournament.StandingsRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &standings))
	require.Len(t, standings, 2)
	assert.Equal(t, "Alice", standings[0].Name)
	assert.Equal(t, tournament.PointsPerWin, standings[0].Points)

	rec = ts.do(t, "POST", "/tournament/end", "admin", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, "GET", "/tournament", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var state tournament.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, tournament.StatusCompleted, state.Status)
}

func TestTournamentRejectWithoutBody(t *testing.T) {
	ts, teardown := setupTestServer(t)
	defer teardown()
	ts.makeAdmin(t, "admin")
	ts.addMember(t, "alice", "Alice")
	ts.addMember(t, "bob", "Bob")
	require.NoError(t, ts.Tournament.Announce("admin"))
	require.NoError(t, ts.Tournament.Register("alice"))
	require.NoError(t, ts.Tournament.Register("bob"))
	require.NoError(t, ts.Tournament.Start("admin"))
	_, err := ts.Tournament.SubmitMatch("alice", 1, "bob", 2, 0, nil)
	require.NoError(t, err)

	rec := ts.do(t, "POST", "/tournament/matches/1/0/reject", "bob", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGalleryOverHTTP(t *testing.T) {
	ts, teardown := setupTestServer(t)
	defer teardown()
	ts.makeAdmin(t, "admin")
	ts.addMember(t, "alice", "Alice")

	// Multipart upload as a member.
	var buf bytes.Buffer
	mw := newMultipart(t, &buf, "photo", "table.jpg", "fake image bytes")
	req := httptest.NewRequest("POST", "/photos", &buf)
	req.Header.Set("Content-Type", mw)
	req.Header.Set(PrincipalHeader, "alice")
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var photo gallery.Photo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &photo))
	assert.Equal(t, "alice", photo.Uploader)
	assert.True(t, strings.HasPrefix(photo.Key, "photos/"))
	assert.Contains(t, ts.blobs.Objects, photo.Key)

	// Banner management is admin only.
	rec = ts.do(t, "POST", "/banner", "alice", map[string]any{"photo_key": photo.Key})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = ts.do(t, "POST", "/banner", "admin", map[string]any{"photo_key": photo.Key})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// A stranger cannot delete someone else's photo.
	ts.addMember(t, "bob", "Bob")
	rec = ts.do(t, "DELETE", "/photos/"+photo.Key, "bob", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The uploader can, and the blob goes with it.
	rec = ts.do(t, "DELETE", "/photos/"+photo.Key, "alice", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, ts.blobs.Objects, photo.Key)
}

func TestScheduleOverHTTP(t *testing.T) {
	ts, teardown := setupTestServer(t)
	defer teardown()
	ts.makeAdmin(t, "admin")

	rec := ts.do(t, "POST", "/schedule", "rando", map[string]any{
		"date": "2026-09-01", "session_type": "open play",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ts.do(t, "POST", "/schedule", "admin", map[string]any{
		"date": "2026-09-01", "session_type": "open play",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, "GET", "/schedule", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var sessions []schedule.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, "open play", sessions[0].SessionType)
}

func TestRatingChangedPushEndpoint(t *testing.T) {
	ts, teardown := setupTestServer(t)
	defer teardown()

	event := pubsub.RatingChangedEvent{
		PlayerA: "alice", PlayerB: "bob",
		PlayerAName: "Alice", PlayerBName: "Bob",
		ScoreA: 3, ScoreB: 1,
		NewRatingA: 1220, NewRatingB: 1180,
	}
	packed, err := msgpack.Marshal(event)
	require.NoError(t, err)

	envelope := map[string]any{
		"subscription": "projects/test/subscriptions/rating-changed",
		"message": map[string]any{
			"data": base64.StdEncoding.EncodeToString(packed),
		},
	}
	rec := ts.do(t, "POST", "/events/rating-changed", "", envelope)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, ts.notifier.MatchResultCalls, 1)
	assert.Equal(t, "Alice", ts.notifier.MatchResultCalls[0].PlayerAName)
}

func TestAccessBootstrapOverHTTP(t *testing.T) {
	ts, teardown := setupTestServer(t)
	defer teardown()

	rec := ts.do(t, "POST", "/access/init", "first", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, ts.Access.IsAdmin("first"))

	// The second caller does not become admin.
	rec = ts.do(t, "POST", "/access/init", "second", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, ts.Access.IsAdmin("second"))

	// Admin appoints a score authority.
	rec = ts.do(t, "POST", "/access/score-admins", "first", map[string]any{"principal": "second"})
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, ts.Access.CanApproveScores("second"))
}

func newMultipart(t *testing.T, buf *bytes.Buffer, field, filename, content string) string {
	t.Helper()
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fmt.Fprint(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return mw.FormDataContentType()
}
