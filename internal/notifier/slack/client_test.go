package slack_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	internalslack "github.com/spinhall/clubhouse/internal/notifier/slack"

	"github.com/slack-go/slack"
	"github.com/spinhall/clubhouse/internal/club"
	"github.com/spinhall/clubhouse/internal/metrics"
	"github.com/spinhall/clubhouse/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ratingChanged() *pubsub.RatingChangedEvent {
	return &pubsub.RatingChangedEvent{
		PlayerA:       "principal-a",
		PlayerB:       "principal-b",
		PlayerAName:   "Alice",
		PlayerBName:   "Bob",
		ScoreA:        3,
		ScoreB:        1,
		RatingChangeA: 20,
		RatingChangeB: -20,
		NewRatingA:    1220,
		NewRatingB:    1180,
	}
}

func TestSendMatchResult(t *testing.T) {
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		body, _ := io.ReadAll(r.Body)
		vals, _ := url.ParseQuery(string(body))
		assert.Equal(t, "C123", vals.Get("channel"))

		var blocks slack.Blocks
		err := json.Unmarshal([]byte(vals.Get("blocks")), &blocks)
		require.NoError(t, err)
		require.Len(t, blocks.BlockSet, 3)

		header := blocks.BlockSet[0].(*slack.HeaderBlock)
		assert.Contains(t, header.Text.Text, "Match result!")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true, "ts": "12345.6789"}`))
	})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	api := slack.New("test-token", slack.OptionAPIURL(srv.URL+"/"))
	m := metrics.NewMock()
	n := internalslack.NewWithAPI(api, "C123", m)

	err := n.SendMatchResult(ratingChanged(), false)
	require.NoError(t, err)
	assert.True(t, handlerCalled, "Expected http handler to be called")
	assert.Equal(t, 1, m.NotifSentCount)
}

func TestSendMatchResultDryRun(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("dry run must not hit the Slack API")
	})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	api := slack.New("test-token", slack.OptionAPIURL(srv.URL+"/"))
	m := metrics.NewMock()
	n := internalslack.NewWithAPI(api, "C123", m)

	err := n.SendMatchResult(ratingChanged(), true)
	require.NoError(t, err)
	assert.Equal(t, 0, m.NotifSentCount)
}

func TestSendFailureIncrementsMetric(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": false, "error": "channel_not_found"}`))
	})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	api := slack.New("test-token", slack.OptionAPIURL(srv.URL+"/"))
	m := metrics.NewMock()
	n := internalslack.NewWithAPI(api, "C123", m)

	err := n.SendMatchResult(ratingChanged(), false)
	require.Error(t, err)
	assert.Equal(t, 1, m.NotifFailedCount)
}

func TestMissingChannelConfiguration(t *testing.T) {
	m := metrics.NewMock()
	n := internalslack.NewWithAPI(slack.New("test-token"), "", m)

	err := n.SendTournamentAnnouncement(false)
	require.Error(t, err)
}

func TestFormatMatchResultTournamentHeader(t *testing.T) {
	n := internalslack.NewWithAPI(slack.New("test-token"), "C123", metrics.NewMock())

	event := ratingChanged()
	event.Tournament = true
	msg := n.FormatMatchResult(event)

	header := msg.Blocks.BlockSet[0].(*slack.HeaderBlock)
	assert.Contains(t, header.Text.Text, "Tournament match result!")
}

func TestFormatLeaderboardTopTen(t *testing.T) {
	n := internalslack.NewWithAPI(slack.New("test-token"), "C123", metrics.NewMock())

	players := make([]club.RankedMember, 12)
	for i := range players {
		players[i] = club.RankedMember{
			Member: club.Member{Name: "Player", Rating: 1500 - i},
			Rank:   i + 1,
		}
	}
	msg := n.FormatLeaderboard(players)

	require.Len(t, msg.Blocks.BlockSet, 2)
	section := msg.Blocks.BlockSet[1].(*slack.SectionBlock)
	assert.Contains(t, section.Text.Text, "10. Player")
	assert.NotContains(t, section.Text.Text, "11. Player")
	assert.Contains(t, section.Text.Text, "🥇")
}

func TestFormatTournamentStandingsFinal(t *testing.T) {
	n := internalslack.NewWithAPI(slack.New("test-token"), "C123", metrics.NewMock())

	msg := n.FormatTournamentStandings(&pubsub.TournamentStandingsEvent{
		Rows: []pubsub.StandingsRow{
			{Name: "Alice", Wins: 3, Losses: 0, GamesWon: 6, GamesLost: 1, Points: 6, Rank: 1},
			{Name: "Bob", Wins: 2, Losses: 1, GamesWon: 5, GamesLost: 3, Points: 4, Rank: 2},
		},
		Final: true,
	})

	header := msg.Blocks.BlockSet[0].(*slack.HeaderBlock)
	assert.Contains(t, header.Text.Text, "Final tournament standings")

	section := msg.Blocks.BlockSet[1].(*slack.SectionBlock)
	assert.Contains(t, section.Text.Text, "1. Alice — 6 pts (3-0, games 6-1)")

	// The winner gets a shout-out.
	require.Len(t, msg.Blocks.BlockSet, 3)
	context := msg.Blocks.BlockSet[2].(*slack.ContextBlock)
	textBlock := context.ContextElements.Elements[0].(*slack.TextBlockObject)
	assert.Contains(t, textBlock.Text, "Alice")
}
