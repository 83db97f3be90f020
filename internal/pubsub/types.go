package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventRatingChanged       EventType = "rating-changed"
	EventTournamentStandings EventType = "tournament-standings"
)

// StandingsRow is one line of a tournament standings snapshot.
type StandingsRow struct {
	Principal string `msgpack:"principal"`
	Name      string `msgpack:"name"`
	Wins      int    `msgpack:"wins"`
	Losses    int    `msgpack:"losses"`
	GamesWon  int    `msgpack:"games_won"`
	GamesLost int    `msgpack:"games_lost"`
	Points    int    `msgpack:"points"`
	Rank      int    `msgpack:"rank"`
}

// TournamentStandingsEvent is published when a round completes and, with
// Final set, when the tournament ends.
type TournamentStandingsEvent struct {
	Rows  []StandingsRow `msgpack:"rows"`
	Round int            `msgpack:"round"`
	Final bool           `msgpack:"final"`
}

// RatingChangedEvent is published after every approved match, regular or
// tournament, and fans out to the notification push endpoint.
type RatingChangedEvent struct {
	PlayerA       string `msgpack:"player_a"`
	PlayerB       string `msgpack:"player_b"`
	PlayerAName   string `msgpack:"player_a_name"`
	PlayerBName   string `msgpack:"player_b_name"`
	ScoreA        int    `msgpack:"score_a"`
	ScoreB        int    `msgpack:"score_b"`
	RatingChangeA int    `msgpack:"rating_change_a"`
	RatingChangeB int    `msgpack:"rating_change_b"`
	NewRatingA    int    `msgpack:"new_rating_a"`
	NewRatingB    int    `msgpack:"new_rating_b"`
	Tournament    bool   `msgpack:"tournament"`
}
