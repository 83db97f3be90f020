package tournament

import (
	"database/sql"
	"sync"

	"github.com/spinhall/clubhouse/internal/club"
)

// Status is the lifecycle state of the club tournament. There is exactly
// one tournament at a time; announcing after completion clears the previous
// one.
type Status string

const (
	StatusNotStarted Status = "notStarted"
	StatusAnnounced  Status = "announced"
	StatusActive     Status = "active"
	StatusPaused     Status = "paused"
	StatusCompleted  Status = "completed"
)

// Points awarded per decided tournament match.
const (
	PointsPerWin  = 2
	PointsPerLoss = 0
)

type store struct {
	db      *sql.DB
	members club.ClubStore
	mu      sync.RWMutex
}

// Player is a tournament registration.
type Player struct {
	Principal    string `json:"principal"`
	Name         string `json:"name"`
	RegisteredAt int64  `json:"registered_at"`
}

// Match is a tournament match, addressed by (round, index) rather than by
// ID. Rounds are 1-indexed; indexes within a round start at 0.
type Match struct {
	ID              string           `json:"id"`
	Round           int              `json:"round"`
	Index           int              `json:"index"`
	PlayerA         string           `json:"player_a"`
	PlayerB         string           `json:"player_b"`
	ScoreA          int              `json:"score_a"`
	ScoreB          int              `json:"score_b"`
	TableNumber     *int             `json:"table_number,omitempty"`
	Status          club.MatchStatus `json:"status"`
	RejectionReason *string          `json:"rejection_reason,omitempty"`
	SubmittedAt     int64            `json:"submitted_at"`
}

// State is a full snapshot of the tournament for clients.
type State struct {
	Status       Status   `json:"status"`
	CurrentRound int      `json:"current_round"`
	StartedAt    *int64   `json:"started_at,omitempty"`
	EndedAt      *int64   `json:"ended_at,omitempty"`
	Players      []Player `json:"players"`
	Matches      []Match  `json:"matches"`
}

// StandingsRow is one player's line in the tournament standings.
type StandingsRow struct {
	Principal string `json:"principal"`
	Name      string `json:"name"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	GamesWon  int    `json:"games_won"`
	GamesLost int    `json:"games_lost"`
	Points    int    `json:"points"`
	Rank      int    `json:"rank"`
}

// ApprovalOutcome reports what an approval did: the rating result and
// whether it resolved the last open match of its round.
type ApprovalOutcome struct {
	Applied       *club.AppliedResult `json:"applied"`
	Match         *Match              `json:"match"`
	RoundComplete bool                `json:"round_complete"`
}
