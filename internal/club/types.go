package club

import (
	"database/sql"
	"sync"
)

// store handles all database operations for members, claim codes and
// regular matches. The write mutex is the single serialization point for
// every transaction that touches ratings, including tournament approvals
// that run through InTx.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// MatchStatus is the lifecycle state of a submitted match score.
type MatchStatus string

const (
	StatusPending  MatchStatus = "pending"
	StatusApproved MatchStatus = "approved"
	StatusRejected MatchStatus = "rejected"
)

// Member is a claimed club member. Ratings are non-negative integers.
type Member struct {
	Principal string  `json:"principal"`
	Name      string  `json:"name"`
	PhotoKey  *string `json:"photo_key,omitempty"`
	Rating    int     `json:"rating"`
	CreatedAt int64   `json:"created_at"`
}

// RankedMember is a member with its 1-based global leaderboard position.
type RankedMember struct {
	Member
	Rank int `json:"rank"`
}

// ClaimRecord is a pre-created member waiting to be bound to an identity.
// The code is a one-time secret; the record is deleted on redemption.
type ClaimRecord struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Rating    int     `json:"rating"`
	PhotoKey  *string `json:"photo_key,omitempty"`
	CreatedAt int64   `json:"created_at"`
}

// DirectoryEntry is the public view of a member or an unclaimed record.
// Rank is the global leaderboard rank for claimed members and 0 otherwise.
type DirectoryEntry struct {
	Name     string  `json:"name"`
	Rating   int     `json:"rating"`
	Rank     int     `json:"rank"`
	Claimed  bool    `json:"is_claimed"`
	PhotoKey *string `json:"photo_key,omitempty"`
}

// Match is a regular (non-tournament) match score. K-factors and rating
// changes are zero until the match is approved.
type Match struct {
	ID              string      `json:"id"`
	PlayerA         string      `json:"player_a"`
	PlayerB         string      `json:"player_b"`
	ScoreA          int         `json:"score_a"`
	ScoreB          int         `json:"score_b"`
	Status          MatchStatus `json:"status"`
	RejectionReason *string     `json:"rejection_reason,omitempty"`
	KFactorA        int         `json:"k_factor_a"`
	KFactorB        int         `json:"k_factor_b"`
	RatingChangeA   int         `json:"rating_change_a"`
	RatingChangeB   int         `json:"rating_change_b"`
	SubmittedAt     int64       `json:"submitted_at"`
}

// AppliedResult describes one committed rating update.
type AppliedResult struct {
	PlayerA       string `json:"player_a"`
	PlayerB       string `json:"player_b"`
	KFactorA      int    `json:"k_factor_a"`
	KFactorB      int    `json:"k_factor_b"`
	RatingChangeA int    `json:"rating_change_a"`
	RatingChangeB int    `json:"rating_change_b"`
	NewRatingA    int    `json:"new_rating_a"`
	NewRatingB    int    `json:"new_rating_b"`
}
