package elo_test

import (
	"testing"

	"github.com/spinhall/clubhouse/internal/elo"
	"github.com/stretchr/testify/assert"
)

func TestKFactor(t *testing.T) {
	tests := []struct {
		name    string
		matches int
		want    int
	}{
		{"new player", 0, 40},
		{"just under new threshold", 29, 40},
		{"at new threshold", 30, 20},
		{"established", 99, 20},
		{"veteran", 100, 10},
		{"long veteran", 450, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, elo.KFactor(tt.matches))
		})
	}
}

func TestDeltaEqualRatings(t *testing.T) {
	// Two fresh 1200 players, A beats B 3-1 with K=40. Expected scores are
	// 0.5 each, so the winner gains exactly 20 and the loser drops 20.
	deltaA, deltaB := elo.Delta(1200, 1200, 3, 1, 40)
	assert.Equal(t, 20, deltaA)
	assert.Equal(t, -20, deltaB)
}

func TestDeltaUnderdogWin(t *testing.T) {
	deltaA, deltaB := elo.Delta(1000, 1400, 3, 2, 40)
	// A large upset moves both ratings by close to the full K.
	assert.Greater(t, deltaA, 20)
	assert.Less(t, deltaB, -20)
}

func TestDeltaFavoriteWin(t *testing.T) {
	deltaA, deltaB := elo.Delta(1400, 1000, 3, 0, 40)
	assert.Greater(t, deltaA, 0)
	assert.Less(t, deltaB, 0)
	// Beating a much weaker player is worth very little.
	assert.LessOrEqual(t, deltaA, 4)
}

func TestDeltaWinnerAlwaysGains(t *testing.T) {
	for _, ratings := range [][2]int{{800, 2400}, {1200, 1200}, {2000, 1900}, {0, 1200}} {
		deltaA, deltaB := elo.Delta(ratings[0], ratings[1], 2, 0, 20)
		assert.GreaterOrEqual(t, deltaA, 0, "winner delta for %v", ratings)
		assert.LessOrEqual(t, deltaB, 0, "loser delta for %v", ratings)
	}
}

func TestExpectedScoresComplement(t *testing.T) {
	for _, ratings := range [][2]int{{1000, 1400}, {1200, 1200}, {1750, 950}} {
		ea := elo.Expected(ratings[0], ratings[1])
		eb := elo.Expected(ratings[1], ratings[0])
		assert.InDelta(t, 1.0, ea+eb, 1e-9)
	}
}
