package elo

import "math"

// K-factor tiers. New players move fast, established players settle down.
const (
	KFactorNew         = 40
	KFactorEstablished = 20
	KFactorVeteran     = 10

	newPlayerThreshold = 30
	veteranThreshold   = 100
)

// DefaultRating is the rating assigned to freshly created members.
const DefaultRating = 1200

// KFactor returns the K-factor for a player based on how many approved
// matches they had played before the match being rated.
func KFactor(approvedMatches int) int {
	switch {
	case approvedMatches < newPlayerThreshold:
		return KFactorNew
	case approvedMatches < veteranThreshold:
		return KFactorEstablished
	default:
		return KFactorVeteran
	}
}

// Expected returns the expected score for a player rated ratingA against an
// opponent rated ratingB.
func Expected(ratingA, ratingB int) float64 {
	return 1 / (1 + math.Pow(10, float64(ratingB-ratingA)/400))
}

// Delta computes the integer rating deltas for both players of a decided
// match. scoreA and scoreB must not be equal; ties are rejected before the
// scores ever reach this function. Each delta is rounded half away from
// zero, so |deltaA| and |deltaB| can differ by one point. Callers must apply
// each side's delta to its own rating, never mirror one onto the other.
func Delta(ratingA, ratingB, scoreA, scoreB, kFactor int) (deltaA, deltaB int) {
	expectedA := Expected(ratingA, ratingB)
	expectedB := 1 - expectedA

	actualA, actualB := 0.0, 1.0
	if scoreA > scoreB {
		actualA, actualB = 1.0, 0.0
	}

	deltaA = int(math.Round(float64(kFactor) * (actualA - expectedA)))
	deltaB = int(math.Round(float64(kFactor) * (actualB - expectedB)))
	return deltaA, deltaB
}
