package ladder

import (
	"github.com/spinhall/clubhouse/internal/access"
	"github.com/spinhall/clubhouse/internal/club"
	"github.com/spinhall/clubhouse/internal/metrics"
	"github.com/spinhall/clubhouse/internal/pubsub"
)

// Service owns the regular match workflow (submit, approve, reject) and the
// leaderboard projections. All authorization decisions for regular matches
// live here; the club store only persists.
type Service struct {
	store   club.ClubStore
	checker access.Checker
	metrics metrics.Metrics
	pubsub  pubsub.PubSubClient
}

// CategoryNames are the eight skill bands, highest-rated first. The global
// leaderboard is partitioned into contiguous segments in this order.
var CategoryNames = [8]string{
	"Expert Pros",
	"Expert Elites",
	"Expert Club",
	"Casuals Club",
	"Casuals Newbie",
	"Beginners Club",
	"Beginners Newbies",
	"Learners",
}

// CategoryLeaderboard is one skill band of the global leaderboard. Player
// ranks are global ranks, not positions within the category.
type CategoryLeaderboard struct {
	CategoryName string              `json:"category_name"`
	Players      []club.RankedMember `json:"players"`
}

// MaxRejectionReasonLen caps rejection reasons for regular matches.
const MaxRejectionReasonLen = 255
