package notifier

import (
	"github.com/spinhall/clubhouse/internal/club"
	"github.com/spinhall/clubhouse/internal/pubsub"
)

// Notifier defines a high-level interface for announcing business events to
// the club channel. This decouples the rest of the application from the
// specific notification provider (e.g., Slack).
type Notifier interface {
	// For approved matches, regular and tournament
	SendMatchResult(event *pubsub.RatingChangedEvent, dryRun bool) error
	// When a tournament opens for registration
	SendTournamentAnnouncement(dryRun bool) error
	// For the weekly digest
	SendLeaderboard(players []club.RankedMember, dryRun bool) error
	// When a round completes or the tournament ends
	SendTournamentStandings(event *pubsub.TournamentStandingsEvent, dryRun bool) error
}
