package notifier

import (
	"sync"

	"github.com/spinhall/clubhouse/internal/club"
	"github.com/spinhall/clubhouse/internal/pubsub"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	MatchResultCalls         []*pubsub.RatingChangedEvent
	TournamentAnnouncements  int
	LeaderboardCalls         [][]club.RankedMember
	TournamentStandingsCalls []*pubsub.TournamentStandingsEvent

	// Optional error overrides
	SendMatchResultFunc func(event *pubsub.RatingChangedEvent, dryRun bool) error
	SendLeaderboardFunc func(players []club.RankedMember, dryRun bool) error
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SendMatchResult(event *pubsub.RatingChangedEvent, dryRun bool) error {
	m.mu.Lock()
	m.MatchResultCalls = append(m.MatchResultCalls, event)
	m.mu.Unlock()
	if m.SendMatchResultFunc != nil {
		return m.SendMatchResultFunc(event, dryRun)
	}
	return nil
}

func (m *Mock) SendTournamentAnnouncement(dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TournamentAnnouncements++
	return nil
}

func (m *Mock) SendLeaderboard(players []club.RankedMember, dryRun bool) error {
	m.mu.Lock()
	m.LeaderboardCalls = append(m.LeaderboardCalls, players)
	m.mu.Unlock()
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(players, dryRun)
	}
	return nil
}

func (m *Mock) SendTournamentStandings(event *pubsub.TournamentStandingsEvent, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TournamentStandingsCalls = append(m.TournamentStandingsCalls, event)
	return nil
}
