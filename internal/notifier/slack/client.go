package slack

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"
	"github.com/spinhall/clubhouse/internal/club"
	"github.com/spinhall/clubhouse/internal/metrics"
	"github.com/spinhall/clubhouse/internal/notifier"
	"github.com/spinhall/clubhouse/internal/pubsub"
)

// New creates a new Slack-backed notifier.
func New(token, channelID string, m metrics.Metrics) *SlackNotifier {
	api := slack.New(token)
	return &SlackNotifier{
		api:       api,
		channelID: channelID,
		metrics:   m,
	}
}

// NewWithAPI creates a notifier with a custom API client. Used for testing.
func NewWithAPI(api *slack.Client, channelID string, m metrics.Metrics) *SlackNotifier {
	return &SlackNotifier{
		api:       api,
		channelID: channelID,
		metrics:   m,
	}
}

var _ notifier.Notifier = (*SlackNotifier)(nil)

// sendMessage posts a Block Kit message to the configured channel.
func (n *SlackNotifier) sendMessage(msg slack.Message, dryRun bool) error {
	if n.api == nil || n.channelID == "" {
		log.Warn("Slack client or channel ID is not configured. Skipping notification.")
		return errors.New("slack client or channel ID is not configured")
	}
	if dryRun {
		log.Info("Dry run mode: Slack notification not sent.", "msg", msg)
		return nil
	}

	_, _, err := n.api.PostMessage(n.channelID, slack.MsgOptionBlocks(msg.Blocks.BlockSet...))
	if err != nil {
		log.Error("Failed to send Slack message", "error", err)
		if n.metrics != nil {
			n.metrics.IncNotifFailed()
		}
		return err
	}
	if n.metrics != nil {
		n.metrics.IncNotifSent()
	}
	return nil
}

func (n *SlackNotifier) SendMatchResult(event *pubsub.RatingChangedEvent, dryRun bool) error {
	return n.sendMessage(n.FormatMatchResult(event), dryRun)
}

func (n *SlackNotifier) SendTournamentAnnouncement(dryRun bool) error {
	return n.sendMessage(n.FormatTournamentAnnouncement(), dryRun)
}

func (n *SlackNotifier) SendLeaderboard(players []club.RankedMember, dryRun bool) error {
	return n.sendMessage(n.FormatLeaderboard(players), dryRun)
}

func (n *SlackNotifier) SendTournamentStandings(event *pubsub.TournamentStandingsEvent, dryRun bool) error {
	return n.sendMessage(n.FormatTournamentStandings(event), dryRun)
}
