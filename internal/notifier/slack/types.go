package slack

import (
	"github.com/slack-go/slack"
	"github.com/spinhall/clubhouse/internal/metrics"
)

// SlackNotifier posts club notifications to a single Slack channel using
// Block Kit messages.
type SlackNotifier struct {
	api       *slack.Client
	channelID string
	metrics   metrics.Metrics
}
