package slack

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"
	"github.com/spinhall/clubhouse/internal/club"
	"github.com/spinhall/clubhouse/internal/pubsub"
)

func signed(n int) string {
	if n >= 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

func playerLabel(name, principal string) string {
	if name != "" {
		return name
	}
	return principal
}

// FormatMatchResult creates the Slack message for an approved match using
// Block Kit.
func (n *SlackNotifier) FormatMatchResult(event *pubsub.RatingChangedEvent) slack.Message {
	blocks := make([]slack.Block, 0)

	headerLabel := "🏓 Match result! 🏓"
	if event.Tournament {
		headerLabel = "🏆 Tournament match result! 🏆"
	}
	headerText := slack.NewTextBlockObject("plain_text", headerLabel, true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	nameA := playerLabel(event.PlayerAName, event.PlayerA)
	nameB := playerLabel(event.PlayerBName, event.PlayerB)
	winner := nameA
	if event.ScoreB > event.ScoreA {
		winner = nameB
	}
	detailsText := fmt.Sprintf("%s %d - %d %s\n%s won! 🏅", nameA, event.ScoreA, event.ScoreB, nameB, winner)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	ratingsText := fmt.Sprintf("Ratings:\n• %s: %d (%s)\n• %s: %d (%s)",
		nameA, event.NewRatingA, signed(event.RatingChangeA),
		nameB, event.NewRatingB, signed(event.RatingChangeB))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", ratingsText, true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// FormatTournamentAnnouncement creates the registration-open message.
func (n *SlackNotifier) FormatTournamentAnnouncement() slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Club tournament announced! 🏆", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	bodyText := "Registration is open. Sign up in the app to claim your spot at the tables!"
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", bodyText, true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// FormatLeaderboard creates the weekly digest message. Only the top ten
// players are listed.
func (n *SlackNotifier) FormatLeaderboard(players []club.RankedMember) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏓 Club leaderboard 🏓", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(players) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No rated players yet.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	var lines []string
	for _, p := range players {
		if p.Rank > 10 {
			break
		}
		medal := ""
		switch p.Rank {
		case 1:
			medal = " 🥇"
		case 2:
			medal = " 🥈"
		case 3:
			medal = " 🥉"
		}
		lines = append(lines, fmt.Sprintf("%d. %s — %d%s", p.Rank, p.Name, p.Rating, medal))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

// FormatTournamentStandings creates the standings message published after a
// completed round or at the end of the tournament.
func (n *SlackNotifier) FormatTournamentStandings(event *pubsub.TournamentStandingsEvent) slack.Message {
	blocks := make([]slack.Block, 0)

	headerLabel := "🏆 Tournament standings 🏆"
	if event.Final {
		headerLabel = "🏆 Final tournament standings 🏆"
	} else if event.Round > 0 {
		headerLabel = fmt.Sprintf("🏆 Standings after round %d 🏆", event.Round)
	}
	headerText := slack.NewTextBlockObject("plain_text", headerLabel, true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	if len(event.Rows) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No players registered.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	var lines []string
	for _, r := range event.Rows {
		lines = append(lines, fmt.Sprintf("%d. %s — %d pts (%d-%d, games %d-%d)",
			r.Rank, r.Name, r.Points, r.Wins, r.Losses, r.GamesWon, r.GamesLost))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))

	if event.Final && len(event.Rows) > 0 {
		congratsText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("Congratulations, %s! 🎉", event.Rows[0].Name), true, false)
		blocks = append(blocks, slack.NewContextBlock("", congratsText))
	}

	return slack.NewBlockMessage(blocks...)
}
