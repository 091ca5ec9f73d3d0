package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskpilot/pkg/service/slack"
	"github.com/secmon-lab/riskpilot/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Slack holds configuration for critical risk notifications
type Slack struct {
	botToken  string
	channelID string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token for risk notifications",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("RISKPILOT_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel receiving critical risk notifications",
			Category:    "Slack",
			Destination: &x.channelID,
			Sources:     cli.EnvVars("RISKPILOT_SLACK_CHANNEL_ID"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.String("channel-id", x.channelID),
	)
}

// IsConfigured checks if both the token and the channel are set
func (x *Slack) IsConfigured() bool {
	return x.botToken != "" && x.channelID != ""
}

// Configure returns a notifier, or nil when notifications are disabled.
// Setting only one of the two flags is an error.
func (x *Slack) Configure(baseURL string) (usecase.Notifier, error) {
	if x.botToken == "" && x.channelID == "" {
		return nil, nil
	}
	if !x.IsConfigured() {
		return nil, goerr.Wrap(ErrMissingRequired, "--slack-bot-token and --slack-channel-id must be set together")
	}

	svc, err := slack.New(x.botToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize slack service")
	}
	return usecase.NewSlackNotifier(svc, x.channelID, baseURL), nil
}
