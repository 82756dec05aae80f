package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modsec-lab/aegis/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for the Slack transport
type Slack struct {
	botToken      string
	signingSecret string
	modChannelID  string
	botUserID     string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token",
			Category:    "Slack",
			Sources:     cli.EnvVars("AEGIS_SLACK_BOT_TOKEN"),
			Destination: &x.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (for webhook verification)",
			Category:    "Slack",
			Sources:     cli.EnvVars("AEGIS_SLACK_SIGNING_SECRET"),
			Destination: &x.signingSecret,
		},
		&cli.StringFlag{
			Name:        "slack-mod-channel",
			Usage:       "Channel ID of the moderation channel",
			Category:    "Slack",
			Sources:     cli.EnvVars("AEGIS_SLACK_MOD_CHANNEL"),
			Destination: &x.modChannelID,
		},
		&cli.StringFlag{
			Name:        "slack-bot-user-id",
			Usage:       "Bot user ID, used to skip the bot's own messages",
			Category:    "Slack",
			Sources:     cli.EnvVars("AEGIS_SLACK_BOT_USER_ID"),
			Destination: &x.botUserID,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("bot-token.len", len(x.botToken)),
		slog.Int("signing-secret.len", len(x.signingSecret)),
		slog.String("mod-channel", x.modChannelID),
		slog.String("bot-user-id", x.botUserID),
	)
}

func (x *Slack) BotToken() string {
	return x.botToken
}

func (x *Slack) SigningSecret() string {
	return x.signingSecret
}

func (x *Slack) ModChannelID() types.ChannelID {
	return types.ChannelID(x.modChannelID)
}

func (x *Slack) BotUserID() string {
	return x.botUserID
}

// Validate checks that the flags required to serve are present
func (x *Slack) Validate() error {
	if x.botToken == "" {
		return goerr.New("slack-bot-token is required")
	}
	if x.signingSecret == "" {
		return goerr.New("slack-signing-secret is required")
	}
	if x.modChannelID == "" {
		return goerr.New("slack-mod-channel is required")
	}
	return nil
}
