package config

import (
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for the Slack integration: approval notifications
// and the interaction webhook.
type Slack struct {
	botToken      string
	signingSecret string
	channelID     string
}

// Flags returns CLI flags for Slack configuration
func (s *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token for posting approval requests (xoxb-...)",
			Category:    "Slack",
			Sources:     cli.EnvVars("STAGEHAND_SLACK_BOT_TOKEN"),
			Destination: &s.botToken,
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack signing secret for interaction webhook verification",
			Category:    "Slack",
			Sources:     cli.EnvVars("STAGEHAND_SLACK_SIGNING_SECRET"),
			Destination: &s.signingSecret,
		},
		&cli.StringFlag{
			Name:        "slack-channel-id",
			Usage:       "Slack channel ID where approval requests are posted",
			Category:    "Slack",
			Sources:     cli.EnvVars("STAGEHAND_SLACK_CHANNEL_ID"),
			Destination: &s.channelID,
		},
	}
}

// BotToken returns the configured bot token
func (s *Slack) BotToken() string {
	return s.botToken
}

// SigningSecret returns the configured signing secret
func (s *Slack) SigningSecret() string {
	return s.signingSecret
}

// ChannelID returns the configured approval channel ID
func (s *Slack) ChannelID() string {
	return s.channelID
}

// IsNotifierConfigured reports whether approval notifications can be posted
func (s *Slack) IsNotifierConfigured() bool {
	return s.botToken != "" && s.channelID != ""
}

// IsWebhookConfigured reports whether the interaction webhook can be served
func (s *Slack) IsWebhookConfigured() bool {
	return s.signingSecret != ""
}
