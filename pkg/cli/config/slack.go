package config

import (
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	slacksvc "github.com/secmon-lab/welcomebot/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

type Slack struct {
	clientID          string
	clientSecret      string
	redirectURL       string
	verificationToken string
	signingSecret     string
	apiURL            string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-client-id",
			Usage:       "Slack OAuth client ID",
			Category:    "Slack",
			Destination: &x.clientID,
			Sources:     cli.EnvVars("WELCOMEBOT_SLACK_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:        "slack-client-secret",
			Usage:       "Slack OAuth client secret",
			Category:    "Slack",
			Destination: &x.clientSecret,
			Sources:     cli.EnvVars("WELCOMEBOT_SLACK_CLIENT_SECRET"),
		},
		&cli.StringFlag{
			Name:        "slack-redirect-url",
			Usage:       "OAuth redirect URL, e.g. https://your-domain.com/finish_auth (optional, defaults to the app setting)",
			Category:    "Slack",
			Destination: &x.redirectURL,
			Sources:     cli.EnvVars("WELCOMEBOT_SLACK_REDIRECT_URL"),
		},
		&cli.StringFlag{
			Name:        "slack-verification-token",
			Usage:       "Slack verification token embedded in every Events API payload",
			Category:    "Slack",
			Destination: &x.verificationToken,
			Sources:     cli.EnvVars("WELCOMEBOT_SLACK_VERIFICATION_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack signing secret; when set, request signatures are verified too",
			Category:    "Slack",
			Destination: &x.signingSecret,
			Sources:     cli.EnvVars("WELCOMEBOT_SLACK_SIGNING_SECRET"),
		},
		&cli.StringFlag{
			Name:        "slack-api-url",
			Usage:       "Slack Web API base URL (for testing)",
			Category:    "Slack",
			Destination: &x.apiURL,
			Sources:     cli.EnvVars("WELCOMEBOT_SLACK_API_URL"),
			Hidden:      true,
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("client-id.len", len(x.clientID)),
		slog.Int("client-secret.len", len(x.clientSecret)),
		slog.String("redirect-url", x.redirectURL),
		slog.Int("verification-token.len", len(x.verificationToken)),
		slog.Int("signing-secret.len", len(x.signingSecret)),
	)
}

// Validate reports every missing required setting at once
func (x *Slack) Validate() error {
	var missing []string
	if x.clientID == "" {
		missing = append(missing, "WELCOMEBOT_SLACK_CLIENT_ID")
	}
	if x.clientSecret == "" {
		missing = append(missing, "WELCOMEBOT_SLACK_CLIENT_SECRET")
	}
	if x.verificationToken == "" {
		missing = append(missing, "WELCOMEBOT_SLACK_VERIFICATION_TOKEN")
	}

	if len(missing) > 0 {
		return goerr.Wrap(ErrMissingSlackConfig, "missing environment variables: "+strings.Join(missing, ", "),
			goerr.V("missing", missing),
		)
	}
	return nil
}

// OAuth returns the install handshake client
func (x *Slack) OAuth() slacksvc.OAuth {
	return slacksvc.NewOAuth(x.clientID, x.clientSecret, x.redirectURL)
}

// ClientFactory returns the constructor of per-workspace bot clients
func (x *Slack) ClientFactory() slacksvc.Factory {
	var opts []slacksvc.Option
	if x.apiURL != "" {
		opts = append(opts, slacksvc.WithAPIURL(x.apiURL))
	}
	return slacksvc.NewFactory(opts...)
}

// VerificationToken returns the Events API verification token
func (x *Slack) VerificationToken() string {
	return x.verificationToken
}

// SigningSecret returns the Slack signing secret
func (x *Slack) SigningSecret() string {
	return x.signingSecret
}
