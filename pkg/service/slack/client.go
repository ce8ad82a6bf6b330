package slack

import (
	"context"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/slack-go/slack"
)

// client implements Service interface
type client struct {
	api *slack.Client
}

// Option is a functional option for client configuration
type Option func(*clientConfig)

type clientConfig struct {
	apiURL     string
	httpClient *http.Client
}

// WithAPIURL points the client at another Slack API endpoint. url must end with "/".
func WithAPIURL(url string) Option {
	return func(c *clientConfig) {
		c.apiURL = url
	}
}

// WithHTTPClient replaces the HTTP client used for API calls
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = httpClient
	}
}

// New creates a new Slack service with the provided bot token
func New(token string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	var cfg clientConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var apiOpts []slack.Option
	if cfg.apiURL != "" {
		apiOpts = append(apiOpts, slack.OptionAPIURL(cfg.apiURL))
	}
	if cfg.httpClient != nil {
		apiOpts = append(apiOpts, slack.OptionHTTPClient(cfg.httpClient))
	}

	return &client{
		api: slack.New(token, apiOpts...),
	}, nil
}

// NewFactory returns a Factory that applies opts to every client
func NewFactory(opts ...Option) Factory {
	return func(token string) (Service, error) {
		return New(token, opts...)
	}
}

func (c *client) PostMessage(ctx context.Context, channelID string, text string, attachments []slack.Attachment) (*model.MessageRef, error) {
	options := []slack.MsgOption{
		slack.MsgOptionText(text, false),
	}
	if len(attachments) > 0 {
		options = append(options, slack.MsgOptionAttachments(attachments...))
	}

	channel, ts, err := c.api.PostMessageContext(ctx, channelID, options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to post message", goerr.V("channel", channelID))
	}

	return &model.MessageRef{Channel: channel, Timestamp: ts}, nil
}

func (c *client) UpdateMessage(ctx context.Context, ref model.MessageRef, text string, attachments []slack.Attachment) (*model.MessageRef, error) {
	if ref.IsZero() {
		return nil, goerr.New("message reference is required for update", goerr.V("ref", ref))
	}

	options := []slack.MsgOption{
		slack.MsgOptionText(text, false),
	}
	if len(attachments) > 0 {
		options = append(options, slack.MsgOptionAttachments(attachments...))
	}

	channel, ts, _, err := c.api.UpdateMessageContext(ctx, ref.Channel, ref.Timestamp, options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update message",
			goerr.V("channel", ref.Channel),
			goerr.V("ts", ref.Timestamp),
		)
	}

	return &model.MessageRef{Channel: channel, Timestamp: ts}, nil
}
