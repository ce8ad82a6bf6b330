package slack

import (
	"context"

	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Service is a Slack Web API client bound to one workspace's bot token
type Service interface {
	// PostMessage posts a new message and returns its reference
	PostMessage(ctx context.Context, channelID string, text string, attachments []slack.Attachment) (*model.MessageRef, error)

	// UpdateMessage replaces text and attachments of the message at ref
	UpdateMessage(ctx context.Context, ref model.MessageRef, text string, attachments []slack.Attachment) (*model.MessageRef, error)
}

// Factory builds a Service from a bot token
type Factory func(token string) (Service, error)

// OAuth runs the app install handshake
type OAuth interface {
	// AuthorizeURL returns the Slack consent page URL carrying state
	AuthorizeURL(state string) string

	// Exchange trades an authorization code for the installed workspace
	Exchange(ctx context.Context, code string) (*model.Workspace, error)
}
