package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	slacksvc "github.com/secmon-lab/welcomebot/pkg/service/slack"
	"github.com/slack-go/slack"
)

// renderTutorial builds the message body of the tutorial: the welcome text
// followed by one attachment per step
func renderTutorial(welcome string, progress *model.Progress) (string, []slack.Attachment) {
	attachments := make([]slack.Attachment, 0, len(progress.Steps))
	for _, step := range progress.Steps {
		attachments = append(attachments, slack.Attachment{
			Color:      step.HighlightColor(),
			Text:       step.Icon() + " " + step.Text,
			Fallback:   step.Text,
			MarkdownIn: []string{"text"},
		})
	}
	return welcome, attachments
}

// sendOrUpdate posts a new message to channel when prior is empty, and
// otherwise updates the message at prior
func sendOrUpdate(ctx context.Context, client slacksvc.Service, channel string, prior *model.MessageRef, text string, attachments []slack.Attachment) (*model.MessageRef, error) {
	if prior == nil || prior.IsZero() {
		ref, err := client.PostMessage(ctx, channel, text, attachments)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to post tutorial message", goerr.V("channel", channel))
		}
		return ref, nil
	}

	ref, err := client.UpdateMessage(ctx, *prior, text, attachments)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update tutorial message",
			goerr.V("channel", prior.Channel),
			goerr.V("ts", prior.Timestamp),
		)
	}
	return ref, nil
}
