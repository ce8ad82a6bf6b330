package usecase

import (
	"context"

	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	slacksvc "github.com/secmon-lab/welcomebot/pkg/service/slack"
	"github.com/slack-go/slack"
)

// RenderTutorial is exported for testing
var RenderTutorial = renderTutorial

// IsGreeting is exported for testing
var IsGreeting = isGreeting

// SendOrUpdate is exported for testing
func SendOrUpdate(ctx context.Context, client slacksvc.Service, channel string, prior *model.MessageRef, text string, attachments []slack.Attachment) (*model.MessageRef, error) {
	return sendOrUpdate(ctx, client, channel, prior, text, attachments)
}

// HeldLocks returns the number of live per-user locks
func (uc *TutorialUseCase) HeldLocks() int {
	return uc.locks.size()
}
