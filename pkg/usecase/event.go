package usecase

import (
	"context"
	"crypto/subtle"

	"github.com/m-mizutani/goerr/v2"
	slackmodel "github.com/secmon-lab/welcomebot/pkg/domain/model/slack"
	"github.com/secmon-lab/welcomebot/pkg/utils/logging"
)

// EventUseCase authenticates Events API payloads and routes their inner
// event to the tutorial
type EventUseCase struct {
	verificationToken string
	tutorial          *TutorialUseCase
}

// NewEventUseCase creates a new EventUseCase instance
func NewEventUseCase(verificationToken string, tutorial *TutorialUseCase) *EventUseCase {
	return &EventUseCase{
		verificationToken: verificationToken,
		tutorial:          tutorial,
	}
}

// Verify checks the token embedded in the payload. It returns
// ErrInvalidVerificationToken (wrapped) on mismatch.
func (uc *EventUseCase) Verify(env *slackmodel.Envelope) error {
	if uc.verificationToken == "" ||
		subtle.ConstantTimeCompare([]byte(env.Token), []byte(uc.verificationToken)) != 1 {
		return goerr.Wrap(ErrInvalidVerificationToken, "verification token mismatch",
			goerr.V("team_id", env.TeamID),
			goerr.V("type", env.Type),
		)
	}
	return nil
}

// Dispatch verifies the payload once and hands its inner event to the
// tutorial. Drop conditions (unknown workspace, user without progress,
// failed send) are logged and not returned.
func (uc *EventUseCase) Dispatch(ctx context.Context, env *slackmodel.Envelope) error {
	if err := uc.Verify(env); err != nil {
		return err
	}

	logger := logging.From(ctx)
	if !env.IsCallback() {
		logger.Info("ignored slack payload", "type", env.Type, "team_id", env.TeamID)
		return nil
	}

	ev, err := env.InnerEvent()
	if err != nil {
		return err
	}

	ctx = logging.With(ctx, logger.With(
		"workspace_id", env.TeamID,
		"event_type", ev.EventType(),
	))

	if err := uc.tutorial.HandleEvent(ctx, env.WorkspaceID(), ev); err != nil {
		return goerr.Wrap(err, "failed to handle slack event",
			goerr.V("team_id", env.TeamID),
			goerr.V("event_type", ev.EventType()),
		)
	}
	return nil
}
