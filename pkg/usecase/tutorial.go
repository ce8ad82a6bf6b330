package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/domain/interfaces"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/secmon-lab/welcomebot/pkg/domain/types"
	"github.com/secmon-lab/welcomebot/pkg/service/tenant"
	"github.com/secmon-lab/welcomebot/pkg/utils/errutil"
	"github.com/secmon-lab/welcomebot/pkg/utils/logging"
)

var greetingWords = []string{"hi", "hello", "greetings"}

// TutorialUseCase drives each user's onboarding tutorial from Slack events
type TutorialUseCase struct {
	states   interfaces.UserStateRepository
	registry *tenant.Registry
	template *model.TutorialTemplate
	locks    *userLocks
}

// NewTutorialUseCase creates a new TutorialUseCase instance
func NewTutorialUseCase(states interfaces.UserStateRepository, registry *tenant.Registry, tmpl *model.TutorialTemplate) *TutorialUseCase {
	return &TutorialUseCase{
		states:   states,
		registry: registry,
		template: tmpl,
		locks:    newUserLocks(),
	}
}

// HandleEvent applies one inner event of the workspace. Events for unknown
// workspaces or users who never started the tutorial are dropped. Only
// repository failures are returned.
func (uc *TutorialUseCase) HandleEvent(ctx context.Context, wsID types.WorkspaceID, ev model.Event) error {
	logger := logging.From(ctx)

	var err error
	switch e := ev.(type) {
	case *model.MemberJoinedEvent:
		err = uc.handleJoin(ctx, wsID, e.UserID)
	case *model.ReactionAddedEvent:
		err = uc.handleStep(ctx, wsID, e.UserID, model.StepReaction, e.Item)
	case *model.PinAddedEvent:
		err = uc.handleStep(ctx, wsID, e.UserID, model.StepPin, e.Item)
	case *model.MessageEvent:
		err = uc.handleMessage(ctx, wsID, e)
	default:
		logger.Info("ignored slack event")
		return nil
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrNotStarted):
		logger.Debug("tutorial not started, event dropped")
		return nil
	case errors.Is(err, model.ErrWorkspaceNotFound):
		logger.Warn("event for unknown workspace dropped")
		return nil
	}
	return err
}

func (uc *TutorialUseCase) handleJoin(ctx context.Context, wsID types.WorkspaceID, userID types.UserID) error {
	if userID == "" {
		logging.From(ctx).Warn("team_join without user dropped")
		return nil
	}

	t, err := uc.registry.Lookup(ctx, wsID)
	if err != nil {
		return err
	}

	unlock := uc.locks.lock(wsID, userID)
	defer unlock()

	// A second team_join restarts the tutorial from scratch
	state, err := uc.states.Start(ctx, wsID, userID, uc.template.NewProgress())
	if err != nil {
		return goerr.Wrap(err, "failed to start tutorial", goerr.V("user_id", userID))
	}

	logging.From(ctx).Info("tutorial started", "user_id", userID)
	return uc.notify(ctx, t, state, nil)
}

func (uc *TutorialUseCase) handleStep(ctx context.Context, wsID types.WorkspaceID, userID types.UserID, step model.StepID, item model.MessageRef) error {
	if userID == "" {
		return nil
	}

	t, err := uc.registry.Lookup(ctx, wsID)
	if err != nil {
		return err
	}

	unlock := uc.locks.lock(wsID, userID)
	defer unlock()

	state, changed, err := uc.states.Advance(ctx, wsID, userID, step)
	if err != nil {
		return err
	}

	logging.From(ctx).Info("tutorial step applied",
		"user_id", userID,
		"step", step,
		"changed", changed,
		"finished", state.Progress.Finished(),
	)

	target := &item
	if item.IsZero() {
		target = state.MessageRef
	}
	return uc.notify(ctx, t, state, target)
}

func (uc *TutorialUseCase) handleMessage(ctx context.Context, wsID types.WorkspaceID, ev *model.MessageEvent) error {
	if ev.UserID == "" || ev.BotID != "" {
		return nil
	}

	t, err := uc.registry.Lookup(ctx, wsID)
	if err != nil {
		return err
	}
	if t.Workspace.IsBot(ev.UserID) {
		return nil
	}

	if isGreeting(ev.Text) {
		uc.greet(ctx, t, ev.UserID)
	}

	if ev.Shared != nil {
		return uc.handleStep(ctx, wsID, ev.UserID, model.StepShare, *ev.Shared)
	}
	return nil
}

func (uc *TutorialUseCase) greet(ctx context.Context, t *tenant.Tenant, userID types.UserID) {
	text := "Hello <@" + userID.String() + ">!"
	if _, err := t.Client.PostMessage(ctx, userID.String(), text, nil); err != nil {
		_ = errutil.Handle(ctx, err, "failed to send greeting")
	}
}

// notify renders the user's progress and sends it, then records where the
// message now lives. A failed send leaves the advanced state in place.
func (uc *TutorialUseCase) notify(ctx context.Context, t *tenant.Tenant, state *model.UserState, prior *model.MessageRef) error {
	text, attachments := renderTutorial(uc.template.WelcomeText, state.Progress)

	ref, err := sendOrUpdate(ctx, t.Client, state.UserID.String(), prior, text, attachments)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to send tutorial message")
		return nil
	}

	if err := uc.states.PutMessageRef(ctx, state.WorkspaceID, state.UserID, *ref); err != nil {
		return goerr.Wrap(err, "failed to record tutorial message",
			goerr.V("user_id", state.UserID),
			goerr.V("channel", ref.Channel),
			goerr.V("ts", ref.Timestamp),
		)
	}
	return nil
}

func isGreeting(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range greetingWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
