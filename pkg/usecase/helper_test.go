package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/secmon-lab/welcomebot/pkg/domain/types"
	"github.com/secmon-lab/welcomebot/pkg/repository/memory"
	slacksvc "github.com/secmon-lab/welcomebot/pkg/service/slack"
	"github.com/secmon-lab/welcomebot/pkg/service/tenant"
	"github.com/secmon-lab/welcomebot/pkg/usecase"
	"github.com/slack-go/slack"
)

const verificationToken = "test-verification-token"

type slackCall struct {
	Method      string
	Channel     string
	Timestamp   string
	Text        string
	Attachments []slack.Attachment
}

// fakeSlack records outgoing calls. Posting to a user ID answers with the
// DM channel "D"+userID, as Slack does.
type fakeSlack struct {
	mu    sync.Mutex
	calls []slackCall
	seq   int
	fail  error
}

func (x *fakeSlack) PostMessage(ctx context.Context, channelID, text string, attachments []slack.Attachment) (*model.MessageRef, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.calls = append(x.calls, slackCall{Method: "post", Channel: channelID, Text: text, Attachments: attachments})
	if x.fail != nil {
		return nil, x.fail
	}
	x.seq++
	return &model.MessageRef{Channel: "D" + channelID, Timestamp: fmt.Sprintf("1700000000.%06d", x.seq)}, nil
}

func (x *fakeSlack) UpdateMessage(ctx context.Context, ref model.MessageRef, text string, attachments []slack.Attachment) (*model.MessageRef, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.calls = append(x.calls, slackCall{Method: "update", Channel: ref.Channel, Timestamp: ref.Timestamp, Text: text, Attachments: attachments})
	if x.fail != nil {
		return nil, x.fail
	}
	return &ref, nil
}

func (x *fakeSlack) Calls() []slackCall {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]slackCall(nil), x.calls...)
}

func (x *fakeSlack) Fail(err error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.fail = err
}

type fixture struct {
	repo    *memory.Memory
	uc      *usecase.UseCases
	clients map[string]*fakeSlack
}

// newFixture installs every given workspace with bot user UBOT and its own
// fake client, keyed by workspace ID
func newFixture(t *testing.T, workspaceIDs ...string) *fixture {
	t.Helper()

	f := &fixture{
		repo:    memory.New(),
		clients: make(map[string]*fakeSlack),
	}
	for _, id := range workspaceIDs {
		f.clients["xoxb-"+id] = &fakeSlack{}
	}

	factory := func(token string) (slacksvc.Service, error) {
		c, ok := f.clients[token]
		if !ok {
			return nil, errors.New("unexpected token")
		}
		return c, nil
	}
	registry := tenant.New(f.repo.Workspace(), factory)

	ctx := context.Background()
	for _, id := range workspaceIDs {
		gt.NoError(t, registry.Install(ctx, &model.Workspace{
			ID:   types.WorkspaceID(id),
			Name: "workspace " + id,
			Credentials: model.Credentials{
				UserAccessToken: "xoxp-" + id,
				BotUserID:       "UBOT",
				BotAccessToken:  "xoxb-" + id,
			},
		})).Required()
	}

	f.uc = usecase.New(f.repo, registry, usecase.WithVerificationToken(verificationToken))
	return f
}

func (f *fixture) client(wsID string) *fakeSlack {
	return f.clients["xoxb-"+wsID]
}

func (f *fixture) state(t *testing.T, wsID, userID string) *model.UserState {
	t.Helper()
	state, err := f.repo.UserState().Get(context.Background(), types.WorkspaceID(wsID), types.UserID(userID))
	gt.NoError(t, err).Required()
	return state
}
