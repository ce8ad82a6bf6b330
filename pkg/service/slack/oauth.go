package slack

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/secmon-lab/welcomebot/pkg/domain/types"
	"github.com/slack-go/slack"
)

const authorizeEndpoint = "https://slack.com/oauth/v2/authorize"

// BotScopes are the bot token scopes the onboarding tutorial needs
var BotScopes = []string{
	"chat:write",
	"im:write",
	"im:history",
	"channels:history",
	"reactions:read",
	"pins:read",
	"users:read",
}

type oauth struct {
	clientID     string
	clientSecret string
	redirectURL  string
	httpClient   *http.Client
}

// NewOAuth returns the OAuth v2 install handshake for the app
func NewOAuth(clientID, clientSecret, redirectURL string) OAuth {
	return &oauth{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (x *oauth) AuthorizeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", x.clientID)
	params.Set("scope", strings.Join(BotScopes, ","))
	if x.redirectURL != "" {
		params.Set("redirect_uri", x.redirectURL)
	}
	params.Set("state", state)

	return authorizeEndpoint + "?" + params.Encode()
}

func (x *oauth) Exchange(ctx context.Context, code string) (*model.Workspace, error) {
	if code == "" {
		return nil, goerr.New("authorization code is required")
	}

	resp, err := slack.GetOAuthV2ResponseContext(ctx, x.httpClient, x.clientID, x.clientSecret, code, x.redirectURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to exchange OAuth code")
	}

	ws := &model.Workspace{
		ID:   types.WorkspaceID(resp.Team.ID),
		Name: resp.Team.Name,
		Credentials: model.Credentials{
			UserAccessToken: resp.AuthedUser.AccessToken,
			BotUserID:       resp.BotUserID,
			BotAccessToken:  resp.AccessToken,
		},
		InstalledAt: time.Now(),
	}
	if err := ws.Validate(); err != nil {
		return nil, goerr.Wrap(err, "incomplete OAuth response", goerr.V("team_id", resp.Team.ID))
	}

	return ws, nil
}
