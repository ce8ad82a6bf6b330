package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/domain/types"
)

// ErrWorkspaceNotFound is returned when a workspace has never been installed
var ErrWorkspaceNotFound = goerr.New("workspace not found")

// Credentials are the tokens issued by the OAuth install flow for a workspace
type Credentials struct {
	UserAccessToken string `json:"user_access_token" firestore:"user_access_token" masq:"secret"`
	BotUserID       string `json:"bot_user_id" firestore:"bot_user_id"`
	BotAccessToken  string `json:"bot_access_token" firestore:"bot_access_token" masq:"secret"`
}

// Validate checks that the bot can act with these credentials
func (x Credentials) Validate() error {
	if x.BotAccessToken == "" {
		return goerr.New("bot access token is required")
	}
	if x.BotUserID == "" {
		return goerr.New("bot user ID is required")
	}
	return nil
}

// Workspace is an installed tenant. A record is written once per install and
// replaced as a whole on reinstall.
type Workspace struct {
	ID          types.WorkspaceID `json:"id" firestore:"id"`
	Name        string            `json:"name" firestore:"name"`
	Credentials Credentials       `json:"credentials" firestore:"credentials"`
	InstalledAt time.Time         `json:"installed_at" firestore:"installed_at"`
}

// Validate checks if the Workspace is valid
func (x *Workspace) Validate() error {
	if err := x.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid workspace")
	}
	if err := x.Credentials.Validate(); err != nil {
		return goerr.Wrap(err, "invalid workspace credentials", goerr.V("workspace_id", x.ID))
	}
	return nil
}

// IsBot reports whether userID is the bot user of this workspace
func (x *Workspace) IsBot(userID types.UserID) bool {
	return x.Credentials.BotUserID != "" && string(userID) == x.Credentials.BotUserID
}
