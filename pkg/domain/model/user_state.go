package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/domain/types"
)

// ErrNotStarted is returned when a user has no tutorial progress, typically
// because they joined before the bot was installed
var ErrNotStarted = goerr.New("tutorial not started")

// MessageRef identifies a posted Slack message; it is required to update it later
type MessageRef struct {
	Channel   string `json:"channel" firestore:"channel"`
	Timestamp string `json:"ts" firestore:"ts"`
}

// IsZero reports whether the reference points to nothing
func (x MessageRef) IsZero() bool {
	return x.Channel == "" || x.Timestamp == ""
}

// UserState is the tutorial row of one user in one workspace
type UserState struct {
	WorkspaceID types.WorkspaceID `json:"workspace_id" firestore:"workspace_id"`
	UserID      types.UserID      `json:"user_id" firestore:"user_id"`
	Progress    *Progress         `json:"progress" firestore:"progress"`
	MessageRef  *MessageRef       `json:"message_ref,omitempty" firestore:"message_ref"`
	StartedAt   time.Time         `json:"started_at" firestore:"started_at"`
	UpdatedAt   time.Time         `json:"updated_at" firestore:"updated_at"`
}

// Clone returns a deep copy so callers can't alter stored state
func (x *UserState) Clone() *UserState {
	if x == nil {
		return nil
	}
	c := *x
	c.Progress = x.Progress.Clone()
	if x.MessageRef != nil {
		ref := *x.MessageRef
		c.MessageRef = &ref
	}
	return &c
}
