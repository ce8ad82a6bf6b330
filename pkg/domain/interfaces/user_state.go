package interfaces

import (
	"context"

	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/secmon-lab/welcomebot/pkg/domain/types"
)

// UserStateRepository stores tutorial progress per (workspace, user).
// Every returned *model.UserState is a copy owned by the caller.
type UserStateRepository interface {
	// Start stores fresh progress for the user, discarding any previous row
	Start(ctx context.Context, wsID types.WorkspaceID, userID types.UserID, progress *model.Progress) (*model.UserState, error)

	// Advance marks the step complete in a single atomic read-modify-write and
	// returns the resulting state and whether it changed. It returns
	// model.ErrNotStarted (wrapped) when the user has no row.
	Advance(ctx context.Context, wsID types.WorkspaceID, userID types.UserID, step model.StepID) (*model.UserState, bool, error)

	// Get returns model.ErrNotStarted (wrapped) when the user has no row
	Get(ctx context.Context, wsID types.WorkspaceID, userID types.UserID) (*model.UserState, error)

	// PutMessageRef records the last tutorial message sent to the user.
	// It returns model.ErrNotStarted (wrapped) when the user has no row.
	PutMessageRef(ctx context.Context, wsID types.WorkspaceID, userID types.UserID, ref model.MessageRef) error
}
