package interfaces

import (
	"context"

	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/secmon-lab/welcomebot/pkg/domain/types"
)

// WorkspaceRepository stores installed workspaces and their credentials
type WorkspaceRepository interface {
	// Put stores the workspace, replacing any previous record with the same ID as a whole
	Put(ctx context.Context, ws *model.Workspace) error

	// Get returns model.ErrWorkspaceNotFound (wrapped) for an unknown ID
	Get(ctx context.Context, id types.WorkspaceID) (*model.Workspace, error)

	// List returns all installed workspaces ordered by ID
	List(ctx context.Context) ([]*model.Workspace, error)
}
