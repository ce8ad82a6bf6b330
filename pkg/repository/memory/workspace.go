package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/secmon-lab/welcomebot/pkg/domain/types"
)

type workspaceRepository struct {
	mu         sync.RWMutex
	workspaces map[types.WorkspaceID]*model.Workspace
}

func newWorkspaceRepository() *workspaceRepository {
	return &workspaceRepository{
		workspaces: make(map[types.WorkspaceID]*model.Workspace),
	}
}

func (r *workspaceRepository) Put(ctx context.Context, ws *model.Workspace) error {
	if err := ws.Validate(); err != nil {
		return goerr.Wrap(err, "invalid workspace")
	}

	// Store a copy to prevent external modifications
	c := *ws

	r.mu.Lock()
	defer r.mu.Unlock()
	r.workspaces[ws.ID] = &c
	return nil
}

func (r *workspaceRepository) Get(ctx context.Context, id types.WorkspaceID) (*model.Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ws, ok := r.workspaces[id]
	if !ok {
		return nil, goerr.Wrap(model.ErrWorkspaceNotFound, "workspace not found", goerr.V("workspace_id", id))
	}

	c := *ws
	return &c, nil
}

func (r *workspaceRepository) List(ctx context.Context) ([]*model.Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Workspace, 0, len(r.workspaces))
	for _, ws := range r.workspaces {
		c := *ws
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}
