package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/secmon-lab/welcomebot/pkg/domain/types"
)

type userKey struct {
	workspaceID types.WorkspaceID
	userID      types.UserID
}

// userStateRepository keeps one map-wide lock; workspaces are small and
// every operation is a short in-memory read-modify-write
type userStateRepository struct {
	mu     sync.RWMutex
	states map[userKey]*model.UserState
}

func newUserStateRepository() *userStateRepository {
	return &userStateRepository{
		states: make(map[userKey]*model.UserState),
	}
}

func notStarted(wsID types.WorkspaceID, userID types.UserID) error {
	return goerr.Wrap(model.ErrNotStarted, "no tutorial progress for user",
		goerr.V("workspace_id", wsID),
		goerr.V("user_id", userID),
	)
}

func (r *userStateRepository) Start(ctx context.Context, wsID types.WorkspaceID, userID types.UserID, progress *model.Progress) (*model.UserState, error) {
	if err := wsID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid workspace ID")
	}
	if err := userID.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid user ID")
	}
	if progress == nil {
		return nil, goerr.New("progress is required", goerr.V("user_id", userID))
	}

	now := time.Now()
	state := &model.UserState{
		WorkspaceID: wsID,
		UserID:      userID,
		Progress:    progress.Clone(),
		StartedAt:   now,
		UpdatedAt:   now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[userKey{wsID, userID}] = state

	return state.Clone(), nil
}

func (r *userStateRepository) Advance(ctx context.Context, wsID types.WorkspaceID, userID types.UserID, step model.StepID) (*model.UserState, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[userKey{wsID, userID}]
	if !ok {
		return nil, false, notStarted(wsID, userID)
	}

	changed, err := state.Progress.Complete(step)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to complete step", goerr.V("user_id", userID))
	}
	if changed {
		state.UpdatedAt = time.Now()
	}

	return state.Clone(), changed, nil
}

func (r *userStateRepository) Get(ctx context.Context, wsID types.WorkspaceID, userID types.UserID) (*model.UserState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[userKey{wsID, userID}]
	if !ok {
		return nil, notStarted(wsID, userID)
	}
	return state.Clone(), nil
}

func (r *userStateRepository) PutMessageRef(ctx context.Context, wsID types.WorkspaceID, userID types.UserID, ref model.MessageRef) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.states[userKey{wsID, userID}]
	if !ok {
		return notStarted(wsID, userID)
	}
	state.MessageRef = &ref
	state.UpdatedAt = time.Now()
	return nil
}
