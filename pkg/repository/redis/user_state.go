package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/welcomebot/pkg/domain/interfaces"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/secmon-lab/welcomebot/pkg/domain/types"
)

// maxTxRetries bounds optimistic WATCH retries under contention on one row
const maxTxRetries = 32

type userStateRepository struct {
	client *redis.Client
	prefix string
}

var _ interfaces.UserStateRepository = &userStateRepository{}

func (r *userStateRepository) key(wsID types.WorkspaceID, userID types.UserID) string {
	return r.prefix + ":tutorial:" + wsID.String() + ":" + userID.String()
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

	raw, err := json.Marshal(state)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal user state")
	}
	if err := r.client.Set(ctx, r.key(wsID, userID), raw, 0).Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to put user state to redis",
			goerr.V("workspace_id", wsID),
			goerr.V("user_id", userID),
		)
	}
	return state, nil
}

// update runs fn as an optimistic read-modify-write on the user's row. fn
// returns whether the row must be written back.
func (r *userStateRepository) update(ctx context.Context, wsID types.WorkspaceID, userID types.UserID, fn func(state *model.UserState) (bool, error)) (*model.UserState, bool, error) {
	key := r.key(wsID, userID)

	var state *model.UserState
	var changed bool
	txf := func(tx *redis.Tx) error {
		state, changed = nil, false

		raw, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return notStarted(wsID, userID)
			}
			return goerr.Wrap(err, "failed to get user state from redis")
		}

		var s model.UserState
		if err := json.Unmarshal(raw, &s); err != nil {
			return goerr.Wrap(err, "failed to unmarshal user state")
		}
		state = &s

		changed, err = fn(state)
		if err != nil || !changed {
			return err
		}

		state.UpdatedAt = time.Now()
		updated, err := json.Marshal(state)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal user state")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return state, changed, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, false, goerr.Wrap(err, "failed to update user state",
			goerr.V("workspace_id", wsID),
			goerr.V("user_id", userID),
		)
	}

	return nil, false, goerr.New("too many concurrent updates of user state",
		goerr.V("workspace_id", wsID),
		goerr.V("user_id", userID),
	)
}

func (r *userStateRepository) Advance(ctx context.Context, wsID types.WorkspaceID, userID types.UserID, step model.StepID) (*model.UserState, bool, error) {
	return r.update(ctx, wsID, userID, func(state *model.UserState) (bool, error) {
		return state.Progress.Complete(step)
	})
}

func (r *userStateRepository) Get(ctx context.Context, wsID types.WorkspaceID, userID types.UserID) (*model.UserState, error) {
	raw, err := r.client.Get(ctx, r.key(wsID, userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notStarted(wsID, userID)
		}
		return nil, goerr.Wrap(err, "failed to get user state from redis",
			goerr.V("workspace_id", wsID),
			goerr.V("user_id", userID),
		)
	}

	var state model.UserState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user state")
	}
	return &state, nil
}

func (r *userStateRepository) PutMessageRef(ctx context.Context, wsID types.WorkspaceID, userID types.UserID, ref model.MessageRef) error {
	_, _, err := r.update(ctx, wsID, userID, func(state *model.UserState) (bool, error) {
		state.MessageRef = &ref
		return true, nil
	})
	return err
}
