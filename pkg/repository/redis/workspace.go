package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/welcomebot/pkg/domain/interfaces"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/secmon-lab/welcomebot/pkg/domain/types"
)

type workspaceRepository struct {
	client *redis.Client
	prefix string
}

var _ interfaces.WorkspaceRepository = &workspaceRepository{}

func (r *workspaceRepository) key(id types.WorkspaceID) string {
	return r.prefix + ":workspace:" + id.String()
}

func (r *workspaceRepository) indexKey() string {
	return r.prefix + ":workspaces"
}

func (r *workspaceRepository) Put(ctx context.Context, ws *model.Workspace) error {
	if err := ws.Validate(); err != nil {
		return goerr.Wrap(err, "invalid workspace")
	}

	raw, err := json.Marshal(ws)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal workspace", goerr.V("workspace_id", ws.ID))
	}

	// SET replaces the record as a whole; MULTI keeps the index consistent
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(ws.ID), raw, 0)
		pipe.SAdd(ctx, r.indexKey(), ws.ID.String())
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to put workspace to redis", goerr.V("workspace_id", ws.ID))
	}
	return nil
}

func (r *workspaceRepository) Get(ctx context.Context, id types.WorkspaceID) (*model.Workspace, error) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, goerr.Wrap(model.ErrWorkspaceNotFound, "workspace not found", goerr.V("workspace_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get workspace from redis", goerr.V("workspace_id", id))
	}

	var ws model.Workspace
	if err := json.Unmarshal(raw, &ws); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal workspace", goerr.V("workspace_id", id))
	}
	return &ws, nil
}

func (r *workspaceRepository) List(ctx context.Context) ([]*model.Workspace, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list workspace IDs")
	}
	sort.Strings(ids)

	result := make([]*model.Workspace, 0, len(ids))
	for _, id := range ids {
		ws, err := r.Get(ctx, types.WorkspaceID(id))
		if err != nil {
			if errors.Is(err, model.ErrWorkspaceNotFound) {
				continue
			}
			return nil, err
		}
		result = append(result, ws)
	}
	return result, nil
}
