package redis

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
	"github.com/secmon-lab/welcomebot/pkg/domain/interfaces"
)

const defaultKeyPrefix = "welcomebot"

type Redis struct {
	client    *redis.Client
	workspace *workspaceRepository
	userState *userStateRepository
}

var _ interfaces.Repository = &Redis{}

type Option func(*Redis)

// WithKeyPrefix namespaces every key, e.g. per test run
func WithKeyPrefix(prefix string) Option {
	return func(r *Redis) {
		r.workspace.prefix = prefix
		r.userState.prefix = prefix
	}
}

func New(ctx context.Context, addr, password string, db int, opts ...Option) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, goerr.Wrap(err, "failed to connect to redis", goerr.V("addr", addr), goerr.V("db", db))
	}

	r := &Redis{
		client:    client,
		workspace: &workspaceRepository{client: client, prefix: defaultKeyPrefix},
		userState: &userStateRepository{client: client, prefix: defaultKeyPrefix},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Redis) Workspace() interfaces.WorkspaceRepository {
	return r.workspace
}

func (r *Redis) UserState() interfaces.UserStateRepository {
	return r.userState
}

func (r *Redis) Close() error {
	return r.client.Close()
}
