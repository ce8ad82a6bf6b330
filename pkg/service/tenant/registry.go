package tenant

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/domain/interfaces"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/secmon-lab/welcomebot/pkg/domain/types"
	"github.com/secmon-lab/welcomebot/pkg/service/slack"
	"github.com/secmon-lab/welcomebot/pkg/utils/logging"
	"golang.org/x/sync/singleflight"
)

// Tenant is an installed workspace together with its bot client. A Tenant is
// never modified after creation; reinstall replaces it.
type Tenant struct {
	Workspace *model.Workspace
	Client    slack.Service
}

// Registry maps workspace IDs to tenants. Credentials are persisted through
// the repository; clients live in memory and are built once per install.
type Registry struct {
	repo    interfaces.WorkspaceRepository
	factory slack.Factory

	mu      sync.RWMutex
	tenants map[types.WorkspaceID]*Tenant
	loading singleflight.Group
}

// New creates a Registry. factory builds the client for a bot token.
func New(repo interfaces.WorkspaceRepository, factory slack.Factory) *Registry {
	return &Registry{
		repo:    repo,
		factory: factory,
		tenants: make(map[types.WorkspaceID]*Tenant),
	}
}

// Install stores the workspace credentials and binds a new client to it,
// replacing the previous tenant of the same workspace
func (r *Registry) Install(ctx context.Context, ws *model.Workspace) error {
	if err := ws.Validate(); err != nil {
		return goerr.Wrap(err, "invalid workspace")
	}

	client, err := r.factory(ws.Credentials.BotAccessToken)
	if err != nil {
		return goerr.Wrap(err, "failed to create slack client", goerr.V("workspace_id", ws.ID))
	}

	if err := r.repo.Put(ctx, ws); err != nil {
		return goerr.Wrap(err, "failed to store workspace", goerr.V("workspace_id", ws.ID))
	}

	c := *ws
	t := &Tenant{Workspace: &c, Client: client}

	r.mu.Lock()
	_, reinstall := r.tenants[ws.ID]
	r.tenants[ws.ID] = t
	r.mu.Unlock()

	logging.From(ctx).Info("workspace installed",
		"workspace_id", ws.ID,
		"name", ws.Name,
		"bot_user_id", ws.Credentials.BotUserID,
		"reinstall", reinstall,
	)
	return nil
}

// Lookup returns the tenant of the workspace. Workspaces installed before a
// restart are loaded from the repository on first use. It returns
// model.ErrWorkspaceNotFound (wrapped) for unknown workspaces.
func (r *Registry) Lookup(ctx context.Context, id types.WorkspaceID) (*Tenant, error) {
	if t := r.cached(id); t != nil {
		return t, nil
	}

	v, err, _ := r.loading.Do(id.String(), func() (any, error) {
		if t := r.cached(id); t != nil {
			return t, nil
		}

		ws, err := r.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		client, err := r.factory(ws.Credentials.BotAccessToken)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create slack client", goerr.V("workspace_id", id))
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		// An Install that raced with the load wins
		if t, ok := r.tenants[id]; ok {
			return t, nil
		}
		t := &Tenant{Workspace: ws, Client: client}
		r.tenants[id] = t
		return t, nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up tenant", goerr.V("workspace_id", id))
	}

	return v.(*Tenant), nil
}

// ClientFor returns the bot client of the workspace
func (r *Registry) ClientFor(ctx context.Context, id types.WorkspaceID) (slack.Service, error) {
	t, err := r.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.Client, nil
}

// Workspaces returns every installed workspace
func (r *Registry) Workspaces(ctx context.Context) ([]*model.Workspace, error) {
	list, err := r.repo.List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list workspaces")
	}
	return list, nil
}

// Sync reloads every workspace from the repository and rebinds the tenants
// whose stored install is newer than the cached one, e.g. after a reinstall
// handled by another process. It returns the number of rebound tenants.
func (r *Registry) Sync(ctx context.Context) (int, error) {
	list, err := r.repo.List(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to list workspaces")
	}

	var updated int
	for _, ws := range list {
		if cur := r.cached(ws.ID); cur != nil && !newerInstall(ws, cur.Workspace) {
			continue
		}
		if err := ws.Validate(); err != nil {
			logging.From(ctx).Warn("stored workspace is unusable", "workspace_id", ws.ID, "error", err.Error())
			continue
		}

		client, err := r.factory(ws.Credentials.BotAccessToken)
		if err != nil {
			return updated, goerr.Wrap(err, "failed to create slack client", goerr.V("workspace_id", ws.ID))
		}

		r.mu.Lock()
		// Re-check under the lock; a concurrent Install may have won
		if cur, ok := r.tenants[ws.ID]; !ok || newerInstall(ws, cur.Workspace) {
			r.tenants[ws.ID] = &Tenant{Workspace: ws, Client: client}
			updated++
		}
		r.mu.Unlock()
	}

	return updated, nil
}

func newerInstall(stored, cached *model.Workspace) bool {
	return stored.InstalledAt.After(cached.InstalledAt) && stored.Credentials != cached.Credentials
}

func (r *Registry) cached(id types.WorkspaceID) *Tenant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tenants[id]
}
