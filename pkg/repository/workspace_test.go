package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/welcomebot/pkg/domain/interfaces"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/secmon-lab/welcomebot/pkg/domain/types"
)

func newTestWorkspace(id types.WorkspaceID) *model.Workspace {
	return &model.Workspace{
		ID:   id,
		Name: "workspace " + id.String(),
		Credentials: model.Credentials{
			UserAccessToken: "xoxp-" + id.String(),
			BotUserID:       "UBOT" + id.String(),
			BotAccessToken:  "xoxb-" + id.String(),
		},
		InstalledAt: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func runWorkspaceRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.WorkspaceID(fmt.Sprintf("T%d", time.Now().UnixNano()))
		ws := newTestWorkspace(id)
		gt.NoError(t, repo.Workspace().Put(ctx, ws)).Required()

		got, err := repo.Workspace().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(ws.ID)
		gt.Value(t, got.Name).Equal(ws.Name)
		gt.Value(t, got.Credentials).Equal(ws.Credentials)
		gt.Bool(t, got.InstalledAt.Equal(ws.InstalledAt)).True()
	})

	t.Run("Get unknown workspace", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Workspace().Get(ctx, types.WorkspaceID(fmt.Sprintf("T%d", time.Now().UnixNano())))
		gt.Error(t, err).Is(model.ErrWorkspaceNotFound)
	})

	t.Run("Put replaces the whole record on reinstall", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.WorkspaceID(fmt.Sprintf("T%d", time.Now().UnixNano()))
		gt.NoError(t, repo.Workspace().Put(ctx, newTestWorkspace(id))).Required()

		reinstalled := newTestWorkspace(id)
		reinstalled.Name = ""
		reinstalled.Credentials = model.Credentials{
			BotUserID:      "UBOT2",
			BotAccessToken: "xoxb-second",
		}
		gt.NoError(t, repo.Workspace().Put(ctx, reinstalled)).Required()

		got, err := repo.Workspace().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Name).Equal("")
		gt.Value(t, got.Credentials).Equal(reinstalled.Credentials)
	})

	t.Run("Put rejects invalid workspace", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ws := newTestWorkspace("T1")
		ws.Credentials.BotAccessToken = ""
		gt.Error(t, repo.Workspace().Put(ctx, ws))
	})

	t.Run("List returns workspaces ordered by ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base := time.Now().UnixNano()
		ids := []types.WorkspaceID{
			types.WorkspaceID(fmt.Sprintf("T%d_b", base)),
			types.WorkspaceID(fmt.Sprintf("T%d_a", base)),
		}
		for _, id := range ids {
			gt.NoError(t, repo.Workspace().Put(ctx, newTestWorkspace(id))).Required()
		}

		list, err := repo.Workspace().List(ctx)
		gt.NoError(t, err).Required()

		var found []types.WorkspaceID
		for _, ws := range list {
			if ws.ID == ids[0] || ws.ID == ids[1] {
				found = append(found, ws.ID)
			}
		}
		gt.Array(t, found).Length(2).Required()
		gt.Value(t, found[0]).Equal(ids[1])
		gt.Value(t, found[1]).Equal(ids[0])
	})

	t.Run("returned workspace is a copy", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		id := types.WorkspaceID(fmt.Sprintf("T%d", time.Now().UnixNano()))
		ws := newTestWorkspace(id)
		gt.NoError(t, repo.Workspace().Put(ctx, ws)).Required()
		ws.Name = "mutated after put"

		got, err := repo.Workspace().Get(ctx, id)
		gt.NoError(t, err).Required()
		got.Credentials.BotAccessToken = "mutated after get"

		again, err := repo.Workspace().Get(ctx, id)
		gt.NoError(t, err).Required()
		gt.Value(t, again.Name).Equal("workspace " + id.String())
		gt.Value(t, again.Credentials.BotAccessToken).Equal("xoxb-" + id.String())
	})
}

func TestMemoryWorkspaceRepository(t *testing.T) {
	runWorkspaceRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreWorkspaceRepository(t *testing.T) {
	runWorkspaceRepositoryTest(t, newFirestoreRepository)
}

func TestRedisWorkspaceRepository(t *testing.T) {
	runWorkspaceRepositoryTest(t, newRedisRepository)
}
