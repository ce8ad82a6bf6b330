package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/domain/interfaces"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/secmon-lab/welcomebot/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const workspacesCollection = "workspaces"

type workspaceRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.WorkspaceRepository = &workspaceRepository{}

func newWorkspaceRepository(client *firestore.Client) *workspaceRepository {
	return &workspaceRepository{
		client: client,
	}
}

// workspaceDoc is the Firestore persistence model
type workspaceDoc struct {
	ID              string    `firestore:"id"`
	Name            string    `firestore:"name"`
	UserAccessToken string    `firestore:"user_access_token"`
	BotUserID       string    `firestore:"bot_user_id"`
	BotAccessToken  string    `firestore:"bot_access_token"`
	InstalledAt     time.Time `firestore:"installed_at"`
}

func (r *workspaceRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(collectionName(r.collectionPrefix, workspacesCollection))
}

func toWorkspaceDoc(ws *model.Workspace) *workspaceDoc {
	return &workspaceDoc{
		ID:              ws.ID.String(),
		Name:            ws.Name,
		UserAccessToken: ws.Credentials.UserAccessToken,
		BotUserID:       ws.Credentials.BotUserID,
		BotAccessToken:  ws.Credentials.BotAccessToken,
		InstalledAt:     ws.InstalledAt,
	}
}

func (d *workspaceDoc) toModel() *model.Workspace {
	return &model.Workspace{
		ID:   types.WorkspaceID(d.ID),
		Name: d.Name,
		Credentials: model.Credentials{
			UserAccessToken: d.UserAccessToken,
			BotUserID:       d.BotUserID,
			BotAccessToken:  d.BotAccessToken,
		},
		InstalledAt: d.InstalledAt,
	}
}

func (r *workspaceRepository) Put(ctx context.Context, ws *model.Workspace) error {
	if err := ws.Validate(); err != nil {
		return goerr.Wrap(err, "invalid workspace")
	}

	// Set without merge replaces the whole document
	if _, err := r.collection().Doc(ws.ID.String()).Set(ctx, toWorkspaceDoc(ws)); err != nil {
		return goerr.Wrap(err, "failed to put workspace to firestore", goerr.V("workspace_id", ws.ID))
	}
	return nil
}

func (r *workspaceRepository) Get(ctx context.Context, id types.WorkspaceID) (*model.Workspace, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(model.ErrWorkspaceNotFound, "invalid workspace ID", goerr.V("workspace_id", id))
	}

	snap, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrWorkspaceNotFound, "workspace not found", goerr.V("workspace_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get workspace from firestore", goerr.V("workspace_id", id))
	}

	var doc workspaceDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal workspace", goerr.V("workspace_id", id))
	}
	return doc.toModel(), nil
}

func (r *workspaceRepository) List(ctx context.Context) ([]*model.Workspace, error) {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var result []*model.Workspace
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate workspaces")
		}

		var doc workspaceDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal workspace", goerr.V("doc_id", snap.Ref.ID))
		}
		result = append(result, doc.toModel())
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}
