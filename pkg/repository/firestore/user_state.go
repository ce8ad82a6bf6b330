package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/domain/interfaces"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/secmon-lab/welcomebot/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// maxTxAttempts covers bursts of step events for the same user
const maxTxAttempts = 20

// User rows live in a subcollection of their workspace document
const tutorialUsersCollection = "tutorial_users"

type userStateRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.UserStateRepository = &userStateRepository{}

func newUserStateRepository(client *firestore.Client) *userStateRepository {
	return &userStateRepository{
		client: client,
	}
}

// userStateDoc is the Firestore persistence model
type userStateDoc struct {
	WorkspaceID string            `firestore:"workspace_id"`
	UserID      string            `firestore:"user_id"`
	Steps       []tutorialStepDoc `firestore:"steps"`
	MessageRef  *model.MessageRef `firestore:"message_ref"`
	StartedAt   time.Time         `firestore:"started_at"`
	UpdatedAt   time.Time         `firestore:"updated_at"`
}

type tutorialStepDoc struct {
	ID             string `firestore:"id"`
	Text           string `firestore:"text"`
	Color          string `firestore:"color"`
	CompletedColor string `firestore:"completed_color"`
	Completed      bool   `firestore:"completed"`
}

func toUserStateDoc(state *model.UserState) *userStateDoc {
	doc := &userStateDoc{
		WorkspaceID: state.WorkspaceID.String(),
		UserID:      state.UserID.String(),
		MessageRef:  state.MessageRef,
		StartedAt:   state.StartedAt,
		UpdatedAt:   state.UpdatedAt,
	}
	if state.Progress != nil {
		doc.Steps = make([]tutorialStepDoc, len(state.Progress.Steps))
		for i, s := range state.Progress.Steps {
			doc.Steps[i] = tutorialStepDoc{
				ID:             string(s.ID),
				Text:           s.Text,
				Color:          s.Color,
				CompletedColor: s.CompletedColor,
				Completed:      s.Completed,
			}
		}
	}
	return doc
}

func (d *userStateDoc) toModel() *model.UserState {
	steps := make([]model.TutorialStep, len(d.Steps))
	for i, s := range d.Steps {
		steps[i] = model.TutorialStep{
			ID:             model.StepID(s.ID),
			Text:           s.Text,
			Color:          s.Color,
			CompletedColor: s.CompletedColor,
			Completed:      s.Completed,
		}
	}
	return &model.UserState{
		WorkspaceID: types.WorkspaceID(d.WorkspaceID),
		UserID:      types.UserID(d.UserID),
		Progress:    &model.Progress{Steps: steps},
		MessageRef:  d.MessageRef,
		StartedAt:   d.StartedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r *userStateRepository) doc(wsID types.WorkspaceID, userID types.UserID) *firestore.DocumentRef {
	return r.client.Collection(collectionName(r.collectionPrefix, workspacesCollection)).
		Doc(wsID.String()).
		Collection(tutorialUsersCollection).
		Doc(userID.String())
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

	if _, err := r.doc(wsID, userID).Set(ctx, toUserStateDoc(state)); err != nil {
		return nil, goerr.Wrap(err, "failed to put user state to firestore",
			goerr.V("workspace_id", wsID),
			goerr.V("user_id", userID),
		)
	}
	return state, nil
}

func (r *userStateRepository) Advance(ctx context.Context, wsID types.WorkspaceID, userID types.UserID, step model.StepID) (*model.UserState, bool, error) {
	if wsID.Validate() != nil || userID.Validate() != nil {
		return nil, false, notStarted(wsID, userID)
	}

	ref := r.doc(wsID, userID)

	var state *model.UserState
	var changed bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// The function may be retried; reset results on every attempt
		state, changed = nil, false

		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return notStarted(wsID, userID)
			}
			return goerr.Wrap(err, "failed to get user state in transaction")
		}

		var doc userStateDoc
		if err := snap.DataTo(&doc); err != nil {
			return goerr.Wrap(err, "failed to unmarshal user state")
		}
		state = doc.toModel()

		changed, err = state.Progress.Complete(step)
		if err != nil {
			return goerr.Wrap(err, "failed to complete step")
		}
		if !changed {
			return nil
		}

		state.UpdatedAt = time.Now()
		return tx.Set(ref, toUserStateDoc(state))
	}, firestore.MaxAttempts(maxTxAttempts))
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to advance tutorial step",
			goerr.V("workspace_id", wsID),
			goerr.V("user_id", userID),
			goerr.V("step", step),
		)
	}

	return state, changed, nil
}

func (r *userStateRepository) Get(ctx context.Context, wsID types.WorkspaceID, userID types.UserID) (*model.UserState, error) {
	if wsID.Validate() != nil || userID.Validate() != nil {
		return nil, notStarted(wsID, userID)
	}

	snap, err := r.doc(wsID, userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, notStarted(wsID, userID)
		}
		return nil, goerr.Wrap(err, "failed to get user state from firestore",
			goerr.V("workspace_id", wsID),
			goerr.V("user_id", userID),
		)
	}

	var doc userStateDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user state")
	}
	return doc.toModel(), nil
}

func (r *userStateRepository) PutMessageRef(ctx context.Context, wsID types.WorkspaceID, userID types.UserID, ref model.MessageRef) error {
	if wsID.Validate() != nil || userID.Validate() != nil {
		return notStarted(wsID, userID)
	}

	// Update fails with NotFound when the document does not exist
	_, err := r.doc(wsID, userID).Update(ctx, []firestore.Update{
		{Path: "message_ref", Value: &ref},
		{Path: "updated_at", Value: time.Now()},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return notStarted(wsID, userID)
		}
		return goerr.Wrap(err, "failed to update message ref",
			goerr.V("workspace_id", wsID),
			goerr.V("user_id", userID),
		)
	}
	return nil
}
