package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
)

func TestStepID_Index(t *testing.T) {
	for i, id := range model.StepIDs {
		idx, err := id.Index()
		gt.NoError(t, err).Required()
		gt.Value(t, idx).Equal(i)
	}

	_, err := model.StepID("dance").Index()
	gt.Error(t, err).Is(model.ErrUnknownStep)
}

func TestTutorialTemplate_Validate(t *testing.T) {
	t.Run("default template is valid", func(t *testing.T) {
		gt.NoError(t, model.DefaultTutorialTemplate().Validate())
	})

	t.Run("missing step", func(t *testing.T) {
		tmpl := model.DefaultTutorialTemplate()
		tmpl.Steps = tmpl.Steps[:2]
		gt.Error(t, tmpl.Validate())
	})

	t.Run("steps out of order", func(t *testing.T) {
		tmpl := model.DefaultTutorialTemplate()
		tmpl.Steps[0], tmpl.Steps[1] = tmpl.Steps[1], tmpl.Steps[0]
		gt.Error(t, tmpl.Validate())
	})

	t.Run("empty welcome text", func(t *testing.T) {
		tmpl := model.DefaultTutorialTemplate()
		tmpl.WelcomeText = ""
		gt.Error(t, tmpl.Validate())
	})
}

func TestTutorialTemplate_NewProgress(t *testing.T) {
	tmpl := model.DefaultTutorialTemplate()

	p1 := tmpl.NewProgress()
	p2 := tmpl.NewProgress()

	gt.Array(t, p1.Steps).Length(len(model.StepIDs))
	for _, id := range model.StepIDs {
		gt.Bool(t, p1.IsComplete(id)).False()
	}

	changed, err := p1.Complete(model.StepPin)
	gt.NoError(t, err).Required()
	gt.Bool(t, changed).True()

	// each progress owns its steps
	gt.Bool(t, p2.IsComplete(model.StepPin)).False()
	gt.Bool(t, tmpl.NewProgress().IsComplete(model.StepPin)).False()
	gt.Bool(t, tmpl.Steps[1].Completed).False()
}

func TestProgress_Complete(t *testing.T) {
	t.Run("re-completing a step leaves progress identical", func(t *testing.T) {
		p := model.DefaultTutorialTemplate().NewProgress()

		changed, err := p.Complete(model.StepReaction)
		gt.NoError(t, err).Required()
		gt.Bool(t, changed).True()
		before := p.Clone()

		changed, err = p.Complete(model.StepReaction)
		gt.NoError(t, err).Required()
		gt.Bool(t, changed).False()
		gt.Value(t, p).Equal(before)
	})

	t.Run("completion is monotonic across any sequence", func(t *testing.T) {
		p := model.DefaultTutorialTemplate().NewProgress()
		seq := []model.StepID{
			model.StepShare, model.StepReaction, model.StepShare,
			model.StepPin, model.StepReaction, model.StepPin,
		}

		done := map[model.StepID]bool{}
		for _, id := range seq {
			_, err := p.Complete(id)
			gt.NoError(t, err).Required()
			done[id] = true
			for step := range done {
				gt.Bool(t, p.IsComplete(step)).True()
			}
		}
		gt.Bool(t, p.Finished()).True()
	})

	t.Run("unknown step", func(t *testing.T) {
		p := model.DefaultTutorialTemplate().NewProgress()
		_, err := p.Complete("dance")
		gt.Error(t, err).Is(model.ErrUnknownStep)
	})
}

func TestTutorialStep_Render(t *testing.T) {
	p := model.DefaultTutorialTemplate().NewProgress()
	step := p.Steps[0]
	gt.Value(t, step.Icon()).Equal(model.IconPending)
	gt.Value(t, step.HighlightColor()).Equal(model.DefaultPendingColor)

	_, err := p.Complete(model.StepReaction)
	gt.NoError(t, err).Required()
	step = p.Steps[0]
	gt.Value(t, step.Icon()).Equal(model.IconCompleted)
	gt.Value(t, step.HighlightColor()).Equal(model.DefaultCompletedColor)
}

func TestUserState_Clone(t *testing.T) {
	orig := &model.UserState{
		WorkspaceID: "T1",
		UserID:      "U42",
		Progress:    model.DefaultTutorialTemplate().NewProgress(),
		MessageRef:  &model.MessageRef{Channel: "D1", Timestamp: "1.0"},
	}

	c := orig.Clone()
	_, err := c.Progress.Complete(model.StepShare)
	gt.NoError(t, err).Required()
	c.MessageRef.Timestamp = "2.0"

	gt.Bool(t, orig.Progress.IsComplete(model.StepShare)).False()
	gt.Value(t, orig.MessageRef.Timestamp).Equal("1.0")
}
