package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/secmon-lab/welcomebot/pkg/usecase"
)

func TestRenderTutorial(t *testing.T) {
	tmpl := model.DefaultTutorialTemplate()
	progress := tmpl.NewProgress()
	_, err := progress.Complete(model.StepPin)
	gt.NoError(t, err).Required()

	text, attachments := usecase.RenderTutorial(tmpl.WelcomeText, progress)
	gt.Value(t, text).Equal(tmpl.WelcomeText)
	gt.Array(t, attachments).Length(3).Required()

	for i, att := range attachments {
		step := progress.Steps[i]
		gt.Value(t, att.Text).Equal(step.Icon() + " " + step.Text)
		gt.Value(t, att.Color).Equal(step.HighlightColor())
		gt.Array(t, att.MarkdownIn).Has("text")
	}
	gt.String(t, attachments[0].Text).Contains(model.IconPending)
	gt.String(t, attachments[1].Text).Contains(model.IconCompleted)
	gt.Value(t, attachments[1].Color).Equal(model.DefaultCompletedColor)

	t.Run("identical progress renders identically", func(t *testing.T) {
		again := progress.Clone()
		changed, err := again.Complete(model.StepPin)
		gt.NoError(t, err)
		gt.Bool(t, changed).False()

		text2, attachments2 := usecase.RenderTutorial(tmpl.WelcomeText, again)
		gt.Value(t, text2).Equal(text)
		gt.Value(t, attachments2).Equal(attachments)
	})
}

func TestIsGreeting(t *testing.T) {
	testCases := []struct {
		text     string
		expected bool
	}{
		{"hi", true},
		{"Hello!", true},
		{"GREETINGS, human", true},
		{"oh hi there", true},
		{"this is it", true},
		{"good morning", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			gt.Value(t, usecase.IsGreeting(tc.text)).Equal(tc.expected)
		})
	}
}

func TestSendOrUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("posts when there is no prior message", func(t *testing.T) {
		client := &fakeSlack{}
		ref, err := usecase.SendOrUpdate(ctx, client, "U1", nil, "text", nil)
		gt.NoError(t, err).Required()
		gt.Value(t, *ref).Equal(model.MessageRef{Channel: "DU1", Timestamp: "1700000000.000001"})
		gt.Value(t, client.Calls()[0].Method).Equal("post")
	})

	t.Run("posts when the prior reference is incomplete", func(t *testing.T) {
		client := &fakeSlack{}
		_, err := usecase.SendOrUpdate(ctx, client, "U1", &model.MessageRef{Channel: "D1"}, "text", nil)
		gt.NoError(t, err).Required()
		gt.Value(t, client.Calls()[0].Method).Equal("post")
	})

	t.Run("updates the prior message", func(t *testing.T) {
		client := &fakeSlack{}
		prior := &model.MessageRef{Channel: "C1", Timestamp: "1.5"}
		ref, err := usecase.SendOrUpdate(ctx, client, "U1", prior, "text", nil)
		gt.NoError(t, err).Required()
		gt.Value(t, *ref).Equal(*prior)

		calls := client.Calls()
		gt.Value(t, calls[0].Method).Equal("update")
		gt.Value(t, calls[0].Channel).Equal("C1")
		gt.Value(t, calls[0].Timestamp).Equal("1.5")
	})

	t.Run("wraps send errors", func(t *testing.T) {
		client := &fakeSlack{}
		cause := errors.New("ratelimited")
		client.Fail(cause)

		_, err := usecase.SendOrUpdate(ctx, client, "U1", nil, "text", nil)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, cause)).True()
	})
}
