package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/welcomebot/pkg/cli"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
)

func TestPrintTutorial(t *testing.T) {
	color.NoColor = true
	tmpl := model.DefaultTutorialTemplate()

	t.Run("pending steps", func(t *testing.T) {
		var buf bytes.Buffer
		gt.NoError(t, cli.PrintTutorial(&buf, tmpl.WelcomeText, tmpl.NewProgress()))

		out := buf.String()
		gt.String(t, out).Contains(tmpl.WelcomeText)
		gt.Number(t, strings.Count(out, model.IconPending)).Equal(len(model.StepIDs))
		gt.Bool(t, strings.Contains(out, "All steps completed.")).False()
	})

	t.Run("finished tutorial", func(t *testing.T) {
		progress := tmpl.NewProgress()
		for _, id := range model.StepIDs {
			_, err := progress.Complete(id)
			gt.NoError(t, err)
		}

		var buf bytes.Buffer
		gt.NoError(t, cli.PrintTutorial(&buf, tmpl.WelcomeText, progress))

		out := buf.String()
		gt.Number(t, strings.Count(out, model.IconCompleted)).Equal(len(model.StepIDs))
		gt.String(t, out).Contains("All steps completed.")
	})
}
