package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/cli/config"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdTutorial() *cli.Command {
	var tutorialCfg config.Tutorial
	var completed []string

	flags := tutorialCfg.Flags()
	flags = append(flags, &cli.StringSliceFlag{
		Name:        "completed",
		Aliases:     []string{"c"},
		Usage:       "Render these steps as completed [reaction|pin|share]",
		Destination: &completed,
	})

	return &cli.Command{
		Name:  "tutorial",
		Usage: "Preview the tutorial message in the terminal",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			tmpl, err := tutorialCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load tutorial")
			}

			progress := tmpl.NewProgress()
			for _, id := range completed {
				if _, err := progress.Complete(model.StepID(id)); err != nil {
					return goerr.Wrap(err, "invalid --completed value")
				}
			}

			return printTutorial(os.Stdout, tmpl.WelcomeText, progress)
		},
	}
}

func printTutorial(w io.Writer, welcome string, progress *model.Progress) error {
	title := color.New(color.Bold)
	done := color.New(color.FgBlue)
	pending := color.New(color.FgHiBlack)

	if _, err := title.Fprintln(w, welcome); err != nil {
		return goerr.Wrap(err, "failed to write tutorial")
	}

	for _, step := range progress.Steps {
		mark := pending
		if step.Completed {
			mark = done
		}
		if _, err := fmt.Fprintf(w, "\n%s %s\n%s\n",
			mark.Sprint("┃"),
			mark.Sprint(step.Icon()),
			step.Text,
		); err != nil {
			return goerr.Wrap(err, "failed to write tutorial")
		}
	}

	if progress.Finished() {
		if _, err := done.Fprintln(w, "\nAll steps completed."); err != nil {
			return goerr.Wrap(err, "failed to write tutorial")
		}
	}
	return nil
}
