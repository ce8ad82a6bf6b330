package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/cli/config"
	"github.com/secmon-lab/welcomebot/pkg/utils/logging"
	"github.com/secmon-lab/welcomebot/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var slackCfg config.Slack
	var tutorialCfg config.Tutorial
	var repoCfg config.Repository
	var checkRepository bool

	var flags []cli.Flag
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, tutorialCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "check-repository",
		Usage:       "Connect to the repository backend and check stored workspaces",
		Sources:     cli.EnvVars("WELCOMEBOT_CHECK_REPOSITORY"),
		Destination: &checkRepository,
	})

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate configuration and the tutorial file",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if err := slackCfg.Validate(); err != nil {
				return goerr.Wrap(err, "slack configuration validation failed")
			}

			tmpl, err := tutorialCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "tutorial validation failed")
			}
			logger.Info("Configuration validation passed",
				"tutorial", tutorialCfg,
				"step_count", len(tmpl.Steps),
			)

			if !checkRepository {
				return nil
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, "repository", repo)

			workspaces, err := repo.Workspace().List(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to list workspaces")
			}

			var broken int
			for _, ws := range workspaces {
				if err := ws.Validate(); err != nil {
					broken++
					logger.Warn("Stored workspace is unusable", "workspace_id", ws.ID, "error", err.Error())
					continue
				}
				logger.Info("Workspace validated", "id", ws.ID, "name", ws.Name)
			}
			if broken > 0 {
				return fmt.Errorf("found %d unusable workspace(s)", broken)
			}

			logger.Info("Repository check passed", "workspace_count", len(workspaces))
			return nil
		},
	}
}
