package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/cli/config"
	httpctrl "github.com/secmon-lab/welcomebot/pkg/controller/http"
	"github.com/secmon-lab/welcomebot/pkg/service/tenant"
	"github.com/secmon-lab/welcomebot/pkg/service/worker"
	"github.com/secmon-lab/welcomebot/pkg/usecase"
	"github.com/secmon-lab/welcomebot/pkg/utils/logging"
	"github.com/secmon-lab/welcomebot/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var refreshInterval time.Duration
	var repoCfg config.Repository
	var slackCfg config.Slack
	var tutorialCfg config.Tutorial
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":3000",
			Sources:     cli.EnvVars("WELCOMEBOT_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "tenant-refresh-interval",
			Usage:       "Interval to re-sync installed workspaces from a shared repository (0 disables; ignored for memory backend)",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("WELCOMEBOT_TENANT_REFRESH_INTERVAL"),
			Destination: &refreshInterval,
		},
	}

	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, tutorialCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server receiving Slack events",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if err := slackCfg.Validate(); err != nil {
				return err
			}

			tmpl, err := tutorialCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load tutorial")
			}

			flush, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flush()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, "repository", repo)

			registry := tenant.New(repo.Workspace(), slackCfg.ClientFactory())

			if repoCfg.Backend() != "memory" && refreshInterval > 0 {
				refresher := worker.NewTenantRefreshWorker(registry, refreshInterval)
				if err := refresher.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start tenant refresh worker")
				}
				defer refresher.Stop()
			}

			uc := usecase.New(repo, registry,
				usecase.WithTutorialTemplate(tmpl),
				usecase.WithOAuth(slackCfg.OAuth()),
				usecase.WithVerificationToken(slackCfg.VerificationToken()),
			)

			if slackCfg.SigningSecret() != "" {
				logger.Info("Slack request signature verification enabled")
			}

			httpHandler := httpctrl.New(
				httpctrl.WithSlackEvents(httpctrl.NewSlackEventHandler(uc.Event), slackCfg.SigningSecret()),
				httpctrl.WithInstall(uc.Install),
			)
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server",
					"addr", addr,
					"slack", slackCfg,
					"repository", repoCfg,
					"tutorial", tutorialCfg,
					"sentry", sentryCfg,
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}
