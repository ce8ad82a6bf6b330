package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	slacksvc "github.com/secmon-lab/welcomebot/pkg/service/slack"
	"github.com/secmon-lab/welcomebot/pkg/service/tenant"
)

// InstallUseCase runs the OAuth install of the app into a workspace
type InstallUseCase struct {
	oauth    slacksvc.OAuth
	registry *tenant.Registry
}

// NewInstallUseCase creates a new InstallUseCase. oauth may be nil, in which
// case installs are refused.
func NewInstallUseCase(oauth slacksvc.OAuth, registry *tenant.Registry) *InstallUseCase {
	return &InstallUseCase{
		oauth:    oauth,
		registry: registry,
	}
}

// Enabled reports whether the install flow is configured
func (uc *InstallUseCase) Enabled() bool {
	return uc.oauth != nil
}

// AuthorizeURL returns the Slack consent page for the given state nonce
func (uc *InstallUseCase) AuthorizeURL(state string) (string, error) {
	if uc.oauth == nil {
		return "", goerr.Wrap(ErrInstallNotConfigured, "cannot build authorize URL")
	}
	return uc.oauth.AuthorizeURL(state), nil
}

// Complete exchanges the authorization code and registers the workspace
func (uc *InstallUseCase) Complete(ctx context.Context, code string) (*model.Workspace, error) {
	if uc.oauth == nil {
		return nil, goerr.Wrap(ErrInstallNotConfigured, "cannot complete install")
	}

	ws, err := uc.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, goerr.Wrap(ErrInstallFailed, "failed to exchange authorization code", goerr.V("error", err.Error()))
	}

	if err := uc.registry.Install(ctx, ws); err != nil {
		return nil, goerr.Wrap(ErrInstallFailed, "failed to register workspace",
			goerr.V("workspace_id", ws.ID),
			goerr.V("error", err.Error()),
		)
	}

	return ws, nil
}

// Workspaces lists installed workspaces
func (uc *InstallUseCase) Workspaces(ctx context.Context) ([]*model.Workspace, error) {
	return uc.registry.Workspaces(ctx)
}
