package usecase

import (
	"github.com/secmon-lab/welcomebot/pkg/domain/interfaces"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	slacksvc "github.com/secmon-lab/welcomebot/pkg/service/slack"
	"github.com/secmon-lab/welcomebot/pkg/service/tenant"
)

type UseCases struct {
	repo              interfaces.Repository
	registry          *tenant.Registry
	template          *model.TutorialTemplate
	oauth             slacksvc.OAuth
	verificationToken string

	Event    *EventUseCase
	Tutorial *TutorialUseCase
	Install  *InstallUseCase
}

type Option func(*UseCases)

// WithTutorialTemplate replaces the built-in tutorial
func WithTutorialTemplate(tmpl *model.TutorialTemplate) Option {
	return func(uc *UseCases) {
		uc.template = tmpl
	}
}

// WithOAuth enables the app install flow
func WithOAuth(oauth slacksvc.OAuth) Option {
	return func(uc *UseCases) {
		uc.oauth = oauth
	}
}

// WithVerificationToken sets the token every Events API payload must carry.
// Without it every event payload is rejected.
func WithVerificationToken(token string) Option {
	return func(uc *UseCases) {
		uc.verificationToken = token
	}
}

func New(repo interfaces.Repository, registry *tenant.Registry, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		registry: registry,
		template: model.DefaultTutorialTemplate(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Tutorial = NewTutorialUseCase(repo.UserState(), registry, uc.template)
	uc.Event = NewEventUseCase(uc.verificationToken, uc.Tutorial)
	uc.Install = NewInstallUseCase(uc.oauth, registry)

	return uc
}
