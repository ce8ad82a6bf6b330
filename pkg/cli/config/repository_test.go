package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/welcomebot/pkg/cli/config"
)

func TestRepositoryConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest("memory").Configure(ctx)
		gt.NoError(t, err).Required()
		gt.Value(t, repo.Workspace()).NotNil()
		gt.NoError(t, repo.Close())
	})

	t.Run("firestore without project", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("firestore").Configure(ctx)
		gt.Error(t, err)
	})

	t.Run("redis without address", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("redis").Configure(ctx)
		gt.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("sqlite").Configure(ctx)
		gt.Bool(t, errors.Is(err, config.ErrInvalidBackend)).True()
	})
}
