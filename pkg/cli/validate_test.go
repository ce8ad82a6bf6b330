package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/welcomebot/pkg/cli"
)

var slackArgs = []string{
	"--slack-client-id", "cid",
	"--slack-client-secret", "csecret",
	"--slack-verification-token", "vtoken",
}

func TestRun_ValidateCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("built-in tutorial", func(t *testing.T) {
		args := append([]string{"welcomebot", "validate"}, slackArgs...)
		gt.NoError(t, cli.Run(ctx, args, "test"))
	})

	t.Run("tutorial file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tutorial.toml")
		content := `
welcome_text = "Hey there"

[[step]]
id = "reaction"
text = "React"

[[step]]
id = "pin"
text = "Pin"

[[step]]
id = "share"
text = "Share"
`
		gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()

		args := append([]string{"welcomebot", "validate", "--tutorial", path}, slackArgs...)
		gt.NoError(t, cli.Run(ctx, args, "test"))
	})

	t.Run("invalid tutorial file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tutorial.toml")
		gt.NoError(t, os.WriteFile(path, []byte(`welcome_text = "only"`), 0o600)).Required()

		args := append([]string{"welcomebot", "validate", "--tutorial", path}, slackArgs...)
		gt.Error(t, cli.Run(ctx, args, "test"))
	})

	t.Run("missing slack settings", func(t *testing.T) {
		t.Setenv("WELCOMEBOT_SLACK_CLIENT_ID", "")
		t.Setenv("WELCOMEBOT_SLACK_CLIENT_SECRET", "")
		t.Setenv("WELCOMEBOT_SLACK_VERIFICATION_TOKEN", "")
		gt.Error(t, cli.Run(ctx, []string{"welcomebot", "validate"}, "test"))
	})

	t.Run("memory repository check", func(t *testing.T) {
		args := append([]string{"welcomebot", "validate", "--check-repository", "--repository-backend", "memory"}, slackArgs...)
		gt.NoError(t, cli.Run(ctx, args, "test"))
	})
}

func TestRun_TutorialCommand(t *testing.T) {
	gt.NoError(t, cli.Run(context.Background(), []string{"welcomebot", "tutorial", "--completed", "pin"}, "test"))
	gt.Error(t, cli.Run(context.Background(), []string{"welcomebot", "tutorial", "--completed", "dance"}, "test"))
}
