package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/welcomebot/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Tutorial selects the tutorial template. Without a file the built-in
// template is used.
type Tutorial struct {
	path string
}

func (x *Tutorial) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "tutorial",
			Aliases:     []string{"t"},
			Usage:       "Path to a TOML file overriding the tutorial message",
			Category:    "Tutorial",
			Destination: &x.path,
			Sources:     cli.EnvVars("WELCOMEBOT_TUTORIAL"),
		},
	}
}

func (x Tutorial) LogValue() slog.Value {
	if x.path == "" {
		return slog.StringValue("(built-in)")
	}
	return slog.StringValue(x.path)
}

// Configure returns the configured template
func (x *Tutorial) Configure() (*model.TutorialTemplate, error) {
	if x.path == "" {
		return model.DefaultTutorialTemplate(), nil
	}
	return LoadTutorial(x.path)
}

// LoadTutorial loads a tutorial template from a TOML file. Step colors left
// empty fall back to the defaults.
func LoadTutorial(path string) (*model.TutorialTemplate, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read tutorial file", goerr.V("path", path))
	}

	var tmpl model.TutorialTemplate
	if err := toml.Unmarshal(data, &tmpl); err != nil {
		return nil, goerr.Wrap(ErrInvalidTutorial, "failed to parse TOML tutorial",
			goerr.V("path", path),
			goerr.V("error", err.Error()),
		)
	}

	for i := range tmpl.Steps {
		if tmpl.Steps[i].Color == "" {
			tmpl.Steps[i].Color = model.DefaultPendingColor
		}
		if tmpl.Steps[i].CompletedColor == "" {
			tmpl.Steps[i].CompletedColor = model.DefaultCompletedColor
		}
	}

	if err := tmpl.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidTutorial, "tutorial validation failed",
			goerr.V("path", path),
			goerr.V("error", err.Error()),
		)
	}

	return &tmpl, nil
}
