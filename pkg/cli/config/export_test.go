package config

import (
	"io"
	"log/slog"
)

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(clientID, clientSecret, verificationToken, signingSecret string) *Slack {
	return &Slack{
		clientID:          clientID,
		clientSecret:      clientSecret,
		verificationToken: verificationToken,
		signingSecret:     signingSecret,
	}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend string) *Repository {
	return &Repository{backend: backend}
}

// NewTutorialForTest creates a Tutorial config for testing purposes
func NewTutorialForTest(path string) *Tutorial {
	return &Tutorial{path: path}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewLogHandler is exported for testing
func NewLogHandler(w io.Writer, format string, level slog.Level) (slog.Handler, error) {
	return newLogHandler(w, format, level)
}
