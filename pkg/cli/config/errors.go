package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrMissingSlackConfig = goerr.New("missing slack configuration")
	ErrInvalidBackend     = goerr.New("invalid repository backend")
	ErrInvalidTutorial    = goerr.New("invalid tutorial file")
)
