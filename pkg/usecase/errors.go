package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	// Authentication errors
	ErrInvalidVerificationToken = goerr.New("invalid verification token")

	// Install errors
	ErrInstallNotConfigured = goerr.New("slack app install is not configured")
	ErrInstallFailed        = goerr.New("slack app install failed")
)
