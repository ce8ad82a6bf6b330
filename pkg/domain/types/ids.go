package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// WorkspaceID is the Slack team ID issued when the bot is installed
type WorkspaceID string

// Validate checks if the WorkspaceID is valid
func (x WorkspaceID) Validate() error {
	if x == "" {
		return goerr.New("workspace ID cannot be empty")
	}
	return nil
}

// String returns the string representation of WorkspaceID
func (x WorkspaceID) String() string {
	return string(x)
}

// UserID is a Slack user ID, unique within a workspace
type UserID string

// Validate checks if the UserID is valid
func (x UserID) Validate() error {
	if x == "" {
		return goerr.New("user ID cannot be empty")
	}
	return nil
}

// String returns the string representation of UserID
func (x UserID) String() string {
	return string(x)
}
