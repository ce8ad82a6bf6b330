package memory

import (
	"github.com/secmon-lab/welcomebot/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	workspace *workspaceRepository
	userState *userStateRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		workspace: newWorkspaceRepository(),
		userState: newUserStateRepository(),
	}
}

func (m *Memory) Workspace() interfaces.WorkspaceRepository {
	return m.workspace
}

func (m *Memory) UserState() interfaces.UserStateRepository {
	return m.userState
}

func (m *Memory) Close() error {
	return nil
}
