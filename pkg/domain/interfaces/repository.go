package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Workspace() WorkspaceRepository
	UserState() UserStateRepository

	Close() error
}
