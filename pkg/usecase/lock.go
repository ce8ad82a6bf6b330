package usecase

import (
	"sync"

	"github.com/secmon-lab/welcomebot/pkg/domain/types"
)

type userKey struct {
	workspaceID types.WorkspaceID
	userID      types.UserID
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// userLocks serializes work per (workspace, user). Entries are dropped once
// no goroutine holds or waits on them.
type userLocks struct {
	mu    sync.Mutex
	locks map[userKey]*userLock
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[userKey]*userLock)}
}

func (x *userLocks) lock(wsID types.WorkspaceID, userID types.UserID) func() {
	key := userKey{workspaceID: wsID, userID: userID}

	x.mu.Lock()
	l, ok := x.locks[key]
	if !ok {
		l = &userLock{}
		x.locks[key] = l
	}
	l.refs++
	x.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		x.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(x.locks, key)
		}
		x.mu.Unlock()
	}
}

func (x *userLocks) size() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.locks)
}
