package sync

import (
	"errors"
	"sync"
)

// ErrSyncInProgress is returned when a sync is already running for the user.
var ErrSyncInProgress = errors.New("a sync is already running for this user")

// userLocks is an in-process advisory lock keyed by user id. It guards
// against overlapping sync runs for the same user, which could otherwise
// race on duplicate inserts.
type userLocks struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newUserLocks() *userLocks {
	return &userLocks{active: make(map[string]struct{})}
}

// tryAcquire claims the lock for userID. Returns false if already held.
func (l *userLocks) tryAcquire(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.active[userID]; held {
		return false
	}
	l.active[userID] = struct{}{}
	return true
}

func (l *userLocks) release(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.active, userID)
}
