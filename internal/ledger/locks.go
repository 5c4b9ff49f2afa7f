package ledger

import "sync"

// userLocks serializes financial mutations per user without a global lock.
// Trades for different users proceed in parallel; trades for the same user
// queue on that user's mutex.
type userLocks struct {
	mu    sync.RWMutex
	locks map[int64]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*sync.Mutex)}
}

func (ul *userLocks) Lock(userID int64) {
	ul.mu.Lock()
	m, ok := ul.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		ul.locks[userID] = m
	}
	ul.mu.Unlock()

	m.Lock()
}

func (ul *userLocks) Unlock(userID int64) {
	ul.mu.RLock()
	m := ul.locks[userID]
	ul.mu.RUnlock()

	if m != nil {
		m.Unlock()
	}
}
