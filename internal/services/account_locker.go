package services

import (
	"sync"

	"github.com/google/uuid"
)

// accountLocker serializes balance mutations per account within the process.
// Database row locks protect against other processes; this keeps concurrent
// goroutines from interleaving a read-modify-write on backends that do not
// honor FOR UPDATE (sqlite in tests).
//
// Locks are acquired and released sequentially, never nested: the caller
// finishes with one account before touching the next, so there is no lock
// ordering to get wrong.
type accountLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newAccountLocker() *accountLocker {
	return &accountLocker{
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Lock acquires the exclusive lock for the given account
func (l *accountLocker) Lock(accountID uuid.UUID) {
	l.mu.Lock()
	lock, ok := l.locks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[accountID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
}

// Unlock releases the exclusive lock for the given account
func (l *accountLocker) Unlock(accountID uuid.UUID) {
	l.mu.Lock()
	lock, ok := l.locks[accountID]
	l.mu.Unlock()

	if ok {
		lock.Unlock()
	}
}
