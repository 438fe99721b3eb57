package service

import (
	"sync"

	"github.com/google/uuid"
)

// loanLocks serialises mutations per loan id. Entries are reference counted and
// dropped once the last holder releases them.
type loanLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*loanLock
}

type loanLock struct {
	mu   sync.Mutex
	refs int
}

func newLoanLocks() *loanLocks {
	return &loanLocks{locks: make(map[uuid.UUID]*loanLock)}
}

// Lock blocks until the loan is free and returns the matching unlock func
func (l *loanLocks) Lock(loanID uuid.UUID) func() {
	l.mu.Lock()
	lock, ok := l.locks[loanID]
	if !ok {
		lock = &loanLock{}
		l.locks[loanID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, loanID)
		}
		l.mu.Unlock()
	}
}

// size returns the number of loans with a holder or waiter
func (l *loanLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
