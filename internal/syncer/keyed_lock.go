package syncer

import (
	"sync"

	"github.com/gofrs/uuid"
)

// keyedLock serializes mutations per task id so a failed mutation's
// rollback can never stomp a later optimistic apply on the same entity.
// Entries are refcounted and dropped once no mutation holds them.
type keyedLock struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLock() *keyedLock {
	return &keyedLock{locks: make(map[uuid.UUID]*lockEntry)}
}

func (k *keyedLock) lock(id uuid.UUID) {
	k.mu.Lock()
	e, ok := k.locks[id]
	if !ok {
		e = &lockEntry{}
		k.locks[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

func (k *keyedLock) unlock(id uuid.UUID) {
	k.mu.Lock()
	e := k.locks[id]
	e.refs--
	if e.refs == 0 {
		delete(k.locks, id)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
