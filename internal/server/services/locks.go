package services

import "sync"

// keyedLocks is a set of per-submission RW locks. Entries are reference
// counted and dropped when the last holder releases.
type keyedLocks struct {
	mu      sync.Mutex
	entries map[int64]*lockEntry
}

type lockEntry struct {
	rw   sync.RWMutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{entries: make(map[int64]*lockEntry)}
}

func (k *keyedLocks) acquire(id int64) *lockEntry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[id]
	if !ok {
		e = &lockEntry{}
		k.entries[id] = e
	}
	e.refs++
	return e
}

func (k *keyedLocks) release(id int64, e *lockEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, id)
	}
}

// Lock takes the exclusive side for id and returns its release func.
func (k *keyedLocks) Lock(id int64) func() {
	e := k.acquire(id)
	e.rw.Lock()
	return func() {
		e.rw.Unlock()
		k.release(id, e)
	}
}

// RLock takes the shared side for id and returns its release func.
func (k *keyedLocks) RLock(id int64) func() {
	e := k.acquire(id)
	e.rw.RLock()
	return func() {
		e.rw.RUnlock()
		k.release(id, e)
	}
}

func (k *keyedLocks) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
