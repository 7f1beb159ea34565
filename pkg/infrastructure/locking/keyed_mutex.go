package locking

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// KeyedMutex serializes work per string key. Reservation mutation and quantity
// recalculation for one item id must never interleave with themselves; work on
// different item ids proceeds in parallel. Entries are reference-counted so
// the key map does not grow with the catalog.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewKeyedMutex creates an empty KeyedMutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*entry)}
}

func (km *KeyedMutex) acquire(key string) *entry {
	km.mu.Lock()
	defer km.mu.Unlock()
	e, ok := km.entries[key]
	if !ok {
		e = &entry{}
		km.entries[key] = e
	}
	e.refs++
	return e
}

func (km *KeyedMutex) release(key string) {
	km.mu.Lock()
	defer km.mu.Unlock()
	e, ok := km.entries[key]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(km.entries, key)
	}
}

// Lock blocks until the key is held.
func (km *KeyedMutex) Lock(key string) {
	e := km.acquire(key)
	e.mu.Lock()
}

// TryLock acquires the key without blocking and reports whether it succeeded.
// Used as the per-item in-flight guard for recalculation.
func (km *KeyedMutex) TryLock(key string) bool {
	e := km.acquire(key)
	if !e.mu.TryLock() {
		km.release(key)
		return false
	}
	return true
}

// Unlock releases the key. Calling Unlock for a key that is not held is a
// programming error, same as with sync.Mutex.
func (km *KeyedMutex) Unlock(key string) {
	km.mu.Lock()
	e, ok := km.entries[key]
	km.mu.Unlock()
	if !ok {
		panic("locking: unlock of unheld key " + key)
	}
	e.mu.Unlock()
	km.release(key)
}
