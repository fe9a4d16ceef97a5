package ledger

import (
	"context"
	"sync"
)

// keyedMutex serializes work per string key. Acquisition respects context
// cancellation so a caller waiting on a busy position key can time out instead
// of blocking indefinitely. Different keys proceed fully in parallel.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	sem  chan struct{}
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for key, or returns ctx.Err() if the context is
// done first. Every successful Lock must be paired with an Unlock.
func (k *keyedMutex) Lock(ctx context.Context, key string) error {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		k.release(key, entry)
		return ctx.Err()
	}
}

// Unlock releases the mutex for key.
func (k *keyedMutex) Unlock(key string) {
	k.mu.Lock()
	entry := k.locks[key]
	k.mu.Unlock()

	<-entry.sem
	k.release(key, entry)
}

func (k *keyedMutex) release(key string, entry *lockEntry) {
	k.mu.Lock()
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
}
