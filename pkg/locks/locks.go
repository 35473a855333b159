package locks

import "sync"

// KeyLocks is a set of non-blocking per-key locks. A key is held while it is
// present in the map.
type KeyLocks struct {
	held sync.Map
}

// TryAcquire takes the lock for key without waiting. The returned release
// func is idempotent; wrap it in a defer so a panic still frees the key.
func (l *KeyLocks) TryAcquire(key string) (release func(), ok bool) {
	if _, loaded := l.held.LoadOrStore(key, struct{}{}); loaded {
		return nil, false
	}
	var once sync.Once
	return func() { once.Do(func() { l.held.Delete(key) }) }, true
}

// Held reports whether key is currently locked.
func (l *KeyLocks) Held(key string) bool {
	_, ok := l.held.Load(key)
	return ok
}
