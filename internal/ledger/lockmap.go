package ledger

import "sync"

type holderLock struct {
	holders int
	mu      sync.Mutex
}

// lockmap hands out one mutex per key and frees it once the last holder
// leaves.
type lockmap struct {
	l sync.Mutex
	m map[string]*holderLock
}

func newLockmap(initSize int) *lockmap {
	return &lockmap{m: make(map[string]*holderLock, initSize)}
}

func (l *lockmap) Lock(key string) {
	l.l.Lock()
	hl, ok := l.m[key]
	if !ok {
		hl = &holderLock{}
		l.m[key] = hl
	}
	hl.holders++
	l.l.Unlock()

	hl.mu.Lock()
}

func (l *lockmap) Unlock(key string) {
	l.l.Lock()
	hl, ok := l.m[key]
	if !ok {
		l.l.Unlock()
		panic("lockmap: unlock of unlocked key " + key)
	}
	hl.holders--
	if hl.holders == 0 {
		delete(l.m, key)
	}
	l.l.Unlock()

	hl.mu.Unlock()
}

// Locks is the number of keys currently held or waited on.
func (l *lockmap) Locks() int {
	l.l.Lock()
	defer l.l.Unlock()

	return len(l.m)
}
