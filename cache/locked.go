package cache

import "sync"

// Locked is the exclusive-access discipline: a single mutex guards the whole
// observe (scan, insert, evict, counter updates) as one atomic unit.
// Simple and correct, but serializes block events of all threads.
type Locked struct {
	mu sync.Mutex
	c  Cache
}

var _ Cache = (*Locked)(nil)

func NewLocked(c Cache) *Locked {
	return &Locked{c: c}
}

func (l *Locked) Observe(id BlockID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.c.Observe(id)
}

func (l *Locked) Occupancy() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Occupancy()
}

func (l *Locked) Counters() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.c.Counters()
}
