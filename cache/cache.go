package cache

import (
	"errors"
	"fmt"

	"github.com/facebookgo/stackerr"

	"github.com/skipor/bbtrace/log"
)

// BlockID is an opaque comparable token identifying a basic block,
// usually the block entry address.
type BlockID uint64

func (id BlockID) String() string { return fmt.Sprintf("0x%x", uint64(id)) }

// Snapshot is a point-in-time copy of the observation counters.
// Total == Hits + Misses after every observe.
type Snapshot struct {
	Total  uint64
	Hits   uint64
	Misses uint64
}

// Add returns per-field sum of s and other. Summation is order independent,
// so per-thread snapshots can be aggregated in any order.
func (s Snapshot) Add(other Snapshot) Snapshot {
	return Snapshot{
		Total:  s.Total + other.Total,
		Hits:   s.Hits + other.Hits,
		Misses: s.Misses + other.Misses,
	}
}

// Observer consumes one event per dynamically executed basic block.
type Observer interface {
	Observe(id BlockID)
}

// Stats is the read side consumed by the reporter after all observes are done.
type Stats interface {
	Occupancy() int
	Counters() Snapshot
}

type Cache interface {
	Observer
	Stats
}

type Config struct {
	// Capacity is the maximum number of resident block ids. Must be positive.
	Capacity int
}

// ErrInvalidCapacity is returned by constructors on non-positive capacity.
// The surrounding system must refuse to start replay on it.
var ErrInvalidCapacity = errors.New("cache capacity must be a positive integer")

// New creates an unsynchronized FIFO block cache.
// The caller owns synchronization: wrap with NewLocked, or keep one cache
// per goroutine (see Partitioned).
func New(l log.Logger, conf Config) (Cache, error) {
	return newFIFO(l, conf)
}

func newFIFO(l log.Logger, conf Config) (*fifo, error) {
	if conf.Capacity < 1 {
		return nil, stackerr.Wrap(ErrInvalidCapacity)
	}
	f := &fifo{
		log:      l,
		capacity: conf.Capacity,
		table:    make(map[BlockID]*node, conf.Capacity),
	}
	f.queue.init()
	f.queue.onEvict = f.evict
	return f, nil
}

// fifo is the core simulator state: an id index paired with an insertion
// ordered queue, plus monotonic counters. Mutated only through Observe.
type fifo struct {
	log      log.Logger
	capacity int
	table    map[BlockID]*node
	queue    queue
	counters Snapshot
}

var _ Cache = (*fifo)(nil)

func (f *fifo) Observe(id BlockID) {
	defer f.checkInvariants()
	f.counters.Total++
	if _, ok := f.table[id]; ok {
		// Resident: count the hit, touch nothing. Eviction order is
		// insertion order, never recency of access.
		f.counters.Hits++
		return
	}
	f.counters.Misses++
	n := newNode(id)
	f.table[id] = n
	f.queue.push(n)
	if len(f.table) > f.capacity {
		f.queue.evictOldest()
	}
}

func (f *fifo) evict(n *node) {
	f.log.Debugf("Block %v evicted.", n.id)
	delete(f.table, n.id)
}

func (f *fifo) Occupancy() int { return len(f.table) }

func (f *fifo) Counters() Snapshot { return f.counters }
