package cache

import (
	"sync"

	"github.com/facebookgo/stackerr"

	"github.com/skipor/bbtrace/log"
)

// Partitioned is the per-thread-partitioned discipline: one independent
// cache per thread id, so the observe path has no shared mutable state.
// Counters and occupancy are aggregated by summation at read time only,
// after the source guarantees no further observes.
//
// The shard returned by Shard must be used from one goroutine only.
type Partitioned struct {
	log  log.Logger
	conf Config

	// mu guards the shard table, not the observe path.
	mu     sync.Mutex
	shards map[int]*fifo
}

var _ Stats = (*Partitioned)(nil)

func NewPartitioned(l log.Logger, conf Config) (*Partitioned, error) {
	if conf.Capacity < 1 {
		return nil, stackerr.Wrap(ErrInvalidCapacity)
	}
	return &Partitioned{
		log:    l,
		conf:   conf,
		shards: make(map[int]*fifo),
	}, nil
}

// Shard returns the cache owned by thread tid, creating it on first use.
func (p *Partitioned) Shard(tid int) Cache {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.shards[tid]
	if !ok {
		// Config was validated at construction, shard creation cannot fail.
		s, _ = newFIFO(p.log.WithFields(log.Fields{"tid": tid}), p.conf)
		p.shards[tid] = s
	}
	return s
}

// Threads returns the number of distinct thread ids observed so far.
func (p *Partitioned) Threads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.shards)
}

func (p *Partitioned) Counters() (total Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.shards {
		total = total.Add(s.Counters())
	}
	return
}

func (p *Partitioned) Occupancy() (total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.shards {
		total += s.Occupancy()
	}
	return
}
