package cache

import (
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/skipor/bbtrace/internal/util"
)

var _ = Describe("Partitioned", func() {
	const capacity = 4
	var p *Partitioned
	BeforeEach(func() {
		resetTestIDs()
		var err error
		p, err = NewPartitioned(testLogger(), Config{Capacity: capacity})
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects invalid capacity", func() {
		_, err := NewPartitioned(testLogger(), Config{})
		Expect(util.Unwrap(err)).To(BeIdenticalTo(ErrInvalidCapacity))
	})

	It("returns the same shard for the same thread", func() {
		Expect(p.Shard(1)).To(BeIdenticalTo(p.Shard(1)))
		Expect(p.Shard(1)).NotTo(BeIdenticalTo(p.Shard(2)))
		Expect(p.Threads()).To(Equal(2))
	})

	It("isolates hits between threads", func() {
		a := testID()
		p.Shard(1).Observe(a)
		p.Shard(2).Observe(a)
		// Same block in two threads: both see their own miss.
		Expect(p.Counters()).To(Equal(Snapshot{Total: 2, Misses: 2}))
		Expect(p.Occupancy()).To(Equal(2))
	})

	It("aggregates counters by summation", func() {
		a, b := testID(), testID()
		s1, s2 := p.Shard(1), p.Shard(2)
		s1.Observe(a)
		s1.Observe(a)
		s2.Observe(b)
		Expect(p.Counters()).To(Equal(Snapshot{Total: 3, Hits: 1, Misses: 2}))
		Expect(s1.Counters()).To(Equal(Snapshot{Total: 2, Hits: 1, Misses: 1}))
		Expect(s2.Counters()).To(Equal(Snapshot{Total: 1, Misses: 1}))
	})

	It("aggregates concurrent per-thread observes without shared state", func() {
		const (
			threads = 4
			perT    = 5000
		)
		var wg sync.WaitGroup
		for t := 0; t < threads; t++ {
			s := p.Shard(t)
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer GinkgoRecover()
				for i := 0; i < perT; i++ {
					s.Observe(BlockID(i % (2 * capacity)))
				}
			}()
		}
		wg.Wait()
		c := p.Counters()
		Expect(c.Total).To(BeEquivalentTo(threads * perT))
		Expect(c.Hits + c.Misses).To(Equal(c.Total))
		Expect(p.Occupancy()).To(BeNumerically("<=", threads*capacity))
	})
})
