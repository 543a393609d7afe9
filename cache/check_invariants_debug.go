//go:build debug
// +build debug

// Gomega should not be dependency in non-debug build.

package cache

import (
	"errors"
	"log"

	"github.com/facebookgo/stackerr"
	. "github.com/onsi/gomega"
)

var _ = func() (_ struct{}) {
	RegisterFailHandler(GomegaFailHandler)
	return
}()

func GomegaFailHandler(message string, callerSkip ...int) {
	skip := callerSkip[0] + 1
	log.Fatal("FATAL: invariants are broken:", stackerr.WrapSkip(errors.New(message), skip))
}

func (q *queue) checkInvariants() {
	Expect(q.fakeOldest.prev).To(BeNil())
	Expect(q.fakeNewest.next).To(BeNil())
	var actualLen int
	for n := q.oldest(); !q.end(n); n = n.next {
		actualLen++
		Expect(n.prev.next).To(BeIdenticalTo(n))
	}
	Expect(q.newest().next).To(BeIdenticalTo(q.fakeNewest))
	Expect(actualLen).To(Equal(q.len))
}

func (f *fifo) checkInvariants() {
	f.queue.checkInvariants()
	var residents int
	for n := f.queue.oldest(); !f.queue.end(n); n = n.next {
		residents++
		tn, ok := f.table[n.id]
		Expect(ok).To(BeTrue(), "no table ref to queued block %v", n.id)
		Expect(tn).To(BeIdenticalTo(n), "table refs to another node")
	}
	ExpectWithOffset(1, residents).To(Equal(len(f.table)), "table and queue disagree")
	ExpectWithOffset(1, residents).To(BeNumerically("<=", f.capacity), "capacity overflow")
	c := f.counters
	ExpectWithOffset(1, c.Hits+c.Misses).To(Equal(c.Total), "counters not conserved")
}
