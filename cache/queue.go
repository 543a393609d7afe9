package cache

import (
	"fmt"

	"github.com/skipor/bbtrace/internal/tag"
)

// Pre and post conditions (Invariants) for push and evictOldest methods:
// * queue owns nodes between fakeOldest and fakeNewest.
// * {fakeOldest, all owned nodes, fakeNewest} are correct doubly linked list.
// * queue.len equals number of owned nodes.
// * onEvict is called exactly once for every node leaving the queue.
type queue struct {
	len int
	// onEvict is called on the node detached by evictOldest.
	onEvict func(*node)

	// Fake nodes. Real nodes are between them.
	// nil <- fakeOldest <-> node_0 <-> ... <-> node_(n-1) <-> fakeNewest -> nil
	// Such structure prevent nil checks in code.

	// fakeOldest.next is the entry inserted longest ago, next to evict.
	fakeOldest *node

	// fakeNewest.prev is the most recently inserted entry.
	fakeNewest *node
}

// For debug output.
const (
	fakeOldestID = BlockID(0xdead0)
	fakeNewestID = BlockID(0xdeadf)
)

func (q *queue) init() {
	q.fakeOldest, q.fakeNewest = &node{id: fakeOldestID}, &node{id: fakeNewestID}
	link(q.fakeOldest, q.fakeNewest)
}

// push attaches n at the newest end.
func (q *queue) push(n *node) {
	link(q.newest(), n)
	link(n, q.fakeNewest)
	q.len++
}

// evictOldest detaches the oldest-inserted node and passes it to onEvict.
// It frees exactly one slot; caller decides when capacity requires that.
func (q *queue) evictOldest() {
	n := q.oldest()
	q.assertNotEnd(n)
	n.detach()
	q.len--
	q.onEvict(n)
}

func (q *queue) oldest() *node    { return q.fakeOldest.next }
func (q *queue) newest() *node    { return q.fakeNewest.prev }
func (q *queue) end(n *node) bool { return n == q.fakeNewest }
func (q *queue) empty() bool      { return q.len == 0 }

type node struct {
	id   BlockID
	prev *node
	next *node
}

func newNode(id BlockID) *node { return &node{id: id} }

func (n *node) detach() {
	link(n.prev, n.next)
	if tag.Debug {
		n.prev = nil
		n.next = nil
	}
}

func (q *queue) assertNotEnd(n *node) {
	if n == q.fakeNewest {
		panic(fmt.Sprintf("evict from empty queue: node %v out of range", n.id))
	}
}

func link(a, b *node) { a.next, b.prev = b, a }
