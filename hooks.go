package bbtrace

import (
	"sync"

	"github.com/skipor/bbtrace/trace"
)

// BlockHook runs once per dynamically executed basic block,
// in the order blocks execute.
type BlockHook func(ev trace.Event)

// ExitHook runs once, after the last block event has been delivered.
type ExitHook func()

// Broker is the subscription point between a block event source and its
// consumers. The core cache registers no discovery logic here; it only
// consumes events, so any source that can produce trace.Events can drive it.
type Broker struct {
	mu         sync.RWMutex
	finished   bool
	blockHooks []BlockHook
	exitHooks  []ExitHook
}

func NewBroker() *Broker {
	return &Broker{}
}

// RegisterBlock subscribes h to block events.
// Registration after EmitExit is not allowed.
func (b *Broker) RegisterBlock(h BlockHook) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.assertNotFinished()
	b.blockHooks = append(b.blockHooks, h)
}

// RegisterExit subscribes h to the exit notification.
func (b *Broker) RegisterExit(h ExitHook) {
	if h == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.assertNotFinished()
	b.exitHooks = append(b.exitHooks, h)
}

// EmitBlock delivers ev to every block hook in registration order.
// The hook slice snapshot is safe to iterate unlocked: hooks are append
// only and elements are never rewritten in place.
func (b *Broker) EmitBlock(ev trace.Event) {
	b.mu.RLock()
	finished := b.finished
	hooks := b.blockHooks
	b.mu.RUnlock()
	if finished {
		panic("bbtrace: event after exit notification")
	}
	for _, h := range hooks {
		h(ev)
	}
}

// EmitExit fires exit hooks in registration order and finishes the broker:
// any block event after that is a defect of the caller and panics.
// EmitExit itself may be called only once.
func (b *Broker) EmitExit() {
	b.mu.Lock()
	b.assertNotFinished()
	b.finished = true
	hooks := b.exitHooks
	b.mu.Unlock()
	for _, h := range hooks {
		h()
	}
}

func (b *Broker) assertNotFinished() {
	if b.finished {
		panic("bbtrace: event after exit notification")
	}
}
