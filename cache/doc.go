// Package cache provides the bounded basic-block cache of the trace simulator.
// It approximates code-reuse locality of an instrumented program:
// every dynamically executed basic block is observed once, and the cache
// keeps the last N distinct block ids seen.
//
// The replacement policy is FIFO, not LRU: a hit does not promote the entry,
// so residents age out purely by insertion order. This is a deliberate
// low-fidelity locality approximation; hits only suppress reinsertion.
//
// Membership is tested through an id index paired with the eviction queue,
// so observe cost does not grow with capacity while eviction order and
// hit semantics stay exactly as a linear scan would give.
package cache
