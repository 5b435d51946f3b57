// Package ringbuf holds the caller-side buffers that sit around the indicator
// core: a lock-free SPSC queue for handing bars between goroutines, a sliding
// history window that supplies evicted samples, and a monotonic extremum
// tracker for streaming MAX/MIN.
package ringbuf

import (
	"math/bits"
	"sync/atomic"
)

const cacheLine = 64

// Ring is a bounded queue for exactly one producer and one consumer. head
// and tail only grow; a slot index is the counter masked by the capacity.
type Ring[T any] struct {
	slots []T
	mask  uint64

	_        [cacheLine]byte
	head     atomic.Uint64 // producer
	_        [cacheLine]byte
	tail     atomic.Uint64 // consumer
	_        [cacheLine]byte
	rejected atomic.Uint64
}

// NewRing returns a ring holding at least capacity values, at least 2.
func NewRing[T any](capacity int) *Ring[T] {
	n := ceilPow2(max(capacity, 2))
	return &Ring[T]{slots: make([]T, n), mask: uint64(n - 1)}
}

// Push queues v, or counts a rejection and returns false when full.
func (r *Ring[T]) Push(v T) bool {
	h := r.head.Load()
	if h-r.tail.Load() == uint64(len(r.slots)) {
		r.rejected.Add(1)
		return false
	}
	r.slots[h&r.mask] = v
	r.head.Store(h + 1)
	return true
}

// Pop takes the oldest value.
func (r *Ring[T]) Pop() (T, bool) {
	t := r.tail.Load()
	if t == r.head.Load() {
		var zero T
		return zero, false
	}
	v := r.slots[t&r.mask]
	r.tail.Store(t + 1)
	return v, true
}

// Drain appends everything queued, up to cap(dst)-len(dst) values, to dst
// and releases those slots with a single store.
func (r *Ring[T]) Drain(dst []T) []T {
	t := r.tail.Load()
	n := r.head.Load() - t
	if room := uint64(cap(dst) - len(dst)); n > room {
		n = room
	}
	for i := uint64(0); i < n; i++ {
		dst = append(dst, r.slots[(t+i)&r.mask])
	}
	r.tail.Store(t + n)
	return dst
}

// Len returns the number of queued values.
func (r *Ring[T]) Len() int { return int(r.head.Load() - r.tail.Load()) }

// Cap returns the capacity.
func (r *Ring[T]) Cap() int { return len(r.slots) }

// Overflow returns how many pushes were rejected.
func (r *Ring[T]) Overflow() uint64 { return r.rejected.Load() }

// ceilPow2 rounds n > 0 up to a power of two.
func ceilPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
