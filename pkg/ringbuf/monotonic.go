package ringbuf

import (
	"github.com/gammazero/deque"
	"golang.org/x/exp/constraints"
)

type entry[T any] struct {
	seq uint64
	v   T
}

// Monotonic tracks the extremum of the last size samples with a monotonic
// deque: amortized O(1) per sample and never stale. Among equal values the
// newest one is kept, so Age matches the core's tie rule.
type Monotonic[T constraints.Ordered] struct {
	dq     *deque.Deque[entry[T]]
	size   uint64
	seq    uint64
	better func(a, b T) bool
}

// NewMax tracks the sliding maximum.
func NewMax[T constraints.Ordered](size int) *Monotonic[T] {
	return newMonotonic(size, func(a, b T) bool { return a >= b })
}

// NewMin tracks the sliding minimum.
func NewMin[T constraints.Ordered](size int) *Monotonic[T] {
	return newMonotonic(size, func(a, b T) bool { return a <= b })
}

func newMonotonic[T constraints.Ordered](size int, better func(a, b T) bool) *Monotonic[T] {
	if size < 1 {
		size = 1
	}
	return &Monotonic[T]{dq: deque.New[entry[T]](), size: uint64(size), better: better}
}

// Push adds v and returns the extremum of the window ending at v.
func (m *Monotonic[T]) Push(v T) T {
	for m.dq.Len() > 0 && m.better(v, m.dq.Back().v) {
		m.dq.PopBack()
	}
	m.dq.PushBack(entry[T]{seq: m.seq, v: v})
	for m.seq-m.dq.Front().seq >= m.size {
		m.dq.PopFront()
	}
	m.seq++
	return m.dq.Front().v
}

// Value returns the current extremum. It panics before the first Push.
func (m *Monotonic[T]) Value() T { return m.dq.Front().v }

// Age returns how many samples ago the current extremum was pushed.
func (m *Monotonic[T]) Age() int { return int(m.seq - 1 - m.dq.Front().seq) }

// Len returns the number of candidates held, at most size.
func (m *Monotonic[T]) Len() int { return m.dq.Len() }

// Reset forgets every sample.
func (m *Monotonic[T]) Reset() {
	m.dq.Clear()
	m.seq = 0
}
