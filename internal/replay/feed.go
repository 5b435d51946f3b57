package replay

import (
	"context"
	"runtime"

	"go.uber.org/zap"

	"tacore/internal/model"
	"tacore/pkg/ringbuf"
)

// Tick is one bar addressed to a series.
type Tick struct {
	ID  SeriesID
	Bar model.Bar
}

// Feed hands bars from one producer goroutine to the engine goroutine
// through a lock-free ring. The engine itself stays single-goroutine.
type Feed struct {
	ring *ringbuf.Ring[Tick]
	e    *Engine
	done chan struct{}
}

// NewFeed creates a feed for e with room for capacity queued bars.
func NewFeed(e *Engine, capacity int) *Feed {
	return &Feed{
		ring: ringbuf.NewRing[Tick](capacity),
		e:    e,
		done: make(chan struct{}),
	}
}

// Offer queues t. Returns false and counts an overflow if the ring is full.
// Must be called from a single producer goroutine.
func (f *Feed) Offer(t Tick) bool {
	if f.ring.Push(t) {
		return true
	}
	if f.e.metrics != nil {
		f.e.metrics.RingOverflow.Inc()
	}
	return false
}

// Close tells Run to drain what is queued and return.
func (f *Feed) Close() { close(f.done) }

// drainBatch caps how many bars Run takes off the ring per pass.
const drainBatch = 256

// Run processes queued bars until ctx is cancelled, or until Close is
// called and the ring is empty. onResults receives each bar's results.
func (f *Feed) Run(ctx context.Context, onResults func([]model.IndicatorResult)) {
	batch := make([]Tick, 0, drainBatch)
	for {
		batch = f.ring.Drain(batch[:0])
		if len(batch) == 0 {
			select {
			case <-ctx.Done():
				return
			case <-f.done:
				if f.ring.Len() == 0 {
					return
				}
			default:
				runtime.Gosched()
			}
			continue
		}
		for _, t := range batch {
			results, err := f.e.Process(t.ID, t.Bar)
			if err != nil {
				zap.L().Error("process bar", zap.Stringer("series", t.ID), zap.Error(err))
				continue
			}
			if onResults != nil && len(results) > 0 {
				onResults(results)
			}
		}
	}
}

// Overflow returns the number of bars dropped because the ring was full.
func (f *Feed) Overflow() uint64 { return f.ring.Overflow() }
