package ringbuf

// Window keeps the last Cap samples of a series in a mirrored buffer so the
// newest n are always one contiguous slice. Incremental evaluators take
// their window arguments straight from Tail.
type Window[T any] struct {
	buf []T
	pos int
	n   int
}

// NewWindow returns an empty window holding up to size samples.
func NewWindow[T any](size int) *Window[T] {
	if size < 1 {
		size = 1
	}
	return &Window[T]{buf: make([]T, 2*size)}
}

// Push appends v, dropping the oldest sample once the window is full. It
// returns the dropped sample; ok is false while the window was filling.
func (w *Window[T]) Push(v T) (dropped T, ok bool) {
	size := len(w.buf) / 2
	if w.n == size {
		dropped, ok = w.buf[w.pos], true
	}
	w.buf[w.pos] = v
	w.buf[w.pos+size] = v
	w.pos++
	if w.pos == size {
		w.pos = 0
	}
	if w.n < size {
		w.n++
	}
	return dropped, ok
}

// Unpush reverts the newest Push, given what that Push returned.
func (w *Window[T]) Unpush(dropped T, ok bool) {
	size := len(w.buf) / 2
	if w.n == 0 {
		return
	}
	if w.pos == 0 {
		w.pos = size
	}
	w.pos--
	if ok {
		w.buf[w.pos] = dropped
		w.buf[w.pos+size] = dropped
		return
	}
	w.n--
}

// Tail returns the newest n samples, oldest first. The slice aliases the
// window and is valid until the next Push.
func (w *Window[T]) Tail(n int) []T {
	if n > w.n {
		panic("ringbuf: Tail beyond window length")
	}
	end := w.pos + len(w.buf)/2
	return w.buf[end-n : end]
}

// At returns the sample k positions back; At(0) is the newest.
func (w *Window[T]) At(k int) T {
	if k >= w.n {
		panic("ringbuf: At beyond window length")
	}
	return w.buf[w.pos+len(w.buf)/2-1-k]
}

// Len returns the number of samples held.
func (w *Window[T]) Len() int { return w.n }

// Cap returns the window size.
func (w *Window[T]) Cap() int { return len(w.buf) / 2 }

// Full reports whether Cap samples have been pushed.
func (w *Window[T]) Full() bool { return w.n == len(w.buf)/2 }

// Reset empties the window.
func (w *Window[T]) Reset() {
	w.pos, w.n = 0, 0
}
