package indicator

// Lag is a fixed-size ring of past intermediate values carried inside a
// state, for windows over values the caller never sees (raw %K feeding
// slow %K, for example).
type Lag[F Float] struct {
	Values []F `json:"values"`
	Pos    int `json:"pos"` // index of the oldest value
}

// newLag copies vals, oldest first.
func newLag[F Float](vals []F) Lag[F] {
	return Lag[F]{Values: append([]F(nil), vals...)}
}

// Oldest is the value the next Push evicts.
func (l Lag[F]) Oldest() F { return l.Values[l.Pos] }

// Len reports the ring size.
func (l Lag[F]) Len() int { return len(l.Values) }

// Push returns a copy of the ring with v replacing the oldest value.
// The receiver keeps its own backing array.
func (l Lag[F]) Push(v F) Lag[F] {
	vals := append([]F(nil), l.Values...)
	vals[l.Pos] = v
	return Lag[F]{Values: vals, Pos: (l.Pos + 1) % len(vals)}
}

// push overwrites in place; only batch loops that own the ring use it.
func (l *Lag[F]) push(v F) {
	l.Values[l.Pos] = v
	l.Pos = (l.Pos + 1) % len(l.Values)
}

// clone detaches a ring from a batch loop before it is handed out.
func (l Lag[F]) clone() Lag[F] {
	return Lag[F]{Values: append([]F(nil), l.Values...), Pos: l.Pos}
}

func checkWindow[F Float](fn string, w []F, want int) error {
	if len(w) != want {
		return errorf(ErrLengthMismatch, fn, "window has %d samples, want %d", len(w), want)
	}
	return nil
}
