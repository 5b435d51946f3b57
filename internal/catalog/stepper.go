package catalog

import (
	"encoding/json"

	"github.com/pkg/errors"

	"tacore/internal/model"
	"tacore/pkg/indicator"
	"tacore/pkg/ringbuf"
)

// Stepper continues an evaluation one bar at a time. Step returns one value
// per output. Snapshot and Restore move the state tuple and the input
// history it depends on through JSON.
type Stepper interface {
	Step(b model.Bar) ([]F, error)
	Snapshot() (json.RawMessage, error)
	Restore(data json.RawMessage) error
}

// inputs are the input columns of one evaluation.
type inputs struct {
	fields []model.Field
	cols   [][]F
}

// history keeps the newest samples of each input so incremental evaluators
// can read evicted values and windows.
type history struct {
	cols []*ringbuf.Window[F]

	// what the last push dropped, for undo
	dropped []F
	full    []bool
}

func newHistory(cols [][]F, size int) *history {
	h := &history{
		cols:    make([]*ringbuf.Window[F], len(cols)),
		dropped: make([]F, len(cols)),
		full:    make([]bool, len(cols)),
	}
	for i, col := range cols {
		w := ringbuf.NewWindow[F](size)
		start := len(col) - size
		if start < 0 {
			start = 0
		}
		for _, x := range col[start:] {
			w.Push(x)
		}
		h.cols[i] = w
	}
	return h
}

func (h *history) push(vals []F) {
	for i, w := range h.cols {
		h.dropped[i], h.full[i] = w.Push(vals[i])
	}
}

// undo reverts the last push.
func (h *history) undo() {
	for i, w := range h.cols {
		w.Unpush(h.dropped[i], h.full[i])
	}
}

func (h *history) ready() bool {
	for _, w := range h.cols {
		if !w.Full() {
			return false
		}
	}
	return true
}

// at returns input col k bars back.
func (h *history) at(col, k int) F { return h.cols[col].At(k) }

// tail returns the newest n samples of input col.
func (h *history) tail(col, n int) []F { return h.cols[col].Tail(n) }

func (h *history) dump() [][]F {
	out := make([][]F, len(h.cols))
	for i, w := range h.cols {
		out[i] = append([]F(nil), w.Tail(w.Len())...)
	}
	return out
}

type stepper[S any] struct {
	fields []model.Field
	size   int
	hist   *history
	st     S
	next   func(h *history, st S) ([]F, S, error)
	row    []F
}

// newStepper seeds a stepper with the batch's final state and the newest
// size samples of every input.
func newStepper[S any](in inputs, size int, st S, next func(h *history, st S) ([]F, S, error)) *stepper[S] {
	return &stepper[S]{
		fields: in.fields,
		size:   size,
		hist:   newHistory(in.cols, size),
		st:     st,
		next:   next,
		row:    make([]F, len(in.fields)),
	}
}

func (s *stepper[S]) Step(b model.Bar) ([]F, error) {
	for i, f := range s.fields {
		s.row[i] = f.Of(b)
	}
	s.hist.push(s.row)
	if !s.hist.ready() {
		return nil, errors.Wrapf(indicator.ErrInsufficientData, "history holds fewer than %d bars", s.size)
	}
	out, st, err := s.next(s.hist, s.st)
	if err != nil {
		s.hist.undo()
		return nil, err
	}
	s.st = st
	return out, nil
}

type snapshot[S any] struct {
	State   S     `json:"state"`
	History [][]F `json:"history"`
}

func (s *stepper[S]) Snapshot() (json.RawMessage, error) {
	return json.Marshal(snapshot[S]{State: s.st, History: s.hist.dump()})
}

func (s *stepper[S]) Restore(data json.RawMessage) error {
	var snap snapshot[S]
	if err := json.Unmarshal(data, &snap); err != nil {
		return errors.Wrap(err, "decode stepper snapshot")
	}
	if len(snap.History) != len(s.fields) {
		return errors.Wrapf(indicator.ErrLengthMismatch, "snapshot has %d inputs, want %d", len(snap.History), len(s.fields))
	}
	s.st = snap.State
	s.hist = newHistory(snap.History, s.size)
	return nil
}

// extremeStepper streams MAX or MIN through a monotonic deque instead of the
// core's rescanning state.
type extremeStepper struct {
	field model.Field
	mono  *ringbuf.Monotonic[F]
	hist  *ringbuf.Window[F]
	fresh func() *ringbuf.Monotonic[F]
}

func newExtremeStepper(in inputs, period int, fresh func() *ringbuf.Monotonic[F]) *extremeStepper {
	s := &extremeStepper{field: in.fields[0], fresh: fresh, hist: ringbuf.NewWindow[F](period)}
	col := in.cols[0]
	start := len(col) - period
	if start < 0 {
		start = 0
	}
	s.load(col[start:])
	return s
}

func (s *extremeStepper) load(xs []F) {
	s.mono = s.fresh()
	s.hist.Reset()
	for _, x := range xs {
		s.mono.Push(x)
		s.hist.Push(x)
	}
}

func (s *extremeStepper) Step(b model.Bar) ([]F, error) {
	x := s.field.Of(b)
	s.hist.Push(x)
	return []F{s.mono.Push(x)}, nil
}

func (s *extremeStepper) Snapshot() (json.RawMessage, error) {
	return json.Marshal(snapshot[struct{}]{History: [][]F{s.hist.Tail(s.hist.Len())}})
}

func (s *extremeStepper) Restore(data json.RawMessage) error {
	var snap snapshot[struct{}]
	if err := json.Unmarshal(data, &snap); err != nil {
		return errors.Wrap(err, "decode stepper snapshot")
	}
	if len(snap.History) != 1 {
		return errors.Wrapf(indicator.ErrLengthMismatch, "snapshot has %d inputs, want 1", len(snap.History))
	}
	s.load(snap.History[0])
	return nil
}

func one(v F) []F { return []F{v} }
