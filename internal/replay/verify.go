package replay

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"tacore/internal/model"
)

// ErrMismatch marks a position where stepping and batch disagree.
var ErrMismatch = errors.New("incremental result differs from batch")

// Mismatch is one disagreeing position.
type Mismatch struct {
	Indicator string
	Output    string
	Index     int
	Batch     float64
	Step      float64
}

func (m Mismatch) Error() string {
	return fmt.Sprintf("%s.%s[%d]: batch %g, step %g: %v", m.Indicator, m.Output, m.Index, m.Batch, m.Step, ErrMismatch)
}

func (m Mismatch) Unwrap() error { return ErrMismatch }

// Report summarizes a verification run.
type Report struct {
	Bars       int        // bars stepped
	Checked    int        // values compared
	Mismatches []Mismatch // in stepping order
}

// OK reports whether every compared value agreed.
func (r *Report) OK() bool { return len(r.Mismatches) == 0 }

// Close reports whether a and b agree within the relative tolerance tol.
// Two NaNs agree.
func Close(a, b, tol float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= tol*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// Verify evaluates every configured indicator over s in batch, warms a
// fresh instrument up on s[:split], steps the remaining bars and compares.
// The returned error combines every mismatch and every evaluation failure.
// It uses model.Tolerance when tol is 0.
func (e *Engine) Verify(s *model.Series, split int, tol float64) (*Report, error) {
	if split <= 0 || split >= s.Len() {
		return nil, errors.Errorf("split %d outside (0, %d)", split, s.Len())
	}
	if tol == 0 {
		tol = model.Tolerance
	}

	full := make([][][]model.Float, len(e.slots))
	var errs error
	for i, sl := range e.slots {
		r, err := sl.entry.Compute(e.calc, s, sl.params)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "batch %s", sl.label))
			continue
		}
		full[i] = r.Outputs
	}

	scratch := &Engine{calc: e.calc, slots: e.slots, state: map[SeriesID]*instrument{}, metrics: e.metrics}
	id := SeriesID{Key: s.Key, TF: s.TF}
	if _, err := scratch.Warmup(s.Slice(0, split)); err != nil {
		errs = multierr.Append(errs, err)
	}

	rep := &Report{}
	for t := split; t < s.Len(); t++ {
		results, err := scratch.Process(id, s.Bar(t))
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if results == nil {
			return nil, errors.Errorf("bar %d of %s is not after its predecessor", t, id)
		}
		rep.Bars++
		k := 0
		for i, sl := range e.slots {
			for j := range sl.entry.Outputs {
				r := results[k]
				k++
				if full[i] == nil {
					continue
				}
				want := float64(full[i][j][t])
				rep.Checked++
				if Close(r.Value, want, tol) {
					continue
				}
				m := Mismatch{Indicator: sl.label, Output: r.Output, Index: t, Batch: want, Step: r.Value}
				rep.Mismatches = append(rep.Mismatches, m)
				errs = multierr.Append(errs, m)
				if e.metrics != nil {
					e.metrics.Mismatches.WithLabelValues(sl.label).Inc()
				}
			}
		}
	}
	return rep, errs
}
