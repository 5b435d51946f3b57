// Package replay drives catalog steppers the way a live caller would: warm
// up with a batch evaluation, continue bar by bar, and checkpoint the state
// tuples so a restart resumes without recomputing history.
package replay

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"tacore/internal/catalog"
	"tacore/internal/metrics"
	"tacore/internal/model"
	"tacore/pkg/indicator"
)

// IndicatorConfig names one configured indicator instance.
type IndicatorConfig struct {
	Name   string         `json:"name"`
	Params catalog.Params `json:"params,omitempty"`
}

// slot is a resolved indicator config.
type slot struct {
	entry  *catalog.Entry
	params catalog.Params
	label  string
	lb     int
}

// SeriesID identifies one instrument at one timeframe.
type SeriesID struct {
	Key string `json:"key"` // "exchange:token"
	TF  int    `json:"tf"`
}

func (id SeriesID) String() string { return id.Key + "@" + strconv.Itoa(id.TF) + "s" }

// instrument holds live steppers for one series. A nil stepper has not
// been warmed up and reports not-ready results.
type instrument struct {
	lastTS   time.Time
	steppers []catalog.Stepper
}

// Engine steps every configured indicator for every warmed-up instrument.
// Designed for single-goroutine usage.
type Engine struct {
	calc    indicator.Calc[model.Float]
	slots   []slot
	state   map[SeriesID]*instrument
	metrics *metrics.Metrics
}

// NewEngine resolves configs against reg. Parameters are validated here so
// a bad config fails before any data is read.
func NewEngine(reg *catalog.Registry, calc indicator.Calc[model.Float], configs []IndicatorConfig, m *metrics.Metrics) (*Engine, error) {
	e := &Engine{
		calc:    calc,
		state:   make(map[SeriesID]*instrument, 16),
		metrics: m,
	}
	seen := make(map[string]bool, len(configs))
	for _, c := range configs {
		entry, err := reg.Lookup(c.Name)
		if err != nil {
			return nil, err
		}
		p, err := entry.Resolve(c.Params)
		if err != nil {
			return nil, err
		}
		lb, err := entry.Lookback(p)
		if err != nil {
			return nil, err
		}
		label := entry.Label(p)
		if seen[label] {
			return nil, errors.Wrapf(indicator.ErrInvalidParameter, "%s configured twice", label)
		}
		seen[label] = true
		e.slots = append(e.slots, slot{entry: entry, params: p, label: label, lb: lb})
	}
	return e, nil
}

// MaxLookback is the longest lookback across configured indicators. A
// warm-up series needs more bars than this.
func (e *Engine) MaxLookback() int {
	m := 0
	for _, s := range e.slots {
		if s.lb > m {
			m = s.lb
		}
	}
	return m
}

// Labels lists the configured instances in config order.
func (e *Engine) Labels() []string {
	out := make([]string, len(e.slots))
	for i, s := range e.slots {
		out[i] = s.label
	}
	return out
}

// Series lists the series the engine holds state for, ordered by key then
// timeframe.
func (e *Engine) Series() []SeriesID {
	out := make([]SeriesID, 0, len(e.state))
	for id := range e.state {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].TF < out[j].TF
	})
	return out
}

// LastTS is the timestamp of the newest bar seen for id.
func (e *Engine) LastTS(id SeriesID) time.Time {
	if in, ok := e.state[id]; ok {
		return in.lastTS
	}
	return time.Time{}
}

func (e *Engine) instrument(id SeriesID) *instrument {
	in, ok := e.state[id]
	if !ok {
		in = &instrument{steppers: make([]catalog.Stepper, len(e.slots))}
		e.state[id] = in
	}
	return in
}

// Warmup runs every configured indicator in batch over s and installs the
// resulting steppers for s's key and timeframe, replacing previous state.
// Indicators that fail keep their previous stepper; errors are combined.
func (e *Engine) Warmup(s *model.Series) ([]*catalog.Result, error) {
	id := SeriesID{Key: s.Key, TF: s.TF}
	in := e.instrument(id)
	if s.Len() > 0 {
		in.lastTS = s.Time[s.Len()-1]
	}

	var errs error
	results := make([]*catalog.Result, len(e.slots))
	for i, sl := range e.slots {
		start := time.Now()
		r, err := sl.entry.Compute(e.calc, s, sl.params)
		e.metrics.ObserveBatch(sl.label, catalog.Kind(err), time.Since(start))
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "warm up %s on %s", sl.label, id))
			continue
		}
		results[i] = r
		in.steppers[i] = r.Stepper
	}
	return results, errs
}

// Pending lists the labels not yet warmed up for id.
func (e *Engine) Pending(id SeriesID) []string {
	in, ok := e.state[id]
	if !ok {
		return e.Labels()
	}
	var out []string
	for i, st := range in.steppers {
		if st == nil {
			out = append(out, e.slots[i].label)
		}
	}
	return out
}

// Process advances every stepper of id by one bar and returns one result
// per output. Returns nil for a series that was never warmed up. Bars at or
// before the last processed timestamp are skipped.
func (e *Engine) Process(id SeriesID, b model.Bar) ([]model.IndicatorResult, error) {
	in, ok := e.state[id]
	if !ok {
		return nil, nil
	}
	if !b.TS.IsZero() && !b.TS.After(in.lastTS) {
		return nil, nil
	}
	in.lastTS = b.TS

	start := time.Now()
	var errs error
	results := make([]model.IndicatorResult, 0, len(e.slots))
	for i, sl := range e.slots {
		var vals []model.Float
		if st := in.steppers[i]; st != nil {
			var err error
			vals, err = st.Step(b)
			if err != nil {
				errs = multierr.Append(errs, errors.Wrapf(err, "step %s on %s", sl.label, id))
			}
		}
		for j, name := range sl.entry.Outputs {
			r := model.IndicatorResult{
				Name:   sl.label,
				Output: name,
				Key:    id.Key,
				TF:     id.TF,
				Value:  math.NaN(),
				TS:     b.TS,
			}
			if j < len(vals) {
				r.Value = float64(vals[j])
				r.Ready = !math.IsNaN(r.Value)
			}
			results = append(results, r)
		}
	}
	e.metrics.ObserveStep(time.Since(start))
	return results, errs
}
