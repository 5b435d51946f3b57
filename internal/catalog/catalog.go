// Package catalog addresses every core indicator by name: it describes
// inputs, outputs and parameters, marshals a model.Series into the batch
// evaluator, and hands back a Stepper that continues incrementally from the
// batch's final state.
package catalog

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"tacore/internal/model"
	"tacore/pkg/indicator"
)

// F is the evaluation width of the outer layers.
type F = model.Float

// ErrUnknownIndicator is returned by Lookup for names nothing registered.
var ErrUnknownIndicator = errors.New("unknown indicator")

// Group classifies entries for listing.
type Group string

const (
	GroupOverlap    Group = "overlap"
	GroupMomentum   Group = "momentum"
	GroupVolatility Group = "volatility"
	GroupStatistic  Group = "statistic"
	GroupTrend      Group = "trend"
	GroupVolume     Group = "volume"
	GroupCycle      Group = "cycle"
	GroupPattern    Group = "pattern"
)

type (
	lookbackFunc func(p Params) (int, error)
	computeFunc  func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error)
)

// Entry describes one indicator.
type Entry struct {
	Name    string
	Group   Group
	Help    string
	Inputs  []model.Field
	Outputs []string
	Params  []Param

	lookback lookbackFunc
	compute  computeFunc
}

// Lookback resolves p and returns the indicator's lookback.
func (e *Entry) Lookback(p Params) (int, error) {
	rp, err := e.Resolve(p)
	if err != nil {
		return 0, err
	}
	return e.lookback(rp)
}

// Label names a configured instance, e.g. "SMA_20" or "MACD_12_26_9".
func (e *Entry) Label(p Params) string {
	var b strings.Builder
	b.WriteString(e.Name)
	for _, d := range e.Params {
		v, ok := p[d.Name]
		if !ok {
			v = d.Default
		}
		b.WriteByte('_')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return b.String()
}

// Result is the output of one batch evaluation.
type Result struct {
	Entry    *Entry
	Params   Params
	Lookback int
	Outputs  [][]F
	Stepper  Stepper
}

// Label names the evaluated instance.
func (r *Result) Label() string { return r.Entry.Label(r.Params) }

// Compute evaluates the entry over s and returns the output columns in the
// order of e.Outputs, plus a Stepper seeded with the final state.
func (e *Entry) Compute(c indicator.Calc[F], s *model.Series, p Params) (*Result, error) {
	rp, err := e.Resolve(p)
	if err != nil {
		return nil, err
	}
	lb, err := e.lookback(rp)
	if err != nil {
		return nil, err
	}
	in := inputs{fields: e.Inputs, cols: make([][]F, len(e.Inputs))}
	for i, f := range e.Inputs {
		in.cols[i] = s.Column(f)
	}
	out := make([][]F, len(e.Outputs))
	for i := range out {
		out[i] = make([]F, s.Len())
	}
	st, err := e.compute(c, in, rp, out)
	if err != nil {
		return nil, err
	}
	return &Result{Entry: e, Params: rp, Lookback: lb, Outputs: out, Stepper: st}, nil
}

// Blank returns a stepper for e that only becomes meaningful once a
// snapshot is restored into it. It is seeded from a flat series.
func (e *Entry) Blank(p Params) (Stepper, error) {
	lb, err := e.Lookback(p)
	if err != nil {
		return nil, err
	}
	s := model.NewSeries("", 0, lb+2)
	for i := 0; i < lb+2; i++ {
		s.Append(model.Bar{Open: 1, High: 1, Low: 1, Close: 1, Volume: 1})
	}
	r, err := e.Compute(indicator.New[F](indicator.CheckBasic), s, p)
	if err != nil {
		return nil, err
	}
	return r.Stepper, nil
}

// Registry is a name-addressed set of entries. Lookups are case-insensitive.
// It is read-mostly and safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Builtin returns a registry holding every core indicator.
func Builtin() *Registry {
	r := NewRegistry()
	for _, group := range [][]Entry{overlap(), momentum(), volatility(), volume(), patterns()} {
		for _, e := range group {
			if err := r.Register(e); err != nil {
				panic(err)
			}
		}
	}
	return r
}

// Register adds e. Names must be unique.
func (r *Registry) Register(e Entry) error {
	key := strings.ToUpper(e.Name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.entries[key]; dup {
		return errors.Errorf("indicator %s already registered", e.Name)
	}
	r.entries[key] = &e
	return nil
}

// Lookup finds an entry by name.
func (r *Registry) Lookup(name string) (*Entry, error) {
	r.mu.RLock()
	e, ok := r.entries[strings.ToUpper(strings.TrimSpace(name))]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.Wrap(ErrUnknownIndicator, name)
	}
	return e, nil
}

// List returns the entries of group, or all entries for "", sorted by name.
func (r *Registry) List(group Group) []*Entry {
	r.mu.RLock()
	out := make([]*Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if group == "" || e.Group == group {
			out = append(out, e)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
