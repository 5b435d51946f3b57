package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"tacore/pkg/indicator"
)

// Param describes one named parameter.
type Param struct {
	Name    string
	Default float64
	Integer bool
	Help    string
}

// Params maps parameter names to values. Integer parameters are carried as
// floats and must be integral.
type Params map[string]float64

// Int returns p[name] as an int. A non-integral value fails with
// ErrConversion.
func (p Params) Int(name string) (int, error) {
	v := p[name]
	if v != math.Trunc(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxInt32 {
		return 0, errors.Wrapf(indicator.ErrConversion, "parameter %s=%g is not an integer", name, v)
	}
	return int(v), nil
}

// n reads an integer parameter Resolve has already checked.
func (p Params) n(name string) int { return int(p[name]) }

// ParseParams reads "name=value" pairs as given on a command line.
func ParseParams(kv []string) (Params, error) {
	p := make(Params, len(kv))
	for _, s := range kv {
		name, val, ok := strings.Cut(s, "=")
		if !ok {
			return nil, errors.Wrapf(indicator.ErrInvalidParameter, "%q is not name=value", s)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, errors.Wrapf(indicator.ErrConversion, "parameter %s: %v", name, err)
		}
		p[strings.ToLower(strings.TrimSpace(name))] = v
	}
	return p, nil
}

// Resolve fills defaults and checks p against the entry's declarations.
// Value ranges are left to the core's lookback calculators.
func (e *Entry) Resolve(p Params) (Params, error) {
	out := make(Params, len(e.Params))
	for name := range p {
		if !e.hasParam(name) {
			return nil, errors.Wrapf(indicator.ErrInvalidParameter, "%s has no parameter %q", e.Name, name)
		}
	}
	for _, d := range e.Params {
		v, ok := p[d.Name]
		if !ok {
			v = d.Default
		}
		out[d.Name] = v
		if d.Integer {
			if _, err := out.Int(d.Name); err != nil {
				return nil, errors.WithMessage(err, e.Name)
			}
		}
	}
	return out, nil
}

func (e *Entry) hasParam(name string) bool {
	for _, d := range e.Params {
		if d.Name == name {
			return true
		}
	}
	return false
}

func period(def int) Param {
	return Param{Name: "period", Default: float64(def), Integer: true, Help: "window length in bars"}
}

func intParam(name string, def int, help string) Param {
	return Param{Name: name, Default: float64(def), Integer: true, Help: help}
}

func floatParam(name string, def float64, help string) Param {
	return Param{Name: name, Default: def, Help: help}
}

var maTypeParam = intParam("matype", 0, "moving average: 0 SMA, 1 EMA, 2 WMA, 3 DEMA, 4 TEMA, 5 TRIMA, 6 T3, 7 KAMA, 8 MAMA, 9 RMA")

// byPeriod adapts a period-only lookback calculator.
func byPeriod(fn func(int) (int, error)) lookbackFunc {
	return func(p Params) (int, error) { return fn(p.n("period")) }
}
