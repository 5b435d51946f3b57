package catalog

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tacore/internal/model"
	"tacore/pkg/indicator"
)

var calc = indicator.New[F](indicator.CheckBasic)

func walk(n int, seed int64) *model.Series {
	r := rand.New(rand.NewSource(seed))
	s := model.NewSeries("NSE:TEST", 60, n)
	ts := time.Unix(1_700_000_000, 0).UTC()
	price := 100.0
	for i := 0; i < n; i++ {
		o := price
		c := o + r.NormFloat64()
		s.Append(model.Bar{
			TS:     ts.Add(time.Duration(i) * time.Minute),
			Open:   F(o),
			High:   F(math.Max(o, c) + math.Abs(r.NormFloat64())*0.5),
			Low:    F(math.Min(o, c) - math.Abs(r.NormFloat64())*0.5),
			Close:  F(c),
			Volume: F(1000 + r.Intn(5000)),
		})
		price = c
	}
	return s
}

func TestBuiltin_StepperContinuesBatch(t *testing.T) {
	reg := Builtin()
	s := walk(300, 9)
	const split = 150

	for _, e := range reg.List("") {
		e := e
		t.Run(e.Name, func(t *testing.T) {
			full, err := e.Compute(calc, s, nil)
			require.NoError(t, err)
			require.Len(t, full.Outputs, len(e.Outputs))

			part, err := e.Compute(calc, s.Slice(0, split), nil)
			require.NoError(t, err)
			for i := split; i < s.Len(); i++ {
				row, err := part.Stepper.Step(s.Bar(i))
				require.NoError(t, err, "bar %d", i)
				require.Len(t, row, len(e.Outputs))
				for k, v := range row {
					want := float64(full.Outputs[k][i])
					tol := 1e-9 * math.Max(1, math.Abs(want))
					assert.InDelta(t, want, float64(v), tol, "%s[%d]", e.Outputs[k], i)
				}
			}
			for k := range full.Outputs {
				for i := 0; i < full.Lookback; i++ {
					assert.True(t, math.IsNaN(float64(full.Outputs[k][i])), "%s[%d] inside lookback", e.Outputs[k], i)
				}
			}
		})
	}
}

func TestStepper_SnapshotRestore(t *testing.T) {
	reg := Builtin()
	s := walk(120, 4)

	for _, name := range []string{"STOCH", "MA", "MAX", "LINEARREG", "CDLENGULFING"} {
		e, err := reg.Lookup(name)
		require.NoError(t, err)

		a, err := e.Compute(calc, s.Slice(0, 80), Params{})
		require.NoError(t, err)
		data, err := a.Stepper.Snapshot()
		require.NoError(t, err)

		b, err := e.Compute(calc, s.Slice(0, 60), Params{})
		require.NoError(t, err)
		require.NoError(t, b.Stepper.Restore(data), name)

		for i := 80; i < s.Len(); i++ {
			ra, err := a.Stepper.Step(s.Bar(i))
			require.NoError(t, err)
			rb, err := b.Stepper.Step(s.Bar(i))
			require.NoError(t, err)
			assert.Equal(t, ra, rb, "%s bar %d", name, i)
		}
	}
}

func TestRegistry_Lookup(t *testing.T) {
	reg := Builtin()

	e, err := reg.Lookup(" rsi ")
	require.NoError(t, err)
	assert.Equal(t, "RSI", e.Name)

	_, err = reg.Lookup("VWAP")
	assert.ErrorIs(t, err, ErrUnknownIndicator)
	assert.Equal(t, ExitBadParameter, ExitCode(err))

	assert.Error(t, reg.Register(Entry{Name: "rsi"}))

	for _, e := range reg.List(GroupPattern) {
		assert.Equal(t, GroupPattern, e.Group)
	}
	assert.Len(t, reg.List(GroupPattern), len(indicator.Patterns()))
}

func TestEntry_Resolve(t *testing.T) {
	e, err := Builtin().Lookup("MACD")
	require.NoError(t, err)

	p, err := e.Resolve(Params{"fast": 5})
	require.NoError(t, err)
	assert.Equal(t, Params{"fast": 5, "slow": 26, "signal": 9}, p)
	assert.Equal(t, "MACD_5_26_9", e.Label(p))

	_, err = e.Resolve(Params{"fast": 5.5})
	assert.ErrorIs(t, err, indicator.ErrConversion)

	_, err = e.Resolve(Params{"period": 5})
	assert.ErrorIs(t, err, indicator.ErrInvalidParameter)

	_, err = e.Lookback(Params{"fast": 30})
	assert.ErrorIs(t, err, indicator.ErrInvalidParameter)

	lb, err := e.Lookback(nil)
	require.NoError(t, err)
	assert.Equal(t, 33, lb)
}

func TestParseParams(t *testing.T) {
	p, err := ParseParams([]string{"Period=20", "nbdevup = 2.5"})
	require.NoError(t, err)
	assert.Equal(t, Params{"period": 20, "nbdevup": 2.5}, p)

	_, err = ParseParams([]string{"period"})
	assert.ErrorIs(t, err, indicator.ErrInvalidParameter)

	_, err = ParseParams([]string{"period=abc"})
	assert.ErrorIs(t, err, indicator.ErrConversion)
}

func TestExitCode(t *testing.T) {
	e, _ := Builtin().Lookup("SMA")
	_, shortErr := e.Compute(calc, walk(10, 1), Params{"period": 30})
	assert.Equal(t, ExitShortData, ExitCode(shortErr))
	assert.Contains(t, Describe(shortErr), "lookback")

	_, err := e.Compute(indicator.New[F](indicator.CheckStrict), nanSeries(), Params{"period": 2})
	assert.Equal(t, ExitNaN, ExitCode(err))

	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(fmt.Errorf("disk full")))
	assert.Equal(t, "disk full", Describe(fmt.Errorf("disk full")))

	assert.Equal(t, "insufficient_data", Kind(shortErr))
	assert.Equal(t, "other", Kind(fmt.Errorf("disk full")))
	assert.Equal(t, "", Kind(nil))
}

func nanSeries() *model.Series {
	s := model.NewSeries("NSE:NAN", 60, 3)
	for _, c := range []F{1, F(math.NaN()), 3} {
		s.Append(model.Bar{Open: c, High: c, Low: c, Close: c})
	}
	return s
}

func TestEntry_BlankRestores(t *testing.T) {
	reg := Builtin()
	s := walk(200, 6)

	for _, e := range reg.List("") {
		e := e
		t.Run(e.Name, func(t *testing.T) {
			a, err := e.Compute(calc, s.Slice(0, 150), nil)
			require.NoError(t, err)
			data, err := a.Stepper.Snapshot()
			require.NoError(t, err)

			b, err := e.Blank(nil)
			require.NoError(t, err)
			require.NoError(t, b.Restore(data))

			for i := 150; i < s.Len(); i++ {
				ra, err := a.Stepper.Step(s.Bar(i))
				require.NoError(t, err)
				rb, err := b.Step(s.Bar(i))
				require.NoError(t, err)
				require.Equal(t, ra, rb, "bar %d", i)
			}
		})
	}
}

func TestStepper_FailedStepKeepsHistory(t *testing.T) {
	in := inputs{fields: []model.Field{model.FieldClose}, cols: [][]F{{1, 2, 3}}}
	// sums the window; a negative close is rejected
	sum := func(h *history, st F) ([]F, F, error) {
		if h.at(0, 0) < 0 {
			return nil, st, indicator.ErrInvalidData
		}
		var v F
		for _, x := range h.tail(0, 3) {
			v += x
		}
		return []F{v}, v, nil
	}
	s := newStepper[F](in, 3, 6, sum)

	out, err := s.Step(model.Bar{Close: 4})
	require.NoError(t, err)
	assert.Equal(t, []F{9}, out)

	_, err = s.Step(model.Bar{Close: -1})
	assert.ErrorIs(t, err, indicator.ErrInvalidData)
	assert.Equal(t, F(9), s.st)
	assert.Equal(t, []F{2, 3, 4}, s.hist.tail(0, 3))

	out, err = s.Step(model.Bar{Close: 5})
	require.NoError(t, err)
	assert.Equal(t, []F{12}, out)
}
