package catalog

import (
	"tacore/pkg/indicator"
	"tacore/pkg/ringbuf"
)

func atrEntry(name, help string, lb func(int) (int, error),
	batch func(c indicator.Calc[F], h, l, cl []F, n int, out []F) (indicator.ATRState[F], error),
	next func(h, l, c F, st indicator.ATRState[F], n int) (F, indicator.ATRState[F], error),
) Entry {
	return Entry{
		Name: name, Group: GroupVolatility, Help: help,
		Inputs: hlc, Outputs: value, Params: []Param{period(14)},
		lookback: byPeriod(lb),
		compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
			n := p.n("period")
			st, err := batch(c, in.cols[0], in.cols[1], in.cols[2], n, out[0])
			if err != nil {
				return nil, err
			}
			return newStepper(in, 1, st, func(h *history, st indicator.ATRState[F]) ([]F, indicator.ATRState[F], error) {
				v, st, err := next(h.at(0, 0), h.at(1, 0), h.at(2, 0), st, n)
				return one(v), st, err
			}), nil
		},
	}
}

func varianceEntry(name, help string, def int, params []Param, lb func(int) (int, error),
	batch func(c indicator.Calc[F], in []F, p Params, out []F) (indicator.VarState[F], error),
	next func(x, evicted F, st indicator.VarState[F], p Params) (F, indicator.VarState[F], error),
) Entry {
	return Entry{
		Name: name, Group: GroupStatistic, Help: help,
		Inputs: closeOnly, Outputs: value, Params: append([]Param{period(def)}, params...),
		lookback: byPeriod(lb),
		compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
			n := p.n("period")
			st, err := batch(c, in.cols[0], p, out[0])
			if err != nil {
				return nil, err
			}
			return newStepper(in, n+1, st, func(h *history, st indicator.VarState[F]) ([]F, indicator.VarState[F], error) {
				v, st, err := next(h.at(0, 0), h.at(0, n), st, p)
				return one(v), st, err
			}), nil
		},
	}
}

func extremeEntry(name, help string, lb func(int) (int, error),
	batch func(c indicator.Calc[F], in []F, n int, out []F) error,
	fresh func(n int) *ringbuf.Monotonic[F],
) Entry {
	return Entry{
		Name: name, Group: GroupStatistic, Help: help,
		Inputs: closeOnly, Outputs: value, Params: []Param{period(30)},
		lookback: byPeriod(lb),
		compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
			n := p.n("period")
			if err := batch(c, in.cols[0], n, out[0]); err != nil {
				return nil, err
			}
			return newExtremeStepper(in, n, func() *ringbuf.Monotonic[F] { return fresh(n) }), nil
		},
	}
}

func volatility() []Entry {
	return []Entry{
		{
			Name: "TRANGE", Group: GroupVolatility, Help: "true range",
			Inputs: hlc, Outputs: value,
			lookback: func(Params) (int, error) { return indicator.TRANGELookback() },
			compute: func(c indicator.Calc[F], in inputs, _ Params, out [][]F) (Stepper, error) {
				st, err := c.TRANGE(in.cols[0], in.cols[1], in.cols[2], out[0])
				if err != nil {
					return nil, err
				}
				return newStepper(in, 1, st, func(h *history, st indicator.TRangeState[F]) ([]F, indicator.TRangeState[F], error) {
					v, st, err := indicator.TRANGENext(h.at(0, 0), h.at(1, 0), h.at(2, 0), st)
					return one(v), st, err
				}), nil
			},
		},
		atrEntry("ATR", "Wilder's average true range", indicator.ATRLookback, indicator.Calc[F].ATR, indicator.ATRNext[F]),
		atrEntry("NATR", "ATR as a percentage of the close", indicator.NATRLookback, indicator.Calc[F].NATR, indicator.NATRNext[F]),
		{
			Name: "ADR", Group: GroupVolatility, Help: "average daily range, SMA of high minus low",
			Inputs: highLow, Outputs: value, Params: []Param{period(14)},
			lookback: byPeriod(indicator.ADRLookback),
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				n := p.n("period")
				st, err := c.ADR(in.cols[0], in.cols[1], n, out[0])
				if err != nil {
					return nil, err
				}
				return newStepper(in, n+1, st, func(h *history, st indicator.SMAState[F]) ([]F, indicator.SMAState[F], error) {
					v, st, err := indicator.ADRNext(h.at(0, 0), h.at(1, 0), h.at(0, n), h.at(1, n), st, n)
					return one(v), st, err
				}), nil
			},
		},
		varianceEntry("VAR", "population variance", 5, nil, indicator.VARLookback,
			func(c indicator.Calc[F], in []F, p Params, out []F) (indicator.VarState[F], error) {
				return c.VAR(in, p.n("period"), out)
			},
			func(x, ev F, st indicator.VarState[F], p Params) (F, indicator.VarState[F], error) {
				return indicator.VARNext(x, ev, st, p.n("period"))
			}),
		varianceEntry("STDDEV", "population standard deviation times nbdev", 5,
			[]Param{floatParam("nbdev", 1, "deviation multiplier")}, indicator.STDDEVLookback,
			func(c indicator.Calc[F], in []F, p Params, out []F) (indicator.VarState[F], error) {
				return c.STDDEV(in, p.n("period"), p["nbdev"], out)
			},
			func(x, ev F, st indicator.VarState[F], p Params) (F, indicator.VarState[F], error) {
				return indicator.STDDEVNext(x, ev, st, p.n("period"), p["nbdev"])
			}),
		extremeEntry("MAX", "highest value over the period", indicator.MAXLookback,
			func(c indicator.Calc[F], in []F, n int, out []F) error {
				_, err := c.MAX(in, n, out)
				return err
			}, ringbuf.NewMax[F]),
		extremeEntry("MIN", "lowest value over the period", indicator.MINLookback,
			func(c indicator.Calc[F], in []F, n int, out []F) error {
				_, err := c.MIN(in, n, out)
				return err
			}, ringbuf.NewMin[F]),
		{
			Name: "LINEARREG", Group: GroupStatistic, Help: "least-squares line: value at the newest bar, slope, intercept at the oldest",
			Inputs: closeOnly, Outputs: []string{"value", "slope", "intercept"}, Params: []Param{period(14)},
			lookback: byPeriod(indicator.LINEARREGLookback),
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				n := p.n("period")
				st, err := c.LINEARREG(in.cols[0], n, out[0], out[1], out[2])
				if err != nil {
					return nil, err
				}
				return newStepper(in, n+1, st, func(h *history, st indicator.LinRegState[F]) ([]F, indicator.LinRegState[F], error) {
					v, s, i, st, err := indicator.LINEARREGNext(h.at(0, 0), h.at(0, n), st, n)
					return []F{v, s, i}, st, err
				}), nil
			},
		},
	}
}
