package catalog

import "tacore/pkg/indicator"

type none struct{}

// differenceEntry covers MOM and ROC, whose step only needs the sample period
// bars back.
func differenceEntry(name, help string, lb func(int) (int, error),
	batch func(c indicator.Calc[F], in []F, n int, out []F) error,
	next func(x, past F) F,
) Entry {
	return Entry{
		Name: name, Group: GroupMomentum, Help: help,
		Inputs: closeOnly, Outputs: value, Params: []Param{period(10)},
		lookback: byPeriod(lb),
		compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
			n := p.n("period")
			if err := batch(c, in.cols[0], n, out[0]); err != nil {
				return nil, err
			}
			return newStepper(in, n+1, none{}, func(h *history, st none) ([]F, none, error) {
				return one(next(h.at(0, 0), h.at(0, n))), st, nil
			}), nil
		},
	}
}

// closeOscillator covers close-only oscillators with a recursive state.
func closeOscillator[S any](name, help string, def int, lb func(int) (int, error),
	batch func(c indicator.Calc[F], in []F, n int, out []F) (S, error),
	next func(x F, st S, n int) (F, S, error),
) Entry {
	e := recursiveMA(name, help, def, lb, batch, next)
	e.Group = GroupMomentum
	return e
}

// dmEntry covers the directional-movement family.
func dmEntry[S any](name, help string, outputs []string, lb func(int) (int, error),
	batch func(c indicator.Calc[F], h, l, cl []F, n int, out [][]F) (S, error),
	next func(h, l, c F, st S, n int) ([]F, S, error),
) Entry {
	return Entry{
		Name: name, Group: GroupMomentum, Help: help,
		Inputs: hlc, Outputs: outputs, Params: []Param{period(14)},
		lookback: byPeriod(lb),
		compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
			n := p.n("period")
			st, err := batch(c, in.cols[0], in.cols[1], in.cols[2], n, out)
			if err != nil {
				return nil, err
			}
			return newStepper(in, 1, st, func(h *history, st S) ([]F, S, error) {
				return next(h.at(0, 0), h.at(1, 0), h.at(2, 0), st, n)
			}), nil
		},
	}
}

func momentum() []Entry {
	return []Entry{
		differenceEntry("MOM", "momentum, close minus the close period bars back", indicator.MOMLookback, indicator.Calc[F].MOM, indicator.MOMNext[F]),
		differenceEntry("ROC", "rate of change in percent", indicator.ROCLookback, indicator.Calc[F].ROC, indicator.ROCNext[F]),
		closeOscillator("RSI", "relative strength index", 14, indicator.RSILookback, indicator.Calc[F].RSI, indicator.RSINext[F]),
		closeOscillator("CMO", "Chande momentum oscillator", 14, indicator.CMOLookback, indicator.Calc[F].CMO, indicator.CMONext[F]),
		closeOscillator("TRIX", "rate of change of a triple EMA", 30, indicator.TRIXLookback, indicator.Calc[F].TRIX, indicator.TRIXNext[F]),
		{
			Name: "MACD", Group: GroupMomentum, Help: "moving average convergence/divergence",
			Inputs: closeOnly, Outputs: []string{"macd", "signal", "hist"},
			Params: []Param{
				intParam("fast", 12, "fast EMA period"),
				intParam("slow", 26, "slow EMA period"),
				intParam("signal", 9, "signal EMA period"),
			},
			lookback: func(p Params) (int, error) { return indicator.MACDLookback(macdParams(p)) },
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				mp := macdParams(p)
				st, err := c.MACD(in.cols[0], mp, out[0], out[1], out[2])
				if err != nil {
					return nil, err
				}
				return newStepper(in, 1, st, func(h *history, st indicator.MACDState[F]) ([]F, indicator.MACDState[F], error) {
					m, s, hist, st, err := indicator.MACDNext(h.at(0, 0), st, mp)
					return []F{m, s, hist}, st, err
				}), nil
			},
		},
		oscillatorEntry("APO", "absolute price oscillator", indicator.APOLookback, indicator.Calc[F].APO, indicator.APONext[F]),
		oscillatorEntry("PPO", "percentage price oscillator", indicator.PPOLookback, indicator.Calc[F].PPO, indicator.PPONext[F]),
		{
			Name: "STOCH", Group: GroupMomentum, Help: "slow stochastic %K and %D",
			Inputs: hlc, Outputs: []string{"slowk", "slowd"},
			Params: []Param{
				intParam("fastk", 5, "raw %K window"),
				intParam("slowk", 3, "%K smoothing"),
				intParam("slowd", 3, "%D smoothing"),
			},
			lookback: func(p Params) (int, error) { return indicator.StochLookback(stochParams(p)) },
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				sp := stochParams(p)
				st, err := c.STOCH(in.cols[0], in.cols[1], in.cols[2], sp, out[0], out[1])
				if err != nil {
					return nil, err
				}
				n := sp.FastK
				return newStepper(in, n, st, func(h *history, st indicator.StochState[F]) ([]F, indicator.StochState[F], error) {
					k, d, st, err := indicator.StochNext(h.tail(0, n), h.tail(1, n), h.at(2, 0), st, sp)
					return []F{k, d}, st, err
				}), nil
			},
		},
		{
			Name: "WILLR", Group: GroupMomentum, Help: "Williams' %R",
			Inputs: hlc, Outputs: value, Params: []Param{period(14)},
			lookback: byPeriod(indicator.WILLRLookback),
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				n := p.n("period")
				st, err := c.WILLR(in.cols[0], in.cols[1], in.cols[2], n, out[0])
				if err != nil {
					return nil, err
				}
				return newStepper(in, n, st, func(h *history, st indicator.RangeState[F]) ([]F, indicator.RangeState[F], error) {
					v, st, err := indicator.WILLRNext(h.tail(0, n), h.tail(1, n), h.at(2, 0), st, n)
					return one(v), st, err
				}), nil
			},
		},
		{
			Name: "KDJ", Group: GroupMomentum, Help: "KDJ stochastic with J = 3K - 2D",
			Inputs: hlc, Outputs: []string{"k", "d", "j"},
			Params: []Param{period(9), intParam("m1", 3, "K smoothing"), intParam("m2", 3, "D smoothing")},
			lookback: func(p Params) (int, error) { return indicator.KDJLookback(kdjParams(p)) },
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				kp := kdjParams(p)
				st, err := c.KDJ(in.cols[0], in.cols[1], in.cols[2], kp, out[0], out[1], out[2])
				if err != nil {
					return nil, err
				}
				n := kp.Period
				return newStepper(in, n, st, func(h *history, st indicator.KDJState[F]) ([]F, indicator.KDJState[F], error) {
					k, d, j, st, err := indicator.KDJNext(h.tail(0, n), h.tail(1, n), h.at(2, 0), st, kp)
					return []F{k, d, j}, st, err
				}), nil
			},
		},
		{
			Name: "AROON", Group: GroupMomentum, Help: "Aroon down and up",
			Inputs: highLow, Outputs: []string{"down", "up"}, Params: []Param{period(14)},
			lookback: byPeriod(indicator.AROONLookback),
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				n := p.n("period")
				st, err := c.AROON(in.cols[0], in.cols[1], n, out[0], out[1])
				if err != nil {
					return nil, err
				}
				return newStepper(in, n+1, st, func(h *history, st indicator.RangeState[F]) ([]F, indicator.RangeState[F], error) {
					down, up, st, err := indicator.AROONNext(h.tail(0, n+1), h.tail(1, n+1), st, n)
					return []F{down, up}, st, err
				}), nil
			},
		},
		{
			Name: "AROONOSC", Group: GroupMomentum, Help: "Aroon up minus Aroon down",
			Inputs: highLow, Outputs: value, Params: []Param{period(14)},
			lookback: byPeriod(indicator.AROONOSCLookback),
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				n := p.n("period")
				st, err := c.AROONOSC(in.cols[0], in.cols[1], n, out[0])
				if err != nil {
					return nil, err
				}
				return newStepper(in, n+1, st, func(h *history, st indicator.RangeState[F]) ([]F, indicator.RangeState[F], error) {
					v, st, err := indicator.AROONOSCNext(h.tail(0, n+1), h.tail(1, n+1), st, n)
					return one(v), st, err
				}), nil
			},
		},
		dmEntry("DI", "plus and minus directional indicators", []string{"plus", "minus"}, indicator.DILookback,
			func(c indicator.Calc[F], h, l, cl []F, n int, out [][]F) (indicator.DMState[F], error) {
				return c.DI(h, l, cl, n, out[0], out[1])
			},
			func(h, l, c F, st indicator.DMState[F], n int) ([]F, indicator.DMState[F], error) {
				plus, minus, st, err := indicator.DINext(h, l, c, st, n)
				return []F{plus, minus}, st, err
			}),
		dmEntry("DX", "directional movement index", value, indicator.DXLookback,
			func(c indicator.Calc[F], h, l, cl []F, n int, out [][]F) (indicator.DMState[F], error) {
				return c.DX(h, l, cl, n, out[0])
			},
			func(h, l, c F, st indicator.DMState[F], n int) ([]F, indicator.DMState[F], error) {
				v, st, err := indicator.DXNext(h, l, c, st, n)
				return one(v), st, err
			}),
		dmEntry("ADX", "average directional movement index", value, indicator.ADXLookback,
			func(c indicator.Calc[F], h, l, cl []F, n int, out [][]F) (indicator.ADXState[F], error) {
				return c.ADX(h, l, cl, n, out[0])
			},
			func(h, l, c F, st indicator.ADXState[F], n int) ([]F, indicator.ADXState[F], error) {
				v, st, err := indicator.ADXNext(h, l, c, st, n)
				return one(v), st, err
			}),
		{
			Name: "MFI", Group: GroupMomentum, Help: "money flow index",
			Inputs: hlcv, Outputs: value, Params: []Param{period(14)},
			lookback: byPeriod(indicator.MFILookback),
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				n := p.n("period")
				st, err := c.MFI(in.cols[0], in.cols[1], in.cols[2], in.cols[3], n, out[0])
				if err != nil {
					return nil, err
				}
				size := indicator.MFIWindow(n)
				return newStepper(in, size, st, func(h *history, st indicator.MFIState[F]) ([]F, indicator.MFIState[F], error) {
					v, st, err := indicator.MFINext(h.tail(0, size), h.tail(1, size), h.tail(2, size), h.tail(3, size), st, n)
					return one(v), st, err
				}), nil
			},
		},
	}
}

// oscillatorEntry covers APO and PPO over any moving-average kind.
func oscillatorEntry(name, help string, lb func(indicator.APOParams) (int, error),
	batch func(c indicator.Calc[F], in []F, p indicator.APOParams, out []F) (indicator.APOState[F], error),
	next func(w []F, st indicator.APOState[F], p indicator.APOParams) (F, indicator.APOState[F], error),
) Entry {
	return Entry{
		Name: name, Group: GroupMomentum, Help: help,
		Inputs: closeOnly, Outputs: value,
		Params: []Param{
			intParam("fast", 12, "fast average period"),
			intParam("slow", 26, "slow average period"),
			maTypeParam,
		},
		lookback: func(p Params) (int, error) { return lb(apoParams(p)) },
		compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
			ap := apoParams(p)
			st, err := batch(c, in.cols[0], ap, out[0])
			if err != nil {
				return nil, err
			}
			size := indicator.APOWindow(ap)
			return newStepper(in, size, st, func(h *history, st indicator.APOState[F]) ([]F, indicator.APOState[F], error) {
				v, st, err := next(h.tail(0, size), st, ap)
				return one(v), st, err
			}), nil
		},
	}
}

func macdParams(p Params) indicator.MACDParams {
	return indicator.MACDParams{Fast: p.n("fast"), Slow: p.n("slow"), Signal: p.n("signal")}
}

func apoParams(p Params) indicator.APOParams {
	return indicator.APOParams{Fast: p.n("fast"), Slow: p.n("slow"), Kind: indicator.MAType(p.n("matype"))}
}

func stochParams(p Params) indicator.StochParams {
	return indicator.StochParams{FastK: p.n("fastk"), SlowK: p.n("slowk"), SlowD: p.n("slowd")}
}

func kdjParams(p Params) indicator.KDJParams {
	return indicator.KDJParams{Period: p.n("period"), M1: p.n("m1"), M2: p.n("m2")}
}
