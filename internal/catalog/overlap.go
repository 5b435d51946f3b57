package catalog

import (
	"tacore/internal/model"
	"tacore/pkg/indicator"
)

var (
	closeOnly = []model.Field{model.FieldClose}
	highLow   = []model.Field{model.FieldHigh, model.FieldLow}
	hlc       = []model.Field{model.FieldHigh, model.FieldLow, model.FieldClose}
	hlcv      = []model.Field{model.FieldHigh, model.FieldLow, model.FieldClose, model.FieldVolume}
	ohlc      = []model.Field{model.FieldOpen, model.FieldHigh, model.FieldLow, model.FieldClose}
	value     = []string{"value"}
)

// evictingMA covers averages whose step needs the sample leaving the window.
func evictingMA[S any](name, help string, lb func(int) (int, error),
	batch func(c indicator.Calc[F], in []F, n int, out []F) (S, error),
	next func(x, evicted F, st S, n int) (F, S, error),
) Entry {
	return Entry{
		Name: name, Group: GroupOverlap, Help: help,
		Inputs: closeOnly, Outputs: value, Params: []Param{period(30)},
		lookback: byPeriod(lb),
		compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
			n := p.n("period")
			st, err := batch(c, in.cols[0], n, out[0])
			if err != nil {
				return nil, err
			}
			return newStepper(in, n+1, st, func(h *history, st S) ([]F, S, error) {
				v, st, err := next(h.at(0, 0), h.at(0, n), st, n)
				return one(v), st, err
			}), nil
		},
	}
}

// recursiveMA covers averages whose state alone carries the window.
func recursiveMA[S any](name, help string, def int, lb func(int) (int, error),
	batch func(c indicator.Calc[F], in []F, n int, out []F) (S, error),
	next func(x F, st S, n int) (F, S, error),
) Entry {
	return Entry{
		Name: name, Group: GroupOverlap, Help: help,
		Inputs: closeOnly, Outputs: value, Params: []Param{period(def)},
		lookback: byPeriod(lb),
		compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
			n := p.n("period")
			st, err := batch(c, in.cols[0], n, out[0])
			if err != nil {
				return nil, err
			}
			return newStepper(in, 1, st, func(h *history, st S) ([]F, S, error) {
				v, st, err := next(h.at(0, 0), st, n)
				return one(v), st, err
			}), nil
		},
	}
}

// windowedMA covers averages whose step reads a window of raw samples.
func windowedMA[S any](name, help string, lb func(int) (int, error), window func(int) int,
	batch func(c indicator.Calc[F], in []F, n int, out []F) (S, error),
	next func(w []F, st S, n int) (F, S, error),
) Entry {
	return Entry{
		Name: name, Group: GroupOverlap, Help: help,
		Inputs: closeOnly, Outputs: value, Params: []Param{period(30)},
		lookback: byPeriod(lb),
		compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
			n := p.n("period")
			st, err := batch(c, in.cols[0], n, out[0])
			if err != nil {
				return nil, err
			}
			size := window(n)
			return newStepper(in, size, st, func(h *history, st S) ([]F, S, error) {
				v, st, err := next(h.tail(0, size), st, n)
				return one(v), st, err
			}), nil
		},
	}
}

func overlap() []Entry {
	return []Entry{
		evictingMA("SMA", "simple moving average", indicator.SMALookback, indicator.Calc[F].SMA, indicator.SMANext[F]),
		evictingMA("WMA", "linearly weighted moving average", indicator.WMALookback, indicator.Calc[F].WMA, indicator.WMANext[F]),
		recursiveMA("EMA", "exponential moving average, SMA seeded", 30, indicator.EMALookback, indicator.Calc[F].EMA, indicator.EMANext[F]),
		recursiveMA("RMA", "Wilder's smoothing", 14, indicator.RMALookback, indicator.Calc[F].RMA, indicator.RMANext[F]),
		recursiveMA("DEMA", "double exponential moving average", 30, indicator.DEMALookback, indicator.Calc[F].DEMA, indicator.DEMANext[F]),
		recursiveMA("TEMA", "triple exponential moving average", 30, indicator.TEMALookback, indicator.Calc[F].TEMA, indicator.TEMANext[F]),
		windowedMA("TRIMA", "triangular moving average", indicator.TRIMALookback, indicator.TRIMAWindow, indicator.Calc[F].TRIMA, indicator.TRIMANext[F]),
		windowedMA("KAMA", "Kaufman adaptive moving average", indicator.KAMALookback, indicator.KAMAWindow, indicator.Calc[F].KAMA, indicator.KAMANext[F]),
		{
			Name: "T3", Group: GroupOverlap, Help: "Tillson T3 moving average",
			Inputs: closeOnly, Outputs: value,
			Params: []Param{period(5), floatParam("vfactor", 0.7, "volume factor in (0, 1]")},
			lookback: func(p Params) (int, error) {
				return indicator.T3Lookback(p.n("period"), p["vfactor"])
			},
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				n, v := p.n("period"), p["vfactor"]
				st, err := c.T3(in.cols[0], n, v, out[0])
				if err != nil {
					return nil, err
				}
				return newStepper(in, 1, st, func(h *history, st indicator.T3State[F]) ([]F, indicator.T3State[F], error) {
					x, st, err := indicator.T3Next(h.at(0, 0), st, n, v)
					return one(x), st, err
				}), nil
			},
		},
		{
			Name: "MAMA", Group: GroupOverlap, Help: "MESA adaptive moving average and its following average",
			Inputs: closeOnly, Outputs: []string{"mama", "fama"},
			Params: []Param{
				floatParam("fastlimit", 0.5, "upper alpha limit"),
				floatParam("slowlimit", 0.05, "lower alpha limit"),
			},
			lookback: func(p Params) (int, error) {
				return indicator.MAMALookback(p["fastlimit"], p["slowlimit"])
			},
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				fast, slow := p["fastlimit"], p["slowlimit"]
				st, err := c.MAMA(in.cols[0], fast, slow, out[0], out[1])
				if err != nil {
					return nil, err
				}
				return newStepper(in, 1, st, func(h *history, st indicator.MAMAState[F]) ([]F, indicator.MAMAState[F], error) {
					m, f, st, err := indicator.MAMANext(h.at(0, 0), st, fast, slow)
					return []F{m, f}, st, err
				}), nil
			},
		},
		{
			Name: "MA", Group: GroupOverlap, Help: "moving average of the kind matype selects",
			Inputs: closeOnly, Outputs: value,
			Params: []Param{period(30), maTypeParam},
			lookback: func(p Params) (int, error) {
				return indicator.MALookback(indicator.MAType(p.n("matype")), p.n("period"))
			},
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				n, kind := p.n("period"), indicator.MAType(p.n("matype"))
				st, err := c.MA(in.cols[0], kind, n, out[0])
				if err != nil {
					return nil, err
				}
				size := indicator.MAWindow(kind, n)
				return newStepper(in, size, st, func(h *history, st indicator.MAState[F]) ([]F, indicator.MAState[F], error) {
					v, st, err := indicator.MANext(h.tail(0, size), st, n)
					return one(v), st, err
				}), nil
			},
		},
		{
			Name: "MIDPOINT", Group: GroupOverlap, Help: "midpoint of the highest and lowest close",
			Inputs: closeOnly, Outputs: value, Params: []Param{period(14)},
			lookback: byPeriod(indicator.MIDPOINTLookback),
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				n := p.n("period")
				st, err := c.MIDPOINT(in.cols[0], n, out[0])
				if err != nil {
					return nil, err
				}
				return newStepper(in, n, st, func(h *history, st indicator.RangeState[F]) ([]F, indicator.RangeState[F], error) {
					v, st, err := indicator.MIDPOINTNext(h.tail(0, n), st, n)
					return one(v), st, err
				}), nil
			},
		},
		{
			Name: "MIDPRICE", Group: GroupOverlap, Help: "midpoint of the highest high and lowest low",
			Inputs: highLow, Outputs: value, Params: []Param{period(14)},
			lookback: byPeriod(indicator.MIDPRICELookback),
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				n := p.n("period")
				st, err := c.MIDPRICE(in.cols[0], in.cols[1], n, out[0])
				if err != nil {
					return nil, err
				}
				return newStepper(in, n, st, func(h *history, st indicator.RangeState[F]) ([]F, indicator.RangeState[F], error) {
					v, st, err := indicator.MIDPRICENext(h.tail(0, n), h.tail(1, n), st, n)
					return one(v), st, err
				}), nil
			},
		},
		{
			Name: "BBANDS", Group: GroupOverlap, Help: "Bollinger bands",
			Inputs: closeOnly, Outputs: []string{"upper", "middle", "lower"},
			Params: []Param{
				period(20),
				floatParam("nbdevup", 2, "deviations above the middle band"),
				floatParam("nbdevdn", 2, "deviations below the middle band"),
			},
			lookback: func(p Params) (int, error) { return indicator.BBANDSLookback(bbandsParams(p)) },
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				bp := bbandsParams(p)
				st, err := c.BBANDS(in.cols[0], bp, out[0], out[1], out[2])
				if err != nil {
					return nil, err
				}
				n := bp.Period
				return newStepper(in, n+1, st, func(h *history, st indicator.VarState[F]) ([]F, indicator.VarState[F], error) {
					u, m, l, st, err := indicator.BBANDSNext(h.at(0, 0), h.at(0, n), st, bp)
					return []F{u, m, l}, st, err
				}), nil
			},
		},
		{
			Name: "SAR", Group: GroupTrend, Help: "parabolic stop and reverse",
			Inputs: highLow, Outputs: value,
			Params: []Param{
				floatParam("acceleration", 0.02, "acceleration factor step and start"),
				floatParam("maximum", 0.2, "acceleration factor cap"),
			},
			lookback: func(p Params) (int, error) { return indicator.SARLookback(sarParams(p)) },
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				sp := sarParams(p)
				st, err := c.SAR(in.cols[0], in.cols[1], sp, out[0])
				if err != nil {
					return nil, err
				}
				return newStepper(in, 1, st, func(h *history, st indicator.SARState[F]) ([]F, indicator.SARState[F], error) {
					v, st, err := indicator.SARNext(h.at(0, 0), h.at(1, 0), st, sp)
					return one(v), st, err
				}), nil
			},
		},
		{
			Name: "SUPERTREND", Group: GroupTrend, Help: "ATR trailing stop and its direction (+1 long, -1 short)",
			Inputs: hlc, Outputs: []string{"value", "direction"},
			Params: []Param{period(10), floatParam("multiplier", 3, "ATR multiple of the band")},
			lookback: func(p Params) (int, error) { return indicator.SupertrendLookback(supertrendParams(p)) },
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				sp := supertrendParams(p)
				st, err := c.SUPERTREND(in.cols[0], in.cols[1], in.cols[2], sp, out[0], out[1])
				if err != nil {
					return nil, err
				}
				return newStepper(in, 1, st, func(h *history, st indicator.SupertrendState[F]) ([]F, indicator.SupertrendState[F], error) {
					v, dir, st, err := indicator.SUPERTRENDNext(h.at(0, 0), h.at(1, 0), h.at(2, 0), st, sp)
					return []F{v, dir}, st, err
				}), nil
			},
		},
		{
			Name: "HT_DCPERIOD", Group: GroupCycle, Help: "Hilbert transform dominant cycle period",
			Inputs: closeOnly, Outputs: value,
			lookback: func(Params) (int, error) { return indicator.HTDCPeriodLookback() },
			compute: func(c indicator.Calc[F], in inputs, _ Params, out [][]F) (Stepper, error) {
				st, err := c.HTDCPeriod(in.cols[0], out[0])
				if err != nil {
					return nil, err
				}
				return newStepper(in, 1, st, func(h *history, st indicator.HTDCPeriodState[F]) ([]F, indicator.HTDCPeriodState[F], error) {
					v, st, err := indicator.HTDCPeriodNext(h.at(0, 0), st)
					return one(v), st, err
				}), nil
			},
		},
	}
}

func bbandsParams(p Params) indicator.BBandsParams {
	return indicator.BBandsParams{Period: p.n("period"), DevUp: p["nbdevup"], DevDown: p["nbdevdn"]}
}

func sarParams(p Params) indicator.SARParams {
	return indicator.SARParams{Acceleration: p["acceleration"], Maximum: p["maximum"]}
}

func supertrendParams(p Params) indicator.SupertrendParams {
	return indicator.SupertrendParams{Period: p.n("period"), Multiplier: p["multiplier"]}
}
