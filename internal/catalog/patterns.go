package catalog

import "tacore/pkg/indicator"

func patterns() []Entry {
	var out []Entry
	for _, pattern := range indicator.Patterns() {
		pattern := pattern
		out = append(out, Entry{
			Name: "CDL" + pattern.String(), Group: GroupPattern,
			Help:   "candlestick pattern, -1 bearish, 0 none, +1 bullish",
			Inputs: ohlc, Outputs: []string{"signal"},
			Params: []Param{
				period(10),
				floatParam("longbody", 1, "long body as a multiple of the average body"),
				floatParam("shortbody", 1, "short body as a multiple of the average body"),
				floatParam("shadowlong", 2, "long shadow as a multiple of the body"),
				floatParam("shadowshort", 0.1, "short shadow as a multiple of the average body"),
			},
			lookback: func(p Params) (int, error) { return indicator.CandleLookback(candleParams(p)) },
			compute: func(c indicator.Calc[F], in inputs, p Params, out [][]F) (Stepper, error) {
				cp := candleParams(p)
				st, err := c.Candle(pattern, in.cols[0], in.cols[1], in.cols[2], in.cols[3], cp, out[0])
				if err != nil {
					return nil, err
				}
				return newStepper(in, 1, st, func(h *history, st indicator.CandleState[F]) ([]F, indicator.CandleState[F], error) {
					sig, st, err := indicator.CandleNext(pattern, h.at(0, 0), h.at(1, 0), h.at(2, 0), h.at(3, 0), st, cp)
					return one(F(sig)), st, err
				}), nil
			},
		})
	}
	return out
}

func candleParams(p Params) indicator.CandleParams {
	return indicator.CandleParams{
		Period:      p.n("period"),
		LongBody:    p["longbody"],
		ShortBody:   p["shortbody"],
		ShadowLong:  p["shadowlong"],
		ShadowShort: p["shadowshort"],
	}
}
