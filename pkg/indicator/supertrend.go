package indicator

// SupertrendParams are the ATR period and the band multiplier.
type SupertrendParams struct {
	Period     int     `json:"period"`
	Multiplier float64 `json:"multiplier"`
}

// DefaultSupertrendParams returns 10 periods at 3 ATRs.
func DefaultSupertrendParams() SupertrendParams {
	return SupertrendParams{Period: 10, Multiplier: 3}
}

// SupertrendState carries the ATR, both final bands and the trend side.
type SupertrendState[F Float] struct {
	ATR   ATRState[F] `json:"atr"`
	Upper F           `json:"upper"`
	Lower F           `json:"lower"`
	Long  bool        `json:"long"`
}

// SupertrendLookback returns period. Period must be at least 1 and the
// multiplier positive.
func SupertrendLookback(p SupertrendParams) (int, error) {
	if err := checkPeriod("SUPERTREND", p.Period, 1); err != nil {
		return 0, err
	}
	if !(p.Multiplier > 0) {
		return 0, errorf(ErrInvalidParameter, "SUPERTREND", "multiplier %g <= 0", p.Multiplier)
	}
	return p.Period, nil
}

func supertrendOut[F Float](st SupertrendState[F]) (value, direction F) {
	if st.Long {
		return st.Lower, 1
	}
	return st.Upper, -1
}

func supertrendStep[F Float](h, l, c F, st SupertrendState[F], n, m F) SupertrendState[F] {
	prevClose := st.ATR.Close
	st.ATR = atrStep(h, l, c, st.ATR, n)
	mid := (h + l) / 2
	upper, lower := mid+m*st.ATR.Value, mid-m*st.ATR.Value
	if upper < st.Upper || prevClose > st.Upper {
		st.Upper = upper
	}
	if lower > st.Lower || prevClose < st.Lower {
		st.Lower = lower
	}
	switch {
	case st.Long && c < st.Lower:
		st.Long = false
	case !st.Long && c > st.Upper:
		st.Long = true
	}
	return st
}

// SUPERTREND writes the trailing stop and the trend direction (+1 long,
// -1 short), in that order.
func (c Calc[F]) SUPERTREND(high, low, close []F, p SupertrendParams, value, direction []F) (SupertrendState[F], error) {
	lb, err := SupertrendLookback(p)
	if err != nil {
		return SupertrendState[F]{}, err
	}
	if err := c.prepare("SUPERTREND", lb, series(high, low, close), series(value, direction)); err != nil {
		return SupertrendState[F]{}, err
	}
	n, m := F(p.Period), F(p.Multiplier)
	st := SupertrendState[F]{ATR: atrSeed(high, low, close, p.Period)}
	mid := (high[lb] + low[lb]) / 2
	st.Upper, st.Lower = mid+m*st.ATR.Value, mid-m*st.ATR.Value
	st.Long = close[lb] >= mid
	value[lb], direction[lb] = supertrendOut(st)
	for t := lb + 1; t < len(close); t++ {
		st = supertrendStep(high[t], low[t], close[t], st, n, m)
		value[t], direction[t] = supertrendOut(st)
	}
	return st, nil
}

// SUPERTRENDNext advances the stop by one bar. Outputs: value, direction.
func SUPERTRENDNext[F Float](high, low, close F, st SupertrendState[F], p SupertrendParams) (v, dir F, _ SupertrendState[F], err error) {
	if _, err := SupertrendLookback(p); err != nil {
		return nan[F](), nan[F](), st, err
	}
	st = supertrendStep(high, low, close, st, F(p.Period), F(p.Multiplier))
	v, dir = supertrendOut(st)
	return v, dir, st, nil
}
