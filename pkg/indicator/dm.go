package indicator

// DMState carries the previous bar and Wilder's running sums of +DM, -DM
// and true range.
type DMState[F Float] struct {
	High    F `json:"high"`
	Low     F `json:"low"`
	Close   F `json:"close"`
	PlusDM  F `json:"plus_dm"`
	MinusDM F `json:"minus_dm"`
	TR      F `json:"tr"`
}

// ADXState adds the smoothed DX to DMState.
type ADXState[F Float] struct {
	DM    DMState[F] `json:"dm"`
	Value F          `json:"value"`
}

func dmLookback(fn string, period int) (int, error) {
	if err := checkPeriod(fn, period, 2); err != nil {
		return 0, err
	}
	return period, nil
}

// DILookback returns period. Period must be at least 2.
func DILookback(period int) (int, error) { return dmLookback("DI", period) }

// DXLookback returns period. Period must be at least 2.
func DXLookback(period int) (int, error) { return dmLookback("DX", period) }

// ADXLookback returns 2*period-1. Period must be at least 2.
func ADXLookback(period int) (int, error) {
	if err := checkPeriod("ADX", period, 2); err != nil {
		return 0, err
	}
	return 2*period - 1, nil
}

// directional splits one bar's move into +DM and -DM; at most one is
// non-zero.
func directional[F Float](h, l, prevH, prevL F) (plus, minus F) {
	up, down := h-prevH, prevL-l
	if up > 0 && up > down {
		plus = up
	}
	if down > 0 && down > up {
		minus = down
	}
	return plus, minus
}

func trueRange[F Float](h, l, prevClose F) F {
	return maxOf(h-l, maxOf(abs(h-prevClose), abs(l-prevClose)))
}

// dmSeed sums the first period-1 moves, leaving the state at bar period-1.
func dmSeed[F Float](high, low, close []F, period int) DMState[F] {
	var st DMState[F]
	for i := 1; i < period; i++ {
		p, m := directional(high[i], low[i], high[i-1], low[i-1])
		st.PlusDM += p
		st.MinusDM += m
		st.TR += trueRange(high[i], low[i], close[i-1])
	}
	st.High, st.Low, st.Close = high[period-1], low[period-1], close[period-1]
	return st
}

func dmStep[F Float](h, l, c F, st DMState[F], n F) DMState[F] {
	p, m := directional(h, l, st.High, st.Low)
	st.PlusDM = st.PlusDM - st.PlusDM/n + p
	st.MinusDM = st.MinusDM - st.MinusDM/n + m
	st.TR = st.TR - st.TR/n + trueRange(h, l, st.Close)
	st.High, st.Low, st.Close = h, l, c
	return st
}

func diValues[F Float](st DMState[F]) (plus, minus F) {
	if st.TR == 0 {
		return 0, 0
	}
	return 100 * st.PlusDM / st.TR, 100 * st.MinusDM / st.TR
}

func dxValue[F Float](st DMState[F]) F {
	p, m := diValues(st)
	if p+m == 0 {
		return 0
	}
	return 100 * abs(p-m) / (p + m)
}

// DI writes +DI and -DI, in that order.
func (c Calc[F]) DI(high, low, close []F, period int, plus, minus []F) (DMState[F], error) {
	lb, err := DILookback(period)
	if err != nil {
		return DMState[F]{}, err
	}
	if err := c.prepare("DI", lb, series(high, low, close), series(plus, minus)); err != nil {
		return DMState[F]{}, err
	}
	n := F(period)
	st := dmSeed(high, low, close, period)
	for t := period; t < len(close); t++ {
		st = dmStep(high[t], low[t], close[t], st, n)
		plus[t], minus[t] = diValues(st)
	}
	return st, nil
}

// DINext advances the directional indicators by one bar. Outputs: +DI, -DI.
func DINext[F Float](high, low, close F, st DMState[F], period int) (plus, minus F, _ DMState[F], err error) {
	if err := checkPeriod("DI", period, 2); err != nil {
		return nan[F](), nan[F](), st, err
	}
	st = dmStep(high, low, close, st, F(period))
	plus, minus = diValues(st)
	return plus, minus, st, nil
}

// DX writes the directional movement index.
func (c Calc[F]) DX(high, low, close []F, period int, out []F) (DMState[F], error) {
	lb, err := DXLookback(period)
	if err != nil {
		return DMState[F]{}, err
	}
	if err := c.prepare("DX", lb, series(high, low, close), series(out)); err != nil {
		return DMState[F]{}, err
	}
	n := F(period)
	st := dmSeed(high, low, close, period)
	for t := period; t < len(close); t++ {
		st = dmStep(high[t], low[t], close[t], st, n)
		out[t] = dxValue(st)
	}
	return st, nil
}

// DXNext advances DX by one bar.
func DXNext[F Float](high, low, close F, st DMState[F], period int) (F, DMState[F], error) {
	if err := checkPeriod("DX", period, 2); err != nil {
		return nan[F](), st, err
	}
	st = dmStep(high, low, close, st, F(period))
	return dxValue(st), st, nil
}

// ADX writes the average directional index: DX smoothed Wilder-style,
// seeded with the mean of the first period DX values.
func (c Calc[F]) ADX(high, low, close []F, period int, out []F) (ADXState[F], error) {
	lb, err := ADXLookback(period)
	if err != nil {
		return ADXState[F]{}, err
	}
	if err := c.prepare("ADX", lb, series(high, low, close), series(out)); err != nil {
		return ADXState[F]{}, err
	}
	n := F(period)
	st := ADXState[F]{DM: dmSeed(high, low, close, period)}
	for t := period; t <= lb; t++ {
		st.DM = dmStep(high[t], low[t], close[t], st.DM, n)
		st.Value += dxValue(st.DM)
	}
	st.Value /= n
	out[lb] = st.Value
	for t := lb + 1; t < len(close); t++ {
		st = adxStep(high[t], low[t], close[t], st, n)
		out[t] = st.Value
	}
	return st, nil
}

func adxStep[F Float](h, l, c F, st ADXState[F], n F) ADXState[F] {
	st.DM = dmStep(h, l, c, st.DM, n)
	st.Value = wilderStep(dxValue(st.DM), st.Value, n)
	return st
}

// ADXNext advances ADX by one bar.
func ADXNext[F Float](high, low, close F, st ADXState[F], period int) (F, ADXState[F], error) {
	if err := checkPeriod("ADX", period, 2); err != nil {
		return nan[F](), st, err
	}
	st = adxStep(high, low, close, st, F(period))
	return st.Value, st, nil
}
