package indicator

// TRangeState carries the previous close.
type TRangeState[F Float] struct {
	Close F `json:"close"`
}

// TRANGELookback returns 1.
func TRANGELookback() (int, error) { return 1, nil }

// TRANGE writes the true range: the bar's range widened to include the
// previous close.
func (c Calc[F]) TRANGE(high, low, close []F, out []F) (TRangeState[F], error) {
	lb, _ := TRANGELookback()
	if err := c.prepare("TRANGE", lb, series(high, low, close), series(out)); err != nil {
		return TRangeState[F]{}, err
	}
	st := TRangeState[F]{Close: close[0]}
	for t := 1; t < len(close); t++ {
		out[t], st, _ = TRANGENext(high[t], low[t], close[t], st)
	}
	return st, nil
}

// TRANGENext is the true range of one bar.
func TRANGENext[F Float](high, low, close F, st TRangeState[F]) (F, TRangeState[F], error) {
	tr := trueRange(high, low, st.Close)
	return tr, TRangeState[F]{Close: close}, nil
}

// ATRState carries the average true range and the previous close.
type ATRState[F Float] struct {
	Value F `json:"value"`
	Close F `json:"close"`
}

// ATRLookback returns period. Period must be at least 1.
func ATRLookback(period int) (int, error) {
	if err := checkPeriod("ATR", period, 1); err != nil {
		return 0, err
	}
	return period, nil
}

// NATRLookback returns period. Period must be at least 1.
func NATRLookback(period int) (int, error) {
	if err := checkPeriod("NATR", period, 1); err != nil {
		return 0, err
	}
	return period, nil
}

// atrSeed averages the first period true ranges, leaving the state at bar
// period.
func atrSeed[F Float](high, low, close []F, period int) ATRState[F] {
	var sum F
	for i := 1; i <= period; i++ {
		sum += trueRange(high[i], low[i], close[i-1])
	}
	return ATRState[F]{Value: sum / F(period), Close: close[period]}
}

func atrStep[F Float](h, l, c F, st ATRState[F], n F) ATRState[F] {
	st.Value = wilderStep(trueRange(h, l, st.Close), st.Value, n)
	st.Close = c
	return st
}

func natrValue[F Float](atr, close F) F {
	if close == 0 {
		return 0
	}
	return 100 * atr / close
}

// ATR writes Wilder's average true range.
func (c Calc[F]) ATR(high, low, close []F, period int, out []F) (ATRState[F], error) {
	return c.atr("ATR", high, low, close, period, out, func(atr, _ F) F { return atr })
}

// NATR writes the ATR as a percentage of the close; a zero close yields 0.
func (c Calc[F]) NATR(high, low, close []F, period int, out []F) (ATRState[F], error) {
	return c.atr("NATR", high, low, close, period, out, natrValue[F])
}

func (c Calc[F]) atr(fn string, high, low, close []F, period int, out []F, value func(atr, close F) F) (ATRState[F], error) {
	if err := checkPeriod(fn, period, 1); err != nil {
		return ATRState[F]{}, err
	}
	lb := period
	if err := c.prepare(fn, lb, series(high, low, close), series(out)); err != nil {
		return ATRState[F]{}, err
	}
	n := F(period)
	st := atrSeed(high, low, close, period)
	out[lb] = value(st.Value, close[lb])
	for t := lb + 1; t < len(close); t++ {
		st = atrStep(high[t], low[t], close[t], st, n)
		out[t] = value(st.Value, close[t])
	}
	return st, nil
}

// ATRNext advances ATR by one bar.
func ATRNext[F Float](high, low, close F, st ATRState[F], period int) (F, ATRState[F], error) {
	if err := checkPeriod("ATR", period, 1); err != nil {
		return nan[F](), st, err
	}
	st = atrStep(high, low, close, st, F(period))
	return st.Value, st, nil
}

// NATRNext advances NATR by one bar.
func NATRNext[F Float](high, low, close F, st ATRState[F], period int) (F, ATRState[F], error) {
	if err := checkPeriod("NATR", period, 1); err != nil {
		return nan[F](), st, err
	}
	st = atrStep(high, low, close, st, F(period))
	return natrValue(st.Value, close), st, nil
}

// ADRLookback returns period-1. Period must be at least 2.
func ADRLookback(period int) (int, error) {
	if err := checkPeriod("ADR", period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// ADR writes the average daily range, the SMA of high-low.
func (c Calc[F]) ADR(high, low []F, period int, out []F) (SMAState[F], error) {
	lb, err := ADRLookback(period)
	if err != nil {
		return SMAState[F]{}, err
	}
	if err := c.prepare("ADR", lb, series(high, low), series(out)); err != nil {
		return SMAState[F]{}, err
	}
	rng := make([]F, len(high))
	for i := range rng {
		rng[i] = high[i] - low[i]
	}
	return c.inner().SMA(rng, period, out)
}

// ADRNext advances ADR by one bar; evHigh and evLow are the bar period
// positions back.
func ADRNext[F Float](high, low, evHigh, evLow F, st SMAState[F], period int) (F, SMAState[F], error) {
	if err := checkPeriod("ADR", period, 2); err != nil {
		return nan[F](), st, err
	}
	return SMANext(high-low, evHigh-evLow, st, period)
}
