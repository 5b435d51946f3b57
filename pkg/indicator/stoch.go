package indicator

// StochParams are the raw %K window and the two SMA smoothing periods.
type StochParams struct {
	FastK int `json:"fast_k"`
	SlowK int `json:"slow_k"`
	SlowD int `json:"slow_d"`
}

// DefaultStochParams returns 5/3/3.
func DefaultStochParams() StochParams { return StochParams{FastK: 5, SlowK: 3, SlowD: 3} }

// StochState carries the window extremes plus the raw %K and slow %K values
// the two smoothing sums still contain.
type StochState[F Float] struct {
	Range RangeState[F] `json:"range"`
	K     Lag[F]        `json:"k"`
	SumK  F             `json:"sum_k"`
	D     Lag[F]        `json:"d"`
	SumD  F             `json:"sum_d"`
}

// StochLookback returns (fastK-1) + (slowK-1) + (slowD-1). Every period must
// be at least 1.
func StochLookback(p StochParams) (int, error) {
	for _, n := range []int{p.FastK, p.SlowK, p.SlowD} {
		if err := checkPeriod("STOCH", n, 1); err != nil {
			return 0, err
		}
	}
	return p.FastK - 1 + p.SlowK - 1 + p.SlowD - 1, nil
}

// stochRaw is the raw %K. A flat window reads 0.
func stochRaw[F Float](close, hh, ll F) F {
	if hh == ll {
		return 0
	}
	return 100 * (close - ll) / (hh - ll)
}

// STOCH writes slow %K and slow %D, in that order.
func (c Calc[F]) STOCH(high, low, close []F, p StochParams, slowK, slowD []F) (StochState[F], error) {
	lb, err := StochLookback(p)
	if err != nil {
		return StochState[F]{}, err
	}
	if err := c.prepare("STOCH", lb, series(high, low, close), series(slowK, slowD)); err != nil {
		return StochState[F]{}, err
	}
	fk, fd := F(p.SlowK), F(p.SlowD)
	a := p.FastK - 1
	st := StochState[F]{
		Range: RangeState[F]{High: maxScan(high[:p.FastK]), Low: minScan(low[:p.FastK])},
		K:     Lag[F]{Values: make([]F, p.SlowK)},
		D:     Lag[F]{Values: make([]F, p.SlowD)},
	}
	for t := a; t < len(close); t++ {
		if t > a {
			_, st.Range = rangeStep(high[t-a:t+1], low[t-a:t+1], st.Range)
		}
		k := stochSlowK(close[t], &st, fk)
		if t < a+p.SlowK-1 {
			continue
		}
		d := stochSlowD(k, &st, fd)
		if t >= lb {
			slowK[t], slowD[t] = k, d
		}
	}
	st.K, st.D = st.K.clone(), st.D.clone()
	return st, nil
}

// The rings start zero-filled, so while seeding, evicting Oldest subtracts
// nothing.
func stochSlowK[F Float](close F, st *StochState[F], fk F) F {
	raw := stochRaw(close, st.Range.High.Value, st.Range.Low.Value)
	st.SumK += raw - st.K.Oldest()
	st.K.push(raw)
	return st.SumK / fk
}

func stochSlowD[F Float](k F, st *StochState[F], fd F) F {
	st.SumD += k - st.D.Oldest()
	st.D.push(k)
	return st.SumD / fd
}

// StochNext advances STOCH by one bar. high and low hold the last FastK
// samples, the new one last. Outputs: slowK, slowD.
func StochNext[F Float](high, low []F, close F, st StochState[F], p StochParams) (k, d F, _ StochState[F], err error) {
	if _, err := StochLookback(p); err != nil {
		return nan[F](), nan[F](), st, err
	}
	if err := checkWindow("STOCH", high, p.FastK); err != nil {
		return nan[F](), nan[F](), st, err
	}
	if err := checkWindow("STOCH", low, p.FastK); err != nil {
		return nan[F](), nan[F](), st, err
	}
	if st.K.Len() != p.SlowK || st.D.Len() != p.SlowD {
		return nan[F](), nan[F](), st, errorf(ErrInvalidData, "STOCH", "state was built for other smoothing periods")
	}
	st.K, st.D = st.K.clone(), st.D.clone()
	_, st.Range = rangeStep(high, low, st.Range)
	k = stochSlowK(close, &st, F(p.SlowK))
	d = stochSlowD(k, &st, F(p.SlowD))
	return k, d, st, nil
}

// WILLRLookback returns period-1. Period must be at least 2.
func WILLRLookback(period int) (int, error) {
	if err := checkPeriod("WILLR", period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// willr is Williams' %R in [-100, 0]. A flat window reads 0.
func willr[F Float](close, hh, ll F) F {
	if hh == ll {
		return 0
	}
	return -100 * (hh - close) / (hh - ll)
}

// WILLR writes Williams' %R.
func (c Calc[F]) WILLR(high, low, close []F, period int, out []F) (RangeState[F], error) {
	lb, err := WILLRLookback(period)
	if err != nil {
		return RangeState[F]{}, err
	}
	if err := c.prepare("WILLR", lb, series(high, low, close), series(out)); err != nil {
		return RangeState[F]{}, err
	}
	st := RangeState[F]{High: maxScan(high[:period]), Low: minScan(low[:period])}
	out[lb] = willr(close[lb], st.High.Value, st.Low.Value)
	for t := period; t < len(close); t++ {
		_, st = rangeStep(high[t-lb:t+1], low[t-lb:t+1], st)
		out[t] = willr(close[t], st.High.Value, st.Low.Value)
	}
	return st, nil
}

// WILLRNext advances %R. high and low hold the last period samples.
func WILLRNext[F Float](high, low []F, close F, st RangeState[F], period int) (F, RangeState[F], error) {
	if err := checkPeriod("WILLR", period, 2); err != nil {
		return nan[F](), st, err
	}
	if err := checkWindow("WILLR", high, period); err != nil {
		return nan[F](), st, err
	}
	if err := checkWindow("WILLR", low, period); err != nil {
		return nan[F](), st, err
	}
	_, st = rangeStep(high, low, st)
	return willr(close, st.High.Value, st.Low.Value), st, nil
}
