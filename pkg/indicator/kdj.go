package indicator

// KDJParams are the RSV window and the K and D smoothing weights.
type KDJParams struct {
	Period int `json:"period"`
	M1     int `json:"m1"`
	M2     int `json:"m2"`
}

// DefaultKDJParams returns 9/3/3.
func DefaultKDJParams() KDJParams { return KDJParams{Period: 9, M1: 3, M2: 3} }

// KDJState carries the window extremes and the previous K and D.
type KDJState[F Float] struct {
	Range RangeState[F] `json:"range"`
	K     F             `json:"k"`
	D     F             `json:"d"`
}

// KDJLookback returns period-1. Period must be at least 2, M1 and M2 at
// least 1.
func KDJLookback(p KDJParams) (int, error) {
	if err := checkPeriod("KDJ", p.Period, 2); err != nil {
		return 0, err
	}
	if p.M1 < 1 || p.M2 < 1 {
		return 0, errorf(ErrInvalidParameter, "KDJ", "smoothing %d/%d < 1", p.M1, p.M2)
	}
	return p.Period - 1, nil
}

// rsv reads 50 on a flat window.
func rsv[F Float](close, hh, ll F) F {
	if hh == ll {
		return 50
	}
	return 100 * (close - ll) / (hh - ll)
}

func kdjSmooth[F Float](close F, st KDJState[F], m1, m2 F) (k, d, j F, _ KDJState[F]) {
	r := rsv(close, st.Range.High.Value, st.Range.Low.Value)
	st.K = ((m1-1)*st.K + r) / m1
	st.D = ((m2-1)*st.D + st.K) / m2
	return st.K, st.D, 3*st.K - 2*st.D, st
}

// KDJ writes K, D and J, in that order. K and D start from 50.
func (c Calc[F]) KDJ(high, low, close []F, p KDJParams, k, d, j []F) (KDJState[F], error) {
	lb, err := KDJLookback(p)
	if err != nil {
		return KDJState[F]{}, err
	}
	if err := c.prepare("KDJ", lb, series(high, low, close), series(k, d, j)); err != nil {
		return KDJState[F]{}, err
	}
	m1, m2 := F(p.M1), F(p.M2)
	st := KDJState[F]{
		Range: RangeState[F]{High: maxScan(high[:p.Period]), Low: minScan(low[:p.Period])},
		K:     50,
		D:     50,
	}
	k[lb], d[lb], j[lb], st = kdjSmooth(close[lb], st, m1, m2)
	for t := p.Period; t < len(close); t++ {
		_, st.Range = rangeStep(high[t-lb:t+1], low[t-lb:t+1], st.Range)
		k[t], d[t], j[t], st = kdjSmooth(close[t], st, m1, m2)
	}
	return st, nil
}

// KDJNext advances KDJ by one bar. high and low hold the last Period
// samples. Outputs: k, d, j.
func KDJNext[F Float](high, low []F, close F, st KDJState[F], p KDJParams) (k, d, j F, _ KDJState[F], err error) {
	if _, err := KDJLookback(p); err != nil {
		return nan[F](), nan[F](), nan[F](), st, err
	}
	if err := checkWindow("KDJ", high, p.Period); err != nil {
		return nan[F](), nan[F](), nan[F](), st, err
	}
	if err := checkWindow("KDJ", low, p.Period); err != nil {
		return nan[F](), nan[F](), nan[F](), st, err
	}
	_, st.Range = rangeStep(high, low, st.Range)
	k, d, j, st = kdjSmooth(close, st, F(p.M1), F(p.M2))
	return k, d, j, st, nil
}
