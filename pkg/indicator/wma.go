package indicator

// WMAState carries the weighted numerator and the plain window sum.
type WMAState[F Float] struct {
	Numerator F `json:"numerator"`
	Sum       F `json:"sum"`
}

// WMALookback returns period-1. Period must be at least 2.
func WMALookback(period int) (int, error) {
	if err := checkPeriod("WMA", period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// WMA writes the linearly weighted moving average (newest weight period,
// oldest weight 1).
func (c Calc[F]) WMA(in []F, period int, out []F) (WMAState[F], error) {
	lb, err := WMALookback(period)
	if err != nil {
		return WMAState[F]{}, err
	}
	if err := c.prepare("WMA", lb, series(in), series(out)); err != nil {
		return WMAState[F]{}, err
	}
	n := F(period)
	div := n * (n + 1) / 2
	var st WMAState[F]
	for i := 0; i < period; i++ {
		st.Numerator += F(i+1) * in[i]
		st.Sum += in[i]
	}
	out[lb] = st.Numerator / div
	for t := period; t < len(in); t++ {
		out[t], st = wmaStep(in[t], in[t-period], st, n, div)
	}
	return st, nil
}

// Every weight drops by one, which removes the old sum once from the
// numerator; x enters at the top weight.
func wmaStep[F Float](x, evicted F, st WMAState[F], n, div F) (F, WMAState[F]) {
	st.Numerator += n*x - st.Sum
	st.Sum += x - evicted
	return st.Numerator / div, st
}

// WMANext advances the average by x; evicted is the sample period
// positions before x.
func WMANext[F Float](x, evicted F, st WMAState[F], period int) (F, WMAState[F], error) {
	if err := checkPeriod("WMA", period, 2); err != nil {
		return nan[F](), st, err
	}
	n := F(period)
	v, st := wmaStep(x, evicted, st, n, n*(n+1)/2)
	return v, st, nil
}
