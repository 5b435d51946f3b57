package indicator

// SMAState carries the running window sum.
type SMAState[F Float] struct {
	Sum F `json:"sum"`
}

// SMALookback returns period-1. Period must be at least 2.
func SMALookback(period int) (int, error) {
	if err := checkPeriod("SMA", period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// SMA writes the simple moving average of in to out.
func (c Calc[F]) SMA(in []F, period int, out []F) (SMAState[F], error) {
	lb, err := SMALookback(period)
	if err != nil {
		return SMAState[F]{}, err
	}
	if err := c.prepare("SMA", lb, series(in), series(out)); err != nil {
		return SMAState[F]{}, err
	}
	n := F(period)
	var st SMAState[F]
	for i := 0; i < period; i++ {
		st.Sum += in[i]
	}
	out[lb] = st.Sum / n
	for t := period; t < len(in); t++ {
		out[t], st = smaStep(in[t], in[t-period], st, n)
	}
	return st, nil
}

func smaStep[F Float](x, evicted F, st SMAState[F], n F) (F, SMAState[F]) {
	st.Sum += x - evicted
	return st.Sum / n, st
}

// SMANext advances the average by x. evicted is the sample leaving the
// window, the one period positions before x.
func SMANext[F Float](x, evicted F, st SMAState[F], period int) (F, SMAState[F], error) {
	if err := checkPeriod("SMA", period, 2); err != nil {
		return nan[F](), st, err
	}
	v, st := smaStep(x, evicted, st, F(period))
	return v, st, nil
}
