package indicator

// TRIMAState carries the double sum and the two inner window sums that
// slide with it.
type TRIMAState[F Float] struct {
	Sum  F `json:"sum"`  // sum of the inner sums currently averaged
	Lead F `json:"lead"` // newest inner sum
	Tail F `json:"tail"` // oldest inner sum, evicted next
}

// TRIMALookback returns period-1. Period must be at least 2.
func TRIMALookback(period int) (int, error) {
	if err := checkPeriod("TRIMA", period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// TRIMAWindow is the history TRIMANext needs: period+1 samples ending with
// the new one.
func TRIMAWindow(period int) int { return period + 1 }

// trimaSpans splits the period into the two SMA lengths whose composition is
// the triangular average.
func trimaSpans(period int) (n1, n2 int) {
	if period%2 == 1 {
		return (period + 1) / 2, (period + 1) / 2
	}
	return period/2 + 1, period / 2
}

// TRIMA writes the triangular moving average, an SMA of an SMA.
func (c Calc[F]) TRIMA(in []F, period int, out []F) (TRIMAState[F], error) {
	lb, err := TRIMALookback(period)
	if err != nil {
		return TRIMAState[F]{}, err
	}
	if err := c.prepare("TRIMA", lb, series(in), series(out)); err != nil {
		return TRIMAState[F]{}, err
	}
	n1, n2 := trimaSpans(period)
	div := F(n1) * F(n2)

	var b F
	for i := 0; i < n1; i++ {
		b += in[i]
	}
	st := TRIMAState[F]{Sum: b, Lead: b, Tail: b}
	for s := n1; s < period; s++ {
		b += in[s] - in[s-n1]
		st.Sum += b
	}
	st.Lead = b
	out[lb] = st.Sum / div

	for t := period; t < len(in); t++ {
		out[t], st = trimaStep(in[t-period:t+1], st, n1, n2, div)
	}
	return st, nil
}

func trimaStep[F Float](w []F, st TRIMAState[F], n1, n2 int, div F) (F, TRIMAState[F]) {
	last := len(w) - 1
	lead := st.Lead + w[last] - w[last-n1]
	st.Sum += lead - st.Tail
	st.Tail += w[last-n2+1] - w[last-n1-n2+1]
	st.Lead = lead
	return st.Sum / div, st
}

// TRIMANext advances the average. window holds TRIMAWindow(period) samples,
// the new one last.
func TRIMANext[F Float](window []F, st TRIMAState[F], period int) (F, TRIMAState[F], error) {
	if err := checkPeriod("TRIMA", period, 2); err != nil {
		return nan[F](), st, err
	}
	if err := checkWindow("TRIMA", window, TRIMAWindow(period)); err != nil {
		return nan[F](), st, err
	}
	n1, n2 := trimaSpans(period)
	v, st := trimaStep(window, st, n1, n2, F(n1)*F(n2))
	return v, st, nil
}
