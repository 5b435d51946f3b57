package indicator

// KAMAState carries the adaptive average and the running sum of absolute
// one-bar changes over the window.
type KAMAState[F Float] struct {
	Value      F `json:"value"`
	Volatility F `json:"volatility"`
}

// KAMALookback returns period. Period must be at least 2.
func KAMALookback(period int) (int, error) {
	if err := checkPeriod("KAMA", period, 2); err != nil {
		return 0, err
	}
	return period, nil
}

// KAMAWindow is the history KAMANext needs: period+2 samples ending with the
// new one.
func KAMAWindow(period int) int { return period + 2 }

const (
	kamaFast = 2.0 / 3.0
	kamaSlow = 2.0 / 31.0
)

// KAMA writes Kaufman's adaptive moving average. The smoothing constant
// moves between the 2- and 30-bar EMA factors with the efficiency ratio
// |change| / volatility; a flat window counts as fully efficient.
func (c Calc[F]) KAMA(in []F, period int, out []F) (KAMAState[F], error) {
	lb, err := KAMALookback(period)
	if err != nil {
		return KAMAState[F]{}, err
	}
	if err := c.prepare("KAMA", lb, series(in), series(out)); err != nil {
		return KAMAState[F]{}, err
	}
	var st KAMAState[F]
	for i := 1; i <= period; i++ {
		st.Volatility += abs(in[i] - in[i-1])
	}
	st.Value = kamaBlend(in[period], in[period-1], abs(in[period]-in[0]), st.Volatility)
	out[lb] = st.Value
	for t := period + 1; t < len(in); t++ {
		out[t], st = kamaStep(in[t-period-1:t+1], st, period)
	}
	return st, nil
}

func kamaStep[F Float](w []F, st KAMAState[F], period int) (F, KAMAState[F]) {
	last := len(w) - 1
	x := w[last]
	st.Volatility += abs(x-w[last-1]) - abs(w[last-period]-w[last-period-1])
	st.Value = kamaBlend(x, st.Value, abs(x-w[last-period]), st.Volatility)
	return st.Value, st
}

func kamaBlend[F Float](x, prev, change, volatility F) F {
	er := F(1)
	if volatility != 0 {
		er = change / volatility
	}
	sc := er*(F(kamaFast)-F(kamaSlow)) + F(kamaSlow)
	sc *= sc
	return prev + sc*(x-prev)
}

// KAMANext advances the average. window holds KAMAWindow(period) samples,
// the new one last.
func KAMANext[F Float](window []F, st KAMAState[F], period int) (F, KAMAState[F], error) {
	if err := checkPeriod("KAMA", period, 2); err != nil {
		return nan[F](), st, err
	}
	if err := checkWindow("KAMA", window, KAMAWindow(period)); err != nil {
		return nan[F](), st, err
	}
	v, st := kamaStep(window, st, period)
	return v, st, nil
}
