package indicator

// EMAState carries the previous average. RMA uses the same shape.
type EMAState[F Float] struct {
	Value F `json:"value"`
}

// EMALookback returns period-1. Period must be at least 2.
func EMALookback(period int) (int, error) {
	if err := checkPeriod("EMA", period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// EMA writes the exponential moving average of in to out, smoothing factor
// 2/(period+1), seeded with the simple average of the first period samples.
func (c Calc[F]) EMA(in []F, period int, out []F) (EMAState[F], error) {
	lb, err := EMALookback(period)
	if err != nil {
		return EMAState[F]{}, err
	}
	if err := c.prepare("EMA", lb, series(in), series(out)); err != nil {
		return EMAState[F]{}, err
	}
	k := emaK[F](period)
	v := mean(in[:period])
	out[lb] = v
	for t := period; t < len(in); t++ {
		v = emaStep(in[t], v, k)
		out[t] = v
	}
	return EMAState[F]{Value: v}, nil
}

// EMANext advances the average by x.
func EMANext[F Float](x F, st EMAState[F], period int) (F, EMAState[F], error) {
	if err := checkPeriod("EMA", period, 2); err != nil {
		return nan[F](), st, err
	}
	st.Value = emaStep(x, st.Value, emaK[F](period))
	return st.Value, st, nil
}

func emaK[F Float](period int) F { return 2 / (F(period) + 1) }

func emaStep[F Float](x, prev, k F) F { return prev + k*(x-prev) }

// RMALookback returns period-1. Period must be at least 2.
func RMALookback(period int) (int, error) {
	if err := checkPeriod("RMA", period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// RMA writes Wilder's running average (smoothing factor 1/period), seeded
// like EMA.
func (c Calc[F]) RMA(in []F, period int, out []F) (EMAState[F], error) {
	lb, err := RMALookback(period)
	if err != nil {
		return EMAState[F]{}, err
	}
	if err := c.prepare("RMA", lb, series(in), series(out)); err != nil {
		return EMAState[F]{}, err
	}
	n := F(period)
	v := mean(in[:period])
	out[lb] = v
	for t := period; t < len(in); t++ {
		v = wilderStep(in[t], v, n)
		out[t] = v
	}
	return EMAState[F]{Value: v}, nil
}

// RMANext advances Wilder's average by x.
func RMANext[F Float](x F, st EMAState[F], period int) (F, EMAState[F], error) {
	if err := checkPeriod("RMA", period, 2); err != nil {
		return nan[F](), st, err
	}
	st.Value = wilderStep(x, st.Value, F(period))
	return st.Value, st, nil
}

func wilderStep[F Float](x, prev, n F) F { return (prev*(n-1) + x) / n }

func mean[F Float](xs []F) F {
	var s F
	for _, x := range xs {
		s += x
	}
	return s / F(len(xs))
}
