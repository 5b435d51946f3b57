package indicator

import "math"

// VarState carries the window sum and sum of squares.
type VarState[F Float] struct {
	Sum   F `json:"sum"`
	SumSq F `json:"sum_sq"`
}

func varLookback(fn string, period int) (int, error) {
	if err := checkPeriod(fn, period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// VARLookback returns period-1. Period must be at least 2.
func VARLookback(period int) (int, error) { return varLookback("VAR", period) }

// STDDEVLookback returns period-1. Period must be at least 2.
func STDDEVLookback(period int) (int, error) { return varLookback("STDDEV", period) }

func varSeed[F Float](in []F) VarState[F] {
	var st VarState[F]
	for _, x := range in {
		st.Sum += x
		st.SumSq += x * x
	}
	return st
}

func varStep[F Float](x, evicted F, st VarState[F]) VarState[F] {
	st.Sum += x - evicted
	st.SumSq += x*x - evicted*evicted
	return st
}

// moments returns the window mean and population variance. Rounding in the
// running sums can push a flat window's variance just below zero; it is
// clamped.
func moments[F Float](st VarState[F], n F) (mean, variance F) {
	mean = st.Sum / n
	variance = st.SumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, variance
}

func sqrt[F Float](x F) F { return F(math.Sqrt(float64(x))) }

// windowed runs a sum/sum-of-squares window over in and hands emit the
// moments at every defined position.
func (c Calc[F]) windowed(fn string, in []F, period int, outs [][]F, emit func(t int, mean, variance F)) (VarState[F], error) {
	lb, err := varLookback(fn, period)
	if err != nil {
		return VarState[F]{}, err
	}
	if err := c.prepare(fn, lb, series(in), outs); err != nil {
		return VarState[F]{}, err
	}
	n := F(period)
	st := varSeed(in[:period])
	m, v := moments(st, n)
	emit(lb, m, v)
	for t := period; t < len(in); t++ {
		st = varStep(in[t], in[t-period], st)
		m, v = moments(st, n)
		emit(t, m, v)
	}
	return st, nil
}

// VAR writes the population variance over each window.
func (c Calc[F]) VAR(in []F, period int, out []F) (VarState[F], error) {
	return c.windowed("VAR", in, period, series(out), func(t int, _, v F) { out[t] = v })
}

// VARNext advances VAR; evicted is the sample period positions before x.
func VARNext[F Float](x, evicted F, st VarState[F], period int) (F, VarState[F], error) {
	if err := checkPeriod("VAR", period, 2); err != nil {
		return nan[F](), st, err
	}
	st = varStep(x, evicted, st)
	_, v := moments(st, F(period))
	return v, st, nil
}

// STDDEV writes nbDev times the population standard deviation.
func (c Calc[F]) STDDEV(in []F, period int, nbDev float64, out []F) (VarState[F], error) {
	k := F(nbDev)
	return c.windowed("STDDEV", in, period, series(out), func(t int, _, v F) { out[t] = sqrt(v) * k })
}

// STDDEVNext advances STDDEV; evicted is the sample period positions before x.
func STDDEVNext[F Float](x, evicted F, st VarState[F], period int, nbDev float64) (F, VarState[F], error) {
	if err := checkPeriod("STDDEV", period, 2); err != nil {
		return nan[F](), st, err
	}
	st = varStep(x, evicted, st)
	_, v := moments(st, F(period))
	return sqrt(v) * F(nbDev), st, nil
}

// BBandsParams are the window and the deviation multipliers of each band.
type BBandsParams struct {
	Period  int     `json:"period"`
	DevUp   float64 `json:"dev_up"`
	DevDown float64 `json:"dev_down"`
}

// DefaultBBandsParams returns 20 periods at two deviations.
func DefaultBBandsParams() BBandsParams { return BBandsParams{Period: 20, DevUp: 2, DevDown: 2} }

// BBANDSLookback returns period-1. Period must be at least 2 and the
// multipliers non-negative.
func BBANDSLookback(p BBandsParams) (int, error) {
	if p.DevUp < 0 || p.DevDown < 0 {
		return 0, errorf(ErrInvalidParameter, "BBANDS", "negative deviation %g/%g", p.DevUp, p.DevDown)
	}
	return varLookback("BBANDS", p.Period)
}

func bands[F Float](mean, variance F, up, down F) (u, m, l F) {
	sd := sqrt(variance)
	return mean + up*sd, mean, mean - down*sd
}

// BBANDS writes the upper, middle and lower Bollinger bands, in that order.
// The middle band is the SMA.
func (c Calc[F]) BBANDS(in []F, p BBandsParams, upper, middle, lower []F) (VarState[F], error) {
	if _, err := BBANDSLookback(p); err != nil {
		return VarState[F]{}, err
	}
	up, down := F(p.DevUp), F(p.DevDown)
	return c.windowed("BBANDS", in, p.Period, series(upper, middle, lower), func(t int, m, v F) {
		upper[t], middle[t], lower[t] = bands(m, v, up, down)
	})
}

// BBANDSNext advances the bands; evicted is the sample Period positions
// before x. Outputs: upper, middle, lower.
func BBANDSNext[F Float](x, evicted F, st VarState[F], p BBandsParams) (u, m, l F, _ VarState[F], err error) {
	if _, err := BBANDSLookback(p); err != nil {
		return nan[F](), nan[F](), nan[F](), st, err
	}
	st = varStep(x, evicted, st)
	mean, v := moments(st, F(p.Period))
	u, m, l = bands(mean, v, F(p.DevUp), F(p.DevDown))
	return u, m, l, st, nil
}
