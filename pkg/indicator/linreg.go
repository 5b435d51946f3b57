package indicator

// LinRegState carries the window sum and the position-weighted sum, the
// oldest sample sitting at x = 0.
type LinRegState[F Float] struct {
	Sum  F `json:"sum"`
	WSum F `json:"wsum"`
}

// LINEARREGLookback returns period-1. Period must be at least 2.
func LINEARREGLookback(period int) (int, error) {
	if err := checkPeriod("LINEARREG", period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// linregAxis holds the closed-form sums over x = 0..n-1.
type linregAxis[F Float] struct {
	n, sumX, div F
}

func newLinregAxis[F Float](period int) (linregAxis[F], error) {
	n, err := toF[F](period)
	if err != nil {
		return linregAxis[F]{}, err
	}
	sumX := n * (n - 1) / 2
	sumX2 := (n - 1) * n * (2*n - 1) / 6
	return linregAxis[F]{n: n, sumX: sumX, div: n*sumX2 - sumX*sumX}, nil
}

func (a linregAxis[F]) fit(st LinRegState[F]) (value, slope, intercept F) {
	slope = (a.n*st.WSum - a.sumX*st.Sum) / a.div
	intercept = (st.Sum - slope*a.sumX) / a.n
	return intercept + slope*(a.n-1), slope, intercept
}

// Each retained sample moves one position toward x = 0, which takes the sum
// of the survivors off the weighted sum once.
func linregStep[F Float](x, evicted F, st LinRegState[F], a linregAxis[F]) LinRegState[F] {
	st.WSum += (a.n-1)*x - (st.Sum - evicted)
	st.Sum += x - evicted
	return st
}

// LINEARREG writes the least-squares line through each window: its value at
// the newest sample, its slope per bar, and its intercept at the oldest
// sample, in that order.
func (c Calc[F]) LINEARREG(in []F, period int, value, slope, intercept []F) (LinRegState[F], error) {
	lb, err := LINEARREGLookback(period)
	if err != nil {
		return LinRegState[F]{}, err
	}
	axis, err := newLinregAxis[F](period)
	if err != nil {
		return LinRegState[F]{}, err
	}
	if err := c.prepare("LINEARREG", lb, series(in), series(value, slope, intercept)); err != nil {
		return LinRegState[F]{}, err
	}
	var st LinRegState[F]
	for i := 0; i < period; i++ {
		st.Sum += in[i]
		st.WSum += F(i) * in[i]
	}
	value[lb], slope[lb], intercept[lb] = axis.fit(st)
	for t := period; t < len(in); t++ {
		st = linregStep(in[t], in[t-period], st, axis)
		value[t], slope[t], intercept[t] = axis.fit(st)
	}
	return st, nil
}

// LINEARREGNext advances the regression; evicted is the sample period
// positions before x. Outputs: value, slope, intercept.
func LINEARREGNext[F Float](x, evicted F, st LinRegState[F], period int) (v, s, i F, _ LinRegState[F], err error) {
	if _, err := LINEARREGLookback(period); err != nil {
		return nan[F](), nan[F](), nan[F](), st, err
	}
	axis, err := newLinregAxis[F](period)
	if err != nil {
		return nan[F](), nan[F](), nan[F](), st, err
	}
	st = linregStep(x, evicted, st, axis)
	v, s, i = axis.fit(st)
	return v, s, i, st, nil
}
