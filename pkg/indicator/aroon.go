package indicator

// AROONLookback returns period. Period must be at least 2.
func AROONLookback(period int) (int, error) {
	if err := checkPeriod("AROON", period, 2); err != nil {
		return 0, err
	}
	return period, nil
}

// AROONOSCLookback returns period. Period must be at least 2.
func AROONOSCLookback(period int) (int, error) {
	if err := checkPeriod("AROONOSC", period, 2); err != nil {
		return 0, err
	}
	return period, nil
}

// Windows span period+1 bars; the extremes' ages run 0..period.
func aroonValues[F Float](st RangeState[F], n F) (down, up F) {
	up = 100 * (n - F(st.High.Age)) / n
	down = 100 * (n - F(st.Low.Age)) / n
	return down, up
}

// AROON writes Aroon down and Aroon up, in that order.
func (c Calc[F]) AROON(high, low []F, period int, down, up []F) (RangeState[F], error) {
	lb, err := AROONLookback(period)
	if err != nil {
		return RangeState[F]{}, err
	}
	if err := c.prepare("AROON", lb, series(high, low), series(down, up)); err != nil {
		return RangeState[F]{}, err
	}
	st, err := c.aroon(high, low, period, func(t int, d, u F) { down[t], up[t] = d, u })
	return st, err
}

// AROONOSC writes Aroon up minus Aroon down.
func (c Calc[F]) AROONOSC(high, low []F, period int, out []F) (RangeState[F], error) {
	lb, err := AROONOSCLookback(period)
	if err != nil {
		return RangeState[F]{}, err
	}
	if err := c.prepare("AROONOSC", lb, series(high, low), series(out)); err != nil {
		return RangeState[F]{}, err
	}
	return c.aroon(high, low, period, func(t int, d, u F) { out[t] = u - d })
}

func (c Calc[F]) aroon(high, low []F, period int, emit func(t int, down, up F)) (RangeState[F], error) {
	n := F(period)
	st := RangeState[F]{High: maxScan(high[:period+1]), Low: minScan(low[:period+1])}
	d, u := aroonValues(st, n)
	emit(period, d, u)
	for t := period + 1; t < len(high); t++ {
		_, st = rangeStep(high[t-period:t+1], low[t-period:t+1], st)
		d, u = aroonValues(st, n)
		emit(t, d, u)
	}
	return st, nil
}

func aroonNext[F Float](fn string, high, low []F, st RangeState[F], period int) (down, up F, _ RangeState[F], err error) {
	if err := checkPeriod(fn, period, 2); err != nil {
		return nan[F](), nan[F](), st, err
	}
	if err := checkWindow(fn, high, period+1); err != nil {
		return nan[F](), nan[F](), st, err
	}
	if err := checkWindow(fn, low, period+1); err != nil {
		return nan[F](), nan[F](), st, err
	}
	_, st = rangeStep(high, low, st)
	down, up = aroonValues(st, F(period))
	return down, up, st, nil
}

// AROONNext advances Aroon. high and low hold the last period+1 samples.
// Outputs: down, up.
func AROONNext[F Float](high, low []F, st RangeState[F], period int) (down, up F, _ RangeState[F], err error) {
	return aroonNext("AROON", high, low, st, period)
}

// AROONOSCNext advances the Aroon oscillator. high and low hold the last
// period+1 samples.
func AROONOSCNext[F Float](high, low []F, st RangeState[F], period int) (F, RangeState[F], error) {
	d, u, st, err := aroonNext("AROONOSC", high, low, st, period)
	if err != nil {
		return nan[F](), st, err
	}
	return u - d, st, nil
}
