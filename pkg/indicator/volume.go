package indicator

// OBVState carries the running balance and the previous close.
type OBVState[F Float] struct {
	Value F `json:"value"`
	Close F `json:"close"`
}

// OBVLookback returns 0.
func OBVLookback() (int, error) { return 0, nil }

// OBV writes on-balance volume, starting from the first bar's volume.
func (c Calc[F]) OBV(close, volume []F, out []F) (OBVState[F], error) {
	if err := c.prepare("OBV", 0, series(close, volume), series(out)); err != nil {
		return OBVState[F]{}, err
	}
	st := OBVState[F]{Value: volume[0], Close: close[0]}
	out[0] = st.Value
	for t := 1; t < len(close); t++ {
		st = obvStep(close[t], volume[t], st)
		out[t] = st.Value
	}
	return st, nil
}

func obvStep[F Float](c, v F, st OBVState[F]) OBVState[F] {
	switch {
	case c > st.Close:
		st.Value += v
	case c < st.Close:
		st.Value -= v
	}
	st.Close = c
	return st
}

// OBVNext advances the balance by one bar.
func OBVNext[F Float](close, volume F, st OBVState[F]) (F, OBVState[F], error) {
	st = obvStep(close, volume, st)
	return st.Value, st, nil
}

// ADState is the accumulation/distribution line.
type ADState[F Float] struct {
	Value F `json:"value"`
}

// ADLookback returns 0.
func ADLookback() (int, error) { return 0, nil }

// moneyFlow is the close location value times volume; a bar with no range
// contributes 0.
func moneyFlow[F Float](h, l, c, v F) F {
	if h == l {
		return 0
	}
	return ((c - l) - (h - c)) / (h - l) * v
}

// AD writes the Chaikin accumulation/distribution line.
func (c Calc[F]) AD(high, low, close, volume []F, out []F) (ADState[F], error) {
	if err := c.prepare("AD", 0, series(high, low, close, volume), series(out)); err != nil {
		return ADState[F]{}, err
	}
	var st ADState[F]
	for t := range close {
		st.Value += moneyFlow(high[t], low[t], close[t], volume[t])
		out[t] = st.Value
	}
	return st, nil
}

// ADNext advances the line by one bar.
func ADNext[F Float](high, low, close, volume F, st ADState[F]) (F, ADState[F], error) {
	st.Value += moneyFlow(high, low, close, volume)
	return st.Value, st, nil
}

// ADOSCParams are the fast and slow EMA periods applied to the AD line.
type ADOSCParams struct {
	Fast int `json:"fast"`
	Slow int `json:"slow"`
}

// DefaultADOSCParams returns 3/10.
func DefaultADOSCParams() ADOSCParams { return ADOSCParams{Fast: 3, Slow: 10} }

// ADOSCState carries the AD line and its two EMAs.
type ADOSCState[F Float] struct {
	AD   F `json:"ad"`
	Fast F `json:"fast"`
	Slow F `json:"slow"`
}

// ADOSCLookback returns slow-1. Fast must be at least 2 and below slow.
func ADOSCLookback(p ADOSCParams) (int, error) {
	if err := checkPeriod("ADOSC", p.Fast, 2); err != nil {
		return 0, err
	}
	if p.Fast >= p.Slow {
		return 0, errorf(ErrInvalidParameter, "ADOSC", "fast %d >= slow %d", p.Fast, p.Slow)
	}
	return p.Slow - 1, nil
}

// ADOSC writes the Chaikin oscillator, fast EMA minus slow EMA of the AD
// line. Both EMAs start at the first bar's AD value and run from the second
// bar on, as TA-Lib seeds them.
func (c Calc[F]) ADOSC(high, low, close, volume []F, p ADOSCParams, out []F) (ADOSCState[F], error) {
	lb, err := ADOSCLookback(p)
	if err != nil {
		return ADOSCState[F]{}, err
	}
	if err := c.prepare("ADOSC", lb, series(high, low, close, volume), series(out)); err != nil {
		return ADOSCState[F]{}, err
	}
	kf, ks := emaK[F](p.Fast), emaK[F](p.Slow)
	var st ADOSCState[F]
	st.AD = moneyFlow(high[0], low[0], close[0], volume[0])
	st.Fast, st.Slow = st.AD, st.AD
	for t := 1; t < len(close); t++ {
		st = adoscStep(high[t], low[t], close[t], volume[t], st, kf, ks)
		if t >= lb {
			out[t] = st.Fast - st.Slow
		}
	}
	return st, nil
}

func adoscStep[F Float](h, l, c, v F, st ADOSCState[F], kf, ks F) ADOSCState[F] {
	st.AD += moneyFlow(h, l, c, v)
	st.Fast = emaStep(st.AD, st.Fast, kf)
	st.Slow = emaStep(st.AD, st.Slow, ks)
	return st
}

// ADOSCNext advances the oscillator by one bar.
func ADOSCNext[F Float](high, low, close, volume F, st ADOSCState[F], p ADOSCParams) (F, ADOSCState[F], error) {
	if _, err := ADOSCLookback(p); err != nil {
		return nan[F](), st, err
	}
	st = adoscStep(high, low, close, volume, st, emaK[F](p.Fast), emaK[F](p.Slow))
	return st.Fast - st.Slow, st, nil
}
