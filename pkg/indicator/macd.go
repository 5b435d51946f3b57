package indicator

// MACDParams are the fast, slow and signal EMA periods.
type MACDParams struct {
	Fast   int `json:"fast"`
	Slow   int `json:"slow"`
	Signal int `json:"signal"`
}

// DefaultMACDParams returns the classic 12/26/9.
func DefaultMACDParams() MACDParams { return MACDParams{Fast: 12, Slow: 26, Signal: 9} }

// MACDState carries the three EMAs.
type MACDState[F Float] struct {
	Fast   F `json:"fast"`
	Slow   F `json:"slow"`
	Signal F `json:"signal"`
}

// MACDLookback returns (slow-1) + (signal-1). All periods must be at least 2
// and fast must be below slow.
func MACDLookback(p MACDParams) (int, error) {
	for _, n := range []int{p.Fast, p.Slow, p.Signal} {
		if err := checkPeriod("MACD", n, 2); err != nil {
			return 0, err
		}
	}
	if p.Fast >= p.Slow {
		return 0, errorf(ErrInvalidParameter, "MACD", "fast %d >= slow %d", p.Fast, p.Slow)
	}
	return p.Slow - 1 + p.Signal - 1, nil
}

// MACD writes the EMA difference, its signal EMA and the histogram, in that
// order. Each EMA is seeded with the simple average of its first inputs.
func (c Calc[F]) MACD(in []F, p MACDParams, macd, signal, hist []F) (MACDState[F], error) {
	lb, err := MACDLookback(p)
	if err != nil {
		return MACDState[F]{}, err
	}
	if err := c.prepare("MACD", lb, series(in), series(macd, signal, hist)); err != nil {
		return MACDState[F]{}, err
	}
	kf, ks := emaK[F](p.Fast), emaK[F](p.Slow)
	var st MACDState[F]
	st.Fast = mean(in[:p.Fast])
	for t := p.Fast; t < p.Slow; t++ {
		st.Fast = emaStep(in[t], st.Fast, kf)
	}
	st.Slow = mean(in[:p.Slow])
	sum := st.Fast - st.Slow
	for t := p.Slow; t <= lb; t++ {
		st.Fast = emaStep(in[t], st.Fast, kf)
		st.Slow = emaStep(in[t], st.Slow, ks)
		sum += st.Fast - st.Slow
	}
	st.Signal = sum / F(p.Signal)
	macd[lb] = st.Fast - st.Slow
	signal[lb] = st.Signal
	hist[lb] = macd[lb] - signal[lb]

	k := macdKs[F](p)
	for t := lb + 1; t < len(in); t++ {
		macd[t], signal[t], hist[t], st = macdStep(in[t], st, k)
	}
	return st, nil
}

func macdKs[F Float](p MACDParams) [3]F {
	return [3]F{emaK[F](p.Fast), emaK[F](p.Slow), emaK[F](p.Signal)}
}

func macdStep[F Float](x F, st MACDState[F], k [3]F) (m, s, h F, _ MACDState[F]) {
	st.Fast = emaStep(x, st.Fast, k[0])
	st.Slow = emaStep(x, st.Slow, k[1])
	m = st.Fast - st.Slow
	st.Signal = emaStep(m, st.Signal, k[2])
	return m, st.Signal, m - st.Signal, st
}

// MACDNext advances MACD by x. Outputs: macd, signal, hist.
func MACDNext[F Float](x F, st MACDState[F], p MACDParams) (m, s, h F, _ MACDState[F], err error) {
	if _, err := MACDLookback(p); err != nil {
		return nan[F](), nan[F](), nan[F](), st, err
	}
	m, s, h, st = macdStep(x, st, macdKs[F](p))
	return m, s, h, st, nil
}
