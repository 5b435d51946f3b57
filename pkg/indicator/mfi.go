package indicator

// MFIState carries the positive and negative money flow sums.
type MFIState[F Float] struct {
	Pos F `json:"pos"`
	Neg F `json:"neg"`
}

// MFILookback returns period. Period must be at least 2.
func MFILookback(period int) (int, error) {
	if err := checkPeriod("MFI", period, 2); err != nil {
		return 0, err
	}
	return period, nil
}

// MFIWindow is the history MFINext needs per input: period+2 bars.
func MFIWindow(period int) int { return period + 2 }

func typical[F Float](h, l, c F) F { return (h + l + c) / 3 }

// flow classifies bar i's raw money flow against bar i-1.
func flow[F Float](high, low, close, volume []F, i int) (pos, neg F) {
	tp := typical(high[i], low[i], close[i])
	prev := typical(high[i-1], low[i-1], close[i-1])
	switch {
	case tp > prev:
		return tp * volume[i], 0
	case tp < prev:
		return 0, tp * volume[i]
	}
	return 0, 0
}

func mfiValue[F Float](st MFIState[F]) F {
	sum := st.Pos + st.Neg
	if sum == 0 {
		return 0
	}
	return 100 * st.Pos / sum
}

func mfiStep[F Float](high, low, close, volume []F, st MFIState[F]) (F, MFIState[F]) {
	last := len(close) - 1
	p, n := flow(high, low, close, volume, last)
	ep, en := flow(high, low, close, volume, 1)
	st.Pos += p - ep
	st.Neg += n - en
	return mfiValue(st), st
}

// MFI writes the money flow index. A window without flow reads 0.
func (c Calc[F]) MFI(high, low, close, volume []F, period int, out []F) (MFIState[F], error) {
	lb, err := MFILookback(period)
	if err != nil {
		return MFIState[F]{}, err
	}
	if err := c.prepare("MFI", lb, series(high, low, close, volume), series(out)); err != nil {
		return MFIState[F]{}, err
	}
	var st MFIState[F]
	for i := 1; i <= period; i++ {
		p, n := flow(high, low, close, volume, i)
		st.Pos += p
		st.Neg += n
	}
	out[lb] = mfiValue(st)
	for t := period + 1; t < len(close); t++ {
		a := t - period - 1
		out[t], st = mfiStep(high[a:t+1], low[a:t+1], close[a:t+1], volume[a:t+1], st)
	}
	return st, nil
}

// MFINext advances MFI by one bar. Every window holds MFIWindow(period)
// bars, the new one last.
func MFINext[F Float](high, low, close, volume []F, st MFIState[F], period int) (F, MFIState[F], error) {
	if err := checkPeriod("MFI", period, 2); err != nil {
		return nan[F](), st, err
	}
	for _, w := range [][]F{high, low, close, volume} {
		if err := checkWindow("MFI", w, MFIWindow(period)); err != nil {
			return nan[F](), st, err
		}
	}
	v, st := mfiStep(high, low, close, volume, st)
	return v, st, nil
}
