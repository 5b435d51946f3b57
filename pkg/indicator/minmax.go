package indicator

// MaxState tracks the highest value of a sliding window and how many
// positions ago it was seen (0 = the newest sample). Ties resolve to the
// newest position.
type MaxState[F Float] struct {
	Value F   `json:"value"`
	Age   int `json:"age"`
}

// MinState is MaxState for the lowest value.
type MinState[F Float] struct {
	Value F   `json:"value"`
	Age   int `json:"age"`
}

func maxScan[F Float](w []F) MaxState[F] {
	best := len(w) - 1
	for i := best - 1; i >= 0; i-- {
		if w[i] > w[best] {
			best = i
		}
	}
	return MaxState[F]{Value: w[best], Age: len(w) - 1 - best}
}

func minScan[F Float](w []F) MinState[F] {
	best := len(w) - 1
	for i := best - 1; i >= 0; i-- {
		if w[i] < w[best] {
			best = i
		}
	}
	return MinState[F]{Value: w[best], Age: len(w) - 1 - best}
}

// maxStep is O(1) while the extremum stays inside w and rescans w once it
// slides out, so the result is never stale.
func maxStep[F Float](w []F, st MaxState[F]) MaxState[F] {
	x := w[len(w)-1]
	if x >= st.Value {
		return MaxState[F]{Value: x}
	}
	st.Age++
	if st.Age >= len(w) {
		return maxScan(w)
	}
	return st
}

func minStep[F Float](w []F, st MinState[F]) MinState[F] {
	x := w[len(w)-1]
	if x <= st.Value {
		return MinState[F]{Value: x}
	}
	st.Age++
	if st.Age >= len(w) {
		return minScan(w)
	}
	return st
}

// MAXLookback returns period-1. Period must be at least 2.
func MAXLookback(period int) (int, error) {
	if err := checkPeriod("MAX", period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// MAX writes the highest value over each window of period samples.
func (c Calc[F]) MAX(in []F, period int, out []F) (MaxState[F], error) {
	lb, err := MAXLookback(period)
	if err != nil {
		return MaxState[F]{}, err
	}
	if err := c.prepare("MAX", lb, series(in), series(out)); err != nil {
		return MaxState[F]{}, err
	}
	st := maxScan(in[:period])
	out[lb] = st.Value
	for t := period; t < len(in); t++ {
		st = maxStep(in[t-lb:t+1], st)
		out[t] = st.Value
	}
	return st, nil
}

// MAXNext advances the window maximum. window holds the last period samples,
// the new one last.
func MAXNext[F Float](window []F, st MaxState[F], period int) (F, MaxState[F], error) {
	if err := checkPeriod("MAX", period, 2); err != nil {
		return nan[F](), st, err
	}
	if err := checkWindow("MAX", window, period); err != nil {
		return nan[F](), st, err
	}
	st = maxStep(window, st)
	return st.Value, st, nil
}

// MINLookback returns period-1. Period must be at least 2.
func MINLookback(period int) (int, error) {
	if err := checkPeriod("MIN", period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// MIN writes the lowest value over each window of period samples.
func (c Calc[F]) MIN(in []F, period int, out []F) (MinState[F], error) {
	lb, err := MINLookback(period)
	if err != nil {
		return MinState[F]{}, err
	}
	if err := c.prepare("MIN", lb, series(in), series(out)); err != nil {
		return MinState[F]{}, err
	}
	st := minScan(in[:period])
	out[lb] = st.Value
	for t := period; t < len(in); t++ {
		st = minStep(in[t-lb:t+1], st)
		out[t] = st.Value
	}
	return st, nil
}

// MINNext advances the window minimum. window holds the last period samples,
// the new one last.
func MINNext[F Float](window []F, st MinState[F], period int) (F, MinState[F], error) {
	if err := checkPeriod("MIN", period, 2); err != nil {
		return nan[F](), st, err
	}
	if err := checkWindow("MIN", window, period); err != nil {
		return nan[F](), st, err
	}
	st = minStep(window, st)
	return st.Value, st, nil
}

// RangeState tracks both extremes of one or two windows.
type RangeState[F Float] struct {
	High MaxState[F] `json:"high"`
	Low  MinState[F] `json:"low"`
}

// MIDPOINTLookback returns period-1. Period must be at least 2.
func MIDPOINTLookback(period int) (int, error) {
	if err := checkPeriod("MIDPOINT", period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// MIDPOINT writes (highest + lowest) / 2 of in over each window.
func (c Calc[F]) MIDPOINT(in []F, period int, out []F) (RangeState[F], error) {
	lb, err := MIDPOINTLookback(period)
	if err != nil {
		return RangeState[F]{}, err
	}
	if err := c.prepare("MIDPOINT", lb, series(in), series(out)); err != nil {
		return RangeState[F]{}, err
	}
	st := RangeState[F]{High: maxScan(in[:period]), Low: minScan(in[:period])}
	out[lb] = (st.High.Value + st.Low.Value) / 2
	for t := period; t < len(in); t++ {
		w := in[t-lb : t+1]
		out[t], st = rangeStep(w, w, st)
	}
	return st, nil
}

// MIDPOINTNext advances MIDPOINT. window holds the last period samples.
func MIDPOINTNext[F Float](window []F, st RangeState[F], period int) (F, RangeState[F], error) {
	if err := checkPeriod("MIDPOINT", period, 2); err != nil {
		return nan[F](), st, err
	}
	if err := checkWindow("MIDPOINT", window, period); err != nil {
		return nan[F](), st, err
	}
	v, st := rangeStep(window, window, st)
	return v, st, nil
}

// MIDPRICELookback returns period-1. Period must be at least 2.
func MIDPRICELookback(period int) (int, error) {
	if err := checkPeriod("MIDPRICE", period, 2); err != nil {
		return 0, err
	}
	return period - 1, nil
}

// MIDPRICE writes (highest high + lowest low) / 2 over each window.
func (c Calc[F]) MIDPRICE(high, low []F, period int, out []F) (RangeState[F], error) {
	lb, err := MIDPRICELookback(period)
	if err != nil {
		return RangeState[F]{}, err
	}
	if err := c.prepare("MIDPRICE", lb, series(high, low), series(out)); err != nil {
		return RangeState[F]{}, err
	}
	st := RangeState[F]{High: maxScan(high[:period]), Low: minScan(low[:period])}
	out[lb] = (st.High.Value + st.Low.Value) / 2
	for t := period; t < len(high); t++ {
		out[t], st = rangeStep(high[t-lb:t+1], low[t-lb:t+1], st)
	}
	return st, nil
}

// MIDPRICENext advances MIDPRICE. Both windows hold the last period samples.
func MIDPRICENext[F Float](high, low []F, st RangeState[F], period int) (F, RangeState[F], error) {
	if err := checkPeriod("MIDPRICE", period, 2); err != nil {
		return nan[F](), st, err
	}
	if err := checkWindow("MIDPRICE", high, period); err != nil {
		return nan[F](), st, err
	}
	if err := checkWindow("MIDPRICE", low, period); err != nil {
		return nan[F](), st, err
	}
	v, st := rangeStep(high, low, st)
	return v, st, nil
}

func rangeStep[F Float](high, low []F, st RangeState[F]) (F, RangeState[F]) {
	st.High = maxStep(high, st.High)
	st.Low = minStep(low, st.Low)
	return (st.High.Value + st.Low.Value) / 2, st
}
