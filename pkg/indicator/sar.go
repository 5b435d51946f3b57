package indicator

// SARParams are the acceleration step and its cap.
type SARParams struct {
	Acceleration float64 `json:"acceleration"`
	Maximum      float64 `json:"maximum"`
}

// DefaultSARParams returns 0.02/0.2.
func DefaultSARParams() SARParams { return SARParams{Acceleration: 0.02, Maximum: 0.2} }

// SARState is the parabolic stop: trend side, acceleration factor, extreme
// point, the stop for the next bar and the previous bar's range.
type SARState[F Float] struct {
	Long bool `json:"long"`
	AF   F    `json:"af"`
	EP   F    `json:"ep"`
	SAR  F    `json:"sar"`
	High F    `json:"high"`
	Low  F    `json:"low"`
}

// SARLookback returns 1. Acceleration must be positive and not above the
// maximum.
func SARLookback(p SARParams) (int, error) {
	if !(p.Acceleration > 0 && p.Acceleration <= p.Maximum) {
		return 0, errorf(ErrInvalidParameter, "SAR", "acceleration %g outside (0, %g]", p.Acceleration, p.Maximum)
	}
	return 1, nil
}

// SARSeed infers the initial trend from the first two bars: short when the
// second bar extends lower more than it extends higher.
func SARSeed[F Float](h0, l0, h1, l1 F, p SARParams) SARState[F] {
	st := SARState[F]{Long: true, AF: F(p.Acceleration), High: h0, Low: l0}
	up, down := h1-h0, l0-l1
	if down > up && down > 0 {
		st.Long = false
	}
	if st.Long {
		st.EP, st.SAR = h1, l0
	} else {
		st.EP, st.SAR = l1, h0
	}
	return st
}

func sarStep[F Float](h, l F, st SARState[F], acc, limit F) (F, SARState[F]) {
	prevH, prevL := st.High, st.Low
	st.High, st.Low = h, l
	var out F
	if st.Long {
		if l <= st.SAR {
			st.Long = false
			out = maxOf(st.EP, maxOf(prevH, h))
			st.AF, st.EP = acc, l
			st.SAR = maxOf(out+st.AF*(st.EP-out), maxOf(prevH, h))
			return out, st
		}
		out = st.SAR
		if h > st.EP {
			st.EP = h
			st.AF = minOf(st.AF+acc, limit)
		}
		st.SAR = minOf(st.SAR+st.AF*(st.EP-st.SAR), minOf(prevL, l))
		return out, st
	}
	if h >= st.SAR {
		st.Long = true
		out = minOf(st.EP, minOf(prevL, l))
		st.AF, st.EP = acc, h
		st.SAR = minOf(out+st.AF*(st.EP-out), minOf(prevL, l))
		return out, st
	}
	out = st.SAR
	if l < st.EP {
		st.EP = l
		st.AF = minOf(st.AF+acc, limit)
	}
	st.SAR = maxOf(st.SAR+st.AF*(st.EP-st.SAR), maxOf(prevH, h))
	return out, st
}

// SAR writes Wilder's parabolic stop-and-reverse.
func (c Calc[F]) SAR(high, low []F, p SARParams, out []F) (SARState[F], error) {
	lb, err := SARLookback(p)
	if err != nil {
		return SARState[F]{}, err
	}
	if err := c.prepare("SAR", lb, series(high, low), series(out)); err != nil {
		return SARState[F]{}, err
	}
	acc, limit := F(p.Acceleration), F(p.Maximum)
	st := SARSeed(high[0], low[0], high[1], low[1], p)
	for t := 1; t < len(high); t++ {
		out[t], st = sarStep(high[t], low[t], st, acc, limit)
	}
	return st, nil
}

// SARNext advances the stop by one bar and returns the stop in force for it.
func SARNext[F Float](high, low F, st SARState[F], p SARParams) (F, SARState[F], error) {
	if _, err := SARLookback(p); err != nil {
		return nan[F](), st, err
	}
	v, st := sarStep(high, low, st, F(p.Acceleration), F(p.Maximum))
	return v, st, nil
}
