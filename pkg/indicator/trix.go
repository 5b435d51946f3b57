package indicator

// TRIXState holds the three chained EMAs; the last one doubles as the
// previous value the rate of change is taken against.
type TRIXState[F Float] struct {
	E [3]F `json:"e"`
}

// TRIXLookback returns 3*(period-1) + 1.
func TRIXLookback(period int) (int, error) {
	if err := checkPeriod("TRIX", period, 2); err != nil {
		return 0, err
	}
	return 3*(period-1) + 1, nil
}

func trixValue[F Float](cur, prev F) F {
	if prev == 0 {
		return 0
	}
	return 100 * (cur - prev) / prev
}

// TRIX writes the one-bar percentage change of a triple EMA.
func (c Calc[F]) TRIX(in []F, period int, out []F) (TRIXState[F], error) {
	lb, err := TRIXLookback(period)
	if err != nil {
		return TRIXState[F]{}, err
	}
	if err := c.prepare("TRIX", lb, series(in), series(out)); err != nil {
		return TRIXState[F]{}, err
	}
	cs := newCascade[F](period, 3)
	for t, x := range in {
		prev, ready := cs.vals[2], cs.ready
		if cs.feed(x) && ready {
			out[t] = trixValue(cs.vals[2], prev)
		}
	}
	return TRIXState[F]{E: [3]F{cs.vals[0], cs.vals[1], cs.vals[2]}}, nil
}

// TRIXNext advances TRIX by x.
func TRIXNext[F Float](x F, st TRIXState[F], period int) (F, TRIXState[F], error) {
	if err := checkPeriod("TRIX", period, 2); err != nil {
		return nan[F](), st, err
	}
	prev := st.E[2]
	cascadeStep(x, st.E[:], emaK[F](period))
	return trixValue(st.E[2], prev), st, nil
}
