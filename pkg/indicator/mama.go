package indicator

// MAMAState carries the discriminator and both adaptive averages.
type MAMAState[F Float] struct {
	HT   HilbertState[F] `json:"ht"`
	MAMA F               `json:"mama"`
	FAMA F               `json:"fama"`
}

// MAMALookback returns 32. Both limits must lie in [0.01, 0.99].
func MAMALookback(fastLimit, slowLimit float64) (int, error) {
	if fastLimit < 0.01 || fastLimit > 0.99 {
		return 0, errorf(ErrInvalidParameter, "MAMA", "fast limit %g outside [0.01, 0.99]", fastLimit)
	}
	if slowLimit < 0.01 || slowLimit > 0.99 {
		return 0, errorf(ErrInvalidParameter, "MAMA", "slow limit %g outside [0.01, 0.99]", slowLimit)
	}
	return hilbertLookback, nil
}

// MAMA writes the MESA adaptive moving average and its following average.
// Output order: mama, fama.
func (c Calc[F]) MAMA(in []F, fastLimit, slowLimit float64, mama, fama []F) (MAMAState[F], error) {
	lb, err := MAMALookback(fastLimit, slowLimit)
	if err != nil {
		return MAMAState[F]{}, err
	}
	if err := c.prepare("MAMA", lb, series(in), series(mama, fama)); err != nil {
		return MAMAState[F]{}, err
	}
	fast, slow := F(fastLimit), F(slowLimit)
	st := MAMAState[F]{HT: newHilbert(in[0]), MAMA: in[0], FAMA: in[0]}
	for t := 1; t < len(in); t++ {
		st = mamaStep(in[t], st, fast, slow)
		if t >= lb {
			mama[t], fama[t] = st.MAMA, st.FAMA
		}
	}
	return st, nil
}

func mamaStep[F Float](x F, st MAMAState[F], fast, slow F) MAMAState[F] {
	prevPhase := st.HT.Phase
	st.HT = hilbertStep(x, st.HT)
	delta := maxOf(prevPhase-st.HT.Phase, 1)
	alpha := maxOf(fast/delta, slow)
	st.MAMA = alpha*x + (1-alpha)*st.MAMA
	half := alpha / 2
	st.FAMA = half*st.MAMA + (1-half)*st.FAMA
	return st
}

// MAMANext advances both averages by x. Outputs: mama, fama.
func MAMANext[F Float](x F, st MAMAState[F], fastLimit, slowLimit float64) (F, F, MAMAState[F], error) {
	if _, err := MAMALookback(fastLimit, slowLimit); err != nil {
		return nan[F](), nan[F](), st, err
	}
	st = mamaStep(x, st, F(fastLimit), F(slowLimit))
	return st.MAMA, st.FAMA, st, nil
}
