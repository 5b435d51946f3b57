package indicator

// cascade chains up to six EMAs of one period, each stage seeded with the
// simple average of its first period inputs. DEMA, TEMA, T3 and TRIX are
// linear combinations of its stages.
type cascade[F Float] struct {
	depth  int
	period int
	k      F
	vals   [6]F
	sums   [6]F
	counts [6]int
	ready  bool
}

func newCascade[F Float](period, depth int) *cascade[F] {
	return &cascade[F]{depth: depth, period: period, k: emaK[F](period)}
}

// feed pushes x through every stage and reports whether the last stage has
// produced a value.
func (c *cascade[F]) feed(x F) bool {
	if c.ready {
		cascadeStep(x, c.vals[:c.depth], c.k)
		return true
	}
	v := x
	for j := 0; j < c.depth; j++ {
		if c.counts[j] < c.period {
			c.sums[j] += v
			c.counts[j]++
			if c.counts[j] < c.period {
				return false
			}
			c.vals[j] = c.sums[j] / F(c.period)
		} else {
			c.vals[j] = emaStep(v, c.vals[j], c.k)
		}
		v = c.vals[j]
	}
	c.ready = true
	return true
}

func cascadeStep[F Float](x F, e []F, k F) {
	v := x
	for j := range e {
		e[j] = emaStep(v, e[j], k)
		v = e[j]
	}
}

// DEMAState holds the two chained EMAs.
type DEMAState[F Float] struct {
	E [2]F `json:"e"`
}

// DEMALookback returns 2*(period-1).
func DEMALookback(period int) (int, error) {
	if err := checkPeriod("DEMA", period, 2); err != nil {
		return 0, err
	}
	return 2 * (period - 1), nil
}

// DEMA writes 2*EMA - EMA(EMA).
func (c Calc[F]) DEMA(in []F, period int, out []F) (DEMAState[F], error) {
	lb, err := DEMALookback(period)
	if err != nil {
		return DEMAState[F]{}, err
	}
	if err := c.prepare("DEMA", lb, series(in), series(out)); err != nil {
		return DEMAState[F]{}, err
	}
	cs := newCascade[F](period, 2)
	for t, x := range in {
		if cs.feed(x) {
			out[t] = demaOut(cs.vals[:2])
		}
	}
	return DEMAState[F]{E: [2]F{cs.vals[0], cs.vals[1]}}, nil
}

// DEMANext advances DEMA by x.
func DEMANext[F Float](x F, st DEMAState[F], period int) (F, DEMAState[F], error) {
	if err := checkPeriod("DEMA", period, 2); err != nil {
		return nan[F](), st, err
	}
	cascadeStep(x, st.E[:], emaK[F](period))
	return demaOut(st.E[:]), st, nil
}

func demaOut[F Float](e []F) F { return 2*e[0] - e[1] }

// TEMAState holds the three chained EMAs.
type TEMAState[F Float] struct {
	E [3]F `json:"e"`
}

// TEMALookback returns 3*(period-1).
func TEMALookback(period int) (int, error) {
	if err := checkPeriod("TEMA", period, 2); err != nil {
		return 0, err
	}
	return 3 * (period - 1), nil
}

// TEMA writes 3*e1 - 3*e2 + e3 over the chained EMAs e1..e3.
func (c Calc[F]) TEMA(in []F, period int, out []F) (TEMAState[F], error) {
	lb, err := TEMALookback(period)
	if err != nil {
		return TEMAState[F]{}, err
	}
	if err := c.prepare("TEMA", lb, series(in), series(out)); err != nil {
		return TEMAState[F]{}, err
	}
	cs := newCascade[F](period, 3)
	for t, x := range in {
		if cs.feed(x) {
			out[t] = temaOut(cs.vals[:3])
		}
	}
	return TEMAState[F]{E: [3]F{cs.vals[0], cs.vals[1], cs.vals[2]}}, nil
}

// TEMANext advances TEMA by x.
func TEMANext[F Float](x F, st TEMAState[F], period int) (F, TEMAState[F], error) {
	if err := checkPeriod("TEMA", period, 2); err != nil {
		return nan[F](), st, err
	}
	cascadeStep(x, st.E[:], emaK[F](period))
	return temaOut(st.E[:]), st, nil
}

func temaOut[F Float](e []F) F { return 3*e[0] - 3*e[1] + e[2] }

// T3State holds the six chained EMAs.
type T3State[F Float] struct {
	E [6]F `json:"e"`
}

// T3Lookback returns 6*(period-1). The volume factor must lie in (0, 1].
func T3Lookback(period int, vfactor float64) (int, error) {
	if err := checkPeriod("T3", period, 2); err != nil {
		return 0, err
	}
	if !(vfactor > 0 && vfactor <= 1) {
		return 0, errorf(ErrInvalidParameter, "T3", "vfactor %g outside (0, 1]", vfactor)
	}
	return 6 * (period - 1), nil
}

// T3 writes Tillson's T3: a weighted sum of the last four of six chained
// EMAs, weights derived from vfactor.
func (c Calc[F]) T3(in []F, period int, vfactor float64, out []F) (T3State[F], error) {
	lb, err := T3Lookback(period, vfactor)
	if err != nil {
		return T3State[F]{}, err
	}
	if err := c.prepare("T3", lb, series(in), series(out)); err != nil {
		return T3State[F]{}, err
	}
	w := t3Weights[F](vfactor)
	cs := newCascade[F](period, 6)
	for t, x := range in {
		if cs.feed(x) {
			out[t] = t3Out(cs.vals[:], w)
		}
	}
	return T3State[F]{E: cs.vals}, nil
}

// T3Next advances T3 by x.
func T3Next[F Float](x F, st T3State[F], period int, vfactor float64) (F, T3State[F], error) {
	if _, err := T3Lookback(period, vfactor); err != nil {
		return nan[F](), st, err
	}
	cascadeStep(x, st.E[:], emaK[F](period))
	return t3Out(st.E[:], t3Weights[F](vfactor)), st, nil
}

func t3Weights[F Float](vfactor float64) [4]F {
	a := F(vfactor)
	a2 := a * a
	a3 := a2 * a
	return [4]F{
		-a3,
		3*a2 + 3*a3,
		-6*a2 - 3*a - 3*a3,
		1 + 3*a + a3 + 3*a2,
	}
}

func t3Out[F Float](e []F, w [4]F) F {
	return w[0]*e[5] + w[1]*e[4] + w[2]*e[3] + w[3]*e[2]
}
