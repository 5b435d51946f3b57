package indicator

// APOParams select two averages of one kind.
type APOParams struct {
	Fast int    `json:"fast"`
	Slow int    `json:"slow"`
	Kind MAType `json:"kind"`
}

// APOState carries both averages.
type APOState[F Float] struct {
	Fast MAState[F] `json:"fast"`
	Slow MAState[F] `json:"slow"`
}

func apoLookback(fn string, p APOParams) (int, error) {
	if err := maKind(fn, p.Kind); err != nil {
		return 0, err
	}
	if p.Fast >= p.Slow {
		return 0, errorf(ErrInvalidParameter, fn, "fast %d >= slow %d", p.Fast, p.Slow)
	}
	lf, err := MALookback(p.Kind, p.Fast)
	if err != nil {
		return 0, err
	}
	ls, err := MALookback(p.Kind, p.Slow)
	if err != nil {
		return 0, err
	}
	return max(lf, ls), nil
}

// APOLookback is the larger of the two average lookbacks. Fast must be below
// slow.
func APOLookback(p APOParams) (int, error) { return apoLookback("APO", p) }

// PPOLookback is APOLookback.
func PPOLookback(p APOParams) (int, error) { return apoLookback("PPO", p) }

// APOWindow is the history APONext and PPONext need.
func APOWindow(p APOParams) int {
	return max(MAWindow(p.Kind, p.Fast), MAWindow(p.Kind, p.Slow))
}

func (c Calc[F]) oscillator(fn string, in []F, p APOParams, out []F, percent bool) (APOState[F], error) {
	lb, err := apoLookback(fn, p)
	if err != nil {
		return APOState[F]{}, err
	}
	if err := c.prepare(fn, lb, series(in), series(out)); err != nil {
		return APOState[F]{}, err
	}
	fast := make([]F, len(in))
	var st APOState[F]
	if st.Fast, err = c.inner().MA(in, p.Kind, p.Fast, fast); err != nil {
		return APOState[F]{}, err
	}
	if st.Slow, err = c.inner().MA(in, p.Kind, p.Slow, out); err != nil {
		return APOState[F]{}, err
	}
	for t := lb; t < len(in); t++ {
		out[t] = oscValue(fast[t], out[t], percent)
	}
	fill(out[:lb], nan[F]())
	return st, nil
}

func oscillatorNext[F Float](fn string, window []F, st APOState[F], p APOParams, percent bool) (F, APOState[F], error) {
	if _, err := apoLookback(fn, p); err != nil {
		return nan[F](), st, err
	}
	if err := checkWindow(fn, window, APOWindow(p)); err != nil {
		return nan[F](), st, err
	}
	wf, ws := MAWindow(p.Kind, p.Fast), MAWindow(p.Kind, p.Slow)
	f, fs, err := MANext(window[len(window)-wf:], st.Fast, p.Fast)
	if err != nil {
		return nan[F](), st, err
	}
	s, ss, err := MANext(window[len(window)-ws:], st.Slow, p.Slow)
	if err != nil {
		return nan[F](), st, err
	}
	return oscValue(f, s, percent), APOState[F]{Fast: fs, Slow: ss}, nil
}

func oscValue[F Float](f, s F, percent bool) F {
	if !percent {
		return f - s
	}
	if s == 0 {
		return 0
	}
	return 100 * (f - s) / s
}

// APO writes fast average minus slow average.
func (c Calc[F]) APO(in []F, p APOParams, out []F) (APOState[F], error) {
	return c.oscillator("APO", in, p, out, false)
}

// APONext advances APO. window holds APOWindow(p) samples, the new one last.
func APONext[F Float](window []F, st APOState[F], p APOParams) (F, APOState[F], error) {
	return oscillatorNext("APO", window, st, p, false)
}

// PPO writes the APO as a percentage of the slow average; a zero slow
// average yields 0.
func (c Calc[F]) PPO(in []F, p APOParams, out []F) (APOState[F], error) {
	return c.oscillator("PPO", in, p, out, true)
}

// PPONext advances PPO. window holds APOWindow(p) samples, the new one last.
func PPONext[F Float](window []F, st APOState[F], p APOParams) (F, APOState[F], error) {
	return oscillatorNext("PPO", window, st, p, true)
}
