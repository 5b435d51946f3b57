package indicator

// Calc holds the batch evaluators for one sample width. Build it once with
// New and reuse it; the zero value validates at CheckBasic.
type Calc[F Float] struct {
	Check Check
}

// New returns a Calc validating at the given level.
func New[F Float](check Check) Calc[F] {
	return Calc[F]{Check: check}
}

// inner is used for sub-series a batch evaluator computes itself; their
// shapes are known good.
func (c Calc[F]) inner() Calc[F] { return Calc[F]{Check: CheckOff} }

// prepare validates shapes at the configured depth and fills the NaN prefix
// of every output. Nothing is written unless all checks pass.
func (c Calc[F]) prepare(fn string, lookback int, ins, outs [][]F) error {
	if c.Check != CheckOff {
		if len(ins) == 0 || len(ins[0]) == 0 {
			return errorf(ErrInvalidData, fn, "empty input")
		}
		n := len(ins[0])
		for i, in := range ins {
			if len(in) != n {
				return errorf(ErrLengthMismatch, fn, "input %d has %d samples, want %d", i, len(in), n)
			}
		}
		for i, out := range outs {
			if len(out) != n {
				return errorf(ErrLengthMismatch, fn, "output %d has %d slots, want %d", i, len(out), n)
			}
		}
		if n <= lookback {
			return errorf(ErrInsufficientData, fn, "%d samples, lookback %d", n, lookback)
		}
		if c.Check == CheckStrict {
			for i, in := range ins {
				for j, x := range in {
					if !finite(x) {
						return errorf(ErrNaNDetected, fn, "input %d position %d", i, j)
					}
				}
			}
		}
	}
	for _, out := range outs {
		fill(out[:lookback], nan[F]())
	}
	return nil
}

func series[F Float](s ...[]F) [][]F { return s }
