package indicator

// MOMLookback returns period. Period must be at least 1.
func MOMLookback(period int) (int, error) {
	if err := checkPeriod("MOM", period, 1); err != nil {
		return 0, err
	}
	return period, nil
}

// MOM writes x[t] - x[t-period]. It keeps no state; the caller's history
// supplies the past sample.
func (c Calc[F]) MOM(in []F, period int, out []F) error {
	lb, err := MOMLookback(period)
	if err != nil {
		return err
	}
	if err := c.prepare("MOM", lb, series(in), series(out)); err != nil {
		return err
	}
	for t := lb; t < len(in); t++ {
		out[t] = MOMNext(in[t], in[t-period])
	}
	return nil
}

// MOMNext is the momentum of x against the sample period positions back.
func MOMNext[F Float](x, past F) F { return x - past }

// ROCLookback returns period. Period must be at least 1.
func ROCLookback(period int) (int, error) {
	if err := checkPeriod("ROC", period, 1); err != nil {
		return 0, err
	}
	return period, nil
}

// ROC writes 100 * (x[t] - x[t-period]) / x[t-period]; a zero past sample
// yields 0.
func (c Calc[F]) ROC(in []F, period int, out []F) error {
	lb, err := ROCLookback(period)
	if err != nil {
		return err
	}
	if err := c.prepare("ROC", lb, series(in), series(out)); err != nil {
		return err
	}
	for t := lb; t < len(in); t++ {
		out[t] = ROCNext(in[t], in[t-period])
	}
	return nil
}

// ROCNext is the percentage rate of change of x against past.
func ROCNext[F Float](x, past F) F {
	if past == 0 {
		return 0
	}
	return 100 * (x - past) / past
}
