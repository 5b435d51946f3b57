package indicator

// MoveState carries Wilder-smoothed average gain and loss plus the last
// close. RSI and CMO share it.
type MoveState[F Float] struct {
	AvgGain F `json:"avg_gain"`
	AvgLoss F `json:"avg_loss"`
	Close   F `json:"close"`
}

func moveLookback(fn string, period int) (int, error) {
	if err := checkPeriod(fn, period, 2); err != nil {
		return 0, err
	}
	return period, nil
}

// RSILookback returns period. Period must be at least 2.
func RSILookback(period int) (int, error) { return moveLookback("RSI", period) }

// CMOLookback returns period. Period must be at least 2.
func CMOLookback(period int) (int, error) { return moveLookback("CMO", period) }

// moves seeds the averages with the plain means of the first period changes
// and then runs step over the rest of in.
func (c Calc[F]) moves(fn string, in []F, period int, out []F, value func(MoveState[F]) F) (MoveState[F], error) {
	lb, err := moveLookback(fn, period)
	if err != nil {
		return MoveState[F]{}, err
	}
	if err := c.prepare(fn, lb, series(in), series(out)); err != nil {
		return MoveState[F]{}, err
	}
	n := F(period)
	var st MoveState[F]
	for i := 1; i <= period; i++ {
		g, l := split(in[i] - in[i-1])
		st.AvgGain += g
		st.AvgLoss += l
	}
	st.AvgGain /= n
	st.AvgLoss /= n
	st.Close = in[period]
	out[lb] = value(st)
	for t := period + 1; t < len(in); t++ {
		st = moveStep(in[t], st, n)
		out[t] = value(st)
	}
	return st, nil
}

func split[F Float](d F) (gain, loss F) {
	if d > 0 {
		return d, 0
	}
	return 0, -d
}

func moveStep[F Float](x F, st MoveState[F], n F) MoveState[F] {
	g, l := split(x - st.Close)
	st.AvgGain = wilderStep(g, st.AvgGain, n)
	st.AvgLoss = wilderStep(l, st.AvgLoss, n)
	st.Close = x
	return st
}

func rsiValue[F Float](st MoveState[F]) F {
	if st.AvgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+st.AvgGain/st.AvgLoss)
}

func cmoValue[F Float](st MoveState[F]) F {
	sum := st.AvgGain + st.AvgLoss
	if sum == 0 {
		return 0
	}
	return 100 * (st.AvgGain - st.AvgLoss) / sum
}

// RSI writes Wilder's relative strength index. A window without losses
// reads 100.
func (c Calc[F]) RSI(in []F, period int, out []F) (MoveState[F], error) {
	return c.moves("RSI", in, period, out, rsiValue[F])
}

// RSINext advances RSI by close x.
func RSINext[F Float](x F, st MoveState[F], period int) (F, MoveState[F], error) {
	if err := checkPeriod("RSI", period, 2); err != nil {
		return nan[F](), st, err
	}
	st = moveStep(x, st, F(period))
	return rsiValue(st), st, nil
}

// CMO writes Chande's momentum oscillator over Wilder-smoothed moves. A
// window with no movement reads 0.
func (c Calc[F]) CMO(in []F, period int, out []F) (MoveState[F], error) {
	return c.moves("CMO", in, period, out, cmoValue[F])
}

// CMONext advances CMO by close x.
func CMONext[F Float](x F, st MoveState[F], period int) (F, MoveState[F], error) {
	if err := checkPeriod("CMO", period, 2); err != nil {
		return nan[F](), st, err
	}
	st = moveStep(x, st, F(period))
	return cmoValue(st), st, nil
}
