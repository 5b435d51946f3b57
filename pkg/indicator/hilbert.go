package indicator

import "math"

// HilbertState is Ehlers' Hilbert-transform homodyne discriminator. Arrays
// hold lagged values, index 0 being one bar back.
type HilbertState[F Float] struct {
	Price        [3]F `json:"price"`
	Smooth       [6]F `json:"smooth"`
	Detrender    [6]F `json:"detrender"`
	I1           [6]F `json:"i1"`
	Q1           [6]F `json:"q1"`
	I2           F    `json:"i2"`
	Q2           F    `json:"q2"`
	Re           F    `json:"re"`
	Im           F    `json:"im"`
	Period       F    `json:"period"`
	SmoothPeriod F    `json:"smooth_period"`
	Phase        F    `json:"phase"`
}

// hilbertLookback is the number of bars the discriminator needs before its
// period estimate settles.
const hilbertLookback = 32

const rad2deg = 180 / math.Pi

func newHilbert[F Float](x0 F) HilbertState[F] {
	return HilbertState[F]{Price: [3]F{x0, x0, x0}}
}

// ht is the four-tap Hilbert transform over a value and its lags.
func ht[F Float](cur F, lags [6]F) F {
	return F(0.0962)*cur + F(0.5769)*lags[1] - F(0.5769)*lags[3] - F(0.0962)*lags[5]
}

func shift6[F Float](lags [6]F, v F) [6]F {
	copy(lags[1:], lags[:5])
	lags[0] = v
	return lags
}

func atanDeg[F Float](x F) F { return F(math.Atan(float64(x)) * rad2deg) }

func hilbertStep[F Float](x F, h HilbertState[F]) HilbertState[F] {
	adj := F(0.075)*h.Period + F(0.54)

	smooth := (4*x + 3*h.Price[0] + 2*h.Price[1] + h.Price[2]) / 10
	det := ht(smooth, h.Smooth) * adj
	q1 := ht(det, h.Detrender) * adj
	i1 := h.Detrender[2]

	jI := ht(i1, h.I1) * adj
	jQ := ht(q1, h.Q1) * adj

	i2 := F(0.2)*(i1-jQ) + F(0.8)*h.I2
	q2 := F(0.2)*(q1+jI) + F(0.8)*h.Q2

	re := F(0.2)*(i2*h.I2+q2*h.Q2) + F(0.8)*h.Re
	im := F(0.2)*(i2*h.Q2-q2*h.I2) + F(0.8)*h.Im

	period := h.Period
	if im != 0 && re != 0 {
		period = 360 / atanDeg(im/re)
	}
	period = minOf(period, F(1.5)*h.Period)
	period = maxOf(period, F(0.67)*h.Period)
	period = minOf(maxOf(period, 6), 50)
	period = F(0.2)*period + F(0.8)*h.Period

	if i1 != 0 {
		h.Phase = atanDeg(q1 / i1)
	}

	h.Price = [3]F{x, h.Price[0], h.Price[1]}
	h.Smooth = shift6(h.Smooth, smooth)
	h.Detrender = shift6(h.Detrender, det)
	h.I1 = shift6(h.I1, i1)
	h.Q1 = shift6(h.Q1, q1)
	h.I2, h.Q2 = i2, q2
	h.Re, h.Im = re, im
	h.Period = period
	h.SmoothPeriod = F(0.33)*period + F(0.67)*h.SmoothPeriod
	return h
}

// HTDCPeriodState is the discriminator state behind the dominant cycle period.
type HTDCPeriodState[F Float] struct {
	HT HilbertState[F] `json:"ht"`
}

// HTDCPeriodLookback returns 32.
func HTDCPeriodLookback() (int, error) { return hilbertLookback, nil }

// HTDCPeriod writes the Hilbert-transform dominant cycle period, smoothed,
// in bars.
func (c Calc[F]) HTDCPeriod(in []F, out []F) (HTDCPeriodState[F], error) {
	lb, _ := HTDCPeriodLookback()
	if err := c.prepare("HT_DCPERIOD", lb, series(in), series(out)); err != nil {
		return HTDCPeriodState[F]{}, err
	}
	h := newHilbert(in[0])
	for t := 1; t < len(in); t++ {
		h = hilbertStep(in[t], h)
		if t >= lb {
			out[t] = h.SmoothPeriod
		}
	}
	return HTDCPeriodState[F]{HT: h}, nil
}

// HTDCPeriodNext advances the discriminator by x.
func HTDCPeriodNext[F Float](x F, st HTDCPeriodState[F]) (F, HTDCPeriodState[F], error) {
	st.HT = hilbertStep(x, st.HT)
	return st.HT.SmoothPeriod, st, nil
}
