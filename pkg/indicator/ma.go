package indicator

import "strings"

// MAType selects a moving average for indicators parameterised by one.
type MAType int

const (
	MASMA MAType = iota
	MAEMA
	MAWMA
	MADEMA
	MATEMA
	MATRIMA
	MAT3
	MAKAMA
	MAMAMA
	MARMA
	numMATypes
)

// Fixed parameters of the table entries that take more than a period.
const (
	maT3VFactor = 0.7
	maMAMAFast  = 0.5
	maMAMASlow  = 0.05
)

var maNames = [numMATypes]string{"SMA", "EMA", "WMA", "DEMA", "TEMA", "TRIMA", "T3", "KAMA", "MAMA", "RMA"}

func (k MAType) String() string {
	if k < 0 || k >= numMATypes {
		return "MAType(?)"
	}
	return maNames[k]
}

// ParseMAType resolves a moving-average name, case-insensitively.
func ParseMAType(s string) (MAType, error) {
	for i, n := range maNames {
		if strings.EqualFold(n, s) {
			return MAType(i), nil
		}
	}
	return 0, errorf(ErrInvalidParameter, "ParseMAType", "unknown moving average %q", s)
}

// MAState is the state of whichever average Kind selects; only that field is
// meaningful.
type MAState[F Float] struct {
	Kind  MAType        `json:"kind"`
	SMA   SMAState[F]   `json:"sma"`
	EMA   EMAState[F]   `json:"ema"`
	WMA   WMAState[F]   `json:"wma"`
	DEMA  DEMAState[F]  `json:"dema"`
	TEMA  TEMAState[F]  `json:"tema"`
	TRIMA TRIMAState[F] `json:"trima"`
	T3    T3State[F]    `json:"t3"`
	KAMA  KAMAState[F]  `json:"kama"`
	MAMA  MAMAState[F]  `json:"mama"`
	RMA   EMAState[F]   `json:"rma"`
}

// maSpec is a kind's entry in the lookup table. The width-dependent batch
// and step functions are dispatched by maBatch and maStep.
type maSpec struct {
	lookback func(period int) (int, error)
	window   func(period int) int
}

func one(int) int           { return 1 }
func periodPlus1(p int) int { return p + 1 }

func t3Lookback(p int) (int, error) { return T3Lookback(p, maT3VFactor) }

// MAMA adapts its own period; the period argument is ignored.
func mamaLookback(int) (int, error) { return MAMALookback(maMAMAFast, maMAMASlow) }

var maSpecs = [numMATypes]maSpec{
	MASMA:   {lookback: SMALookback, window: periodPlus1},
	MAEMA:   {lookback: EMALookback, window: one},
	MAWMA:   {lookback: WMALookback, window: periodPlus1},
	MADEMA:  {lookback: DEMALookback, window: one},
	MATEMA:  {lookback: TEMALookback, window: one},
	MATRIMA: {lookback: TRIMALookback, window: TRIMAWindow},
	MAT3:    {lookback: t3Lookback, window: one},
	MAKAMA:  {lookback: KAMALookback, window: KAMAWindow},
	MAMAMA:  {lookback: mamaLookback, window: one},
	MARMA:   {lookback: RMALookback, window: one},
}

func maBatch[F Float](c Calc[F], kind MAType, in []F, p int, out []F) (MAState[F], error) {
	st := MAState[F]{Kind: kind}
	var err error
	switch kind {
	case MASMA:
		st.SMA, err = c.SMA(in, p, out)
	case MAEMA:
		st.EMA, err = c.EMA(in, p, out)
	case MAWMA:
		st.WMA, err = c.WMA(in, p, out)
	case MADEMA:
		st.DEMA, err = c.DEMA(in, p, out)
	case MATEMA:
		st.TEMA, err = c.TEMA(in, p, out)
	case MATRIMA:
		st.TRIMA, err = c.TRIMA(in, p, out)
	case MAT3:
		st.T3, err = c.T3(in, p, maT3VFactor, out)
	case MAKAMA:
		st.KAMA, err = c.KAMA(in, p, out)
	case MAMAMA:
		fama := make([]F, len(out))
		st.MAMA, err = c.MAMA(in, maMAMAFast, maMAMASlow, out, fama)
	case MARMA:
		st.RMA, err = c.RMA(in, p, out)
	}
	return st, err
}

// maStep expects a window already checked against maSpecs[st.Kind].window.
func maStep[F Float](w []F, st MAState[F], p int) (v F, _ MAState[F], err error) {
	switch st.Kind {
	case MASMA:
		v, st.SMA, err = SMANext(w[p], w[0], st.SMA, p)
	case MAEMA:
		v, st.EMA, err = EMANext(w[0], st.EMA, p)
	case MAWMA:
		v, st.WMA, err = WMANext(w[p], w[0], st.WMA, p)
	case MADEMA:
		v, st.DEMA, err = DEMANext(w[0], st.DEMA, p)
	case MATEMA:
		v, st.TEMA, err = TEMANext(w[0], st.TEMA, p)
	case MATRIMA:
		v, st.TRIMA, err = TRIMANext(w, st.TRIMA, p)
	case MAT3:
		v, st.T3, err = T3Next(w[0], st.T3, p, maT3VFactor)
	case MAKAMA:
		v, st.KAMA, err = KAMANext(w, st.KAMA, p)
	case MAMAMA:
		v, _, st.MAMA, err = MAMANext(w[0], st.MAMA, maMAMAFast, maMAMASlow)
	case MARMA:
		v, st.RMA, err = RMANext(w[0], st.RMA, p)
	}
	return v, st, err
}

func maKind(fn string, kind MAType) error {
	if kind < 0 || kind >= numMATypes {
		return errorf(ErrInvalidParameter, fn, "unknown moving average kind %d", int(kind))
	}
	return nil
}

// MALookback returns the lookback of the selected average.
func MALookback(kind MAType, period int) (int, error) {
	if err := maKind("MA", kind); err != nil {
		return 0, err
	}
	return maSpecs[kind].lookback(period)
}

// MAWindow is the history MANext needs for the selected average: the number
// of samples ending with the new one.
func MAWindow(kind MAType, period int) int {
	if maKind("MA", kind) != nil {
		return 0
	}
	return maSpecs[kind].window(period)
}

// MA writes the moving average selected by kind.
func (c Calc[F]) MA(in []F, kind MAType, period int, out []F) (MAState[F], error) {
	if err := maKind("MA", kind); err != nil {
		return MAState[F]{}, err
	}
	return maBatch(c, kind, in, period, out)
}

// MANext advances the average recorded in st.Kind. window holds
// MAWindow(st.Kind, period) samples, the new one last.
func MANext[F Float](window []F, st MAState[F], period int) (F, MAState[F], error) {
	if err := maKind("MA", st.Kind); err != nil {
		return nan[F](), st, err
	}
	spec := maSpecs[st.Kind]
	if _, err := spec.lookback(period); err != nil {
		return nan[F](), st, err
	}
	if err := checkWindow("MA", window, spec.window(period)); err != nil {
		return nan[F](), st, err
	}
	return maStep(window, st, period)
}
