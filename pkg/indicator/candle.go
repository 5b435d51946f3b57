package indicator

import "strings"

// Signal is a candlestick pattern verdict.
type Signal int8

const (
	Bearish Signal = -1
	None    Signal = 0
	Bullish Signal = 1
)

// Pattern selects a candlestick detector.
type Pattern int

const (
	Marubozu Pattern = iota
	Hammer
	ShootingStar
	Engulfing
	Harami
	numPatterns
)

// CandleParams size bodies and shadows against an EMA of recent body sizes.
type CandleParams struct {
	Period      int     `json:"period"`       // EMA period of the average body
	LongBody    float64 `json:"long_body"`    // body >= LongBody*avg is long
	ShortBody   float64 `json:"short_body"`   // body < ShortBody*avg is short
	ShadowLong  float64 `json:"shadow_long"`  // shadow >= ShadowLong*body is long
	ShadowShort float64 `json:"shadow_short"` // shadow <= ShadowShort*avg is short
}

// DefaultCandleParams returns the usual thresholds over a 10-bar average.
func DefaultCandleParams() CandleParams {
	return CandleParams{Period: 10, LongBody: 1, ShortBody: 1, ShadowLong: 2, ShadowShort: 0.1}
}

// CandleState carries the average body and the previous bar.
type CandleState[F Float] struct {
	AvgBody F `json:"avg_body"`
	Open    F `json:"open"`
	High    F `json:"high"`
	Low     F `json:"low"`
	Close   F `json:"close"`
}

type ohlc struct{ o, h, l, c float64 }

func (b ohlc) body() float64  { return abs(b.c - b.o) }
func (b ohlc) upper() float64 { return b.h - max(b.o, b.c) }
func (b ohlc) lower() float64 { return min(b.o, b.c) - b.l }
func (b ohlc) bull() bool     { return b.c > b.o }
func (b ohlc) bear() bool     { return b.c < b.o }

type detector func(prev, cur ohlc, avg float64, p CandleParams) Signal

var patterns = [numPatterns]struct {
	name   string
	detect detector
}{
	Marubozu:     {"MARUBOZU", marubozu},
	Hammer:       {"HAMMER", hammer},
	ShootingStar: {"SHOOTINGSTAR", shootingStar},
	Engulfing:    {"ENGULFING", engulfing},
	Harami:       {"HARAMI", harami},
}

func (p Pattern) String() string {
	if p < 0 || p >= numPatterns {
		return "Pattern(?)"
	}
	return patterns[p].name
}

// ParsePattern resolves a pattern name, case-insensitively, with or without
// a CDL prefix.
func ParsePattern(s string) (Pattern, error) {
	s = strings.TrimPrefix(strings.ToUpper(s), "CDL")
	for i, e := range patterns {
		if e.name == s {
			return Pattern(i), nil
		}
	}
	return 0, errorf(ErrInvalidParameter, "ParsePattern", "unknown pattern %q", s)
}

// Patterns lists every detector.
func Patterns() []Pattern {
	out := make([]Pattern, numPatterns)
	for i := range out {
		out[i] = Pattern(i)
	}
	return out
}

func marubozu(_, cur ohlc, avg float64, p CandleParams) Signal {
	if cur.body() < p.LongBody*avg || cur.upper() > p.ShadowShort*avg || cur.lower() > p.ShadowShort*avg {
		return None
	}
	return direction(cur)
}

func hammer(_, cur ohlc, avg float64, p CandleParams) Signal {
	b := cur.body()
	if b < p.ShortBody*avg && cur.lower() > 0 && cur.lower() >= p.ShadowLong*b && cur.upper() <= p.ShadowShort*avg {
		return Bullish
	}
	return None
}

func shootingStar(_, cur ohlc, avg float64, p CandleParams) Signal {
	b := cur.body()
	if b < p.ShortBody*avg && cur.upper() > 0 && cur.upper() >= p.ShadowLong*b && cur.lower() <= p.ShadowShort*avg {
		return Bearish
	}
	return None
}

func engulfing(prev, cur ohlc, _ float64, _ CandleParams) Signal {
	switch {
	case prev.bear() && cur.bull() && cur.o <= prev.c && cur.c >= prev.o && cur.body() > prev.body():
		return Bullish
	case prev.bull() && cur.bear() && cur.o >= prev.c && cur.c <= prev.o && cur.body() > prev.body():
		return Bearish
	}
	return None
}

func harami(prev, cur ohlc, avg float64, p CandleParams) Signal {
	if prev.body() < p.LongBody*avg || cur.body() >= p.ShortBody*avg {
		return None
	}
	if max(cur.o, cur.c) > max(prev.o, prev.c) || min(cur.o, cur.c) < min(prev.o, prev.c) {
		return None
	}
	switch {
	case prev.bear():
		return Bullish
	case prev.bull():
		return Bearish
	}
	return None
}

func direction(b ohlc) Signal {
	switch {
	case b.bull():
		return Bullish
	case b.bear():
		return Bearish
	}
	return None
}

// CandleLookback returns the body-average period, at least 2. Thresholds
// must be non-negative.
func CandleLookback(p CandleParams) (int, error) {
	if err := checkPeriod("CDL", p.Period, 2); err != nil {
		return 0, err
	}
	if p.LongBody < 0 || p.ShortBody < 0 || p.ShadowLong < 0 || p.ShadowShort < 0 {
		return 0, errorf(ErrInvalidParameter, "CDL", "negative threshold")
	}
	return p.Period, nil
}

func candleStep[F Float](pattern Pattern, o, h, l, c F, st CandleState[F], p CandleParams, k F) (Signal, CandleState[F]) {
	prev := ohlc{float64(st.Open), float64(st.High), float64(st.Low), float64(st.Close)}
	cur := ohlc{float64(o), float64(h), float64(l), float64(c)}
	sig := patterns[pattern].detect(prev, cur, float64(st.AvgBody), p)
	return sig, CandleState[F]{
		AvgBody: emaStep(abs(c-o), st.AvgBody, k),
		Open:    o,
		High:    h,
		Low:     l,
		Close:   c,
	}
}

func checkPattern(pattern Pattern) error {
	if pattern < 0 || pattern >= numPatterns {
		return errorf(ErrInvalidParameter, "CDL", "unknown pattern %d", int(pattern))
	}
	return nil
}

// Candle writes the pattern's signal (-1, 0, 1) for every bar after the
// body average has seeded.
func (c Calc[F]) Candle(pattern Pattern, open, high, low, close []F, p CandleParams, out []F) (CandleState[F], error) {
	if err := checkPattern(pattern); err != nil {
		return CandleState[F]{}, err
	}
	lb, err := CandleLookback(p)
	if err != nil {
		return CandleState[F]{}, err
	}
	if err := c.prepare("CDL"+pattern.String(), lb, series(open, high, low, close), series(out)); err != nil {
		return CandleState[F]{}, err
	}
	var sum F
	for i := 0; i < lb; i++ {
		sum += abs(close[i] - open[i])
	}
	last := lb - 1
	st := CandleState[F]{
		AvgBody: sum / F(lb),
		Open:    open[last],
		High:    high[last],
		Low:     low[last],
		Close:   close[last],
	}
	k := emaK[F](p.Period)
	for t := lb; t < len(close); t++ {
		var sig Signal
		sig, st = candleStep(pattern, open[t], high[t], low[t], close[t], st, p, k)
		out[t] = F(sig)
	}
	return st, nil
}

// CandleNext classifies one bar against the previous bar and average body.
func CandleNext[F Float](pattern Pattern, open, high, low, close F, st CandleState[F], p CandleParams) (Signal, CandleState[F], error) {
	if err := checkPattern(pattern); err != nil {
		return None, st, err
	}
	if _, err := CandleLookback(p); err != nil {
		return None, st, err
	}
	sig, st := candleStep(pattern, open, high, low, close, st, p, emaK[F](p.Period))
	return sig, st, nil
}
