package indicator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookback_RejectsInvalidParameters(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (int, error)
	}{
		{"SMA period 1", func() (int, error) { return SMALookback(1) }},
		{"EMA period 0", func() (int, error) { return EMALookback(0) }},
		{"WMA period 1", func() (int, error) { return WMALookback(1) }},
		{"T3 vfactor 0", func() (int, error) { return T3Lookback(5, 0) }},
		{"T3 vfactor above 1", func() (int, error) { return T3Lookback(5, 1.5) }},
		{"MAMA fast limit", func() (int, error) { return MAMALookback(1.2, 0.05) }},
		{"MAMA slow limit", func() (int, error) { return MAMALookback(0.5, 0) }},
		{"MOM period 0", func() (int, error) { return MOMLookback(0) }},
		{"RSI period 1", func() (int, error) { return RSILookback(1) }},
		{"MACD fast >= slow", func() (int, error) { return MACDLookback(MACDParams{Fast: 26, Slow: 12, Signal: 9}) }},
		{"MACD signal 1", func() (int, error) { return MACDLookback(MACDParams{Fast: 12, Slow: 26, Signal: 1}) }},
		{"APO fast == slow", func() (int, error) { return APOLookback(APOParams{Fast: 10, Slow: 10}) }},
		{"PPO unknown kind", func() (int, error) { return PPOLookback(APOParams{Fast: 3, Slow: 10, Kind: MAType(42)}) }},
		{"STOCH zero smoothing", func() (int, error) { return StochLookback(StochParams{FastK: 5, SlowK: 0, SlowD: 3}) }},
		{"KDJ zero weight", func() (int, error) { return KDJLookback(KDJParams{Period: 9, M1: 0, M2: 3}) }},
		{"BBANDS negative dev", func() (int, error) { return BBANDSLookback(BBandsParams{Period: 20, DevUp: -1, DevDown: 2}) }},
		{"SAR acceleration above max", func() (int, error) { return SARLookback(SARParams{Acceleration: 0.3, Maximum: 0.2}) }},
		{"SAR zero acceleration", func() (int, error) { return SARLookback(SARParams{Acceleration: 0, Maximum: 0.2}) }},
		{"SUPERTREND zero multiplier", func() (int, error) { return SupertrendLookback(SupertrendParams{Period: 10}) }},
		{"ADOSC fast >= slow", func() (int, error) { return ADOSCLookback(ADOSCParams{Fast: 10, Slow: 3}) }},
		{"ATR period 0", func() (int, error) { return ATRLookback(0) }},
		{"ADX period 1", func() (int, error) { return ADXLookback(1) }},
		{"CDL period 1", func() (int, error) { return CandleLookback(CandleParams{Period: 1}) }},
		{"MA unknown kind", func() (int, error) { return MALookback(MAType(-1), 10) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParameter)

			var e *Error
			require.True(t, errors.As(err, &e))
			assert.NotEmpty(t, e.Func)
		})
	}
}

func TestBatch_RejectsParametersBeforeWriting(t *testing.T) {
	in := []float64{1, 2, 3, 4, 5}
	out := []float64{9, 9, 9, 9, 9}
	_, err := calc.SMA(in, 1, out)
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.Equal(t, []float64{9, 9, 9, 9, 9}, out)

	_, _, err = SMANext(1.0, 0.0, SMAState[float64]{}, 1)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBatch_ShapeErrors(t *testing.T) {
	_, err := calc.SMA(nil, 3, nil)
	assert.ErrorIs(t, err, ErrInvalidData)

	_, err = calc.SMA([]float64{1, 2, 3, 4}, 3, make([]float64, 3))
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = calc.TRANGE([]float64{1, 2, 3}, []float64{1, 2}, []float64{1, 2, 3}, make([]float64, 3))
	assert.ErrorIs(t, err, ErrLengthMismatch)

	// length == lookback leaves no defined position
	_, err = calc.SMA([]float64{1, 2}, 3, make([]float64, 2))
	assert.ErrorIs(t, err, ErrInsufficientData)
	_, err = calc.SMA([]float64{1, 2, 3}, 4, make([]float64, 3))
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = calc.ADX(make([]float64, 27), make([]float64, 27), make([]float64, 27), 14, make([]float64, 27))
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCheckLevels(t *testing.T) {
	in := []float64{1, 2, math.NaN(), 4, 5}

	out := make([]float64, 5)
	_, err := New[float64](CheckStrict).SMA(in, 2, out)
	assert.ErrorIs(t, err, ErrNaNDetected)

	_, err = New[float64](CheckStrict).SMA([]float64{1, math.Inf(1), 3}, 2, make([]float64, 3))
	assert.ErrorIs(t, err, ErrNaNDetected)

	// basic does not scan values
	_, err = New[float64](CheckBasic).SMA(in, 2, out)
	assert.NoError(t, err)

	// off still validates parameters
	_, err = New[float64](CheckOff).SMA(in, 1, out)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	// and trusts shapes
	assert.Panics(t, func() {
		_, _ = New[float64](CheckOff).SMA([]float64{1, 2}, 3, make([]float64, 2))
	})
}

func TestParseCheck(t *testing.T) {
	for s, want := range map[string]Check{"off": CheckOff, "": CheckBasic, "Basic": CheckBasic, "STRICT": CheckStrict} {
		got, err := ParseCheck(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NotEmpty(t, got.String())
	}
	_, err := ParseCheck("paranoid")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestNext_RejectsWrongWindow(t *testing.T) {
	_, _, err := TRIMANext([]float64{1, 2, 3}, TRIMAState[float64]{}, 5)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, _, err = MANext([]float64{1, 2}, MAState[float64]{Kind: MAEMA}, 5)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, _, _, err = StochNext([]float64{1, 2}, []float64{1, 2, 3}, 2.0, StochState[float64]{}, StochParams{FastK: 3, SlowK: 1, SlowD: 1})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestLookback_Idempotent(t *testing.T) {
	a, err := MACDLookback(DefaultMACDParams())
	require.NoError(t, err)

	// evaluating something in between must not influence it
	b := genBars(100, 1)
	_, err = calc.MACD(b.close, DefaultMACDParams(), make([]float64, 100), make([]float64, 100), make([]float64, 100))
	require.NoError(t, err)

	again, err := MACDLookback(DefaultMACDParams())
	require.NoError(t, err)
	assert.Equal(t, a, again)

	for _, kind := range []MAType{MASMA, MAT3, MAKAMA, MAMAMA} {
		x, _ := MALookback(kind, 9)
		y, _ := MALookback(kind, 9)
		assert.Equal(t, x, y, kind.String())
	}
}

func TestToF_Float32Overflow(t *testing.T) {
	_, err := toF[float32](1<<24 + 1)
	assert.ErrorIs(t, err, ErrConversion)

	v, err := toF[float32](1 << 24)
	require.NoError(t, err)
	assert.Equal(t, float32(1<<24), v)

	_, err = toF[float64](1<<24 + 1)
	assert.NoError(t, err)
}

func TestError_Message(t *testing.T) {
	_, err := SMALookback(1)
	assert.Equal(t, "SMA: invalid parameter: period 1 < 2", err.Error())
}

func TestNext_DoesNotAllocate(t *testing.T) {
	b := genBars(200, 7)
	ema, err := calc.MA(b.close, MAEMA, 10, make([]float64, 200))
	require.NoError(t, err)

	p := APOParams{Fast: 12, Slow: 26, Kind: MAEMA}
	apo, err := calc.APO(b.close, p, make([]float64, 200))
	require.NoError(t, err)

	w := []float64{101.5}
	tests := []struct {
		name string
		fn   func()
	}{
		{"MANext", func() { _, _, _ = MANext(w, ema, 10) }},
		{"APONext", func() { _, _, _ = APONext(w, apo, p) }},
		{"PPONext", func() { _, _, _ = PPONext(w, apo, p) }},
		{"MALookback", func() { _, _ = MALookback(MASMA, 10) }},
		{"MAWindow", func() { _ = MAWindow(MAKAMA, 10) }},
		{"APOLookback", func() { _, _ = APOLookback(p) }},
	}
	for _, tt := range tests {
		assert.Zero(t, testing.AllocsPerRun(1000, tt.fn), tt.name)
	}
}

func TestLINEARREG_ConversionBeforeWriting(t *testing.T) {
	c := New[float32](CheckBasic)
	in := []float32{1, 2, 3}
	value := []float32{9, 9, 9}
	slope := []float32{9, 9, 9}
	intercept := []float32{9, 9, 9}

	_, err := c.LINEARREG(in, 1<<24+1, value, slope, intercept)
	assert.ErrorIs(t, err, ErrConversion)
	assert.Equal(t, []float32{9, 9, 9}, value)
	assert.Equal(t, []float32{9, 9, 9}, slope)
}
