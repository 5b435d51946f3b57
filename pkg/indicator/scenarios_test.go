package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var calc = New[float64](CheckBasic)

// ────────────────────────────────────────────────────────────
// Hand-calculated scenarios
// ────────────────────────────────────────────────────────────

func TestSMA_Scenario(t *testing.T) {
	in := []float64{1, 2, 3, 4, 5}
	out := make([]float64, len(in))
	st, err := calc.SMA(in, 3, out)
	require.NoError(t, err)

	// (1+2+3)/3=2, (2+3+4)/3=3, (3+4+5)/3=4
	want := []float64{math.NaN(), math.NaN(), 2, 3, 4}
	for i := range want {
		assertClose(t, "SMA", out[i], want[i], 1e-12)
	}
	assert.Equal(t, 12.0, st.Sum)

	// 6 enters, 3 leaves: (4+5+6)/3=5
	v, st, err := SMANext(6, 3, st, 3)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)
	assert.Equal(t, 15.0, st.Sum)
}

func TestOBV_Scenario(t *testing.T) {
	closes := []float64{10, 12, 11, 13}
	vols := []float64{100, 150, 120, 200}
	out := make([]float64, 4)
	_, err := calc.OBV(closes, vols, out)
	require.NoError(t, err)

	// 100, up +150, down -120, up +200
	assert.Equal(t, []float64{100, 250, 130, 330}, out)
}

func TestTRANGE_Scenario(t *testing.T) {
	high := []float64{10, 12, 15}
	low := []float64{8, 9, 11}
	cls := []float64{9, 11, 14}
	out := make([]float64, 3)
	_, err := calc.TRANGE(high, low, cls, out)
	require.NoError(t, err)

	// bar 1: max(12-9, |12-9|, |9-9|) = 3
	// bar 2: max(15-11, |15-11|, |11-11|) = 4
	assert.True(t, math.IsNaN(out[0]))
	assert.Equal(t, 3.0, out[1])
	assert.Equal(t, 4.0, out[2])
}

func TestMOM_Scenario(t *testing.T) {
	in := []float64{2, 4, 6, 8, 10}
	out := make([]float64, 5)
	require.NoError(t, calc.MOM(in, 2, out))

	assert.Equal(t, 2, leadingNaN(out))
	assert.Equal(t, []float64{4, 4, 4}, out[2:])
	assert.Equal(t, 4.0, MOMNext(10.0, 6.0))
}

func TestWMA_Scenario(t *testing.T) {
	in := []float64{1, 2, 3, 4}
	out := make([]float64, 4)
	_, err := calc.WMA(in, 3, out)
	require.NoError(t, err)

	// (1*1+2*2+3*3)/6 = 14/6, (1*2+2*3+3*4)/6 = 20/6
	assertClose(t, "WMA[2]", out[2], 14.0/6, 1e-12)
	assertClose(t, "WMA[3]", out[3], 20.0/6, 1e-12)
}

func TestEMA_SeedAndStep(t *testing.T) {
	in := []float64{2, 4, 6, 8}
	out := make([]float64, 4)
	st, err := calc.EMA(in, 3, out)
	require.NoError(t, err)

	// seed = (2+4+6)/3 = 4, k = 0.5, next = 4 + 0.5*(8-4) = 6
	assert.Equal(t, 4.0, out[2])
	assert.Equal(t, 6.0, out[3])
	assert.Equal(t, 6.0, st.Value)
}

func TestRSI_AllGainsReads100(t *testing.T) {
	in := []float64{1, 2, 3, 4, 5, 6}
	out := make([]float64, len(in))
	st, err := calc.RSI(in, 3, out)
	require.NoError(t, err)
	for i := 3; i < len(in); i++ {
		assert.Equal(t, 100.0, out[i])
	}
	v, _, err := RSINext(7, st, 3)
	require.NoError(t, err)
	assert.Equal(t, 100.0, v)
}

func TestMACD_SignalSeed(t *testing.T) {
	in := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	p := MACDParams{Fast: 2, Slow: 3, Signal: 2}
	m, s, h := make([]float64, 8), make([]float64, 8), make([]float64, 8)
	_, err := calc.MACD(in, p, m, s, h)
	require.NoError(t, err)

	lb, _ := MACDLookback(p)
	assert.Equal(t, 3, lb)
	// On a straight line the fast EMA leads the slow EMA by a constant once
	// both are seeded: fast lags 1/2 bar, slow lags 1 bar.
	for i := lb; i < len(in); i++ {
		assertClose(t, "macd", m[i], 0.5, 1e-12)
		assertClose(t, "signal", s[i], 0.5, 1e-12)
		assertClose(t, "hist", h[i], 0, 1e-12)
	}
}

// ────────────────────────────────────────────────────────────
// Zero-range sentinels, batch and incremental
// ────────────────────────────────────────────────────────────

func TestWILLR_FlatWindowReadsZero(t *testing.T) {
	flat := []float64{5, 5, 5, 5, 5, 5}
	out := make([]float64, len(flat))
	st, err := calc.WILLR(flat, flat, flat, 3, out)
	require.NoError(t, err)
	for i := 2; i < len(flat); i++ {
		assert.Equal(t, 0.0, out[i], "batch at %d", i)
	}
	v, _, err := WILLRNext([]float64{5, 5, 5}, []float64{5, 5, 5}, 5.0, st, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)
	assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
}

func TestSTOCH_FlatWindowReadsZero(t *testing.T) {
	flat := []float64{7, 7, 7, 7, 7, 7, 7, 7, 7, 7}
	p := StochParams{FastK: 3, SlowK: 2, SlowD: 2}
	k, d := make([]float64, len(flat)), make([]float64, len(flat))
	st, err := calc.STOCH(flat, flat, flat, p, k, d)
	require.NoError(t, err)

	lb, _ := StochLookback(p)
	assert.Equal(t, lb, leadingNaN(k))
	for i := lb; i < len(flat); i++ {
		assert.Equal(t, 0.0, k[i])
		assert.Equal(t, 0.0, d[i])
	}
	vk, vd, _, err := StochNext([]float64{7, 7, 7}, []float64{7, 7, 7}, 7.0, st, p)
	require.NoError(t, err)
	assert.Equal(t, 0.0, vk)
	assert.Equal(t, 0.0, vd)
}

func TestKDJ_FlatWindowReadsFifty(t *testing.T) {
	flat := []float64{3, 3, 3, 3, 3}
	p := KDJParams{Period: 3, M1: 3, M2: 3}
	k, d, j := make([]float64, 5), make([]float64, 5), make([]float64, 5)
	_, err := calc.KDJ(flat, flat, flat, p, k, d, j)
	require.NoError(t, err)
	for i := 2; i < 5; i++ {
		assert.Equal(t, 50.0, k[i])
		assert.Equal(t, 50.0, d[i])
		assert.Equal(t, 50.0, j[i])
	}
}

func TestFlatSeriesSentinels(t *testing.T) {
	flat := make([]float64, 40)
	for i := range flat {
		flat[i] = 10
	}
	out := make([]float64, 40)

	_, err := calc.CMO(flat, 5, out)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[39], "CMO")

	_, err = calc.DX(flat, flat, flat, 5, out)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[39], "DX")

	_, err = calc.MFI(flat, flat, flat, flat, 5, out)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[39], "MFI")

	_, err = calc.AD(flat, flat, flat, flat, out)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[39], "AD")

	_, err = calc.KAMA(flat, 5, out)
	require.NoError(t, err)
	assert.Equal(t, 10.0, out[39], "KAMA")

	zero := make([]float64, 40)
	require.NoError(t, calc.ROC(zero, 3, out))
	assert.Equal(t, 0.0, out[39], "ROC")

	_, err = calc.NATR(zero, zero, zero, 3, out)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[39], "NATR")

	_, err = calc.PPO(zero, APOParams{Fast: 3, Slow: 5, Kind: MASMA}, out)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[39], "PPO")
}

// ────────────────────────────────────────────────────────────
// Sliding extremes
// ────────────────────────────────────────────────────────────

func TestMaxStep_RescansWhenExtremumLeaves(t *testing.T) {
	in := []float64{9, 1, 2, 3, 2, 1}
	out := make([]float64, len(in))
	_, err := calc.MAX(in, 3, out)
	require.NoError(t, err)
	// windows: [9 1 2]=9, [1 2 3]=3, [2 3 2]=3, [3 2 1]=3
	assert.Equal(t, []float64{9, 3, 3, 3}, out[2:])
}

func TestMaxScan_TiesResolveToNewest(t *testing.T) {
	st := maxScan([]float64{4, 2, 4, 1})
	assert.Equal(t, 4.0, st.Value)
	assert.Equal(t, 1, st.Age)

	mn := minScan([]float64{1, 3, 1, 5})
	assert.Equal(t, 1.0, mn.Value)
	assert.Equal(t, 1, mn.Age)
}

func TestAROON_FreshHighReads100(t *testing.T) {
	high := []float64{1, 2, 3, 4, 5, 6}
	low := []float64{6, 5, 4, 3, 2, 1}
	down, up := make([]float64, 6), make([]float64, 6)
	_, err := calc.AROON(high, low, 4, down, up)
	require.NoError(t, err)
	assert.Equal(t, 100.0, up[5])
	assert.Equal(t, 100.0, down[5])
}

// ────────────────────────────────────────────────────────────
// Trend followers
// ────────────────────────────────────────────────────────────

func TestSAR_StaysBelowRisingMarket(t *testing.T) {
	n := 30
	high, low := make([]float64, n), make([]float64, n)
	for i := range high {
		low[i] = float64(10 + i)
		high[i] = low[i] + 1
	}
	out := make([]float64, n)
	st, err := calc.SAR(high, low, DefaultSARParams(), out)
	require.NoError(t, err)
	assert.True(t, st.Long)
	for i := 1; i < n; i++ {
		assert.Less(t, out[i], low[i], "bar %d", i)
	}
	assert.InDelta(t, 0.2, st.AF, 1e-12)
}

func TestSAR_ReversesOnBreak(t *testing.T) {
	high := []float64{11, 12, 13, 14, 8}
	low := []float64{10, 11, 12, 13, 7}
	out := make([]float64, 5)
	st, err := calc.SAR(high, low, DefaultSARParams(), out)
	require.NoError(t, err)
	assert.False(t, st.Long)
	// the stop in force on the reversal bar is the prior extreme point
	assert.Equal(t, 14.0, out[4])
}

func TestSUPERTREND_DirectionFollowsTrend(t *testing.T) {
	n := 60
	high, low, cls := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		c := 100 + float64(i)
		if i >= 30 {
			c = 130 - 3*float64(i-30)
		}
		cls[i], high[i], low[i] = c, c+1, c-1
	}
	v, dir := make([]float64, n), make([]float64, n)
	_, err := calc.SUPERTREND(high, low, cls, SupertrendParams{Period: 5, Multiplier: 2}, v, dir)
	require.NoError(t, err)
	assert.Equal(t, 1.0, dir[25])
	assert.Less(t, v[25], cls[25])
	assert.Equal(t, -1.0, dir[n-1])
	assert.Greater(t, v[n-1], cls[n-1])
}

// ────────────────────────────────────────────────────────────
// Cycle
// ────────────────────────────────────────────────────────────

func TestHTDCPeriod_FindsSineCycle(t *testing.T) {
	n := 500
	in := make([]float64, n)
	for i := range in {
		in[i] = 100 + 10*math.Sin(2*math.Pi*float64(i)/20)
	}
	out := make([]float64, n)
	_, err := calc.HTDCPeriod(in, out)
	require.NoError(t, err)
	assert.Equal(t, hilbertLookback, leadingNaN(out))
	assert.InDelta(t, 20, out[n-1], 4)
}

// ────────────────────────────────────────────────────────────
// Candlesticks
// ────────────────────────────────────────────────────────────

func TestCandle_Engulfing(t *testing.T) {
	p := CandleParams{Period: 2, LongBody: 1, ShortBody: 1, ShadowLong: 2, ShadowShort: 0.1}
	open := []float64{10, 10, 12, 9}
	high := []float64{11, 11, 12.5, 13.5}
	low := []float64{9.5, 9.5, 10.5, 8.5}
	cls := []float64{10.5, 10.5, 11, 13}
	out := make([]float64, 4)
	_, err := calc.Candle(Engulfing, open, high, low, cls, p, out)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[2])
	// bar 3 opens below bar 2's close and closes above its open
	assert.Equal(t, 1.0, out[3])
}

func TestCandle_Marubozu(t *testing.T) {
	p := CandleParams{Period: 2, LongBody: 1, ShortBody: 1, ShadowLong: 2, ShadowShort: 0.1}
	open := []float64{10, 10, 10}
	high := []float64{10.6, 10.6, 15}
	low := []float64{9.6, 9.6, 10}
	cls := []float64{10.5, 10.5, 15}
	out := make([]float64, 3)
	st, err := calc.Candle(Marubozu, open, high, low, cls, p, out)
	require.NoError(t, err)
	assert.Equal(t, 1.0, out[2])

	sig, _, err := CandleNext(Marubozu, 15.0, 15.0, 10.0, 10.0, st, p)
	require.NoError(t, err)
	assert.Equal(t, Bearish, sig)
}

func TestParsePattern(t *testing.T) {
	p, err := ParsePattern("cdlHammer")
	require.NoError(t, err)
	assert.Equal(t, Hammer, p)
	_, err = ParsePattern("doji")
	assert.ErrorIs(t, err, ErrInvalidParameter)
	assert.Len(t, Patterns(), int(numPatterns))
}
