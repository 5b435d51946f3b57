package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandle_Bar(t *testing.T) {
	c := Candle{Token: "3045", Exchange: "NSE", TF: 60, Open: 10010, High: 10250, Low: 9999, Close: 10001, Volume: 42}
	b := c.Bar()
	assert.Equal(t, Float(100.10), b.Open)
	assert.Equal(t, Float(102.50), b.High)
	assert.Equal(t, Float(99.99), b.Low)
	assert.Equal(t, Float(100.01), b.Close)
	assert.Equal(t, Float(42), b.Volume)
	assert.Equal(t, "NSE:3045", c.Key())
}

func TestPaise(t *testing.T) {
	assert.Equal(t, int64(10010), Paise(decimal.RequireFromString("100.10")))
	assert.Equal(t, int64(1), Paise(decimal.RequireFromString("0.005")))
	assert.Equal(t, int64(-250), Paise(decimal.RequireFromString("-2.5")))
}

func TestSeries_FromCandles(t *testing.T) {
	ts := time.Unix(1_700_000_000, 0).UTC()
	candles := []Candle{
		{Token: "A", Exchange: "NSE", TF: 60, TS: ts, Open: 100, High: 200, Low: 50, Close: 150, Volume: 1},
		{Token: "A", Exchange: "NSE", TF: 60, TS: ts.Add(time.Minute), Open: 150, High: 300, Low: 100, Close: 250, Volume: 2},
		{Token: "A", Exchange: "NSE", TF: 60, TS: ts.Add(2 * time.Minute), Open: 250, High: 260, Low: 240, Close: 245, Volume: 3},
	}
	s := SeriesFromCandles(candles)
	require.Equal(t, 3, s.Len())
	assert.Equal(t, "NSE:A", s.Key)
	assert.Equal(t, 60, s.TF)
	assert.Equal(t, []Float{1.5, 2.5, 2.45}, s.Column(FieldClose))
	assert.Equal(t, []Float{1, 2, 3}, s.Column(FieldVolume))

	tail := s.Slice(1, 3)
	assert.Equal(t, 2, tail.Len())
	assert.Equal(t, Float(3), tail.Bar(0).High)
	assert.Equal(t, ts.Add(time.Minute), tail.Bar(0).TS)
}

func TestParseField(t *testing.T) {
	for in, want := range map[string]Field{"close": FieldClose, "H": FieldHigh, " volume ": FieldVolume, "o": FieldOpen} {
		got, err := ParseField(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseField("vwap")
	assert.Error(t, err)
	assert.Equal(t, Float(7), FieldLow.Of(Bar{Low: 7}))
}

func TestIndicatorResult_StreamKey(t *testing.T) {
	r := IndicatorResult{Name: "MACD_12_26_9", Output: "signal", Key: "NSE:3045", TF: 300}
	assert.Equal(t, "ind:MACD_12_26_9.signal:300s:NSE:3045", r.StreamKey())
}
