package replay

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tacore/internal/catalog"
	"tacore/internal/model"
	"tacore/pkg/indicator"
)

var calc = indicator.New[model.Float](indicator.CheckBasic)

var testConfigs = []IndicatorConfig{
	{Name: "SMA", Params: catalog.Params{"period": 20}},
	{Name: "RSI"},
	{Name: "MACD"},
	{Name: "STOCH"},
	{Name: "MAX", Params: catalog.Params{"period": 10}},
	{Name: "BBANDS"},
}

func newTestEngine(t *testing.T, configs []IndicatorConfig) *Engine {
	t.Helper()
	e, err := NewEngine(catalog.Builtin(), calc, configs, nil)
	require.NoError(t, err)
	return e
}

// candles generates a paise random walk for NSE:3045 at one-minute bars.
func candles(n int, seed int64) []model.Candle {
	r := rand.New(rand.NewSource(seed))
	ts := time.Unix(1_700_000_000, 0).UTC()
	price := int64(250_000)
	out := make([]model.Candle, n)
	for i := range out {
		o := price
		c := o + int64(r.NormFloat64()*200)
		hi := max64(o, c) + int64(math.Abs(r.NormFloat64())*100)
		lo := min64(o, c) - int64(math.Abs(r.NormFloat64())*100)
		out[i] = model.Candle{
			Token: "3045", Exchange: "NSE", TF: 60,
			TS:   ts.Add(time.Duration(i) * time.Minute),
			Open: o, High: hi, Low: lo, Close: c,
			Volume: 100 + int64(r.Intn(1000)),
		}
		price = c
	}
	return out
}

func series(n int, seed int64) *model.Series {
	return model.SeriesFromCandles(candles(n, seed))
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// memStore is an in-memory snapshot store.
type memStore struct {
	data []byte
	err  error
	puts int
}

func (m *memStore) SaveSnapshotJSON(_ context.Context, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.data = append([]byte(nil), data...)
	m.puts++
	return nil
}

func (m *memStore) ReadLatestSnapshotJSON(context.Context) ([]byte, error) {
	return m.data, m.err
}

// memReader serves candles from memory.
type memReader struct {
	candles []model.Candle
	calls   int
}

func (m *memReader) ReadCandles(_ context.Context, exchange, token string, tf int, afterTS int64) ([]model.Candle, error) {
	m.calls++
	var out []model.Candle
	for _, c := range m.candles {
		if c.Exchange == exchange && c.Token == token && c.TF == tf && c.TS.Unix() > afterTS {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memReader) Close() error { return nil }
