package replay

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tacore/internal/catalog"
	"tacore/internal/metrics"
	"tacore/pkg/indicator"
)

func TestNewEngine_RejectsBadConfig(t *testing.T) {
	reg := catalog.Builtin()

	_, err := NewEngine(reg, calc, []IndicatorConfig{{Name: "VWAP"}}, nil)
	assert.ErrorIs(t, err, catalog.ErrUnknownIndicator)

	_, err = NewEngine(reg, calc, []IndicatorConfig{{Name: "SMA", Params: catalog.Params{"period": 1}}}, nil)
	assert.ErrorIs(t, err, indicator.ErrInvalidParameter)

	_, err = NewEngine(reg, calc, []IndicatorConfig{{Name: "SMA"}, {Name: "sma"}}, nil)
	assert.ErrorIs(t, err, indicator.ErrInvalidParameter)
}

func TestEngine_Labels(t *testing.T) {
	e := newTestEngine(t, testConfigs)
	assert.Equal(t, []string{"SMA_20", "RSI_14", "MACD_12_26_9", "STOCH_5_3_3", "MAX_10", "BBANDS_20_2_2"}, e.Labels())
	assert.Equal(t, 33, e.MaxLookback())
}

func TestEngine_ProcessMatchesBatch(t *testing.T) {
	e := newTestEngine(t, testConfigs)
	s := series(300, 1)
	id := SeriesID{Key: "NSE:3045", TF: 60}

	full, err := e.Warmup(s)
	require.NoError(t, err)

	e2 := newTestEngine(t, testConfigs)
	_, err = e2.Warmup(s.Slice(0, 200))
	require.NoError(t, err)
	assert.Empty(t, e2.Pending(id))

	for i := 200; i < 300; i++ {
		results, err := e2.Process(id, s.Bar(i))
		require.NoError(t, err)
		require.Len(t, results, 1+1+3+2+1+3)

		k := 0
		for slot, r := range full {
			for j := range r.Entry.Outputs {
				got := results[k]
				k++
				assert.True(t, got.Ready)
				assert.Equal(t, r.Label(), got.Name)
				assert.Equal(t, r.Entry.Outputs[j], got.Output)
				assert.Equal(t, s.Time[i], got.TS)
				assert.True(t, Close(got.Value, float64(r.Outputs[j][i]), 1e-9), "slot %d bar %d", slot, i)
			}
		}
	}
}

func TestEngine_ProcessSkipsUnknownAndStale(t *testing.T) {
	e := newTestEngine(t, testConfigs)
	s := series(100, 2)
	_, err := e.Warmup(s.Slice(0, 50))
	require.NoError(t, err)

	results, err := e.Process(SeriesID{Key: "NSE:1", TF: 60}, s.Bar(50))
	require.NoError(t, err)
	assert.Nil(t, results)

	id := SeriesID{Key: "NSE:3045", TF: 60}
	// a different TF of the same instrument is its own series
	results, err = e.Process(SeriesID{Key: id.Key, TF: 300}, s.Bar(50))
	require.NoError(t, err)
	assert.Nil(t, results)

	results, err = e.Process(id, s.Bar(49))
	require.NoError(t, err)
	assert.Nil(t, results, "bar already covered by warm-up")

	results, err = e.Process(id, s.Bar(50))
	require.NoError(t, err)
	assert.NotEmpty(t, results)
	assert.Equal(t, s.Time[50], e.LastTS(id))
}

func TestEngine_WarmupShortSeriesLeavesPending(t *testing.T) {
	e := newTestEngine(t, testConfigs)
	s := series(30, 3)
	id := SeriesID{Key: "NSE:3045", TF: 60}

	// MACD needs 34 bars; the rest succeed
	_, err := e.Warmup(s)
	assert.ErrorIs(t, err, indicator.ErrInsufficientData)
	assert.Equal(t, []string{"MACD_12_26_9"}, e.Pending(id))

	results, err := e.Process(id, series(31, 3).Bar(30))
	require.NoError(t, err)
	for _, r := range results {
		assert.Equal(t, r.Name != "MACD_12_26_9", r.Ready, r.Name+"."+r.Output)
	}
}

func TestEngine_Metrics(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	e, err := NewEngine(catalog.Builtin(), calc, testConfigs[:2], m)
	require.NoError(t, err)

	s := series(60, 4)
	_, err = e.Warmup(s.Slice(0, 50))
	require.NoError(t, err)
	for i := 50; i < 60; i++ {
		_, err := e.Process(SeriesID{Key: "NSE:3045", TF: 60}, s.Bar(i))
		require.NoError(t, err)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.BatchTotal.WithLabelValues("SMA_20")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.StepsTotal))
}
