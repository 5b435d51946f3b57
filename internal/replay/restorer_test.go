package replay

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tacore/internal/model"
)

var inst = Instrument{Exchange: "NSE", Token: "3045", TF: 60}

func TestRestorer_ColdStartWarmsFromHistory(t *testing.T) {
	reader := &memReader{candles: candles(120, 31)}
	redis, sqlite := &memStore{}, &memStore{}
	r := NewRestorer(reader).WithStore(SourceRedis, redis).WithStore(SourceSQLite, sqlite)

	e := newTestEngine(t, testConfigs)
	assert.Equal(t, SourceCold, r.RestoreSnapshot(context.Background(), e))

	n, err := r.CatchUp(context.Background(), e, []Instrument{inst}, nil)
	require.NoError(t, err)
	assert.Equal(t, 120, n)
	assert.Empty(t, e.Pending(inst.ID()))
	assert.Equal(t, reader.candles[119].TS, e.LastTS(inst.ID()))

	require.NoError(t, r.Checkpoint(context.Background(), e))
	assert.Equal(t, 1, redis.puts)
	assert.Equal(t, 1, sqlite.puts)
}

func TestRestorer_FallsThroughToSQLiteAndReplays(t *testing.T) {
	all := candles(150, 32)

	seed := newTestEngine(t, testConfigs)
	_, err := seed.Warmup(model.SeriesFromCandles(all[:100]))
	require.NoError(t, err)
	data, err := seed.MarshalSnapshot()
	require.NoError(t, err)

	redis := &memStore{err: errors.New("connection refused")}
	sqlite := &memStore{data: data}
	reader := &memReader{candles: all}
	r := NewRestorer(reader).WithStore(SourceRedis, redis).WithStore(SourceSQLite, sqlite).WithStore("unused", nil)

	e := newTestEngine(t, testConfigs)
	assert.Equal(t, SourceSQLite, r.RestoreSnapshot(context.Background(), e))

	var replayed [][]model.IndicatorResult
	n, err := r.CatchUp(context.Background(), e, []Instrument{inst}, func(res []model.IndicatorResult) {
		replayed = append(replayed, res)
	})
	require.NoError(t, err)
	assert.Equal(t, 50, n, "only candles after the checkpoint")
	assert.Len(t, replayed, 50)

	// the caught-up engine agrees with a batch over the whole history
	full := newTestEngine(t, testConfigs)
	results, err := full.Warmup(model.SeriesFromCandles(all))
	require.NoError(t, err)
	last := replayed[len(replayed)-1]
	assert.True(t, Close(last[0].Value, float64(results[0].Outputs[0][149]), 1e-9))

	err = r.Checkpoint(context.Background(), e)
	assert.Error(t, err)
	assert.Equal(t, 1, sqlite.puts)
}

func TestRestorer_CorruptSnapshotFallsBackCold(t *testing.T) {
	r := NewRestorer(nil).WithStore(SourceRedis, &memStore{data: []byte("garbage")})
	e := newTestEngine(t, testConfigs)
	assert.Equal(t, SourceCold, r.RestoreSnapshot(context.Background(), e))

	n, err := r.CatchUp(context.Background(), e, []Instrument{inst}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRestorer_ShortHistoryStaysPending(t *testing.T) {
	reader := &memReader{candles: candles(20, 33)}
	r := NewRestorer(reader)
	e := newTestEngine(t, testConfigs)

	n, err := r.CatchUp(context.Background(), e, []Instrument{inst}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, e.Pending(inst.ID()), len(testConfigs))
}
