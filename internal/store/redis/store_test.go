package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tacore/internal/model"
)

// unreachable returns a store pointed at a closed port with retries off.
func unreachable(t *testing.T) *Store {
	t.Helper()
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	s := newStore(client, Config{})
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNew_PingFails(t *testing.T) {
	_, err := New(Config{Addr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func TestStore_Defaults(t *testing.T) {
	s := unreachable(t)
	assert.Equal(t, "tacore:snapshot", s.key)
	assert.Equal(t, defaultSnapshotTTL, s.ttl)
}

func TestStore_BreakerOpensOnDeadServer(t *testing.T) {
	s := unreachable(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := s.SaveSnapshotJSON(ctx, []byte(`{}`))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}
	assert.Equal(t, StateOpen, s.Breaker().CurrentState())

	_, err := s.ReadLatestSnapshotJSON(ctx)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestStore_WriteResultsSkipsUnready(t *testing.T) {
	s := unreachable(t)
	// nothing ready means no round trip, so no error even with a dead server
	err := s.WriteResults(context.Background(), []model.IndicatorResult{{Name: "SMA_20", Output: "value", Ready: false}})
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, s.Breaker().CurrentState())
}

func TestKeys(t *testing.T) {
	r := &model.IndicatorResult{Name: "MACD_12_26_9", Output: "hist", Key: "NSE:3045", TF: 60}
	assert.Equal(t, "ind:MACD_12_26_9.hist:60s:NSE:3045", r.StreamKey())
	assert.Equal(t, "ind:MACD_12_26_9.hist:60s:latest:NSE:3045", LatestKey(r))
	assert.Equal(t, "pub:ind:MACD_12_26_9.hist:60s:NSE:3045", Channel(r))

	assert.Equal(t, int64(280), streamMaxLen(60))
	assert.Equal(t, int64(200), streamMaxLen(3600))
	assert.Equal(t, int64(200), streamMaxLen(0))
}
