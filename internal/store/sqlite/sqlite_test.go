package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tacore/internal/model"
)

func openPair(t *testing.T) (*Writer, *Reader) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candles.db")
	w, err := NewWriter(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	r, err := NewReader(path)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return w, r
}

func TestCandles_RoundTrip(t *testing.T) {
	w, r := openPair(t)
	ctx := context.Background()
	ts := time.Unix(1_700_000_000, 0).UTC()

	var candles []model.Candle
	for i := 0; i < 5; i++ {
		candles = append(candles, model.Candle{
			Token: "3045", Exchange: "NSE", TF: 60, TS: ts.Add(time.Duration(i) * time.Minute),
			Open: 10000, High: 10100 + int64(i), Low: 9900, Close: 10050, Volume: 10,
		})
	}
	// another TF for the same instrument must not leak into the read
	other := candles[0]
	other.TF = 300
	require.NoError(t, w.WriteCandles(ctx, append(candles, other)))

	got, err := r.ReadCandles(ctx, "NSE", "3045", 60, 0)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, candles[2], got[2])

	got, err = r.ReadCandles(ctx, "NSE", "3045", 60, ts.Add(2*time.Minute).Unix())
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// upsert on the primary key
	candles[0].Close = 1
	require.NoError(t, w.WriteCandles(ctx, candles[:1]))
	got, err = r.ReadCandles(ctx, "NSE", "3045", 60, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got[0].Close)
}

func TestSnapshots_LatestAndPrune(t *testing.T) {
	w, r := openPair(t)
	ctx := context.Background()

	data, err := r.ReadLatestSnapshotJSON(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	for i := 0; i < keepSnapshots+5; i++ {
		require.NoError(t, w.SaveSnapshotJSON(ctx, []byte(fmt.Sprintf(`{"n":%d}`, i))))
	}

	data, err = r.ReadLatestSnapshotJSON(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, fmt.Sprintf(`{"n":%d}`, keepSnapshots+4), string(data))

	var count int
	require.NoError(t, w.DB().QueryRow(`SELECT COUNT(*) FROM indicator_snapshots`).Scan(&count))
	assert.Equal(t, keepSnapshots, count)
}
