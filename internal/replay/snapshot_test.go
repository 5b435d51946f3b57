package replay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_RoundTripContinuesIdentically(t *testing.T) {
	s := series(250, 21)
	id := SeriesID{Key: "NSE:3045", TF: 60}

	a := newTestEngine(t, testConfigs)
	_, err := a.Warmup(s.Slice(0, 150))
	require.NoError(t, err)

	data, err := a.MarshalSnapshot()
	require.NoError(t, err)

	b := newTestEngine(t, testConfigs)
	n, err := b.UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, len(testConfigs), n)
	assert.Empty(t, b.Pending(id))
	assert.Equal(t, a.LastTS(id), b.LastTS(id))

	for i := 150; i < s.Len(); i++ {
		ra, err := a.Process(id, s.Bar(i))
		require.NoError(t, err)
		rb, err := b.Process(id, s.Bar(i))
		require.NoError(t, err)
		require.Equal(t, ra, rb, "bar %d", i)
	}
}

func TestSnapshot_ToleratesConfigChanges(t *testing.T) {
	s := series(120, 22)
	id := SeriesID{Key: "NSE:3045", TF: 60}

	old := newTestEngine(t, testConfigs[:3])
	_, err := old.Warmup(s)
	require.NoError(t, err)
	snap, err := old.Snapshot()
	require.NoError(t, err)

	// SMA_20 removed, RSI and MACD kept, WILLR added
	next := newTestEngine(t, []IndicatorConfig{{Name: "RSI"}, {Name: "MACD"}, {Name: "WILLR"}})
	n, err := next.Restore(snap)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"WILLR_14"}, next.Pending(id))
}

func TestSnapshot_Layout(t *testing.T) {
	e := newTestEngine(t, testConfigs[:1])
	_, err := e.Warmup(series(40, 23))
	require.NoError(t, err)
	five := series(40, 24)
	five.TF = 300
	_, err = e.Warmup(five)
	require.NoError(t, err)

	snap, err := e.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, SnapshotVersion, snap.Version)
	require.Len(t, snap.Instruments, 2)
	assert.Equal(t, 60, snap.Instruments[0].TF)
	assert.Equal(t, 300, snap.Instruments[1].TF)
	assert.Equal(t, "SMA_20", snap.Instruments[0].Indicators[0].Label)

	var state map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(snap.Instruments[0].Indicators[0].State, &state))
	assert.Contains(t, state, "history")
}

func TestSnapshot_RejectsVersionAndGarbage(t *testing.T) {
	e := newTestEngine(t, testConfigs)

	_, err := e.Restore(&EngineSnapshot{Version: SnapshotVersion + 1})
	assert.Error(t, err)

	_, err = e.UnmarshalSnapshot([]byte("{not json"))
	assert.Error(t, err)

	_, err = e.UnmarshalSnapshot([]byte(`{"version":1,"instruments":[{"key":"NSE:1","tf":60,"indicators":[{"label":"SMA_20","state":"oops"}]}]}`))
	assert.Error(t, err)
}
