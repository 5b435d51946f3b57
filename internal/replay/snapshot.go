package replay

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SnapshotVersion is bumped when the checkpoint layout changes.
const SnapshotVersion = 1

// IndicatorSnapshot is one stepper's serialized state.
type IndicatorSnapshot struct {
	Label string          `json:"label"` // e.g. "MACD_12_26_9"
	State json.RawMessage `json:"state"`
}

// InstrumentSnapshot holds the steppers of one series key.
type InstrumentSnapshot struct {
	Key        string              `json:"key"`
	TF         int                 `json:"tf"`
	LastTS     time.Time           `json:"last_ts"`
	Indicators []IndicatorSnapshot `json:"indicators"`
}

// EngineSnapshot is the full checkpoint of an Engine.
type EngineSnapshot struct {
	Version     int                  `json:"version"`
	TakenAt     time.Time            `json:"taken_at"`
	Instruments []InstrumentSnapshot `json:"instruments"`
}

// Snapshot captures every warmed-up stepper. Instruments are ordered by key.
func (e *Engine) Snapshot() (*EngineSnapshot, error) {
	snap := &EngineSnapshot{Version: SnapshotVersion, TakenAt: time.Now().UTC()}

	for _, id := range e.Series() {
		in := e.state[id]
		is := InstrumentSnapshot{Key: id.Key, TF: id.TF, LastTS: in.lastTS}
		for i, st := range in.steppers {
			if st == nil {
				continue
			}
			data, err := st.Snapshot()
			if err != nil {
				return nil, errors.Wrapf(err, "snapshot %s on %s", e.slots[i].label, id)
			}
			is.Indicators = append(is.Indicators, IndicatorSnapshot{Label: e.slots[i].label, State: data})
		}
		snap.Instruments = append(snap.Instruments, is)
	}
	return snap, nil
}

// MarshalSnapshot encodes the engine checkpoint and records its size.
func (e *Engine) MarshalSnapshot() ([]byte, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, errors.Wrap(err, "encode snapshot")
	}
	if e.metrics != nil {
		e.metrics.SnapshotBytes.Set(float64(len(data)))
	}
	return data, nil
}

// Restore loads a checkpoint into e. It tolerates config changes:
// indicators are matched by label, so unchanged ones resume, new ones stay
// pending until warmed up and removed ones are skipped. Returns how many
// steppers were restored.
func (e *Engine) Restore(snap *EngineSnapshot) (int, error) {
	if snap.Version != SnapshotVersion {
		return 0, errors.Errorf("snapshot version %d, want %d", snap.Version, SnapshotVersion)
	}

	bySlot := make(map[string]int, len(e.slots))
	for i, sl := range e.slots {
		bySlot[sl.label] = i
	}

	restored := 0
	for _, is := range snap.Instruments {
		id := SeriesID{Key: is.Key, TF: is.TF}
		in := e.instrument(id)
		in.lastTS = is.LastTS
		for _, ind := range is.Indicators {
			i, ok := bySlot[ind.Label]
			if !ok {
				zap.L().Debug("snapshot indicator no longer configured", zap.Stringer("series", id), zap.String("indicator", ind.Label))
				continue
			}
			st, err := e.slots[i].entry.Blank(e.slots[i].params)
			if err != nil {
				return restored, errors.Wrapf(err, "blank %s", ind.Label)
			}
			if err := st.Restore(ind.State); err != nil {
				return restored, errors.Wrapf(err, "restore %s on %s", ind.Label, id)
			}
			in.steppers[i] = st
			restored++
		}
	}
	return restored, nil
}

// UnmarshalSnapshot decodes data and restores it into e.
func (e *Engine) UnmarshalSnapshot(data []byte) (int, error) {
	var snap EngineSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return 0, errors.Wrap(err, "decode snapshot")
	}
	return e.Restore(&snap)
}
