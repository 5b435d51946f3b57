package replay

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"tacore/internal/model"
)

// Instrument is one series the restorer brings up to date.
type Instrument struct {
	Exchange string `json:"exchange"`
	Token    string `json:"token"`
	TF       int    `json:"tf"`
}

// ID returns the engine's series identity for the instrument.
func (i Instrument) ID() SeriesID {
	return SeriesID{Key: i.Exchange + ":" + i.Token, TF: i.TF}
}

// Source names where the engine state came from.
type Source string

const (
	SourceRedis  Source = "redis"
	SourceSQLite Source = "sqlite"
	SourceCold   Source = "cold"
)

// Restorer brings an Engine up on startup. It follows a priority chain:
// each snapshot store in order, then a cold start. Afterwards every
// instrument is caught up from the candle reader, by replay when its state
// was restored and by a batch warm-up otherwise.
type Restorer struct {
	stores []namedStore
	reader model.CandleReader
}

type namedStore struct {
	name  Source
	store model.SnapshotStore
}

// NewRestorer creates a restorer over reader. reader may be nil, in which
// case only snapshots are consulted.
func NewRestorer(reader model.CandleReader) *Restorer {
	return &Restorer{reader: reader}
}

// WithStore appends a snapshot store to the chain. Nil stores are skipped
// so optional backends can be passed unconditionally.
func (r *Restorer) WithStore(name Source, s model.SnapshotStore) *Restorer {
	if s != nil {
		r.stores = append(r.stores, namedStore{name: name, store: s})
	}
	return r
}

// RestoreSnapshot loads the first usable checkpoint into e and reports its
// source. Unreadable or corrupt checkpoints fall through to the next store.
func (r *Restorer) RestoreSnapshot(ctx context.Context, e *Engine) Source {
	for _, ns := range r.stores {
		data, err := ns.store.ReadLatestSnapshotJSON(ctx)
		if err != nil {
			zap.L().Warn("snapshot read failed", zap.String("store", string(ns.name)), zap.Error(err))
			continue
		}
		if data == nil {
			continue
		}
		n, err := e.UnmarshalSnapshot(data)
		if err != nil {
			zap.L().Warn("snapshot restore failed", zap.String("store", string(ns.name)), zap.Error(err))
			continue
		}
		zap.L().Info("restored indicator state", zap.String("store", string(ns.name)), zap.Int("steppers", n))
		return ns.name
	}
	zap.L().Info("no snapshot found, cold starting")
	return SourceCold
}

// CatchUp feeds each instrument from the candle reader. Instruments with
// pending indicators are warmed up over their full history; the rest replay
// the candles after their last timestamp. onResults, if non-nil, receives
// the results of every replayed bar. Returns the number of bars consumed.
func (r *Restorer) CatchUp(ctx context.Context, e *Engine, instruments []Instrument, onResults func([]model.IndicatorResult)) (int, error) {
	if r.reader == nil {
		return 0, nil
	}

	total := 0
	for _, inst := range instruments {
		id := inst.ID()
		warm := len(e.Pending(id)) > 0

		after := int64(0)
		if !warm {
			after = e.LastTS(id).Unix()
		}
		candles, err := r.reader.ReadCandles(ctx, inst.Exchange, inst.Token, inst.TF, after)
		if err != nil {
			return total, errors.Wrapf(err, "read candles for %s", id)
		}

		if warm {
			if len(candles) <= e.MaxLookback() {
				zap.L().Warn("not enough history to warm up", zap.Stringer("series", id), zap.Int("candles", len(candles)), zap.Int("lookback", e.MaxLookback()))
				continue
			}
			if _, err := e.Warmup(model.SeriesFromCandles(candles)); err != nil {
				return total, err
			}
			total += len(candles)
			zap.L().Info("warmed up from history", zap.Stringer("series", id), zap.Int("candles", len(candles)))
			continue
		}

		for i := range candles {
			results, err := e.Process(id, candles[i].Bar())
			if err != nil {
				return total, err
			}
			if onResults != nil && len(results) > 0 {
				onResults(results)
			}
			total++
		}
		if len(candles) > 0 {
			zap.L().Info("replayed candles", zap.Stringer("series", id), zap.Int("candles", len(candles)))
		}
	}
	return total, nil
}

// Checkpoint writes the engine state to every store in the chain. A store
// failure does not stop the others.
func (r *Restorer) Checkpoint(ctx context.Context, e *Engine) error {
	data, err := e.MarshalSnapshot()
	if err != nil {
		return err
	}
	var errs error
	for _, ns := range r.stores {
		start := time.Now()
		if err := ns.store.SaveSnapshotJSON(ctx, data); err != nil {
			zap.L().Warn("checkpoint failed", zap.String("store", string(ns.name)), zap.Error(err))
			errs = multierr.Append(errs, errors.Wrapf(err, "checkpoint to %s", ns.name))
			continue
		}
		zap.L().Debug("checkpoint saved", zap.String("store", string(ns.name)), zap.Int("bytes", len(data)), zap.Duration("took", time.Since(start)))
	}
	return errs
}
