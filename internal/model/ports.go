package model

import "context"

// ── Storage Port Interfaces ──
// These interfaces decouple the replay harness and CLI from concrete storage
// implementations (Redis, SQLite).

// CandleReader reads stored candles for batch evaluation and replay.
type CandleReader interface {
	// ReadCandles reads candles for one instrument and TF, ascending by time.
	ReadCandles(ctx context.Context, exchange, token string, tf int, afterTS int64) ([]Candle, error)

	// Close releases underlying resources.
	Close() error
}

// CandleWriter stores candles, e.g. after a CSV import.
type CandleWriter interface {
	// WriteCandles upserts candles in a single transaction.
	WriteCandles(ctx context.Context, candles []Candle) error

	// Close releases underlying resources.
	Close() error
}

// SnapshotStore reads and writes replay checkpoints as raw JSON.
// Using []byte avoids a model→replay→model import cycle.
type SnapshotStore interface {
	// SaveSnapshotJSON persists a JSON-encoded checkpoint.
	SaveSnapshotJSON(ctx context.Context, data []byte) error

	// ReadLatestSnapshotJSON loads the most recent checkpoint as raw JSON.
	// Returns nil, nil if no checkpoint exists.
	ReadLatestSnapshotJSON(ctx context.Context) ([]byte, error)
}
