package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"tacore/internal/model"
)

// keepSnapshots is how many checkpoints survive each save.
const keepSnapshots = 10

func open(path string, conns int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Wrapf(err, "sqlite open %s", path)
	}
	db.SetMaxOpenConns(conns)
	db.SetMaxIdleConns(conns)
	return db, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS candles (
			token    TEXT    NOT NULL,
			exchange TEXT    NOT NULL,
			tf       INTEGER NOT NULL,
			ts       INTEGER NOT NULL,
			open     INTEGER NOT NULL,
			high     INTEGER NOT NULL,
			low      INTEGER NOT NULL,
			close    INTEGER NOT NULL,
			volume   INTEGER,
			PRIMARY KEY (exchange, token, tf, ts)
		);

		CREATE TABLE IF NOT EXISTS indicator_snapshots (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			data       TEXT    NOT NULL,
			created_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		);
	`)
	return err
}

var (
	_ model.CandleWriter  = (*Writer)(nil)
	_ model.SnapshotStore = (*Writer)(nil)
	_ model.CandleReader  = (*Reader)(nil)
)

// Writer is a single-connection writer for candles and checkpoints. It
// creates the schema on open.
type Writer struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (w *Writer) DB() *sql.DB { return w.db }

// NewWriter opens path in WAL mode and ensures the schema.
func NewWriter(ctx context.Context, path string) (*Writer, error) {
	db, err := open(path, 1)
	if err != nil {
		return nil, err
	}
	if err := createSchema(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "sqlite schema")
	}
	zap.L().Info("sqlite writer opened", zap.String("path", path))
	return &Writer{db: db}, nil
}

// WriteCandles upserts candles in a single transaction.
func (w *Writer) WriteCandles(ctx context.Context, candles []model.Candle) error {
	start := time.Now()
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "sqlite begin")
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO candles (token, exchange, tf, ts, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "sqlite prepare candles")
	}
	defer stmt.Close()

	for _, c := range candles {
		if _, err := stmt.ExecContext(ctx, c.Token, c.Exchange, c.TF, c.TS.Unix(), c.Open, c.High, c.Low, c.Close, c.Volume); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "sqlite insert %s at %d", c.Key(), c.TS.Unix())
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "sqlite commit")
	}
	zap.L().Debug("sqlite committed candles", zap.Int("count", len(candles)), zap.Duration("took", time.Since(start)))
	return nil
}

// SaveSnapshotJSON stores a checkpoint and prunes all but the newest ten.
func (w *Writer) SaveSnapshotJSON(ctx context.Context, data []byte) error {
	if _, err := w.db.ExecContext(ctx, `INSERT INTO indicator_snapshots (data) VALUES (?)`, string(data)); err != nil {
		return errors.Wrap(err, "sqlite insert snapshot")
	}

	_, err := w.db.ExecContext(ctx, `DELETE FROM indicator_snapshots WHERE id NOT IN (SELECT id FROM indicator_snapshots ORDER BY id DESC LIMIT ?)`, keepSnapshots)
	if err != nil {
		zap.L().Warn("sqlite prune snapshots", zap.Error(err))
	}
	return nil
}

// ReadLatestSnapshotJSON lets the writer double as the restorer's store.
func (w *Writer) ReadLatestSnapshotJSON(ctx context.Context) ([]byte, error) {
	return latestSnapshot(ctx, w.db)
}

// Close closes the database.
func (w *Writer) Close() error {
	return w.db.Close()
}

// Reader provides read-only access for batch evaluation and restore.
type Reader struct {
	db *sql.DB
}

// NewReader opens path for reading.
func NewReader(path string) (*Reader, error) {
	db, err := open(path, 2)
	if err != nil {
		return nil, err
	}
	zap.L().Info("sqlite reader opened", zap.String("path", path))
	return &Reader{db: db}, nil
}

// DB returns the underlying sql.DB for health checks.
func (r *Reader) DB() *sql.DB { return r.db }

// ReadCandles reads candles for one instrument and TF after afterTS,
// ascending by timestamp for correct replay order.
func (r *Reader) ReadCandles(ctx context.Context, exchange, token string, tf int, afterTS int64) ([]model.Candle, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT token, exchange, tf, ts, open, high, low, close, COALESCE(volume, 0)
		FROM candles
		WHERE exchange = ? AND token = ? AND tf = ? AND ts > ?
		ORDER BY ts ASC
	`, exchange, token, tf, afterTS)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite query candles")
	}
	defer rows.Close()

	var candles []model.Candle
	for rows.Next() {
		var c model.Candle
		var tsUnix int64
		if err := rows.Scan(&c.Token, &c.Exchange, &c.TF, &tsUnix, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, errors.Wrap(err, "sqlite scan candles")
		}
		c.TS = time.Unix(tsUnix, 0).UTC()
		candles = append(candles, c)
	}
	return candles, errors.Wrap(rows.Err(), "sqlite iterate candles")
}

// ReadLatestSnapshotJSON loads the newest checkpoint. Returns nil, nil if
// none exists.
func (r *Reader) ReadLatestSnapshotJSON(ctx context.Context) ([]byte, error) {
	return latestSnapshot(ctx, r.db)
}

func latestSnapshot(ctx context.Context, db *sql.DB) ([]byte, error) {
	var data string
	err := db.QueryRowContext(ctx, `
		SELECT data FROM indicator_snapshots
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "sqlite read snapshot")
	}
	return []byte(data), nil
}

// Close closes the reader.
func (r *Reader) Close() error {
	return r.db.Close()
}
