package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"tacore/internal/markethours"
	"tacore/internal/model"
	"tacore/internal/replay"
	"tacore/internal/store/csvfile"
	"tacore/internal/store/redis"
	"tacore/internal/store/sqlite"
)

// addSourceFlags registers the flags that pick a series.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("csv", "", "read bars from a CSV file instead of the database")
	cmd.Flags().String("exchange", "NSE", "instrument exchange")
	cmd.Flags().String("token", "", "instrument token")
	cmd.Flags().Int("tf", 60, "timeframe in seconds")
	cmd.Flags().Int64("after", 0, "only bars after this unix time")
	cmd.Flags().Bool("session", false, "drop bars outside NSE trading hours")
}

func instrumentFlag(cmd *cobra.Command) replay.Instrument {
	exchange, _ := cmd.Flags().GetString("exchange")
	token, _ := cmd.Flags().GetString("token")
	tf, _ := cmd.Flags().GetInt("tf")
	if token == "" {
		token = "csv"
	}
	return replay.Instrument{Exchange: exchange, Token: token, TF: tf}
}

// openReader opens the CSV file when --csv is set, the SQLite database
// otherwise.
func openReader(cmd *cobra.Command) (model.CandleReader, error) {
	inst := instrumentFlag(cmd)
	if path, _ := cmd.Flags().GetString("csv"); path != "" {
		return csvfile.Open(path, inst.Exchange, inst.Token, inst.TF)
	}
	if tok, _ := cmd.Flags().GetString("token"); tok == "" {
		return nil, errors.New("--token is required when reading from the database")
	}
	return sqlite.NewReader(cfg.SQLitePath)
}

// loadCandles reads the selected series.
func loadCandles(ctx context.Context, cmd *cobra.Command) ([]model.Candle, error) {
	r, err := openReader(cmd)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	inst := instrumentFlag(cmd)
	after, _ := cmd.Flags().GetInt64("after")
	candles, err := r.ReadCandles(ctx, inst.Exchange, inst.Token, inst.TF, after)
	if err != nil {
		return nil, err
	}
	if session, _ := cmd.Flags().GetBool("session"); session {
		var dropped int
		candles, dropped = markethours.FilterCandles(candles)
		zap.L().Info("session filter", zap.Stringer("series", inst.ID()), zap.Int("dropped", dropped))
	}
	if len(candles) == 0 {
		return nil, errors.Errorf("no bars for %s", inst.ID())
	}
	return candles, nil
}

// stores opens the requested stores. Either may be nil when it is not
// wanted, not configured or not reachable; closeAll closes whatever opened.
func stores(ctx context.Context, wantRedis, wantSQLite bool) (rs *redis.Store, sw *sqlite.Writer, closeAll func() error) {
	if wantRedis && cfg.RedisAddr != "" {
		s, err := redis.New(redis.Config{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			SnapshotKey: cfg.SnapshotKey,
			SnapshotTTL: cfg.SnapshotTTL,
		})
		if err != nil {
			warn("redis unavailable", err)
		} else {
			rs = s
		}
	}
	if wantSQLite && cfg.SQLitePath != "" {
		w, err := sqlite.NewWriter(ctx, cfg.SQLitePath)
		if err != nil {
			warn("sqlite unavailable", err)
		} else {
			sw = w
		}
	}
	return rs, sw, func() error {
		var errs error
		if rs != nil {
			errs = multierr.Append(errs, rs.Close())
		}
		if sw != nil {
			errs = multierr.Append(errs, sw.Close())
		}
		return errs
	}
}
