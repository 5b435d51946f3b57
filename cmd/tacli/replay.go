package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tacore/internal/catalog"
	"tacore/internal/model"
	"tacore/internal/replay"
	"tacore/internal/store/sqlite"
)

var replayCmd = &cobra.Command{
	Use:   "replay [NAME[:param=value,...] ...]",
	Short: "restore checkpointed state, catch up from the database and checkpoint again",
	Long: `replay brings indicator state up to date for the given instruments. State
comes from the newest redis checkpoint, then the newest sqlite checkpoint,
and otherwise from a batch warm-up over the stored history. Bars stored
after the checkpoint are stepped one at a time.`,
	Example: `  tacli replay SMA:period=50 RSI --series NSE:3045@60,NSE:1594@300 --publish`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		reg := catalog.Builtin()
		configs, err := parseIndicators(reg, args)
		if err != nil {
			return err
		}
		series, _ := cmd.Flags().GetStringSlice("series")
		instruments, err := parseInstruments(series)
		if err != nil {
			return err
		}
		calc, err := newCalc()
		if err != nil {
			return err
		}
		e, err := replay.NewEngine(reg, calc, configs, nil)
		if err != nil {
			return err
		}

		reader, err := sqlite.NewReader(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer reader.Close()

		rs, sw, closeAll := stores(ctx, true, true)
		defer closeAll()
		r := replay.NewRestorer(reader)
		if rs != nil {
			r.WithStore(replay.SourceRedis, rs)
		}
		if sw != nil {
			r.WithStore(replay.SourceSQLite, sw)
		}

		source := r.RestoreSnapshot(ctx, e)

		publish, _ := cmd.Flags().GetBool("publish")
		var onResults func([]model.IndicatorResult)
		if publish && rs != nil {
			onResults = func(res []model.IndicatorResult) {
				if err := rs.WriteResults(ctx, res); err != nil {
					warn("publish results", err)
				}
			}
		}
		n, err := r.CatchUp(ctx, e, instruments, onResults)
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout(), "series", "last bar", "pending")
		t.SetTitle("state from %s, %d bars consumed", source, n)
		for _, inst := range instruments {
			id := inst.ID()
			last := ""
			if ts := e.LastTS(id); !ts.IsZero() {
				last = ts.UTC().Format("2006-01-02T15:04:05Z")
			}
			t.AppendRow([]interface{}{id.String(), last, strings.Join(e.Pending(id), ",")})
		}
		t.Render()

		if err := r.Checkpoint(ctx, e); err != nil {
			zap.L().Warn("checkpoint incomplete", zap.Error(err))
		}
		return nil
	},
}

func init() {
	replayCmd.Flags().StringSlice("series", nil, "series as EXCHANGE:TOKEN@TF, comma separated")
	replayCmd.Flags().Bool("publish", false, "publish stepped results to redis")
	_ = replayCmd.MarkFlagRequired("series")
	rootCmd.AddCommand(replayCmd)
}

// parseInstruments parses EXCHANGE:TOKEN@TF entries; TF defaults to 60.
func parseInstruments(series []string) ([]replay.Instrument, error) {
	out := make([]replay.Instrument, 0, len(series))
	for _, s := range series {
		key, tfs, hasTF := strings.Cut(s, "@")
		exchange, token, ok := strings.Cut(key, ":")
		if !ok || exchange == "" || token == "" {
			return nil, errors.Errorf("series %q: want EXCHANGE:TOKEN@TF", s)
		}
		tf := 60
		if hasTF {
			n, err := strconv.Atoi(strings.TrimSuffix(tfs, "s"))
			if err != nil || n <= 0 {
				return nil, errors.Errorf("series %q: bad timeframe", s)
			}
			tf = n
		}
		out = append(out, replay.Instrument{Exchange: exchange, Token: token, TF: tf})
	}
	return out, nil
}
