package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tacore/internal/catalog"
	"tacore/internal/model"
)

var computeCmd = &cobra.Command{
	Use:   "compute NAME [param=value ...]",
	Short: "evaluate one indicator over a series",
	Example: `  tacli compute MACD fast=8 --csv bars.csv
  tacli compute RSI period=21 --token 3045 --tf 300 --tail 20`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := catalog.Builtin().Lookup(args[0])
		if err != nil {
			return err
		}
		params, err := catalog.ParseParams(args[1:])
		if err != nil {
			return err
		}
		calc, err := newCalc()
		if err != nil {
			return err
		}

		candles, err := loadCandles(ctx, cmd)
		if err != nil {
			return err
		}
		s := model.SeriesFromCandles(candles)

		start := time.Now()
		res, err := e.Compute(calc, s, params)
		if err != nil {
			return err
		}
		zap.L().Info("computed", zap.String("indicator", res.Label()), zap.Int("bars", s.Len()), zap.Duration("took", time.Since(start)))

		tail, _ := cmd.Flags().GetInt("tail")
		printOutputs(cmd, s, res, tail)

		if imp, _ := cmd.Flags().GetBool("import"); imp {
			if err := importCandles(cmd, candles); err != nil {
				return err
			}
		}
		if pub, _ := cmd.Flags().GetBool("publish"); pub {
			return publishLast(cmd, s, res)
		}
		return nil
	},
}

func init() {
	addSourceFlags(computeCmd)
	computeCmd.Flags().Int("tail", 10, "rows to print, 0 for all")
	computeCmd.Flags().Bool("import", false, "store the bars read from --csv in the database")
	computeCmd.Flags().Bool("publish", false, "publish the newest values to redis")
}

func printOutputs(cmd *cobra.Command, s *model.Series, res *catalog.Result, tail int) {
	header := []interface{}{"ts"}
	for _, o := range res.Entry.Outputs {
		header = append(header, o)
	}
	t := newTable(cmd.OutOrStdout(), header...)
	t.SetTitle("%s  lookback %d  bars %d", res.Label(), res.Lookback, s.Len())
	alignRight(t, 1, len(header))

	from := 0
	if tail > 0 && s.Len() > tail {
		from = s.Len() - tail
	}
	for i := from; i < s.Len(); i++ {
		row := []interface{}{s.Time[i].UTC().Format(time.RFC3339)}
		for _, col := range res.Outputs {
			row = append(row, formatValue(float64(col[i])))
		}
		t.AppendRow(row)
	}
	t.Render()
}

func importCandles(cmd *cobra.Command, candles []model.Candle) error {
	if path, _ := cmd.Flags().GetString("csv"); path == "" {
		return errors.New("--import needs --csv")
	}
	_, w, closeAll := stores(cmd.Context(), false, true)
	defer closeAll()
	if w == nil {
		return errors.New("no database to import into")
	}
	return storeCandles(cmd, w, candles)
}

func storeCandles(cmd *cobra.Command, w model.CandleWriter, candles []model.Candle) error {
	if err := w.WriteCandles(cmd.Context(), candles); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d bars into %s\n", len(candles), cfg.SQLitePath)
	return nil
}

func publishLast(cmd *cobra.Command, s *model.Series, res *catalog.Result) error {
	rs, _, closeAll := stores(cmd.Context(), true, false)
	defer closeAll()
	if rs == nil {
		return errors.New("redis is not configured; set --redis-addr")
	}

	last := s.Len() - 1
	results := make([]model.IndicatorResult, len(res.Outputs))
	for i, col := range res.Outputs {
		results[i] = model.IndicatorResult{
			Name:   res.Label(),
			Output: res.Entry.Outputs[i],
			Key:    s.Key,
			TF:     s.TF,
			Value:  float64(col[last]),
			TS:     s.Time[last],
			Ready:  last >= res.Lookback,
		}
	}
	if err := rs.WriteResults(cmd.Context(), results); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "published %d values for %s\n", len(results), s.Key)
	return nil
}

func warn(msg string, err error) {
	zap.L().Warn(msg, zap.Error(err))
}
