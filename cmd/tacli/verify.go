package main

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"tacore/internal/catalog"
	"tacore/internal/model"
	"tacore/internal/notification"
	"tacore/internal/replay"
	"tacore/pkg/indicator"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [NAME[:param=value,...] ...]",
	Short: "check that stepping bar by bar reproduces the batch result",
	Long: `verify warms every indicator up on the first part of a series, steps
through the rest one bar at a time and compares each value with a batch
evaluation over the whole series. Without arguments every catalog entry is
checked with its defaults.`,
	Example: `  tacli verify --csv bars.csv
  tacli verify MACD:fast=8,slow=21 RSI --token 3045 --split 500`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := catalog.Builtin()
		configs, err := parseIndicators(reg, args)
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

		candles, err := loadCandles(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		s := model.SeriesFromCandles(candles)

		split, _ := cmd.Flags().GetInt("split")
		if split <= 0 {
			split = s.Len() / 2
		}
		if split <= e.MaxLookback() {
			return errors.Wrapf(indicator.ErrInsufficientData, "split %d does not cover lookback %d", split, e.MaxLookback())
		}
		tol, _ := cmd.Flags().GetFloat64("tol")

		rep, verr := e.Verify(s, split, tol)
		if rep == nil {
			return verr
		}
		printReport(cmd, e, rep)
		if verr != nil && !rep.OK() {
			err := errors.Wrapf(replay.ErrMismatch, "%d of %d values differ", len(rep.Mismatches), rep.Checked)
			notify(cmd, s, err)
			return err
		}
		return verr
	},
}

func init() {
	addSourceFlags(verifyCmd)
	verifyCmd.Flags().Int("split", 0, "bars used for warm-up (default half the series)")
	verifyCmd.Flags().Float64("tol", 0, "relative tolerance (default depends on the build's float width)")
	verifyCmd.Flags().String("notify", "", "webhook URL to alert when values differ")
}

// notify sends a failed verification to the --notify webhook, or to the
// log when none is set.
func notify(cmd *cobra.Command, s *model.Series, err error) {
	var n notification.Notifier = notification.NewLogNotifier()
	if url, _ := cmd.Flags().GetString("notify"); url != "" {
		n = notification.NewWebhookNotifier(url)
	}
	alert := notification.Alert{
		Level:   notification.AlertCritical,
		Title:   "indicator verification failed",
		Message: err.Error(),
		Fields:  map[string]string{"series": s.Key + "@" + strconv.Itoa(s.TF) + "s", "bars": strconv.Itoa(s.Len())},
	}
	if serr := n.Send(cmd.Context(), alert); serr != nil {
		warn("verification alert not delivered", serr)
	}
}

// parseIndicators turns NAME[:k=v,...] arguments into configs. No
// arguments selects every entry with its defaults.
func parseIndicators(reg *catalog.Registry, args []string) ([]replay.IndicatorConfig, error) {
	if len(args) == 0 {
		var out []replay.IndicatorConfig
		for _, e := range reg.List("") {
			out = append(out, replay.IndicatorConfig{Name: e.Name})
		}
		return out, nil
	}
	out := make([]replay.IndicatorConfig, 0, len(args))
	for _, arg := range args {
		name, rest, _ := strings.Cut(arg, ":")
		c := replay.IndicatorConfig{Name: name}
		if rest != "" {
			p, err := catalog.ParseParams(strings.Split(rest, ","))
			if err != nil {
				return nil, errors.Wrap(err, arg)
			}
			c.Params = p
		}
		out = append(out, c)
	}
	return out, nil
}

func printReport(cmd *cobra.Command, e *replay.Engine, rep *replay.Report) {
	type agg struct {
		n    int
		diff float64
	}
	by := map[string]*agg{}
	for _, m := range rep.Mismatches {
		a := by[m.Indicator]
		if a == nil {
			a = &agg{}
			by[m.Indicator] = a
		}
		a.n++
		if d := math.Abs(m.Step - m.Batch); d > a.diff || math.IsNaN(d) {
			a.diff = d
		}
	}

	t := newTable(cmd.OutOrStdout(), "indicator", "mismatches", "max abs diff", "first")
	t.SetTitle("%d bars stepped, %d values compared", rep.Bars, rep.Checked)
	alignRight(t, 1, 3)
	for _, label := range e.Labels() {
		a := by[label]
		if a == nil {
			t.AppendRow([]interface{}{label, 0, "", ""})
			continue
		}
		first := ""
		for _, m := range rep.Mismatches {
			if m.Indicator == label {
				first = m.Error()
				break
			}
		}
		t.AppendRow([]interface{}{label, a.n, formatValue(a.diff), first})
	}
	t.Render()
}
