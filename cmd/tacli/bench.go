package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tacore/internal/catalog"
	"tacore/internal/metrics"
	"tacore/internal/model"
	"tacore/internal/replay"
)

var benchCmd = &cobra.Command{
	Use:   "bench [NAME[:param=value,...] ...]",
	Short: "time batch evaluation and bar-by-bar stepping on a synthetic series",
	Example: `  tacli bench --bars 200000
  tacli bench SMA:period=200 MACD --serve :9090 --hold`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		reg := catalog.Builtin()
		configs, err := parseIndicators(reg, args)
		if err != nil {
			return err
		}
		calc, err := newCalc()
		if err != nil {
			return err
		}

		promReg := prometheus.NewRegistry()
		m := metrics.NewMetrics(promReg)
		if addr, _ := cmd.Flags().GetString("serve"); addr != "" {
			health := metrics.NewHealthStatus()
			rs, sw, closeAll := stores(ctx, true, true)
			defer closeAll()
			if rs != nil {
				health.Register("redis", metrics.PingRedis(rs.Client()))
			}
			if sw != nil {
				health.Register("sqlite", metrics.PingSQL(sw.DB()))
			}
			health.Check(ctx)
			health.StartLivenessChecker(ctx, 10*time.Second)

			srv := metrics.NewServer(addr, promReg, health)
			srv.Start()
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Stop(stopCtx)
			}()
		}

		e, err := replay.NewEngine(reg, calc, configs, m)
		if err != nil {
			return err
		}

		bars, _ := cmd.Flags().GetInt("bars")
		seed, _ := cmd.Flags().GetInt64("seed")
		s := randomWalk(bars, seed)

		t := newTable(cmd.OutOrStdout(), "indicator", "lookback", "batch", "ns/bar")
		t.SetTitle("batch over %d bars", s.Len())
		alignRight(t, 1, 4)
		for _, c := range configs {
			entry, _ := reg.Lookup(c.Name)
			start := time.Now()
			res, err := entry.Compute(calc, s, c.Params)
			took := time.Since(start)
			m.ObserveBatch(entry.Label(c.Params), catalog.Kind(err), took)
			if err != nil {
				return err
			}
			t.AppendRow([]interface{}{res.Label(), res.Lookback, took.Round(time.Microsecond), took.Nanoseconds() / int64(s.Len())})
		}
		t.Render()

		split := s.Len() / 2
		if _, err := e.Warmup(s.Slice(0, split)); err != nil {
			return err
		}
		stepped, took, overflow := stepAll(ctx, e, s, split)
		fmt.Fprintf(cmd.OutOrStdout(), "stepped %d bars through %d indicators in %s (%d ns/bar, %d dropped)\n",
			stepped, len(configs), took.Round(time.Microsecond), took.Nanoseconds()/int64(max(stepped, 1)), overflow)

		if hold, _ := cmd.Flags().GetBool("hold"); hold {
			zap.L().Info("holding for metrics scrapes; interrupt to exit")
			<-ctx.Done()
		}
		return nil
	},
}

func init() {
	benchCmd.Flags().Int("bars", 100_000, "synthetic bars to generate")
	benchCmd.Flags().Int64("seed", 1, "random seed")
	benchCmd.Flags().String("serve", "", "serve /metrics and /healthz on this address")
	benchCmd.Flags().Bool("hold", false, "keep serving after the run until interrupted")
}

// stepAll feeds s[from:] through the engine from a producer goroutine.
// When the ring is full the producer yields and retries, so nothing is
// dropped unless the consumer stops.
func stepAll(ctx context.Context, e *replay.Engine, s *model.Series, from int) (int, time.Duration, uint64) {
	id := replay.SeriesID{Key: s.Key, TF: s.TF}
	feed := replay.NewFeed(e, 4096)

	go func() {
		defer feed.Close()
		for i := from; i < s.Len(); i++ {
			for !feed.Offer(replay.Tick{ID: id, Bar: s.Bar(i)}) {
				if ctx.Err() != nil {
					return
				}
				time.Sleep(time.Microsecond)
			}
		}
	}()

	n := 0
	start := time.Now()
	feed.Run(ctx, func([]model.IndicatorResult) { n++ })
	return n, time.Since(start), feed.Overflow()
}

// randomWalk generates a positive OHLCV walk at one-minute bars.
func randomWalk(n int, seed int64) *model.Series {
	r := rand.New(rand.NewSource(seed))
	s := model.NewSeries("SYN:WALK", 60, n)
	ts := time.Unix(1_700_000_000, 0).UTC()
	price := 1000.0
	for i := 0; i < n; i++ {
		o := price
		c := math.Max(1, o*(1+r.NormFloat64()*0.002))
		s.Append(model.Bar{
			TS:     ts.Add(time.Duration(i) * time.Minute),
			Open:   model.Float(o),
			High:   model.Float(math.Max(o, c) * (1 + math.Abs(r.NormFloat64())*0.001)),
			Low:    model.Float(math.Min(o, c) * (1 - math.Abs(r.NormFloat64())*0.001)),
			Close:  model.Float(c),
			Volume: model.Float(100 + r.Intn(10_000)),
		})
		price = c
	}
	return s
}
