package indicator

import (
	"math"
	"math/rand"
	"testing"
)

// bars is a synthetic OHLCV series: a random walk with shadows on both
// sides and occasional flat stretches so zero-range paths get exercised.
type bars struct {
	open, high, low, close, volume []float64
}

func genBars(n int, seed int64) bars {
	r := rand.New(rand.NewSource(seed))
	b := bars{
		open:   make([]float64, n),
		high:   make([]float64, n),
		low:    make([]float64, n),
		close:  make([]float64, n),
		volume: make([]float64, n),
	}
	price := 100.0
	for i := 0; i < n; i++ {
		o := price
		c := o + r.NormFloat64()
		if i%37 == 5 {
			c = o
		}
		b.open[i] = o
		b.close[i] = c
		b.high[i] = math.Max(o, c) + math.Abs(r.NormFloat64())*0.5
		b.low[i] = math.Min(o, c) - math.Abs(r.NormFloat64())*0.5
		b.volume[i] = 1000 + float64(r.Intn(5000))
		price = c
	}
	return b
}

func (b bars) head(n int) bars {
	return bars{b.open[:n], b.high[:n], b.low[:n], b.close[:n], b.volume[:n]}
}

func outputs(k, n int) [][]float64 {
	out := make([][]float64, k)
	for i := range out {
		out[i] = make([]float64, n)
	}
	return out
}

// window returns the n samples ending at t.
func window(s []float64, t, n int) []float64 { return s[t-n+1 : t+1] }

func assertClose(t *testing.T, label string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(want) {
		if !math.IsNaN(got) {
			t.Errorf("%s: got %.10f, want NaN", label, got)
		}
		return
	}
	scale := math.Max(1, math.Abs(want))
	if math.Abs(got-want) > tol*scale {
		t.Errorf("%s: got %.10f, want %.10f (diff %.2e)", label, got, want, got-want)
	}
}

func leadingNaN(s []float64) int {
	n := 0
	for n < len(s) && math.IsNaN(s[n]) {
		n++
	}
	return n
}
