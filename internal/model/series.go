package model

import "time"

// Series is a columnar OHLCV history for one instrument and timeframe, the
// layout batch evaluators take their inputs in.
type Series struct {
	Key    string      `json:"key"` // "exchange:token"
	TF     int         `json:"tf"`
	Time   []time.Time `json:"time"`
	Open   []Float     `json:"open"`
	High   []Float     `json:"high"`
	Low    []Float     `json:"low"`
	Close  []Float     `json:"close"`
	Volume []Float     `json:"volume"`
}

// NewSeries returns an empty series with room for n bars.
func NewSeries(key string, tf, n int) *Series {
	return &Series{
		Key:    key,
		TF:     tf,
		Time:   make([]time.Time, 0, n),
		Open:   make([]Float, 0, n),
		High:   make([]Float, 0, n),
		Low:    make([]Float, 0, n),
		Close:  make([]Float, 0, n),
		Volume: make([]Float, 0, n),
	}
}

// SeriesFromCandles builds a series from stored candles in timestamp order.
// The key and timeframe come from the first candle.
func SeriesFromCandles(candles []Candle) *Series {
	s := NewSeries("", 0, len(candles))
	if len(candles) > 0 {
		s.Key, s.TF = candles[0].Key(), candles[0].TF
	}
	for i := range candles {
		s.Append(candles[i].Bar())
	}
	return s
}

// Append adds one bar at the end.
func (s *Series) Append(b Bar) {
	s.Time = append(s.Time, b.TS)
	s.Open = append(s.Open, b.Open)
	s.High = append(s.High, b.High)
	s.Low = append(s.Low, b.Low)
	s.Close = append(s.Close, b.Close)
	s.Volume = append(s.Volume, b.Volume)
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Close) }

// Bar returns bar i.
func (s *Series) Bar(i int) Bar {
	b := Bar{Open: s.Open[i], High: s.High[i], Low: s.Low[i], Close: s.Close[i], Volume: s.Volume[i]}
	if i < len(s.Time) {
		b.TS = s.Time[i]
	}
	return b
}

// Column returns the column for f. The slice aliases the series.
func (s *Series) Column(f Field) []Float {
	switch f {
	case FieldOpen:
		return s.Open
	case FieldHigh:
		return s.High
	case FieldLow:
		return s.Low
	case FieldVolume:
		return s.Volume
	default:
		return s.Close
	}
}

// Slice returns bars [from, to) sharing the underlying arrays.
func (s *Series) Slice(from, to int) *Series {
	out := &Series{
		Key:    s.Key,
		TF:     s.TF,
		Open:   s.Open[from:to],
		High:   s.High[from:to],
		Low:    s.Low[from:to],
		Close:  s.Close[from:to],
		Volume: s.Volume[from:to],
	}
	if len(s.Time) >= to {
		out.Time = s.Time[from:to]
	}
	return out
}
