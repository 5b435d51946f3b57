package model

import (
	"encoding/json"
	"strconv"
	"time"
)

// IndicatorResult holds one output value of a configured indicator for a
// specific instrument + TF.
type IndicatorResult struct {
	Name   string    `json:"name"`   // e.g. "SMA_20", "MACD_12_26_9"
	Output string    `json:"output"` // output column, e.g. "signal"
	Key    string    `json:"key"`    // "exchange:token"
	TF     int       `json:"tf"`     // timeframe in seconds
	Value  float64   `json:"value"`
	TS     time.Time `json:"ts"`    // candle timestamp that produced this value
	Ready  bool      `json:"ready"` // false inside the lookback prefix
}

// StreamKey returns "ind:{name}.{output}:{TF}s:{key}".
func (r *IndicatorResult) StreamKey() string {
	return "ind:" + r.Name + "." + r.Output + ":" + strconv.Itoa(r.TF) + "s:" + r.Key
}

// JSON returns the JSON-encoded indicator result.
func (r *IndicatorResult) JSON() []byte {
	b, _ := json.Marshal(r)
	return b
}
