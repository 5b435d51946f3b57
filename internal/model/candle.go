package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one stored OHLCV bar for a single instrument and timeframe.
// Prices are in paise (int64) to avoid floating-point drift at rest.
type Candle struct {
	Token    string    `json:"token"`
	Exchange string    `json:"exchange"`
	TF       int       `json:"tf"`     // timeframe in seconds
	TS       time.Time `json:"ts"`     // bucket start time (UTC, TF-aligned)
	Open     int64     `json:"open"`   // paise
	High     int64     `json:"high"`   // paise
	Low      int64     `json:"low"`    // paise
	Close    int64     `json:"close"`  // paise
	Volume   int64     `json:"volume"` // cumulative quantity
}

// Key returns "exchange:token".
func (c *Candle) Key() string {
	return c.Exchange + ":" + c.Token
}

// JSON returns the JSON-encoded candle (ignoring errors for hot-path usage).
func (c *Candle) JSON() []byte {
	b, _ := json.Marshal(c)
	return b
}

// Bar converts the candle to rupees at evaluation width.
func (c *Candle) Bar() Bar {
	return Bar{
		TS:     c.TS,
		Open:   Rupees(c.Open),
		High:   Rupees(c.High),
		Low:    Rupees(c.Low),
		Close:  Rupees(c.Close),
		Volume: Float(c.Volume),
	}
}

// Rupees converts a paise amount exactly before the single rounding to Float.
func Rupees(paise int64) Float {
	return Float(decimal.New(paise, -2).InexactFloat64())
}

// Paise rounds a decimal rupee amount to whole paise.
func Paise(rupees decimal.Decimal) int64 {
	return rupees.Shift(2).Round(0).IntPart()
}

// Bar is one OHLCV sample at evaluation width.
type Bar struct {
	TS     time.Time `json:"ts"`
	Open   Float     `json:"open"`
	High   Float     `json:"high"`
	Low    Float     `json:"low"`
	Close  Float     `json:"close"`
	Volume Float     `json:"volume"`
}
