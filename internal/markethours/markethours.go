// Package markethours decides whether a bar belongs to the NSE cash session,
// so stored series can be cleaned of pre-open and after-hours prints before
// indicators see them.
package markethours

import (
	"time"

	"tacore/internal/model"
)

// IST is the Indian Standard Time location (UTC+5:30).
var IST = time.FixedZone("IST", 5*3600+30*60)

// Session bounds in IST.
const (
	OpenHour    = 9
	OpenMinute  = 15
	CloseHour   = 15
	CloseMinute = 30
)

const day = 24 * 60 * 60

// IsTradingDay returns true if t is a weekday and not a holiday.
func IsTradingDay(t time.Time) bool {
	ist := t.In(IST)
	wd := ist.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	_, holiday := Holiday(ist)
	return !holiday
}

// IsMarketOpen returns true if t falls within 09:15-15:30 IST on a
// trading day.
func IsMarketOpen(t time.Time) bool {
	if !IsTradingDay(t) {
		return false
	}
	ist := t.In(IST)
	hm := ist.Hour()*60 + ist.Minute()
	return hm >= OpenHour*60+OpenMinute && hm < CloseHour*60+CloseMinute
}

// Close returns the session close on t's IST date.
func Close(t time.Time) time.Time {
	ist := t.In(IST)
	return time.Date(ist.Year(), ist.Month(), ist.Day(), CloseHour, CloseMinute, 0, 0, IST)
}

// InSession reports whether a bar starting at ts and spanning tf seconds
// lies inside one session. Daily and longer bars only need a trading day.
func InSession(ts time.Time, tf int) bool {
	if tf >= day {
		return IsTradingDay(ts)
	}
	if !IsMarketOpen(ts) {
		return false
	}
	return !ts.Add(time.Duration(tf) * time.Second).After(Close(ts))
}

// FilterCandles returns the candles inside the session, in order, and how
// many were dropped. The input is not modified.
func FilterCandles(candles []model.Candle) ([]model.Candle, int) {
	out := make([]model.Candle, 0, len(candles))
	for _, c := range candles {
		if InSession(c.TS, c.TF) {
			out = append(out, c)
		}
	}
	return out, len(candles) - len(out)
}
