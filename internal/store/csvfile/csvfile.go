// Package csvfile reads OHLCV candles from CSV files for ad-hoc evaluation.
//
// The expected layout is ts,open,high,low,close[,volume] with an optional
// header row. ts is unix seconds or RFC 3339; prices are decimal rupees.
package csvfile

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"tacore/internal/model"
)

var (
	ErrNotEnoughColumns    = errors.New("not enough columns")
	ErrInvalidTimeFormat   = errors.New("cannot parse time")
	ErrInvalidPriceFormat  = errors.New("cannot parse price")
	ErrInvalidVolumeFormat = errors.New("cannot parse volume")
)

// Decoder turns one CSV record into a candle. A nil candle with a nil
// error skips the record.
type Decoder func(row []string, index int) (*model.Candle, error)

// DefaultDecoder decodes ts,open,high,low,close[,volume]. A first row whose
// timestamp does not parse is taken as the header.
func DefaultDecoder(row []string, index int) (*model.Candle, error) {
	if len(row) < 5 {
		return nil, ErrNotEnoughColumns
	}
	ts, err := parseTime(row[0])
	if err != nil {
		if index == 0 {
			return nil, nil
		}
		return nil, err
	}

	var prices [4]int64
	for i := range prices {
		d, err := decimal.NewFromString(strings.TrimSpace(row[i+1]))
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidPriceFormat, "column %d %q", i+1, row[i+1])
		}
		prices[i] = model.Paise(d)
	}

	c := &model.Candle{TS: ts, Open: prices[0], High: prices[1], Low: prices[2], Close: prices[3]}
	if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
		v, err := decimal.NewFromString(strings.TrimSpace(row[5]))
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidVolumeFormat, "%q", row[5])
		}
		c.Volume = v.Round(0).IntPart()
	}
	return c, nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		// millisecond stamps are common in exchange exports
		if sec > 1e12 {
			return time.UnixMilli(sec).UTC(), nil
		}
		return time.Unix(sec, 0).UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, errors.Wrapf(ErrInvalidTimeFormat, "%q", s)
}

// Decode reads every record from r and stamps the candles with the given
// instrument. Candles are returned in timestamp order.
func Decode(r io.Reader, exchange, token string, tf int, dec Decoder) ([]model.Candle, error) {
	if dec == nil {
		dec = DefaultDecoder
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var out []model.Candle
	for i := 0; ; i++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "csv record %d", i)
		}
		c, err := dec(row, i)
		if err != nil {
			return nil, errors.Wrapf(err, "csv record %d", i)
		}
		if c == nil {
			continue
		}
		c.Exchange, c.Token, c.TF = exchange, token, tf
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TS.Before(out[j].TS) })
	return out, nil
}

var _ model.CandleReader = (*Reader)(nil)

// Reader serves one CSV file as a candle store for a single instrument.
type Reader struct {
	candles []model.Candle
}

// Open loads path for the given instrument.
func Open(path, exchange, token string, tf int) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open csv")
	}
	defer f.Close()

	candles, err := Decode(f, exchange, token, tf, nil)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return &Reader{candles: candles}, nil
}

// Candles returns everything loaded.
func (r *Reader) Candles() []model.Candle { return r.candles }

// ReadCandles implements model.CandleReader.
func (r *Reader) ReadCandles(_ context.Context, exchange, token string, tf int, afterTS int64) ([]model.Candle, error) {
	var out []model.Candle
	for _, c := range r.candles {
		if c.Exchange == exchange && c.Token == token && c.TF == tf && c.TS.Unix() > afterTS {
			out = append(out, c)
		}
	}
	return out, nil
}

// Close implements model.CandleReader.
func (r *Reader) Close() error { return nil }
