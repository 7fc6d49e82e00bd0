package alphavantage

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Top-level keys of the TIME_SERIES_DAILY response
const (
	KeyMetaData        = "Meta Data"
	KeyTimeSeriesDaily = "Time Series (Daily)"
)

// DateLayout is the layout of the time series keys
const DateLayout = "2006-01-02"

// keys the API uses for notices returned in place of data
var noticeKeys = []string{"Error Message", "Note", "Information"}

// MetaData is the metadata block of the daily time series response.
type MetaData struct {
	Information   string `json:"1. Information" yaml:"information" toml:"information"`
	Symbol        string `json:"2. Symbol" yaml:"symbol" toml:"symbol"`
	LastRefreshed string `json:"3. Last Refreshed" yaml:"last_refreshed" toml:"last_refreshed"`
	OutputSize    string `json:"4. Output Size" yaml:"output_size" toml:"output_size"`
	TimeZone      string `json:"5. Time Zone" yaml:"time_zone" toml:"time_zone"`
}

// DailyRecord is one trading day as received, all values are strings.
type DailyRecord struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// Date is a trading day, encoded as YYYY-MM-DD.
type Date time.Time

// ParseDate parses a time series key
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	return Date(t), err
}

func (d Date) String() string {
	return time.Time(d).Format(DateLayout)
}

// MarshalText implements encoding.TextMarshaler
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Compare returns -1, 0 or +1 when d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	return time.Time(d).Compare(time.Time(o))
}

// Quote is the typed daily price record for a symbol.
type Quote struct {
	Symbol string          `json:"symbol" yaml:"symbol" toml:"symbol"`
	Date   Date            `json:"date" yaml:"date" toml:"date"`
	Open   decimal.Decimal `json:"open" yaml:"open" toml:"open"`
	High   decimal.Decimal `json:"high" yaml:"high" toml:"high"`
	Low    decimal.Decimal `json:"low" yaml:"low" toml:"low"`
	Close  decimal.Decimal `json:"close" yaml:"close" toml:"close"`
	Volume int64           `json:"volume" yaml:"volume" toml:"volume"`
}

// Series is a validated daily time series.
// Quotes are ordered newest first.
type Series struct {
	MetaData MetaData `json:"meta_data" yaml:"meta_data" toml:"meta_data"`
	Quotes   []Quote  `json:"quotes" yaml:"quotes" toml:"quotes"`
}

// Recent returns up to n most recent quotes
func (s *Series) Recent(n int) []Quote {
	if len(s.Quotes) <= n {
		return s.Quotes
	}
	return s.Quotes[:n]
}

func (s *Series) String() string {
	return Format(s)
}

// Parse validates the response shape and converts it into a Series.
//
// Both KeyMetaData and KeyTimeSeriesDaily must be present and not null.
// Every date and numeric field must parse; any malformed value is reported
// as a ShapeError rather than left for the formatter.
// A falsy body (null, false, 0 or "") is an ErrParse, same as no data at all.
func Parse(raw json.RawMessage) (*Series, error) {
	if isFalsy(raw) {
		return nil, errors.Mark(errors.Newf("empty response body: %s", bytes.TrimSpace(raw)), ErrParse)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, &ShapeError{Reason: "response is not an object"}
	}

	metaRaw, hasMeta := field(top, KeyMetaData)
	seriesRaw, hasSeries := field(top, KeyTimeSeriesDaily)
	if !hasMeta || !hasSeries {
		se := &ShapeError{Notice: notice(top)}
		if !hasMeta {
			se.Reason = "missing " + KeyMetaData
		} else {
			se.Reason = "missing " + KeyTimeSeriesDaily
		}
		return nil, se
	}

	var meta MetaData
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		return nil, &ShapeError{Reason: "malformed " + KeyMetaData}
	}

	var days map[string]DailyRecord
	if err := json.Unmarshal(seriesRaw, &days); err != nil {
		return nil, &ShapeError{Reason: "malformed " + KeyTimeSeriesDaily}
	}

	quotes := make([]Quote, 0, len(days))
	for day, rec := range days {
		q, err := rec.toQuote(meta.Symbol, day)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	slices.SortFunc(quotes, func(a, b Quote) int {
		return b.Date.Compare(a.Date)
	})

	return &Series{
		MetaData: meta,
		Quotes:   quotes,
	}, nil
}

func (r DailyRecord) toQuote(symbol, day string) (Quote, error) {
	date, err := ParseDate(day)
	if err != nil {
		return Quote{}, &ShapeError{Reason: "malformed date " + strconv.Quote(day)}
	}

	q := Quote{
		Symbol: symbol,
		Date:   date,
	}
	prices := []struct {
		name string
		val  string
		dst  *decimal.Decimal
	}{
		{"open", r.Open, &q.Open},
		{"high", r.High, &q.High},
		{"low", r.Low, &q.Low},
		{"close", r.Close, &q.Close},
	}
	for _, p := range prices {
		*p.dst, err = decimal.NewFromString(p.val)
		if err != nil {
			return Quote{}, &ShapeError{Reason: "malformed " + p.name + " on " + day + ": " + strconv.Quote(p.val)}
		}
	}

	q.Volume, err = strconv.ParseInt(r.Volume, 10, 64)
	if err != nil {
		return Quote{}, &ShapeError{Reason: "malformed volume on " + day + ": " + strconv.Quote(r.Volume)}
	}
	return q, nil
}

var null = []byte("null")

func isFalsy(raw json.RawMessage) bool {
	r := gjson.ParseBytes(raw)
	switch r.Type {
	case gjson.Null, gjson.False:
		return true
	case gjson.Number:
		return r.Float() == 0
	case gjson.String:
		return r.Str == ""
	}
	return false
}

func field(top map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	v, ok := top[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), null) {
		return nil, false
	}
	return v, true
}

func notice(top map[string]json.RawMessage) string {
	for _, key := range noticeKeys {
		v, ok := top[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	}
	return ""
}
