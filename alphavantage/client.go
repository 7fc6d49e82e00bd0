// Package alphavantage retrieves, validates and renders daily stock price
// history from the Alpha Vantage TIME_SERIES_DAILY endpoint.
package alphavantage

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/stockmcp/config"
	"github.com/effective-security/stockmcp/pkg/metricskey"
	"github.com/effective-security/xlog"
	"github.com/go-resty/resty/v2"
)

//go:generate mockgen -source=client.go -destination=../mocks/mockalphavantage/alphavantage_mock.gen.go -package mockalphavantage

var logger = xlog.NewPackageLogger("github.com/effective-security/stockmcp", "alphavantage")

// FunctionTimeSeriesDaily is the upstream API function for daily prices
const FunctionTimeSeriesDaily = "TIME_SERIES_DAILY"

// Fetcher retrieves the raw daily time series for a symbol.
type Fetcher interface {
	// Fetch performs one request for the symbol and returns the JSON body.
	Fetch(ctx context.Context, symbol string) (json.RawMessage, error)
}

// Client is the Alpha Vantage REST client.
// It is safe for concurrent use and holds no per-call state.
type Client struct {
	baseURL string
	apiKey  string
	rc      *resty.Client
}

var _ Fetcher = (*Client)(nil)

// NewClient returns a client for the configured endpoint.
// If httpClient is nil, a new client with default transport is used.
func NewClient(cfg *config.Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	rc := resty.NewWithClient(httpClient).
		SetLogger(restyLogger{}).
		SetRetryCount(0)
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}

	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		rc:      rc,
	}
}

// Fetch performs exactly one GET request for the daily time series of symbol.
// The symbol is sent as given; callers normalize it.
func (c *Client) Fetch(ctx context.Context, symbol string) (json.RawMessage, error) {
	started := time.Now()
	defer metricskey.PerfUpstreamRequest.MeasureSince(started, FunctionTimeSeriesDaily)

	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function": FunctionTimeSeriesDaily,
			"symbol":   symbol,
			"apikey":   c.apiKey,
		}).
		Get(c.baseURL)
	if err != nil {
		metricskey.StatsUpstreamRequests.IncrCounter(1, FunctionTimeSeriesDaily, "error")
		return nil, errors.WithStack(&TransportError{Err: err})
	}

	status := resp.StatusCode()
	metricskey.StatsUpstreamRequests.IncrCounter(1, FunctionTimeSeriesDaily, strconv.Itoa(status))

	logger.ContextKV(ctx, xlog.DEBUG,
		"symbol", symbol,
		"status", status,
		"size", len(resp.Body()),
		"elapsed", resp.Time().String(),
	)

	if status != http.StatusOK {
		return nil, errors.WithStack(&TransportError{StatusCode: status})
	}

	var raw json.RawMessage
	if err = json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse response"), ErrParse)
	}
	return raw, nil
}

// restyLogger routes resty diagnostics to the package logger.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...any) {
	logger.Errorf(format, v...)
}

func (restyLogger) Warnf(format string, v ...any) {
	logger.Warningf(format, v...)
}

func (restyLogger) Debugf(format string, v ...any) {
	logger.Debugf(format, v...)
}
