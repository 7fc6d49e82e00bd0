// Package stockdata provides the get-stock-data tool: daily price history
// for a ticker symbol, summarized as text.
package stockdata

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/stockmcp/alphavantage"
	"github.com/effective-security/stockmcp/callbacks"
	"github.com/effective-security/stockmcp/pkg/metricskey"
	"github.com/effective-security/stockmcp/schema"
	"github.com/effective-security/stockmcp/tools"
	"github.com/effective-security/xlog"
	mcp "github.com/metoro-io/mcp-golang"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/stockmcp/tools", "stockdata")

const (
	ToolName        = "get-stock-data"
	ToolDescription = "Get daily stock market data for a specific symbol"
)

// Request represents the tool input.
type Request struct {
	Symbol string `json:"symbol" yaml:"symbol" jsonschema:"required,description=Stock symbol (e.g.\\, IBM\\, AAPL\\, MSFT)"`
}

// Result represents the tool output.
type Result struct {
	Series *alphavantage.Series `json:"series" yaml:"series" toml:"series"`
	// Text is the formatted summary of the most recent trading days
	Text string `json:"-" yaml:"-" toml:"-"`
}

func (r *Result) String() string {
	return r.Text
}

// Tool retrieves the daily time series for a symbol
type Tool struct {
	name        string
	description string
	funcParams  any

	fetcher  alphavantage.Fetcher
	callback tools.Callback
}

var (
	_ tools.Tool[Request, Result] = (*Tool)(nil)
	_ tools.MCPTool[Request]      = (*Tool)(nil)
)

// New returns the tool backed by the fetcher.
func New(fetcher alphavantage.Fetcher) (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(Request{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	return &Tool{
		name:        ToolName,
		description: ToolDescription,
		funcParams:  sc.Parameters,
		fetcher:     fetcher,
		callback:    callbacks.NewPackageLogger(logger),
	}, nil
}

// WithCallback replaces the default logging callback.
func (t *Tool) WithCallback(cb tools.Callback) *Tool {
	t.callback = cb
	return t
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() any {
	return t.funcParams
}

// Run fetches and validates the series for the upper-cased symbol.
// Errors are returned as is, see RunMCP for the caller facing messages.
func (t *Tool) Run(ctx context.Context, req *Request) (*Result, error) {
	symbol := strings.ToUpper(req.Symbol)

	raw, err := t.fetcher.Fetch(ctx, symbol)
	if err != nil {
		return nil, err
	}
	series, err := alphavantage.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &Result{
		Series: series,
		Text:   alphavantage.Format(series),
	}, nil
}

// Call executes the tool with JSON input and returns the text response.
func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req Request
	if err := json.Unmarshal([]byte(input), &req); err != nil {
		return "", errors.WithStack(tools.ErrFailedUnmarshalInput)
	}
	return t.respond(ctx, &req), nil
}

func (t *Tool) RegisterMCP(registrator tools.McpServerRegistrator) error {
	return registrator.RegisterTool(t.name, t.description, t.RunMCP)
}

// RunMCP is the MCP handler.
// Retrieval and data errors are returned as text content, never as a
// protocol error.
func (t *Tool) RunMCP(ctx context.Context, req *Request) (*mcp.ToolResponse, error) {
	return mcp.NewToolResponse(mcp.NewTextContent(t.respond(ctx, req))), nil
}

func (t *Tool) respond(ctx context.Context, req *Request) string {
	started := time.Now()
	defer metricskey.PerfToolCall.MeasureSince(started, t.name)

	t.callback.OnToolStart(ctx, t, req.Symbol)

	res, err := t.Run(ctx, req)
	if err != nil {
		t.callback.OnToolError(ctx, t, req.Symbol, err)

		reason := failureReason(err)
		metricskey.StatsToolCallsFailed.IncrCounter(1, t.name, reason)
		if reason == "shape" {
			return fmt.Sprintf("Invalid or empty data received for symbol: %s", req.Symbol)
		}
		return fmt.Sprintf("Failed to retrieve stock data for symbol: %s", req.Symbol)
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, t.name)
	t.callback.OnToolEnd(ctx, t, req.Symbol, res.Text)
	return res.Text
}

func failureReason(err error) string {
	switch {
	case alphavantage.IsShape(err):
		return "shape"
	case alphavantage.IsParse(err):
		return "parse"
	case alphavantage.IsTransport(err):
		return "transport"
	default:
		return "other"
	}
}
