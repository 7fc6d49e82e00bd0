// Package server exposes the stock tools as an MCP server.
package server

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/stockmcp/tools"
	"github.com/effective-security/xlog"
	mcp "github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/stockmcp", "server")

const (
	Name    = "stock-market"
	Version = "1.0.0"
)

// DefaultDrainTimeout bounds the wait for in-flight requests on shutdown
const DefaultDrainTimeout = 30 * time.Second

// Server is an MCP server with its tools registered.
type Server struct {
	mcp          *mcp.Server
	tr           *trackedTransport
	tools        []tools.IMCPTool
	drainTimeout time.Duration
}

// New returns a server speaking over tr, with the tools registered.
func New(tr transport.Transport, list ...tools.IMCPTool) (*Server, error) {
	tt := &trackedTransport{
		Transport: tr,
		done:      make(chan struct{}),
	}
	s := &Server{
		mcp: mcp.NewServer(tt,
			mcp.WithName(Name),
			mcp.WithVersion(Version),
		),
		tr:           tt,
		tools:        list,
		drainTimeout: DefaultDrainTimeout,
	}

	for _, t := range list {
		if err := t.RegisterMCP(s.mcp); err != nil {
			return nil, errors.Wrapf(err, "failed to register tool: %s", t.Name())
		}
		logger.KV(xlog.DEBUG, "status", "registered", "tool", t.Name())
	}
	return s, nil
}

// WithDrainTimeout sets how long Serve waits for in-flight requests
// once the session ends.
func (s *Server) WithDrainTimeout(d time.Duration) *Server {
	s.drainTimeout = d
	return s
}

// Tools returns the registered tools.
func (s *Server) Tools() []tools.IMCPTool {
	return s.tools
}

// Start connects the protocol to the transport and returns.
func (s *Server) Start() error {
	if err := s.mcp.Serve(); err != nil {
		return errors.Wrap(err, "failed to start MCP server")
	}
	return nil
}

// Serve starts the server and blocks until the transport is closed or ctx is done.
// Requests received before that are answered before Serve returns,
// bounded by the drain timeout.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}

	closed := false
	select {
	case <-s.tr.done:
		closed = true
		logger.KV(xlog.INFO, "status", "closed")
	case <-ctx.Done():
		logger.KV(xlog.INFO, "status", "stopping", "reason", ctx.Err().Error())
	}

	s.drain()
	if !closed {
		_ = s.tr.Close()
	}
	return nil
}

// Close closes the transport.
func (s *Server) Close() error {
	return s.tr.Close()
}

func (s *Server) drain() {
	select {
	case <-s.tr.idle():
	case <-time.After(s.drainTimeout):
		logger.KV(xlog.WARNING, "status", "drain_timeout", "pending", s.tr.pending())
	}
}

// trackedTransport counts requests that have not been answered yet,
// and signals done once the underlying transport reports close.
type trackedTransport struct {
	transport.Transport

	done chan struct{}
	once sync.Once

	lock     sync.Mutex
	inflight int
	idleCh   chan struct{}
}

func (c *trackedTransport) SetCloseHandler(handler func()) {
	c.Transport.SetCloseHandler(func() {
		if handler != nil {
			handler()
		}
		c.once.Do(func() { close(c.done) })
	})
}

func (c *trackedTransport) SetMessageHandler(handler func(ctx context.Context, message *transport.BaseJsonRpcMessage)) {
	c.Transport.SetMessageHandler(func(ctx context.Context, message *transport.BaseJsonRpcMessage) {
		if message.Type == transport.BaseMessageTypeJSONRPCRequestType {
			c.begin()
		}
		handler(ctx, message)
	})
}

func (c *trackedTransport) Send(ctx context.Context, message *transport.BaseJsonRpcMessage) error {
	err := c.Transport.Send(ctx, message)
	switch message.Type {
	case transport.BaseMessageTypeJSONRPCResponseType, transport.BaseMessageTypeJSONRPCErrorType:
		c.end()
	}
	return err
}

func (c *trackedTransport) begin() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.inflight == 0 {
		c.idleCh = make(chan struct{})
	}
	c.inflight++
}

func (c *trackedTransport) end() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.inflight == 0 {
		return
	}
	c.inflight--
	if c.inflight == 0 {
		close(c.idleCh)
	}
}

// idle returns a channel closed when no request is in flight
func (c *trackedTransport) idle() <-chan struct{} {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.inflight == 0 {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return c.idleCh
}

func (c *trackedTransport) pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.inflight
}
