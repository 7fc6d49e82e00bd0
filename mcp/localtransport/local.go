// Package localtransport provides an in-process MCP transport.
// A caller hands it one JSON-RPC message at a time and receives the reply,
// without stdio or network plumbing in between.
package localtransport

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/metoro-io/mcp-golang/transport"
	"github.com/tidwall/gjson"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/stockmcp/mcp", "localtransport")

// Transport implements transport.Transport for callers in the same process.
type Transport struct {
	lock           sync.RWMutex
	messageHandler func(ctx context.Context, message *transport.BaseJsonRpcMessage)
	errorHandler   func(error)
	closeHandler   func()

	pending map[int64]chan *transport.BaseJsonRpcMessage
	counter int64
}

var _ transport.Transport = (*Transport)(nil)

func New() *Transport {
	return &Transport{
		pending: make(map[int64]chan *transport.BaseJsonRpcMessage),
	}
}

func (s *Transport) Start(ctx context.Context) error {
	// Does nothing in the stateless local transport
	return nil
}

// Close closes the connection.
func (s *Transport) Close() error {
	s.lock.RLock()
	handler := s.closeHandler
	s.lock.RUnlock()

	if handler != nil {
		handler()
	}
	return nil
}

// SetErrorHandler sets the callback for when an error occurs.
func (s *Transport) SetErrorHandler(handler func(error)) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.errorHandler = handler
}

// SetCloseHandler sets the callback for when the connection is closed.
func (s *Transport) SetCloseHandler(handler func()) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.closeHandler = handler
}

// SetMessageHandler sets the callback for incoming messages.
func (s *Transport) SetMessageHandler(handler func(ctx context.Context, message *transport.BaseJsonRpcMessage)) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.messageHandler = handler
}

// Send delivers a response or error to the HandleMessage call waiting on its id.
// Server initiated notifications have no waiting caller and are dropped.
func (s *Transport) Send(ctx context.Context, message *transport.BaseJsonRpcMessage) error {
	var key transport.RequestId
	switch message.Type {
	case transport.BaseMessageTypeJSONRPCResponseType:
		key = message.JsonRpcResponse.Id
	case transport.BaseMessageTypeJSONRPCErrorType:
		key = message.JsonRpcError.Id
	default:
		logger.KV(xlog.DEBUG, "reason", "dropped", "type", message.Type)
		return nil
	}

	s.lock.RLock()
	ch := s.pending[int64(key)]
	s.lock.RUnlock()

	if ch == nil {
		return errors.Errorf("no response channel found for key: %d", key)
	}
	ch <- message
	return nil
}

// HandleMessage dispatches one JSON-RPC message.
// For a request it blocks until the reply is sent or ctx is done,
// and returns the serialized reply carrying the caller's id.
// For a notification it returns nil without waiting.
func (s *Transport) HandleMessage(ctx context.Context, body []byte) ([]byte, error) {
	s.lock.RLock()
	handler := s.messageHandler
	s.lock.RUnlock()
	if handler == nil {
		return nil, errors.New("transport is not connected")
	}

	if !gjson.GetBytes(body, "id").Exists() {
		var notification transport.BaseJSONRPCNotification
		if err := json.Unmarshal(body, &notification); err != nil {
			return nil, errors.Wrap(err, "invalid notification")
		}
		handler(ctx, transport.NewBaseMessageNotification(&notification))
		return nil, nil
	}

	var request transport.BaseJSONRPCRequest
	if err := json.Unmarshal(body, &request); err != nil {
		return nil, errors.Wrap(err, "invalid request")
	}

	// ids are local so concurrent callers may reuse theirs
	callerID := request.Id
	key := atomic.AddInt64(&s.counter, 1)
	request.Id = transport.RequestId(key)

	ch := make(chan *transport.BaseJsonRpcMessage, 1)
	s.lock.Lock()
	s.pending[key] = ch
	s.lock.Unlock()

	defer func() {
		s.lock.Lock()
		delete(s.pending, key)
		s.lock.Unlock()
	}()

	handler(ctx, transport.NewBaseMessageRequest(&request))

	var reply *transport.BaseJsonRpcMessage
	select {
	case reply = <-ch:
	case <-ctx.Done():
		return nil, errors.WithStack(ctx.Err())
	}

	switch reply.Type {
	case transport.BaseMessageTypeJSONRPCErrorType:
		reply.JsonRpcError.Id = callerID
		return json.Marshal(reply.JsonRpcError)
	default:
		reply.JsonRpcResponse.Id = callerID
		return json.Marshal(reply.JsonRpcResponse)
	}
}
