package localtransport_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/effective-security/stockmcp/mcp/localtransport"
	"github.com/metoro-io/mcp-golang/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// echo replies to every request with its method name, or with an error for "fail".
func echo(tr *localtransport.Transport, notified chan<- string) func(context.Context, *transport.BaseJsonRpcMessage) {
	return func(ctx context.Context, msg *transport.BaseJsonRpcMessage) {
		switch msg.Type {
		case transport.BaseMessageTypeJSONRPCNotificationType:
			notified <- msg.JsonRpcNotification.Method
		case transport.BaseMessageTypeJSONRPCRequestType:
			req := msg.JsonRpcRequest
			go func() {
				if req.Method == "fail" {
					_ = tr.Send(ctx, transport.NewBaseMessageError(&transport.BaseJSONRPCError{
						Jsonrpc: "2.0",
						Id:      req.Id,
						Error: transport.BaseJSONRPCErrorInner{
							Code:    -32601,
							Message: "method not found",
						},
					}))
					return
				}
				if req.Method == "hang" {
					return
				}
				result, _ := json.Marshal(map[string]any{"method": req.Method, "local_id": req.Id})
				_ = tr.Send(ctx, transport.NewBaseMessageResponse(&transport.BaseJSONRPCResponse{
					Jsonrpc: "2.0",
					Id:      req.Id,
					Result:  result,
				}))
			}()
		}
	}
}

func TestTransport_Lifecycle(t *testing.T) {
	tr := localtransport.New()
	assert.NoError(t, tr.Start(context.Background()))

	closed := 0
	tr.SetCloseHandler(func() { closed++ })
	tr.SetErrorHandler(func(error) {})

	assert.NoError(t, tr.Close())
	assert.NoError(t, tr.Close())
	assert.Equal(t, 2, closed)

	tr.SetCloseHandler(nil)
	assert.NotPanics(t, func() {
		assert.NoError(t, tr.Close())
	})
}

func TestTransport_NotConnected(t *testing.T) {
	tr := localtransport.New()
	_, err := tr.HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	assert.EqualError(t, err, "transport is not connected")
}

func TestTransport_HandleMessage(t *testing.T) {
	tr := localtransport.New()
	notified := make(chan string, 1)
	tr.SetMessageHandler(echo(tr, notified))
	ctx := context.Background()

	t.Run("request", func(t *testing.T) {
		out, err := tr.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":42,"method":"ping"}`))
		require.NoError(t, err)
		assert.Equal(t, int64(42), gjson.GetBytes(out, "id").Int())
		assert.Equal(t, "ping", gjson.GetBytes(out, "result.method").String())
		assert.NotEqual(t, int64(42), gjson.GetBytes(out, "result.local_id").Int())
	})

	t.Run("error", func(t *testing.T) {
		out, err := tr.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":7,"method":"fail"}`))
		require.NoError(t, err)
		assert.Equal(t, int64(7), gjson.GetBytes(out, "id").Int())
		assert.Equal(t, int64(-32601), gjson.GetBytes(out, "error.code").Int())
		assert.Equal(t, "method not found", gjson.GetBytes(out, "error.message").String())
	})

	t.Run("notification", func(t *testing.T) {
		out, err := tr.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`))
		require.NoError(t, err)
		assert.Nil(t, out)
		assert.Equal(t, "notifications/initialized", <-notified)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := tr.HandleMessage(ctx, []byte(`{"id":1`))
		assert.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		_, err := tr.HandleMessage(cctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"hang"}`))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("concurrent callers with the same id", func(t *testing.T) {
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				out, err := tr.HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
				assert.NoError(t, err)
				assert.Equal(t, int64(1), gjson.GetBytes(out, "id").Int())
			}()
		}
		wg.Wait()
	})
}

func TestTransport_Send(t *testing.T) {
	tr := localtransport.New()
	ctx := context.Background()

	err := tr.Send(ctx, transport.NewBaseMessageResponse(&transport.BaseJSONRPCResponse{Id: 99}))
	assert.EqualError(t, err, "no response channel found for key: 99")

	err = tr.Send(ctx, transport.NewBaseMessageNotification(&transport.BaseJSONRPCNotification{
		Jsonrpc: "2.0",
		Method:  "notifications/message",
	}))
	assert.NoError(t, err)
}
