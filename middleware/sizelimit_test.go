package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/toolhost/middleware"
	"github.com/felixgeelhaar/toolhost/protocol"
)

type warnCounter struct {
	middleware.NopLogger
	warnings int
}

func (w *warnCounter) Warn(string, ...middleware.Field) { w.warnings++ }

func TestSizeLimit(t *testing.T) {
	next := func(_ context.Context, req *protocol.Request) (*protocol.Response, error) {
		return protocol.NewResponse(req.ID, "ok"), nil
	}
	request := func(params string) *protocol.Request {
		return &protocol.Request{
			JSONRPC: "2.0",
			ID:      json.RawMessage(`1`),
			Method:  "tools/call",
			Params:  json.RawMessage(params),
		}
	}

	t.Run("allows params within limit", func(t *testing.T) {
		resp, err := middleware.SizeLimit(middleware.KB)(next)(context.Background(), request(`{"name":"echo"}`))
		if err != nil || resp == nil {
			t.Fatalf("got %v, %v", resp, err)
		}
	})

	t.Run("rejects params over limit as invalid params", func(t *testing.T) {
		logger := &warnCounter{}
		handler := middleware.SizeLimit(32, middleware.WithSizeLimitLogger(logger))(next)
		big := `{"name":"echo","arguments":{"message":"` + strings.Repeat("x", 64) + `"}}`

		resp, err := handler(context.Background(), request(big))
		if resp != nil {
			t.Errorf("resp = %v, want nil", resp)
		}
		var rpcErr *protocol.Error
		if !errors.As(err, &rpcErr) || rpcErr.Code != protocol.CodeInvalidParams {
			t.Fatalf("err = %v, want invalid params", err)
		}
		if !strings.Contains(rpcErr.Message, "exceeds limit of 32 bytes") {
			t.Errorf("Message = %q", rpcErr.Message)
		}
		if logger.warnings != 1 {
			t.Errorf("warnings = %d, want 1", logger.warnings)
		}
	})

	t.Run("requests without params pass", func(t *testing.T) {
		handler := middleware.SizeLimit(1)(next)
		if _, err := handler(context.Background(), &protocol.Request{Method: "tools/list"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("non-positive limit disables the check", func(t *testing.T) {
		handler := middleware.SizeLimit(0)(next)
		if _, err := handler(context.Background(), request(strings.Repeat(" ", 10*middleware.KB)+"{}")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("method filter skips other methods", func(t *testing.T) {
		handler := middleware.SizeLimit(8, middleware.WithSizeLimitMethods(protocol.MethodToolsCall))(next)
		big := `{"pad":"` + strings.Repeat("x", 64) + `"}`

		for _, method := range []string{protocol.MethodInitialize, protocol.MethodToolsList, "unknown"} {
			req := request(big)
			req.Method = method
			if _, err := handler(context.Background(), req); err != nil {
				t.Errorf("%s: unexpected error: %v", method, err)
			}
		}

		_, err := handler(context.Background(), request(big))
		var rpcErr *protocol.Error
		if !errors.As(err, &rpcErr) || rpcErr.Code != protocol.CodeInvalidParams {
			t.Errorf("tools/call: err = %v, want invalid params", err)
		}
	})
}
