package client_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/toolhost"
	"github.com/felixgeelhaar/toolhost/client"
	"github.com/felixgeelhaar/toolhost/internal/tools/calculator"
	"github.com/felixgeelhaar/toolhost/middleware"
	"github.com/felixgeelhaar/toolhost/protocol"
	"github.com/felixgeelhaar/toolhost/server"
	"github.com/felixgeelhaar/toolhost/transport"
)

// connect serves a calculator host in-process and returns a client wired
// to it through pipes.
func connect(t *testing.T, opts ...client.Option) *client.Client {
	t.Helper()

	rb := server.NewRegistryBuilder()
	calculator.Register(rb)
	reg, err := rb.Build()
	if err != nil {
		t.Fatal(err)
	}
	d := toolhost.NewDispatcher(toolhost.ServerInfo{Name: calculator.ServerName, Version: calculator.ServerVersion}, reg)

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	served := make(chan error, 1)
	go func() {
		err := toolhost.ServeStdio(context.Background(), d,
			transport.WithStdin(inR),
			transport.WithStdout(outW),
			transport.WithLogger(middleware.NopLogger{}),
		)
		_ = outW.CloseWithError(err)
		served <- err
	}()

	c := client.New(client.NewStreamTransport(outR, inW), opts...)
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
		if err := <-served; err != nil {
			t.Errorf("serve: %v", err)
		}
	})
	return c
}

func TestClient_Initialize(t *testing.T) {
	c := connect(t)

	if c.ServerInfo() != nil {
		t.Fatal("server info cached before initialize")
	}

	info, err := c.Initialize(context.Background())
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	want := client.ServerInfo{Name: "calculator-server", Version: "1.0.0", ProtocolVersion: protocol.MCPVersion}
	if *info != want {
		t.Errorf("info = %+v, want %+v", *info, want)
	}
	if c.ServerInfo() != info {
		t.Error("ServerInfo does not return the cached identity")
	}
}

func TestClient_ListTools(t *testing.T) {
	c := connect(t)

	tools, err := c.ListTools(context.Background())
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}

	var names []string
	for _, tool := range tools {
		names = append(names, tool.Name)
		if !json.Valid(tool.InputSchema) {
			t.Errorf("%s: invalid input schema %s", tool.Name, tool.InputSchema)
		}
	}
	if got := strings.Join(names, ","); got != "add,subtract,multiply,divide" {
		t.Errorf("tools = %s", got)
	}
}

func TestClient_CallTool(t *testing.T) {
	c := connect(t)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		res, err := c.CallTool(ctx, "multiply", map[string]any{"a": 6, "b": 7})
		if err != nil {
			t.Fatalf("call: %v", err)
		}
		if got := res.Text(); got != "Result: 42" {
			t.Errorf("text = %q", got)
		}
	})

	tests := []struct {
		name    string
		tool    string
		args    any
		code    int
		message string
	}{
		{"tool failure", "divide", map[string]any{"a": 1, "b": 0}, protocol.CodeInternalError, "Division by zero"},
		{"unknown tool", "modulo", map[string]any{"a": 1, "b": 2}, protocol.CodeMethodNotFound, "Tool not found"},
		{"missing arguments", "add", nil, protocol.CodeInvalidParams, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CallTool(ctx, tt.tool, tt.args)

			var rpcErr *protocol.Error
			if !errors.As(err, &rpcErr) {
				t.Fatalf("error = %v, want *protocol.Error", err)
			}
			if rpcErr.Code != tt.code {
				t.Errorf("code = %d, want %d", rpcErr.Code, tt.code)
			}
			if tt.message != "" && rpcErr.Message != tt.message {
				t.Errorf("message = %q, want %q", rpcErr.Message, tt.message)
			}
			if !strings.Contains(err.Error(), fmt.Sprintf("%q", tt.tool)) {
				t.Errorf("error %q does not name the tool", err)
			}
		})
	}
}

func TestClient_ConcurrentCalls(t *testing.T) {
	c := connect(t)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			res, err := c.CallTool(context.Background(), "add", map[string]any{"a": n, "b": 1000})
			if err != nil {
				errs <- err
				return
			}
			if want := fmt.Sprintf("Result: %d", n+1000); res.Text() != want {
				errs <- fmt.Errorf("got %q, want %q", res.Text(), want)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

type blockingTransport struct{}

func (blockingTransport) Send(ctx context.Context, _ *protocol.Request) (*client.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingTransport) Close() error { return nil }

func TestClient_Timeout(t *testing.T) {
	c := client.New(blockingTransport{}, client.WithTimeout(20*time.Millisecond))

	_, err := c.ListTools(context.Background())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
func (discard) Close() error                { return nil }

func TestStreamTransport(t *testing.T) {
	req := func(id string) *protocol.Request {
		return &protocol.Request{JSONRPC: "2.0", ID: json.RawMessage(id), Method: "tools/list"}
	}

	t.Run("skips unrelated lines", func(t *testing.T) {
		inR, inW := io.Pipe()
		outR, outW := io.Pipe()
		go func() {
			line, _ := bufio.NewReader(inR).ReadString('\n')
			if !strings.Contains(line, `"id":"a"`) {
				_ = outW.CloseWithError(fmt.Errorf("unexpected request %q", line))
				return
			}
			_, _ = io.WriteString(outW, "garbage\n")
			_, _ = io.WriteString(outW, `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error"}}`+"\n")
			_, _ = io.WriteString(outW, `{"jsonrpc":"2.0","id":"other","result":{}}`+"\n")
			_, _ = io.WriteString(outW, `{"jsonrpc":"2.0","id":"a","result":{"tools":[]}}`+"\n")
			_ = outW.Close()
		}()

		tr := client.NewStreamTransport(outR, inW)
		resp, err := tr.Send(context.Background(), req(`"a"`))
		if err != nil {
			t.Fatalf("send: %v", err)
		}
		if string(resp.Result) != `{"tools":[]}` {
			t.Errorf("result = %s", resp.Result)
		}
		if err := tr.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})

	t.Run("host output ended", func(t *testing.T) {
		tr := client.NewStreamTransport(strings.NewReader(""), discard{})
		<-tr.Done()

		_, err := tr.Send(context.Background(), req(`1`))
		if !errors.Is(err, client.ErrClosed) {
			t.Errorf("error = %v, want ErrClosed", err)
		}
	})

	t.Run("closed", func(t *testing.T) {
		tr := client.NewStreamTransport(strings.NewReader(""), discard{})
		if err := tr.Close(); err != nil {
			t.Fatal(err)
		}
		if err := tr.Close(); err != nil {
			t.Errorf("second close: %v", err)
		}

		_, err := tr.Send(context.Background(), req(`1`))
		if !errors.Is(err, client.ErrClosed) {
			t.Errorf("error = %v, want ErrClosed", err)
		}
	})

	t.Run("requires an id", func(t *testing.T) {
		tr := client.NewStreamTransport(strings.NewReader(""), discard{})
		defer tr.Close()

		for _, id := range []string{``, `null`} {
			if _, err := tr.Send(context.Background(), req(id)); err == nil {
				t.Errorf("id %q: expected error", id)
			}
		}
	})
}
