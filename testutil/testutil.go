// Package testutil provides helpers for testing tool hosts.
//
// TestClient drives a handler in-process and decodes every response from
// its JSON encoding, so assertions see exactly what a client would:
//
//	func TestEcho(t *testing.T) {
//	    tc := testutil.NewTestClient(t, toolhost.NewDispatcher(info, reg))
//
//	    text, err := tc.CallTool("echo", map[string]any{"message": "hi"})
//	    require.NoError(t, err)
//	    assert.Equal(t, "Echo: hi", text)
//	}
//
// Session runs the real stdio loop over in-memory pipes for line-level tests.
package testutil

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/toolhost/protocol"
	"github.com/felixgeelhaar/toolhost/transport"
)

// Response is a response as decoded from the wire.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *protocol.Error `json:"error,omitempty"`
}

// TestClient is an in-process client for a request handler.
type TestClient struct {
	t       testing.TB
	handler transport.Handler
	reqID   int64
	mu      sync.Mutex
}

// NewTestClient creates a client for handler and performs the initialize
// handshake.
func NewTestClient(t testing.TB, handler transport.Handler) *TestClient {
	t.Helper()

	tc := &TestClient{t: t, handler: handler}
	if _, err := tc.Initialize(); err != nil {
		t.Fatalf("failed to initialize server: %v", err)
	}
	return tc
}

func (tc *TestClient) nextID() json.RawMessage {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.reqID++
	return json.RawMessage(fmt.Sprintf("%d", tc.reqID))
}

// SendRequest sends method with params and returns the decoded response.
func (tc *TestClient) SendRequest(method string, params any) (*Response, error) {
	tc.t.Helper()

	var paramsData json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
		paramsData = data
	}

	return tc.Send(&protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      tc.nextID(),
		Method:  method,
		Params:  paramsData,
	})
}

// Send hands req to the handler and decodes the encoded response.
func (tc *TestClient) Send(req *protocol.Request) (*Response, error) {
	resp, err := tc.handler.HandleRequest(context.Background(), req)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("handler returned no response")
	}

	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	var wire Response
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return &wire, nil
}

func (tc *TestClient) result(method string, params any, v any) error {
	tc.t.Helper()

	resp, err := tc.SendRequest(method, params)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	return json.Unmarshal(resp.Result, v)
}

// Initialize sends an initialize request.
func (tc *TestClient) Initialize() (map[string]any, error) {
	tc.t.Helper()

	var result map[string]any
	if err := tc.result(protocol.MethodInitialize, map[string]any{}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ListTools returns the tool descriptors in listed order.
func (tc *TestClient) ListTools() ([]map[string]any, error) {
	tc.t.Helper()

	var result struct {
		Tools []map[string]any `json:"tools"`
	}
	if err := tc.result(protocol.MethodToolsList, nil, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

// CallTool invokes a tool and returns its text blocks joined by newlines.
// An error response is returned as a *protocol.Error.
func (tc *TestClient) CallTool(name string, args any) (string, error) {
	tc.t.Helper()

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := tc.result(protocol.MethodToolsCall, callParams(name, args), &result); err != nil {
		return "", err
	}

	texts := make([]string, 0, len(result.Content))
	for _, c := range result.Content {
		texts = append(texts, c.Text)
	}
	return strings.Join(texts, "\n"), nil
}

// CallToolRaw invokes a tool and returns the undecoded response.
func (tc *TestClient) CallToolRaw(name string, args any) (*Response, error) {
	tc.t.Helper()
	return tc.SendRequest(protocol.MethodToolsCall, callParams(name, args))
}

func callParams(name string, args any) map[string]any {
	params := map[string]any{"name": name}
	if args != nil {
		params["arguments"] = args
	}
	return params
}

// AssertToolExists fails the test if no tool named name is listed.
func (tc *TestClient) AssertToolExists(name string) {
	tc.t.Helper()

	tools, err := tc.ListTools()
	if err != nil {
		tc.t.Fatalf("failed to list tools: %v", err)
	}
	for _, tool := range tools {
		if tool["name"] == name {
			return
		}
	}
	tc.t.Errorf("tool %q not found", name)
}

// AssertErrorCode fails the test unless err is a protocol error with code.
func AssertErrorCode(t testing.TB, err error, code int) {
	t.Helper()

	var rpcErr *protocol.Error
	if !errors.As(err, &rpcErr) {
		t.Errorf("error = %v, want protocol error with code %d", err, code)
		return
	}
	if rpcErr.Code != code {
		t.Errorf("error code = %d, want %d (%s)", rpcErr.Code, code, rpcErr.Message)
	}
}

// DefaultTimeout bounds every blocking Session operation.
const DefaultTimeout = 5 * time.Second

// Session runs the stdio loop against handler over in-memory pipes.
type Session struct {
	t         testing.TB
	stdin     *io.PipeWriter
	stdout    *bufio.Reader
	stderr    *lockedBuffer
	cancel    context.CancelFunc
	done      chan error
	closeOnce sync.Once
	err       error
}

// NewSession starts a session. It is closed automatically when the test ends.
func NewSession(t testing.TB, handler transport.Handler) *Session {
	t.Helper()

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		t:      t,
		stdin:  inW,
		stdout: bufio.NewReader(outR),
		stderr: &lockedBuffer{},
		cancel: cancel,
		done:   make(chan error, 1),
	}

	stdio := transport.NewStdio(
		transport.WithStdin(inR),
		transport.WithStdout(outW),
		transport.WithStderr(s.stderr),
	)
	go func() {
		err := stdio.Serve(ctx, handler)
		_ = outW.Close()
		s.done <- err
	}()

	t.Cleanup(func() {
		cancel()
		_ = inW.Close()
		_ = outR.Close()
	})
	return s
}

// Send writes line (a newline is appended) and returns the response line
// without its newline.
func (s *Session) Send(line string) string {
	s.t.Helper()
	s.Write(line + "\n")
	return s.ReadLine()
}

// Write writes raw bytes to the session's stdin.
func (s *Session) Write(raw string) {
	s.t.Helper()

	errc := make(chan error, 1)
	go func() {
		_, err := io.WriteString(s.stdin, raw)
		errc <- err
	}()

	select {
	case err := <-errc:
		if err != nil {
			s.t.Fatalf("write stdin: %v", err)
		}
	case <-time.After(DefaultTimeout):
		s.t.Fatalf("write stdin: timed out")
	}
}

// ReadLine reads the next response line.
func (s *Session) ReadLine() string {
	s.t.Helper()

	type read struct {
		line string
		err  error
	}
	rc := make(chan read, 1)
	go func() {
		line, err := s.stdout.ReadString('\n')
		rc <- read{line, err}
	}()

	select {
	case r := <-rc:
		if r.err != nil {
			s.t.Fatalf("read stdout: %v", r.err)
		}
		return strings.TrimSuffix(r.line, "\n")
	case <-time.After(DefaultTimeout):
		s.t.Fatalf("read stdout: no response within %v", DefaultTimeout)
		return ""
	}
}

// Close closes stdin and waits for the loop to exit. It returns what
// Serve returned and any output the loop wrote after its last response.
func (s *Session) Close() (rest string, err error) {
	s.t.Helper()

	s.closeOnce.Do(func() {
		_ = s.stdin.Close()

		restc := make(chan string, 1)
		go func() {
			data, _ := io.ReadAll(s.stdout)
			restc <- string(data)
		}()

		select {
		case s.err = <-s.done:
		case <-time.After(DefaultTimeout):
			s.t.Fatalf("session did not stop after stdin was closed")
		}
		rest = <-restc
	})
	return rest, s.err
}

// Stop cancels the session context and waits for the loop to exit.
func (s *Session) Stop() error {
	s.t.Helper()

	s.cancel()
	select {
	case err := <-s.done:
		s.closeOnce.Do(func() { s.err = err })
		return err
	case <-time.After(DefaultTimeout):
		s.t.Fatalf("session did not stop after cancel")
		return nil
	}
}

// Stderr returns what the loop logged so far.
func (s *Session) Stderr() string {
	return s.stderr.String()
}

// RunLines feeds input to a fresh stdio loop in one go and returns the
// response lines once stdin is exhausted.
func RunLines(t testing.TB, handler transport.Handler, input string) []string {
	t.Helper()

	var out bytes.Buffer
	stdio := transport.NewStdio(
		transport.WithStdin(strings.NewReader(input)),
		transport.WithStdout(&out),
		transport.WithStderr(io.Discard),
	)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	if err := stdio.Serve(ctx, handler); err != nil {
		t.Fatalf("Serve() error = %v", err)
	}

	if out.Len() == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
