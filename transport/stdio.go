package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/felixgeelhaar/toolhost/internal/logging"
	"github.com/felixgeelhaar/toolhost/middleware"
	"github.com/felixgeelhaar/toolhost/protocol"
)

// Stdio serves line-delimited JSON-RPC over stdin/stdout.
type Stdio struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	logger middleware.Logger
}

// StdioOption configures a Stdio transport.
type StdioOption func(*Stdio)

// WithStdin sets a custom stdin reader.
func WithStdin(r io.Reader) StdioOption {
	return func(s *Stdio) {
		s.in = r
	}
}

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) StdioOption {
	return func(s *Stdio) {
		s.out = w
	}
}

// WithStderr sets the stream diagnostics go to when no logger is set.
func WithStderr(w io.Writer) StdioOption {
	return func(s *Stdio) {
		s.errOut = w
	}
}

// WithLogger sets the logger for framing and write failures.
func WithLogger(l middleware.Logger) StdioOption {
	return func(s *Stdio) {
		s.logger = l
	}
}

// NewStdio creates a new stdio transport.
func NewStdio(opts ...StdioOption) *Stdio {
	s := &Stdio{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = stderrLogger(s.errOut)
	}

	return s
}

var _ Transport = (*Stdio)(nil)

// Addr returns the transport address.
func (s *Stdio) Addr() string {
	return "stdio"
}

// Serve reads one request per line and writes exactly one response line for
// each, flushing after every write. Lines are handled strictly in order.
//
// Serve returns nil when stdin is exhausted and ctx.Err() when ctx is
// canceled; a response still in flight at cancellation is dropped. A failed
// write ends the loop with that error.
func (s *Stdio) Serve(ctx context.Context, handler Handler) error {
	reader := bufio.NewReader(s.in)
	writer := bufio.NewWriter(s.out)

	lines := make(chan []byte)
	readErr := make(chan error, 1)

	// Reads block, so they run apart from the loop to keep it interruptible.
	go func() {
		defer close(lines)
		for {
			line, err := reader.ReadBytes('\n')
			if len(line) > 0 {
				select {
				case lines <- line:
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return fmt.Errorf("read stdin: %w", err)
				default:
					return nil
				}
			}

			resp := s.handleLine(ctx, handler, line)
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.writeResponse(writer, resp); err != nil {
				s.logger.Error("write response failed", middleware.F("error", err.Error()))
				return err
			}
		}
	}
}

func (s *Stdio) handleLine(ctx context.Context, handler Handler, line []byte) *protocol.Response {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))

	var req protocol.Request
	if err := json.Unmarshal(line, &req); err != nil {
		s.logger.Warn("malformed request",
			middleware.F("error", err.Error()),
			middleware.F("bytes", len(line)),
		)
		return protocol.NewErrorResponse(nil, protocol.NewParseError("Parse error"))
	}

	resp, err := handler.HandleRequest(ctx, &req)
	switch {
	case err != nil:
		return protocol.NewErrorResponse(req.ID, protocol.AsError(err))
	case resp == nil:
		return protocol.NewErrorResponse(req.ID, protocol.NewInternalError("handler returned no response"))
	}
	return resp
}

func (s *Stdio) writeResponse(w *bufio.Writer, resp *protocol.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		// A result that cannot be encoded still owes the client a line.
		s.logger.Error("encode response failed", middleware.F("error", err.Error()))
		data, err = json.Marshal(protocol.NewErrorResponse(resp.ID, protocol.NewInternalError("failed to encode result")))
		if err != nil {
			return err
		}
	}

	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush stdout: %w", err)
	}
	return nil
}

// stderrLogger is the fallback logger: slog text lines on errOut at warn
// level and above.
func stderrLogger(w io.Writer) middleware.Logger {
	if w == nil {
		return middleware.NopLogger{}
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelWarn})
	return logging.FromSlog(slog.New(h))
}
