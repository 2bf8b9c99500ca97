package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/felixgeelhaar/toolhost/protocol"
)

// ErrClosed is returned by Send once the transport is closed or the host
// has closed its output.
var ErrClosed = errors.New("client: transport closed")

// StreamTransport exchanges lines over a writer (host stdin) and a reader
// (host stdout). Responses are matched to requests by id.
type StreamTransport struct {
	w io.WriteCloser

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan *Response
	closed  bool

	done    chan struct{}
	readErr error
}

// NewStreamTransport starts reading responses from r. Closing the
// transport closes w, which the host sees as end of input.
func NewStreamTransport(r io.Reader, w io.WriteCloser) *StreamTransport {
	t := &StreamTransport{
		w:       w,
		pending: make(map[string]chan *Response),
		done:    make(chan struct{}),
	}
	go t.readResponses(r)
	return t
}

// Send writes req and waits for its response, ctx cancellation, or the end
// of the host's output.
func (t *StreamTransport) Send(ctx context.Context, req *protocol.Request) (*Response, error) {
	key, err := idKey(req.ID)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, ErrClosed
	}
	if _, dup := t.pending[key]; dup {
		t.mu.Unlock()
		return nil, fmt.Errorf("client: request id %s already in flight", key)
	}
	ch := make(chan *Response, 1)
	t.pending[key] = ch
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.pending, key)
		t.mu.Unlock()
	}()

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	t.writeMu.Lock()
	_, err = t.w.Write(append(data, '\n'))
	t.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		// A response may have been delivered just before the reader ended.
		select {
		case resp := <-ch:
			return resp, nil
		default:
		}
		if t.readErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrClosed, t.readErr)
		}
		return nil, ErrClosed
	}
}

// Close closes the host's input and waits for its output to end.
func (t *StreamTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	err := t.w.Close()
	<-t.done
	return err
}

// Done is closed once the host's output has ended.
func (t *StreamTransport) Done() <-chan struct{} {
	return t.done
}

func (t *StreamTransport) readResponses(r io.Reader) {
	defer close(t.done)

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			t.deliver(line)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				t.readErr = err
			}
			return
		}
	}
}

// deliver routes one response line. Lines that are not responses, and
// responses nobody waits for (including id null), are dropped.
func (t *StreamTransport) deliver(line []byte) {
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return
	}
	key, err := idKey(resp.ID)
	if err != nil {
		return
	}

	t.mu.Lock()
	ch, ok := t.pending[key]
	t.mu.Unlock()
	if ok {
		select {
		case ch <- &resp:
		default:
		}
	}
}

// idKey canonicalizes an id so 1 and 1.0 stay distinct but whitespace
// differences do not matter.
func idKey(id json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(id)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", errors.New("client: request id is required")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return "", fmt.Errorf("client: invalid request id: %w", err)
	}
	return buf.String(), nil
}
