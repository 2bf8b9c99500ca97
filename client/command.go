package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/felixgeelhaar/toolhost/protocol"
)

// CommandTransport runs a host as a subprocess and talks to it over its
// stdin and stdout.
type CommandTransport struct {
	cmd    *exec.Cmd
	stream *StreamTransport
	grace  time.Duration
}

// CommandOption configures a CommandTransport.
type CommandOption func(*commandOptions)

type commandOptions struct {
	stderr io.Writer
	env    []string
	grace  time.Duration
}

// WithCommandStderr sets where the host's stderr goes. The default is
// this process's stderr.
func WithCommandStderr(w io.Writer) CommandOption {
	return func(o *commandOptions) {
		o.stderr = w
	}
}

// WithCommandEnv appends variables to the host's environment.
func WithCommandEnv(env ...string) CommandOption {
	return func(o *commandOptions) {
		o.env = append(o.env, env...)
	}
}

// WithShutdownGrace sets how long Close waits for the host to exit after
// its input is closed before killing it.
func WithShutdownGrace(d time.Duration) CommandOption {
	return func(o *commandOptions) {
		o.grace = d
	}
}

// NewCommandTransport starts name with args. The process is killed when
// ctx is canceled.
func NewCommandTransport(ctx context.Context, name string, args []string, opts ...CommandOption) (*CommandTransport, error) {
	o := commandOptions{
		stderr: os.Stderr,
		grace:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = o.stderr
	if len(o.env) > 0 {
		cmd.Env = append(os.Environ(), o.env...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	return &CommandTransport{
		cmd:    cmd,
		stream: NewStreamTransport(stdout, stdin),
		grace:  o.grace,
	}, nil
}

// Send forwards to the underlying stream.
func (t *CommandTransport) Send(ctx context.Context, req *protocol.Request) (*Response, error) {
	return t.stream.Send(ctx, req)
}

// Close ends the host's input, which makes a well-behaved host exit, and
// waits for the process. A host still running after the grace period is
// killed.
func (t *CommandTransport) Close() error {
	exited := make(chan error, 1)
	go func() {
		_ = t.stream.Close()
		exited <- t.cmd.Wait()
	}()

	select {
	case err := <-exited:
		return err
	case <-time.After(t.grace):
		_ = t.cmd.Process.Kill()
		return <-exited
	}
}
