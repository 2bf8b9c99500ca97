// Command toolhost serves the echo, calculator or weather tools over
// line-delimited JSON-RPC on stdin/stdout.
//
//	toolhost calculator --log-level debug < requests.jsonl
//	toolhost weather --config toolhost.yaml
//	toolhost tools weather
//
// Stdout carries protocol messages only; logs go to stderr.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "toolhost: %v\n", err)
		os.Exit(1)
	}
}
