// Package transport provides the stdio session loop of the tool host.
//
// Requests arrive one JSON document per line on stdin and every line
// produces exactly one response line on stdout:
//
//	stdio := transport.NewStdio(transport.WithLogger(logger))
//	if err := stdio.Serve(ctx, dispatcher); err != nil && !errors.Is(err, context.Canceled) {
//	    log.Fatal(err)
//	}
//
// A line that is not a JSON-RPC request is answered with a parse error and
// an id of null; the loop carries on with the next line. Stdout is flushed
// after each response, so clients reading from a pipe never wait on a buffer.
package transport
