package server

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/toolhost/protocol"
)

// ContentTypeText is the only content block kind tools produce.
const ContentTypeText = "text"

// Content is a typed block of tool output.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextContent creates a text content block.
func TextContent(text string) Content {
	return Content{Type: ContentTypeText, Text: text}
}

// Result is the outcome of a tool invocation: either Success with an
// ordered sequence of content blocks or Failure with a code and message.
// The zero value is a Success with no content.
type Result struct {
	content []Content
	err     *protocol.Error
}

// Success creates a successful result.
func Success(blocks ...Content) Result {
	return Result{content: blocks}
}

// Text creates a successful result holding a single text block.
func Text(text string) Result {
	return Success(TextContent(text))
}

// Textf is Text with fmt.Sprintf formatting.
func Textf(format string, args ...any) Result {
	return Text(fmt.Sprintf(format, args...))
}

// Failure creates a failed result.
func Failure(code int, message string) Result {
	return Result{err: &protocol.Error{Code: code, Message: message}}
}

// InvalidParams creates a failure for missing or malformed arguments.
func InvalidParams(message string) Result {
	return Failure(protocol.CodeInvalidParams, message)
}

// FromError converts err to a Failure. Protocol errors keep their code,
// any other error is reported as an internal error.
func FromError(err error) Result {
	var rpcErr *protocol.Error
	if errors.As(err, &rpcErr) {
		return Result{err: rpcErr}
	}
	return Failure(protocol.CodeInternalError, err.Error())
}

// Failed reports whether r is a Failure.
func (r Result) Failed() bool {
	return r.err != nil
}

// Err returns the failure, or nil for a Success.
func (r Result) Err() *protocol.Error {
	return r.err
}

// Content returns the content blocks of a Success, never nil.
func (r Result) Content() []Content {
	if r.content == nil {
		return []Content{}
	}
	return r.content
}
