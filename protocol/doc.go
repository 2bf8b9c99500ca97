// Package protocol defines the JSON-RPC 2.0 message types and error codes
// spoken by the tool host.
//
// # Request and Response Types
//
// A Request carries an optional correlation id, a method name and optional
// params:
//
//	type Request struct {
//	    JSONRPC string          `json:"jsonrpc"`
//	    ID      json.RawMessage `json:"id,omitempty"`
//	    Method  string          `json:"method"`
//	    Params  json.RawMessage `json:"params,omitempty"`
//	}
//
// A Response echoes the id byte for byte and carries exactly one of
// result or error. Requests without an id are answered with "id": null.
//
// # Error Codes
//
// The error code set is closed:
//
//	CodeParseError     = -32700  // Malformed input line
//	CodeMethodNotFound = -32601  // Unknown method or unknown tool
//	CodeInvalidParams  = -32602  // Missing or malformed arguments
//	CodeInternalError  = -32603  // Everything else
//
// AsError folds arbitrary Go errors into this set.
//
// # Method Constants
//
//	MethodInitialize = "initialize"
//	MethodToolsList  = "tools/list"
//	MethodToolsCall  = "tools/call"
package protocol
