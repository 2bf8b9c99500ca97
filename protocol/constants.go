package protocol

// MCPVersion is the protocol version reported during the handshake.
const MCPVersion = "2024-11-05"

// Method names understood by the dispatcher.
const (
	MethodInitialize = "initialize"
	MethodToolsList  = "tools/list"
	MethodToolsCall  = "tools/call"
)
