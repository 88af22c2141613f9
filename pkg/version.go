package daylog

// Version is reported by `daylog version` and the MCP server handshake.
const Version = "0.1.0"
