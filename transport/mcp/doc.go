// Package mcp exposes fogmaze's operator surface as Model Context Protocol tools.
//
// The Client here is an MCP server on one side and an HTTP client of the admin
// REST API on the other, so an agent can manage a running server without
// sharing its process.
//
// MCP Tools:
//   - server_info: port, max sessions, active sessions
//   - list_sessions: names and status strings
//   - get_session: one session by name or id
//   - session_history: paginated move log
//   - disconnect_session: end one session by name
//   - disconnect_all: end every session
//   - disconnect_idle: end sessions idle longer than a duration
//   - list_configs: maze presets
//
// Transport Modes:
//   - Stdio: `fogmaze mcp` serves the tools on stdin/stdout
//   - HTTP: `fogmaze serve` answers JSON-RPC messages POSTed to /mcp
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:4434", version)
//	server.ServeStdio(client.GetMCPServer())
package mcp
