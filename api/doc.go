// Package api provides the operator REST API for a fogmaze server.
//
// Endpoints:
//
// Sessions:
//   - GET /api/sessions - List connected sessions (optional ?status=)
//   - GET /api/sessions/{name} - Get one session by name ("#2 alice") or id
//   - GET /api/sessions/{name}/history - Move log (?page=&limit=&order=asc|desc)
//   - DELETE /api/sessions/{name} - Send END to one session and release its slot
//   - DELETE /api/sessions - Disconnect everyone
//   - POST /api/sessions/idle?max_idle=10m - Disconnect sessions idle for longer
//
// Server:
//   - GET /api/server - Port, max sessions, active sessions
//   - GET /api/health - Liveness
//
// Presets:
//   - GET /api/configs - List maze presets
//   - GET /api/configs/{name} - Get one preset
//
// Game clients connect to /ws when a websocket handler is supplied.
//
// Names contain '#' and may contain spaces, so clients must escape them in
// the path (GET /api/sessions/%231%20alice).
//
// Errors are returned as JSON:
//
//	{"error": "session \"#9\": session not found"}
package api
