// Package service provides the operator facing layer for fogmaze.
//
// The service package implements:
//   - Listing live sessions with their status strings
//   - Forced disconnect of one or all sessions
//   - Paginated move history per session
//   - Maze preset discovery
//
// Core Interfaces:
//
// AdminService is what the REST and MCP transports talk to. It is built on a
// SessionDirectory (implemented by session.Manager) and a ConfigManager
// (implemented by config.Manager).
//
// Usage:
//
//	manager, _ := session.NewManager(session.Config{MaxSessions: 3})
//	presets, _ := config.NewManager("configs")
//	admin := service.NewAdminService(manager, presets)
//
//	sessions, err := admin.ListSessions(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = admin.DisconnectSession(ctx, sessions[0].Name)
package service
