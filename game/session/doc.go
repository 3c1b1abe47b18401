// Package session provides connection and session management for fogmaze.
//
// The session package implements:
//   - An acceptor loop that holds new arrivals while the roster is full
//   - The START handshake and the per-connection request loop
//   - A mutex-guarded roster with list, lookup and forced disconnect
//   - Idle session reaping
//
// Core Types:
//
// Manager owns the roster and runs one goroutine per accepted connection.
// Session is one connected client bound to its own engine. Listener is the
// source of new connections; PipeListener is an in-memory implementation
// used for local play and tests.
//
// Session Names:
//
// Every accepted connection gets a sequential name "#n". Once the client
// sends START with a label the name becomes "#n label". Sessions can also
// be addressed by their UUID.
//
// Concurrency:
//
// Sessions share nothing but the roster. Sends on one connection are
// serialized because an operator disconnect can race the session's own
// answers. A blocked receive is cancelled by closing the connection.
//
// Usage:
//
//	manager, err := session.NewManager(session.Config{MaxSessions: 2})
//	if err != nil {
//		log.Fatal(err)
//	}
//	go manager.Serve(ctx, listener)
//
//	for _, info := range manager.List() {
//		fmt.Println(info.Name, info.Status)
//	}
//	manager.DisconnectAll()
package session
