// Package websocket carries fogmaze messages over WebSocket connections.
//
// The websocket package implements:
//   - Conn, a protocol.Conn with one JSON envelope per text frame
//   - Listener, an http.Handler that upgrades requests and queues them for
//     the session manager's acceptor
//   - Dial, the client side
//
// Connection Lifecycle:
//
// 1. The client opens /ws
// 2. The request is upgraded and waits in the Listener until accepted
// 3. The manager runs the START handshake and the request loop
// 4. Either side sends END and closes
//
// Upgraded connections are held, not refused, while the roster is full: the
// handler blocks until the acceptor takes the connection or the listener is
// closed.
//
// Keepalive:
//
// Each Conn runs a read pump and a ping pump from the moment it exists, so
// a connection waiting for a roster slot, or a player who pauses between
// moves, stays alive. The peer must be heard from within the pong wait
// (60s, WithPongWait to change it); pings go out at 9/10 of it. Writes are
// serialized and bounded by writeWait.
//
// Usage:
//
//	listener := websocket.NewListener(addr, logger)
//	router.Handle("/ws", listener)
//	go manager.Serve(ctx, listener)
//
//	conn, err := websocket.Dial(ctx, "ws://localhost:4434/ws")
package websocket
