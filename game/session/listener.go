package session

import (
	"context"
	"sync"

	"github.com/wricardo/fogmaze/game/protocol"
)

// Listener is a source of client connections. Accept returns
// protocol.ErrClosed once the listener has been closed.
type Listener interface {
	Accept(ctx context.Context) (protocol.Conn, error)
	Close() error
	Addr() string
}

// PipeListener hands out in-memory connections. Dial blocks until the
// manager accepts the connection, so a full roster holds the caller.
type PipeListener struct {
	conns chan protocol.Conn
	done  chan struct{}
	once  sync.Once
}

func NewPipeListener() *PipeListener {
	return &PipeListener{
		conns: make(chan protocol.Conn),
		done:  make(chan struct{}),
	}
}

// Dial connects to the listener and returns the client end.
func (l *PipeListener) Dial(ctx context.Context) (protocol.Conn, error) {
	client, server := protocol.Pipe()
	select {
	case l.conns <- server:
		return client, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.done:
		return nil, protocol.ErrClosed
	}
}

func (l *PipeListener) Accept(ctx context.Context) (protocol.Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.done:
		return nil, protocol.ErrClosed
	}
}

func (l *PipeListener) Close() error {
	l.once.Do(func() { close(l.done) })
	return nil
}

func (l *PipeListener) Addr() string { return "pipe" }
