package protocol

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Send and Receive once either end of a connection
// has been closed.
var ErrClosed = errors.New("connection closed")

// Conn is a bidirectional, message-oriented connection. Implementations must
// allow Send and Receive to be called from different goroutines, and Close to
// unblock a pending Receive.
type Conn interface {
	Send(Message) error
	Receive() (Message, error)
	Close() error
}

// pipeBuffer approximates a socket's send buffer so a writer is not blocked
// until the peer reads.
const pipeBuffer = 64

type pipeEnd struct {
	in   <-chan Message
	out  chan<- Message
	done chan struct{}
	once *sync.Once
}

// Pipe returns two connected in-memory Conns. Closing either end closes both.
func Pipe() (Conn, Conn) {
	a := make(chan Message, pipeBuffer)
	b := make(chan Message, pipeBuffer)
	done := make(chan struct{})
	once := &sync.Once{}
	return &pipeEnd{in: a, out: b, done: done, once: once},
		&pipeEnd{in: b, out: a, done: done, once: once}
}

func (p *pipeEnd) Send(m Message) error {
	select {
	case <-p.done:
		return ErrClosed
	default:
	}
	select {
	case p.out <- m:
		return nil
	case <-p.done:
		return ErrClosed
	}
}

// Receive drains messages already buffered before reporting ErrClosed, so an
// END sent right before Close is still delivered.
func (p *pipeEnd) Receive() (Message, error) {
	select {
	case m := <-p.in:
		return m, nil
	default:
	}
	select {
	case m := <-p.in:
		return m, nil
	case <-p.done:
		select {
		case m := <-p.in:
			return m, nil
		default:
			return Message{}, ErrClosed
		}
	}
}

func (p *pipeEnd) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}
