package websocket

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/fogmaze/game/protocol"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Envelopes read ahead of Receive. The protocol keeps at most a few in
	// flight; a peer that floods past this stops being read.
	receiveBuffer = 32
)

type options struct {
	pongWait time.Duration
}

// Option tunes a connection.
type Option func(*options)

// WithPongWait sets how long a connection survives without hearing from
// the peer. Pings go out at 9/10 of it.
func WithPongWait(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pongWait = d
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{pongWait: pongWait}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type frame struct {
	msg protocol.Message
	err error
}

// Conn adapts a WebSocket connection to protocol.Conn. A read pump runs for
// the whole life of the connection, so pings are answered and pongs keep the
// deadline fresh whether or not anyone is calling Receive.
type Conn struct {
	ws  *websocket.Conn
	log log.FieldLogger

	pongWait   time.Duration
	pingPeriod time.Duration

	incoming chan frame
	readErr  error // set by readPump before incoming is closed

	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
}

func newConn(ws *websocket.Conn, logger log.FieldLogger, o options) *Conn {
	c := &Conn{
		ws:         ws,
		log:        logger,
		pongWait:   o.pongWait,
		pingPeriod: (o.pongWait * 9) / 10,
		incoming:   make(chan frame, receiveBuffer),
		done:       make(chan struct{}),
	}

	go c.readPump()
	go c.writePump()
	return c
}

// Dial opens a client connection to a fogmaze server, e.g. ws://host:4434/ws.
func Dial(ctx context.Context, url string, opts ...Option) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return newConn(ws, log.WithField("remote", url), buildOptions(opts)), nil
}

func (c *Conn) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Conn) Send(m protocol.Message) error {
	if c.closed() {
		return protocol.ErrClosed
	}
	data, err := protocol.Encode(m)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		if c.closed() || errors.Is(err, websocket.ErrCloseSent) {
			return protocol.ErrClosed
		}
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Receive blocks for the next envelope. A peer close or a local Close is
// reported as protocol.ErrClosed.
func (c *Conn) Receive() (protocol.Message, error) {
	if c.closed() {
		return protocol.Message{}, protocol.ErrClosed
	}
	select {
	case f, ok := <-c.incoming:
		if !ok {
			return protocol.Message{}, c.readErr
		}
		return f.msg, f.err
	case <-c.done:
		return protocol.Message{}, protocol.ErrClosed
	}
}

// Close sends a close frame and closes the socket. It is safe to call more
// than once and unblocks a pending Receive.
func (c *Conn) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		c.ws.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}

func (c *Conn) RemoteAddr() string {
	return c.ws.RemoteAddr().String()
}

// readPump pumps envelopes from the socket to Receive. Control frames are
// handled inside ReadMessage, so pongs are seen even while nobody receives.
func (c *Conn) readPump() {
	defer close(c.incoming)

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(c.pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		kind, data, err := c.ws.ReadMessage()
		if err != nil {
			c.readErr = c.readError(err)
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(c.pongWait))
		if kind != websocket.TextMessage {
			continue
		}

		f := frame{}
		f.msg, f.err = protocol.Decode(data)
		select {
		case c.incoming <- f:
		case <-c.done:
			return
		}
	}
}

func (c *Conn) readError(err error) error {
	if c.closed() || errors.Is(err, net.ErrClosed) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return protocol.ErrClosed
	}
	if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
		c.log.WithError(err).Warn("websocket error")
	}
	return fmt.Errorf("read: %w", err)
}

// writePump sends pings until the connection is closed.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.ws.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
