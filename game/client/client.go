package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/fogmaze/game/maze"
	"github.com/wricardo/fogmaze/game/protocol"
)

var (
	ErrRejected          = errors.New("server rejected the session")
	ErrServerClosed      = errors.New("server ended the session")
	ErrUnexpectedMessage = errors.New("unexpected message")
	ErrNotConnected      = errors.New("not connected")
)

// Client drives one session over a protocol.Conn and keeps a Model of what
// it has learned. Errors are returned to the caller; nothing is retried.
type Client struct {
	conn     protocol.Conn
	model    *Model
	log      log.FieldLogger
	onInform func(string)

	mu        sync.Mutex
	connected bool
}

// Option customizes a Client.
type Option func(*Client)

func WithLogger(l log.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// WithInformHandler is called with the data of every INFORM from the server.
func WithInformHandler(fn func(string)) Option {
	return func(c *Client) { c.onInform = fn }
}

// WithViewportSize sets the side of the model's viewport.
func WithViewportSize(n int) Option {
	return func(c *Client) { c.model = NewModel(n) }
}

func New(conn protocol.Conn, opts ...Option) *Client {
	c := &Client{
		conn:  conn,
		model: NewModel(DefaultViewportSize),
		log:   log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Model() *Model { return c.model }

// Connect performs the START handshake with label as display name.
func (c *Client) Connect(ctx context.Context, label string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := protocol.NewStart(label)
	if err := c.conn.Send(start); err != nil {
		return fmt.Errorf("send START: %w", err)
	}

	for {
		msg, err := c.receive(ctx)
		if err != nil {
			return err
		}
		switch {
		case msg.Type == protocol.Answer && msg.ID == start.ID:
			if msg.Data != protocol.StartAccepted {
				return fmt.Errorf("%w: %q", ErrRejected, msg.Data)
			}
			c.connected = true
			c.log.WithField("label", label).Debug("session started")
			return nil
		case msg.Type == protocol.End:
			return ErrRejected
		case msg.Type == protocol.Inform:
			c.inform(msg)
		default:
			return fmt.Errorf("%w during handshake: %s", ErrUnexpectedMessage, msg)
		}
	}
}

// Move requests one step and waits for the answer carrying the request's id.
func (c *Client) Move(ctx context.Context, d maze.Direction) (Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return Event{}, ErrNotConnected
	}

	req := protocol.NewRequest(protocol.MoveRequest(d))
	if err := c.conn.Send(req); err != nil {
		c.connected = false
		if errors.Is(err, protocol.ErrClosed) {
			return Event{}, fmt.Errorf("%w: %w", ErrServerClosed, err)
		}
		return Event{}, fmt.Errorf("send move: %w", err)
	}

	for {
		msg, err := c.receive(ctx)
		if err != nil {
			c.connected = false
			return Event{}, err
		}
		switch msg.Type {
		case protocol.Answer:
			if msg.ID != req.ID {
				c.log.WithField("msg_id", msg.ID).Warn("dropping answer to another request")
				continue
			}
			ev, err := c.model.Apply(msg)
			if err != nil {
				return Event{}, err
			}
			c.log.WithFields(log.Fields{"direction": d.String(), "code": ev.Code}).Debug("move answered")
			return ev, nil
		case protocol.Inform:
			c.inform(msg)
		case protocol.End:
			c.connected = false
			return Event{}, ErrServerClosed
		default:
			return Event{}, fmt.Errorf("%w: %s", ErrUnexpectedMessage, msg)
		}
	}
}

// Inform sends a fire-and-forget message.
func (c *Client) Inform(text string) error {
	return c.conn.Send(protocol.NewInform(text))
}

// Close sends END and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	sendErr := c.conn.Send(protocol.NewEnd())
	closeErr := c.conn.Close()
	if sendErr != nil && !errors.Is(sendErr, protocol.ErrClosed) {
		return sendErr
	}
	return closeErr
}

func (c *Client) inform(msg protocol.Message) {
	c.log.WithField("data", msg.Data).Info("server inform")
	if c.onInform != nil {
		c.onInform(msg.Data)
	}
}

// receive waits for the next message. Cancelling ctx closes the connection,
// which is the only way to interrupt a blocked receive.
func (c *Client) receive(ctx context.Context) (protocol.Message, error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.conn.Close()
		case <-done:
		}
	}()

	msg, err := c.conn.Receive()
	if err != nil {
		if ctx.Err() != nil {
			return protocol.Message{}, ctx.Err()
		}
		if errors.Is(err, protocol.ErrClosed) {
			return protocol.Message{}, fmt.Errorf("%w: %w", ErrServerClosed, err)
		}
		return protocol.Message{}, fmt.Errorf("receive: %w", err)
	}
	return msg, nil
}
