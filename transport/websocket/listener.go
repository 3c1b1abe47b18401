package websocket

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/fogmaze/game/protocol"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// game clients are not browsers tied to one origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Listener turns upgraded HTTP requests into connections for the session
// manager. It implements both http.Handler and session.Listener.
type Listener struct {
	addr  string
	log   log.FieldLogger
	opts  options
	conns chan *Conn
	done  chan struct{}
	once  sync.Once
}

// NewListener creates a listener reporting addr as its address. Options
// apply to every connection it hands out.
func NewListener(addr string, logger log.FieldLogger, opts ...Option) *Listener {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Listener{
		addr:  addr,
		log:   logger,
		opts:  buildOptions(opts),
		conns: make(chan *Conn),
		done:  make(chan struct{}),
	}
}

// ServeHTTP upgrades the request and waits until the connection is accepted.
// The connection keeps answering pings while it waits.
func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-l.done:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	conn := newConn(ws, l.log.WithField("remote", r.RemoteAddr), l.opts)

	select {
	case l.conns <- conn:
	case <-r.Context().Done():
		conn.Close()
	case <-l.done:
		conn.Close()
	}
}

func (l *Listener) Accept(ctx context.Context) (protocol.Conn, error) {
	select {
	case c := <-l.conns:
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.done:
		return nil, protocol.ErrClosed
	}
}

// Close stops accepting and releases any handler still waiting.
func (l *Listener) Close() error {
	l.once.Do(func() { close(l.done) })
	return nil
}

func (l *Listener) Addr() string { return l.addr }
