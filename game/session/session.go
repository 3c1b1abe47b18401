package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/fogmaze/game/engine"
	"github.com/wricardo/fogmaze/game/protocol"
	"github.com/wricardo/fogmaze/game/service"
)

// Session is one accepted connection and, after the handshake, its engine.
type Session struct {
	ID          string
	Seq         int
	RemoteAddr  string
	ConnectedAt time.Time

	conn   protocol.Conn
	sendMu sync.Mutex

	mu         sync.RWMutex
	label      string
	engine     engine.Engine
	lastActive time.Time
	closing    bool
}

func newSession(seq int, conn protocol.Conn) *Session {
	now := time.Now()
	s := &Session{
		ID:          uuid.NewString(),
		Seq:         seq,
		ConnectedAt: now,
		conn:        conn,
		lastActive:  now,
	}
	if ra, ok := conn.(interface{ RemoteAddr() string }); ok {
		s.RemoteAddr = ra.RemoteAddr()
	}
	return s
}

// Name is "#n", suffixed with the client's label once it is known.
func (s *Session) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sessionName(s.Seq, s.label)
}

func sessionName(seq int, label string) string {
	if label == "" {
		return fmt.Sprintf("#%d", seq)
	}
	return fmt.Sprintf("#%d %s", seq, label)
}

// Status returns the operator facing status string.
func (s *Session) Status() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.engine == nil {
		return engine.StatusNotStarted
	}
	return s.engine.Status()
}

// Engine returns the bound engine, nil before the handshake.
func (s *Session) Engine() engine.Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// send writes one message. At most one writer uses the connection at a time.
func (s *Session) send(m protocol.Message) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := s.conn.Send(m); err != nil {
		return fmt.Errorf("send %s: %w", m.Type, err)
	}
	return nil
}

func (s *Session) start(label string, eng engine.Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
	s.engine = eng
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive.Before(cutoff)
}

// markClosing records that the server is ending the session and reports
// whether it was already closing.
func (s *Session) markClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.closing
	s.closing = true
	return was
}

func (s *Session) isClosing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closing
}

// Info returns a snapshot for the admin surface.
func (s *Session) Info() *service.SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := &service.SessionInfo{
		ID:           s.ID,
		Name:         sessionName(s.Seq, s.label),
		Label:        s.label,
		Status:       engine.StatusNotStarted,
		Alive:        !s.closing,
		RemoteAddr:   s.RemoteAddr,
		ConnectedAt:  s.ConnectedAt,
		LastActiveAt: s.lastActive,
	}
	if s.engine != nil {
		info.Status = s.engine.Status()
		stats := s.engine.Stats()
		info.Stats = &stats
	}
	return info
}
