package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/wricardo/fogmaze/game/engine"
	"github.com/wricardo/fogmaze/game/protocol"
	"github.com/wricardo/fogmaze/game/service"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrHandshake       = errors.New("handshake failed")
)

const (
	DefaultMaxSessions  = 3
	MaxSessionsLimit    = 6
	DefaultPollInterval = 2 * time.Second
)

// EngineFactory creates the engine for one new session.
type EngineFactory func() (engine.Engine, error)

// Config configures a Manager. Zero values select the defaults.
type Config struct {
	MaxSessions  int
	PollInterval time.Duration
	Factory      EngineFactory
	Logger       log.FieldLogger
	// Port is only reported through Info.
	Port int
}

// Manager handles connection lifecycle and the session roster
type Manager struct {
	cfg       Config
	log       log.FieldLogger
	startedAt time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	seq      int

	workers sync.WaitGroup
}

// NewManager creates a new session manager
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	switch {
	case cfg.MaxSessions == 0:
		cfg.MaxSessions = DefaultMaxSessions
	case cfg.MaxSessions < 1:
		cfg.MaxSessions = 1
	case cfg.MaxSessions > MaxSessionsLimit:
		cfg.MaxSessions = MaxSessionsLimit
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Factory == nil {
		cfg.Factory = func() (engine.Engine, error) {
			return engine.NewEngine(engine.DefaultConfig())
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.StandardLogger()
	}

	return &Manager{
		cfg:       cfg,
		log:       cfg.Logger,
		startedAt: time.Now(),
		sessions:  make(map[string]*Session),
	}, nil
}

// Serve accepts connections from l until ctx is cancelled or l is closed.
// While the roster is full it polls every PollInterval instead of accepting,
// so new arrivals wait rather than being rejected.
func (m *Manager) Serve(ctx context.Context, l Listener) error {
	m.log.WithFields(log.Fields{
		"addr":         l.Addr(),
		"max_sessions": m.cfg.MaxSessions,
	}).Info("accepting connections")

	poll := time.NewTicker(m.cfg.PollInterval)
	defer poll.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		if m.Count() >= m.cfg.MaxSessions {
			select {
			case <-ctx.Done():
				return nil
			case <-poll.C:
			}
			continue
		}

		conn, err := l.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, protocol.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		s := m.register(conn)
		m.log.WithFields(log.Fields{"session": s.Name(), "remote": s.RemoteAddr}).Info("connection accepted")

		m.workers.Add(1)
		go func() {
			defer m.workers.Done()
			m.run(s)
		}()
	}
}

// Wait blocks until every session goroutine has returned.
func (m *Manager) Wait() {
	m.workers.Wait()
}

func (m *Manager) register(conn protocol.Conn) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	s := newSession(m.seq, conn)
	m.sessions[s.ID] = s
	return s
}

func (m *Manager) unregister(s *Session) {
	m.mu.Lock()
	delete(m.sessions, s.ID)
	m.mu.Unlock()
}

// run serves one connection until END, a transport fault or a forced
// disconnect. Failures never leave this goroutine.
func (m *Manager) run(s *Session) {
	logger := m.log.WithField("session", s.Name())
	defer func() {
		m.unregister(s)
		s.conn.Close()
		if eng := s.Engine(); eng != nil {
			eng.Disconnect()
		}
		logger.Info("session closed")
	}()

	if err := m.handshake(s); err != nil {
		logger.WithError(err).Warn("handshake rejected")
		return
	}
	logger = m.log.WithField("session", s.Name())
	logger.Info("game started")

	eng := s.Engine()
	for {
		msg, err := s.conn.Receive()
		if err != nil {
			if s.isClosing() {
				logger.Debug("receive ended by disconnect")
			} else {
				logger.WithError(err).Warn("session fault")
			}
			return
		}
		s.touch()

		entry := logger.WithFields(log.Fields{"msg_id": msg.ID, "type": msg.Type.String()})
		switch msg.Type {
		case protocol.Request:
			before := eng.State()
			answer := eng.Answer(msg)
			entry.WithField("answer", answer.Data).Debug("request answered")
			if err := s.send(answer); err != nil {
				entry.WithError(err).Warn("session fault")
				return
			}
			if before == engine.Active && eng.State() == engine.Exited {
				entry.Info("exit found")
				if text := eng.ExitMessage(); text != "" {
					if err := s.send(protocol.NewInform(text)); err != nil {
						entry.WithError(err).Warn("session fault")
						return
					}
				}
			}
		case protocol.Inform:
			entry.WithField("data", msg.Data).Info("client inform")
		case protocol.End:
			entry.Info("client ended session")
			return
		default:
			entry.Warn("unexpected message ignored")
		}
	}
}

// handshake expects START as the first message. On success the session is
// bound to a new engine and the START is answered; otherwise END is sent.
func (m *Manager) handshake(s *Session) error {
	msg, err := s.conn.Receive()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	if msg.Type != protocol.Start {
		s.send(protocol.NewEnd())
		return fmt.Errorf("%w: first message was %s", ErrHandshake, msg.Type)
	}

	eng, err := m.cfg.Factory()
	if err != nil {
		s.send(protocol.NewEnd())
		return fmt.Errorf("%w: create engine: %w", ErrHandshake, err)
	}
	s.start(msg.Data, eng)
	s.touch()

	if err := s.send(msg.Answer(protocol.StartAccepted)); err != nil {
		return fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	if text := eng.Welcome(); text != "" {
		if err := s.send(protocol.NewInform(text)); err != nil {
			return fmt.Errorf("%w: %w", ErrHandshake, err)
		}
	}
	return nil
}

// lookup finds a session by name or ID.
func (m *Manager) lookup(name string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[name]; ok {
		return s, nil
	}
	for _, s := range m.sessions {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, ErrSessionNotFound
}

// snapshot returns the roster ordered by sequence number.
func (m *Manager) snapshot() []*Session {
	m.mu.RLock()
	result := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		result = append(result, s)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].Seq < result[j].Seq })
	return result
}

// List returns all active sessions
func (m *Manager) List() []*service.SessionInfo {
	sessions := m.snapshot()
	result := make([]*service.SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		result = append(result, s.Info())
	}
	return result
}

// Get retrieves a session by name or ID
func (m *Manager) Get(name string) (*service.SessionInfo, error) {
	s, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	return s.Info(), nil
}

// History returns the move history of a session
func (m *Manager) History(name string) ([]engine.MoveHistoryEntry, error) {
	s, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	eng := s.Engine()
	if eng == nil {
		return []engine.MoveHistoryEntry{}, nil
	}
	return eng.GetMoveHistory(), nil
}

// Disconnect sends END to the named session, closes its connection and
// releases its slot.
func (m *Manager) Disconnect(name string) error {
	s, err := m.lookup(name)
	if err != nil {
		return err
	}
	_, err = m.disconnect(s)
	return err
}

// disconnect ends s and reports whether this call did it. A session another
// caller is already ending is left alone.
func (m *Manager) disconnect(s *Session) (bool, error) {
	if s.markClosing() {
		return false, nil
	}
	sendErr := s.send(protocol.NewEnd())
	s.conn.Close()
	m.unregister(s)
	if eng := s.Engine(); eng != nil {
		eng.Disconnect()
	}
	m.log.WithField("session", s.Name()).Info("session disconnected")
	return true, sendErr
}

// DisconnectAll disconnects every session. Send failures are collected,
// they do not stop the remaining disconnects.
func (m *Manager) DisconnectAll() error {
	var err error
	for _, s := range m.snapshot() {
		_, sendErr := m.disconnect(s)
		err = multierr.Append(err, sendErr)
	}
	return err
}

// DisconnectIdle disconnects sessions with no traffic for maxIdle and
// returns how many were removed.
func (m *Manager) DisconnectIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for _, s := range m.snapshot() {
		if !s.idleSince(cutoff) {
			continue
		}
		closed, err := m.disconnect(s)
		if err != nil {
			m.log.WithError(err).WithField("session", s.Name()).Debug("idle disconnect")
		}
		if closed {
			removed++
		}
	}
	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// MaxSessions returns the clamped session limit.
func (m *Manager) MaxSessions() int {
	return m.cfg.MaxSessions
}

// Info describes the server for operators.
func (m *Manager) Info() service.ServerInfo {
	return service.ServerInfo{
		Port:           m.cfg.Port,
		MaxSessions:    m.cfg.MaxSessions,
		ActiveSessions: m.Count(),
		StartedAt:      m.startedAt,
	}
}

var _ service.SessionDirectory = (*Manager)(nil)
