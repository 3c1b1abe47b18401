package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/wricardo/fogmaze/game/maze"
	"github.com/wricardo/fogmaze/game/protocol"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Answer resolves a REQUEST and returns the correlated ANSWER.
	Answer(req protocol.Message) protocol.Message
	ResolveMove(d maze.Direction) Outcome
	Disconnect()

	State() State
	Status() string
	Position() maze.Cell
	Stats() Stats
	GetConfig() *GameConfig
	Welcome() string
	ExitMessage() string

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// GameEngine implements the Engine interface. The mutex only guards against
// operators reading state while the session loop resolves moves.
type GameEngine struct {
	mu      sync.RWMutex
	config  *GameConfig
	maze    *maze.Maze
	pos     maze.Cell
	state   State
	history []MoveHistoryEntry
}

// NewEngine generates a maze from config and places the player on the
// maze's start cell. Extra maze options override the preset's randomness.
func NewEngine(config *GameConfig, opts ...maze.Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	rng := rngFor(config)
	rows, cols := config.Dimensions(rng)
	m, err := maze.New(rows, cols, append([]maze.Option{maze.WithRand(rng)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("generate maze: %w", err)
	}

	return &GameEngine{config: config, maze: m, pos: m.Start()}, nil
}

// NewEngineWithMaze wraps an existing maze, starting the player at start.
func NewEngineWithMaze(m *maze.Maze, start maze.Cell) (*GameEngine, error) {
	if !m.InBounds(start) {
		return nil, &maze.BoundsError{Cell: start, Rows: m.Rows(), Cols: m.Cols()}
	}
	cfg := DefaultConfig()
	cfg.Rows, cfg.Cols = m.Rows(), m.Cols()
	return &GameEngine{config: cfg, maze: m, pos: start}, nil
}

// ResolveMove moves the player one cell in direction d if no wall is in the
// way. Once the session is terminal every call returns AlreadyStopped.
func (e *GameEngine) ResolveMove(d maze.Direction) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	from := e.pos
	outcome := e.resolve(d)
	e.addMoveToHistory(d, from, outcome)
	return outcome
}

func (e *GameEngine) resolve(d maze.Direction) Outcome {
	if e.state.Terminal() {
		return AlreadyStopped
	}

	wall, err := e.maze.IsWall(e.pos, d)
	if err != nil || wall {
		return Blocked
	}

	e.pos = e.pos.Step(d)
	if !e.maze.InBounds(e.pos) {
		e.state = Exited
		return OutcomeExited
	}
	return Moved
}

func (e *GameEngine) addMoveToHistory(d maze.Direction, from maze.Cell, outcome Outcome) {
	e.history = append(e.history, MoveHistoryEntry{
		Action:       d.String(),
		FromPosition: from,
		ToPosition:   e.pos,
		Outcome:      outcome.String(),
		Timestamp:    time.Now().Unix(),
		MoveNumber:   len(e.history) + 1,
	})
}

// Answer handles one REQUEST. Anything that is not a move request gets a
// "not recognized" answer and leaves the state alone.
func (e *GameEngine) Answer(req protocol.Message) protocol.Message {
	if req.Type != protocol.Request {
		return req.Answer(protocol.NotRecognized(req.Data))
	}
	d, ok := protocol.ParseMoveRequest(req.Data)
	if !ok {
		return req.Answer(protocol.NotRecognized(req.Data))
	}
	outcome := e.ResolveMove(d)
	return req.Answer(protocol.MoveAnswer(d, outcome.Code()))
}

// Disconnect ends the session from outside. An exited session stays Exited.
func (e *GameEngine) Disconnect() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Active {
		e.state = Disconnected
	}
}

func (e *GameEngine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Status returns the operator facing status string.
func (e *GameEngine) Status() string {
	return e.State().String()
}

// Position returns the player's cell. After exiting it lies just outside
// the maze, on the far side of the exit.
func (e *GameEngine) Position() maze.Cell {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.pos
}

// Maze returns the hidden maze.
func (e *GameEngine) Maze() *maze.Maze {
	return e.maze
}

func (e *GameEngine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Stats{
		Rows:     e.maze.Rows(),
		Cols:     e.maze.Cols(),
		Position: e.pos,
		Moves:    len(e.history),
		State:    e.state.String(),
	}
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetMoveHistory returns a copy of the move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]MoveHistoryEntry(nil), e.history...)
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.history) == 0 {
		return nil
	}
	last := e.history[len(e.history)-1]
	return &last
}

// Welcome returns the message sent to the client once the game starts.
func (e *GameEngine) Welcome() string {
	return e.config.Messages.Welcome
}

// ExitMessage returns the message sent to the client after it exits.
func (e *GameEngine) ExitMessage() string {
	return e.config.Messages.ExitFound
}
