package engine

import (
	"github.com/wricardo/fogmaze/game/maze"
	"github.com/wricardo/fogmaze/game/protocol"
)

// State of a player session.
type State int

const (
	Active State = iota
	Exited
	Disconnected
)

// Status strings reported to operators.
const (
	StatusNotStarted   = "Connected, not started"
	StatusStarted      = "Game started"
	StatusExitFound    = "Exit found"
	StatusDisconnected = "Disconnected"
)

func (s State) String() string {
	switch s {
	case Active:
		return StatusStarted
	case Exited:
		return StatusExitFound
	case Disconnected:
		return StatusDisconnected
	}
	return "unknown"
}

// Terminal reports whether no further moves can change the state.
func (s State) Terminal() bool {
	return s != Active
}

// Outcome of resolving one move.
type Outcome int

const (
	Moved Outcome = iota
	Blocked
	OutcomeExited
	AlreadyStopped
)

// Code maps the outcome onto the answer code sent to the client.
func (o Outcome) Code() protocol.Code {
	switch o {
	case Moved:
		return protocol.CodeYes
	case Blocked:
		return protocol.CodeNo
	case OutcomeExited:
		return protocol.CodeExit
	}
	return protocol.CodeStopped
}

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case Blocked:
		return "blocked"
	case OutcomeExited:
		return "exited"
	}
	return "already stopped"
}

// GameConfig represents a maze preset, usually loaded from JSON.
type GameConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	// RandomSize picks each dimension uniformly from [max/2, max], never
	// below maze.MinDimension.
	RandomSize bool `json:"random_size"`
	// Seed makes every maze generated from this preset identical.
	Seed     *int64 `json:"seed,omitempty"`
	Messages struct {
		Welcome   string `json:"welcome"`
		ExitFound string `json:"exit_found"`
	} `json:"messages"`
}

// MoveHistoryEntry represents a single resolved move.
type MoveHistoryEntry struct {
	Action       string    `json:"action"`
	FromPosition maze.Cell `json:"from_position"`
	ToPosition   maze.Cell `json:"to_position"`
	Outcome      string    `json:"outcome"`
	Timestamp    int64     `json:"timestamp"`
	MoveNumber   int       `json:"move_number"`
}

// Stats is a point-in-time summary used by the admin surface.
type Stats struct {
	Rows     int       `json:"rows"`
	Cols     int       `json:"cols"`
	Position maze.Cell `json:"position"`
	Moves    int       `json:"moves"`
	State    string    `json:"state"`
}
