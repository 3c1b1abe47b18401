// Package client reconstructs a maze from move answers alone.
//
// The server never reveals its wall grid. A Model starts at relative cell
// (0,0) and learns one edge per answer: a successful move proves the edge
// open, a refused one proves a wall. Everything else stays unknown, which
// is never the same as open.
package client

import (
	"fmt"
	"sync"

	"github.com/wricardo/fogmaze/game/maze"
	"github.com/wricardo/fogmaze/game/protocol"
)

// WallState is what the client knows about one edge.
type WallState int

const (
	WallUnknown WallState = iota
	WallAbsent
	WallPresent
)

func (w WallState) String() string {
	switch w {
	case WallAbsent:
		return "absent"
	case WallPresent:
		return "present"
	}
	return "unknown"
}

// edge identifies a wall segment independently of which side probed it,
// using the same horizontal/vertical indexing as the server grid.
type edge struct {
	horizontal bool
	row, col   int
}

func edgeOf(c maze.Cell, d maze.Direction) edge {
	switch d {
	case maze.Down:
		return edge{horizontal: true, row: c.Row + 1, col: c.Col}
	case maze.Left:
		return edge{row: c.Row, col: c.Col}
	case maze.Right:
		return edge{row: c.Row, col: c.Col + 1}
	}
	return edge{horizontal: true, row: c.Row, col: c.Col}
}

// Event describes what one answer changed.
type Event struct {
	Direction maze.Direction `json:"direction"`
	Code      protocol.Code  `json:"code"`
	From      maze.Cell      `json:"from"`
	To        maze.Cell      `json:"to"`
	Scrolled  bool           `json:"scrolled"`
}

// Model is the client's knowledge of the maze. It only grows.
type Model struct {
	mu       sync.RWMutex
	walls    map[edge]bool
	visited  map[maze.Cell]bool
	pos      maze.Cell
	exited   bool
	moves    int
	viewport Viewport
}

// NewModel starts at (0,0) with the viewport centred on it.
func NewModel(viewportSize int) *Model {
	start := maze.Cell{}
	return &Model{
		walls:    make(map[edge]bool),
		visited:  map[maze.Cell]bool{start: true},
		pos:      start,
		viewport: NewViewport(viewportSize, start),
	}
}

// Apply records the outcome carried by a move ANSWER.
func (m *Model) Apply(answer protocol.Message) (Event, error) {
	if answer.Type != protocol.Answer {
		return Event{}, fmt.Errorf("%w: expected ANSWER, got %s", ErrUnexpectedMessage, answer.Type)
	}
	d, code, err := protocol.ParseMoveAnswer(answer.Data)
	if err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrUnexpectedMessage, err)
	}
	return m.ApplyOutcome(d, code), nil
}

// ApplyOutcome records one resolved move.
func (m *Model) ApplyOutcome(d maze.Direction, code protocol.Code) Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	ev := Event{Direction: d, Code: code, From: m.pos, To: m.pos}
	switch code {
	case protocol.CodeYes, protocol.CodeExit:
		m.walls[edgeOf(m.pos, d)] = false
		m.pos = m.pos.Step(d)
		m.visited[m.pos] = true
		m.moves++
		if code == protocol.CodeExit {
			m.exited = true
		}
	case protocol.CodeNo:
		m.walls[edgeOf(m.pos, d)] = true
		m.moves++
	}
	ev.To = m.pos
	ev.Scrolled = m.viewport.Follow(m.pos)
	return ev
}

// Wall reports what is known about side d of cell c.
func (m *Model) Wall(c maze.Cell, d maze.Direction) WallState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	present, ok := m.walls[edgeOf(c, d)]
	switch {
	case !ok:
		return WallUnknown
	case present:
		return WallPresent
	}
	return WallAbsent
}

// Visited reports whether the player has stood on c.
func (m *Model) Visited(c maze.Cell) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.visited[c]
}

func (m *Model) Position() maze.Cell {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pos
}

// Exited reports whether an answer said the player left the maze.
func (m *Model) Exited() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.exited
}

// Moves counts answered moves that were not "stopped".
func (m *Model) Moves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.moves
}

func (m *Model) Viewport() Viewport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viewport
}

// KnownEdges returns how many edges have been probed.
func (m *Model) KnownEdges() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.walls)
}

// CellView is one window cell as handed to a Renderer.
type CellView struct {
	World   maze.Cell    `json:"world"`
	Visited bool         `json:"visited"`
	Player  bool         `json:"player"`
	Walls   [4]WallState `json:"walls"` // indexed by maze.Direction
}

// View is everything a Renderer needs for one frame.
type View struct {
	Viewport Viewport     `json:"viewport"`
	Position maze.Cell    `json:"position"`
	Exited   bool         `json:"exited"`
	Moves    int          `json:"moves"`
	Cells    [][]CellView `json:"cells"`
}

// Snapshot builds the current frame.
func (m *Model) Snapshot() View {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v := m.viewport
	view := View{
		Viewport: v,
		Position: m.pos,
		Exited:   m.exited,
		Moves:    m.moves,
		Cells:    make([][]CellView, v.Size),
	}
	for r := 0; r < v.Size; r++ {
		view.Cells[r] = make([]CellView, v.Size)
		for c := 0; c < v.Size; c++ {
			world := v.ToWorld(r, c)
			cell := CellView{World: world, Visited: m.visited[world], Player: world == m.pos}
			for _, d := range maze.Directions {
				present, ok := m.walls[edgeOf(world, d)]
				switch {
				case !ok:
					cell.Walls[d] = WallUnknown
				case present:
					cell.Walls[d] = WallPresent
				default:
					cell.Walls[d] = WallAbsent
				}
			}
			view.Cells[r][c] = cell
		}
	}
	return view
}
