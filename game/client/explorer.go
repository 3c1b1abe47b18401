package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/wricardo/fogmaze/game/maze"
	"github.com/wricardo/fogmaze/game/protocol"
)

var (
	ErrNoExit    = errors.New("explored every reachable cell without finding the exit")
	ErrMoveLimit = errors.New("move limit reached")
)

// Mover is the part of Client the Explorer needs.
type Mover interface {
	Move(ctx context.Context, d maze.Direction) (Event, error)
	Model() *Model
}

// Explorer walks the maze depth first using only what the model has
// learned. An unknown edge towards an already visited cell is never probed:
// in a perfect maze it can only be a wall.
type Explorer struct {
	mover    Mover
	maxMoves int
	onStep   func(Event)
}

// ExplorerOption customizes an Explorer.
type ExplorerOption func(*Explorer)

// WithMaxMoves caps the number of move requests. Zero means no cap.
func WithMaxMoves(n int) ExplorerOption {
	return func(e *Explorer) { e.maxMoves = n }
}

// WithStepHandler is called after every answered move.
func WithStepHandler(fn func(Event)) ExplorerOption {
	return func(e *Explorer) { e.onStep = fn }
}

func NewExplorer(m Mover, opts ...ExplorerOption) *Explorer {
	e := &Explorer{mover: m}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run explores until the exit is found and returns the number of moves used.
func (e *Explorer) Run(ctx context.Context) (int, error) {
	model := e.mover.Model()
	var path []maze.Direction
	moves := 0

	move := func(d maze.Direction) (Event, error) {
		if e.maxMoves > 0 && moves >= e.maxMoves {
			return Event{}, ErrMoveLimit
		}
		ev, err := e.mover.Move(ctx, d)
		if err != nil {
			return Event{}, err
		}
		moves++
		if e.onStep != nil {
			e.onStep(ev)
		}
		return ev, nil
	}

	for !model.Exited() {
		if err := ctx.Err(); err != nil {
			return moves, err
		}

		d, ok := e.nextProbe(model)
		if !ok {
			if len(path) == 0 {
				return moves, ErrNoExit
			}
			back := path[len(path)-1].Opposite()
			path = path[:len(path)-1]
			ev, err := move(back)
			if err != nil {
				return moves, err
			}
			if ev.Code != protocol.CodeYes {
				return moves, fmt.Errorf("backtrack %s answered %q", back, ev.Code)
			}
			continue
		}

		ev, err := move(d)
		if err != nil {
			return moves, err
		}
		switch ev.Code {
		case protocol.CodeYes:
			path = append(path, d)
		case protocol.CodeStopped:
			return moves, ErrServerClosed
		}
	}
	return moves, nil
}

func (e *Explorer) nextProbe(model *Model) (maze.Direction, bool) {
	pos := model.Position()
	for _, d := range maze.Directions {
		if model.Wall(pos, d) == WallUnknown && !model.Visited(pos.Step(d)) {
			return d, true
		}
	}
	return 0, false
}
