package validate

import (
	"fmt"

	"github.com/wricardo/fogmaze/game/maze"
)

// Analysis summarizes the shape of one generated maze.
type Analysis struct {
	Rows, Cols int
	Start      maze.Cell
	Exit       maze.Exit
	// Reachable counts cells reachable from Start.
	Reachable int
	// PathLength is the number of moves on the shortest way out, including
	// the final step through the opening. Zero when the exit is unreachable.
	PathLength int
	// DeadEnds counts cells with a single open side.
	DeadEnds       int
	OpenBoundaries int
}

// Analyze walks m breadth-first from its start cell.
func Analyze(m *maze.Maze) Analysis {
	a := Analysis{
		Rows:           m.Rows(),
		Cols:           m.Cols(),
		Start:          m.Start(),
		Exit:           m.Exit(),
		OpenBoundaries: m.OpenBoundaries(),
	}

	dist := map[maze.Cell]int{a.Start: 0}
	queue := []maze.Cell{a.Start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range maze.Directions {
			next := current.Step(d)
			if !m.InBounds(next) {
				continue
			}
			if wall, _ := m.IsWall(current, d); wall {
				continue
			}
			if _, seen := dist[next]; !seen {
				dist[next] = dist[current] + 1
				queue = append(queue, next)
			}
		}
	}
	a.Reachable = len(dist)
	if d, ok := dist[a.Exit.Cell]; ok {
		a.PathLength = d + 1
	}

	for r := 0; r < a.Rows; r++ {
		for c := 0; c < a.Cols; c++ {
			cell := maze.Cell{Row: r, Col: c}
			open := 0
			for _, d := range maze.Directions {
				if wall, _ := m.IsWall(cell, d); !wall {
					open++
				}
			}
			if open == 1 {
				a.DeadEnds++
			}
		}
	}
	return a
}

// Check reports a maze that is not a perfect maze with one way out.
func (a Analysis) Check() error {
	if total := a.Rows * a.Cols; a.Reachable != total {
		return fmt.Errorf("connectivity failure: %d/%d cells reachable from %s", a.Reachable, total, a.Start)
	}
	if a.OpenBoundaries != 1 {
		return fmt.Errorf("expected one opening in the outer wall, found %d", a.OpenBoundaries)
	}
	if a.PathLength == 0 {
		return fmt.Errorf("exit at %s is unreachable from %s", a.Exit.Cell, a.Start)
	}
	return nil
}
