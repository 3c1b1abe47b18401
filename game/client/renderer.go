package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/wricardo/fogmaze/game/maze"
)

// Renderer draws frames produced by Model.Snapshot.
type Renderer interface {
	Render(View) error
}

// TextRenderer draws the viewport with ASCII characters: '-' and '|' for
// known walls, '?' for unknown edges, '@' for the player, '.' for cells not
// yet visited.
type TextRenderer struct {
	W io.Writer
}

func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{W: w}
}

func wallChar(w WallState, present byte) byte {
	switch w {
	case WallPresent:
		return present
	case WallAbsent:
		return ' '
	}
	return '?'
}

func (r *TextRenderer) Render(v View) error {
	var b strings.Builder
	size := v.Viewport.Size
	for row := 0; row <= size; row++ {
		// horizontal edges above row (below the last one for row == size)
		for col := 0; col < size; col++ {
			b.WriteByte('+')
			if row < size {
				b.WriteByte(wallChar(v.Cells[row][col].Walls[maze.Up], '-'))
			} else {
				b.WriteByte(wallChar(v.Cells[size-1][col].Walls[maze.Down], '-'))
			}
		}
		b.WriteString("+\n")
		if row == size {
			break
		}
		for col := 0; col < size; col++ {
			cell := v.Cells[row][col]
			b.WriteByte(wallChar(cell.Walls[maze.Left], '|'))
			switch {
			case cell.Player:
				b.WriteByte('@')
			case cell.Visited:
				b.WriteByte(' ')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte(wallChar(v.Cells[row][size-1].Walls[maze.Right], '|'))
		b.WriteByte('\n')
	}

	status := fmt.Sprintf("position %s  moves %d", v.Position, v.Moves)
	if v.Exited {
		status += "  EXIT FOUND"
	}
	b.WriteString(status + "\n")

	_, err := io.WriteString(r.W, b.String())
	return err
}
