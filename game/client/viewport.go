package client

import "github.com/wricardo/fogmaze/game/maze"

// DefaultViewportSize is the side of the visible window in cells.
const DefaultViewportSize = 5

// Viewport is a fixed Size x Size window over the explored area. Origin is
// the world cell drawn in the top-left corner.
type Viewport struct {
	Size   int       `json:"size"`
	Origin maze.Cell `json:"origin"`
}

// NewViewport returns a viewport with center in its middle cell.
func NewViewport(size int, center maze.Cell) Viewport {
	if size < 1 {
		size = DefaultViewportSize
	}
	return Viewport{
		Size:   size,
		Origin: maze.Cell{Row: center.Row - size/2, Col: center.Col - size/2},
	}
}

// Follow shifts the origin one cell at a time until pos is inside the
// window, and reports whether it moved.
func (v *Viewport) Follow(pos maze.Cell) bool {
	moved := false
	for pos.Row < v.Origin.Row {
		v.Origin.Row--
		moved = true
	}
	for pos.Row >= v.Origin.Row+v.Size {
		v.Origin.Row++
		moved = true
	}
	for pos.Col < v.Origin.Col {
		v.Origin.Col--
		moved = true
	}
	for pos.Col >= v.Origin.Col+v.Size {
		v.Origin.Col++
		moved = true
	}
	return moved
}

func (v Viewport) Contains(c maze.Cell) bool {
	return c.Row >= v.Origin.Row && c.Row < v.Origin.Row+v.Size &&
		c.Col >= v.Origin.Col && c.Col < v.Origin.Col+v.Size
}

// ToScreen converts a world cell to window coordinates.
func (v Viewport) ToScreen(c maze.Cell) (row, col int, ok bool) {
	return c.Row - v.Origin.Row, c.Col - v.Origin.Col, v.Contains(c)
}

// ToWorld converts window coordinates back to a world cell.
func (v Viewport) ToWorld(row, col int) maze.Cell {
	return maze.Cell{Row: row + v.Origin.Row, Col: col + v.Origin.Col}
}

// Offset returns what is added to world coordinates to get screen ones.
func (v Viewport) Offset() (addRow, addCol int) {
	return -v.Origin.Row, -v.Origin.Col
}
