package maze

import (
	"fmt"
	"strings"
)

// Dimension limits applied to both rows and cols.
const (
	MinDimension = 3
	MaxDimension = 100
)

// Cell is a (row, col) coordinate. Cells are comparable and can be used as map keys.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Less orders cells row-major.
func (c Cell) Less(other Cell) bool {
	if c.Row != other.Row {
		return c.Row < other.Row
	}
	return c.Col < other.Col
}

// Step returns the neighbouring cell in direction d.
func (c Cell) Step(d Direction) Cell {
	dr, dc := d.Delta()
	return Cell{Row: c.Row + dr, Col: c.Col + dc}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Direction is a move or wall side. The numbering follows the wall lookup
// convention: 0-up, 1-right, 2-down, 3-left.
type Direction int

const (
	Up Direction = iota
	Right
	Down
	Left
)

// Directions lists all directions in lookup order.
var Directions = [4]Direction{Up, Right, Down, Left}

var (
	directionNames   = [4]string{"up", "right", "down", "left"}
	directionAbbrevs = [4]string{"up", "rt", "dn", "lt"}
)

// Valid reports whether d is one of the four directions.
func (d Direction) Valid() bool {
	return d >= Up && d <= Left
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

// Delta returns the row and col offsets of a single step.
func (d Direction) Delta() (int, int) {
	switch d {
	case Up:
		return -1, 0
	case Right:
		return 0, 1
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	}
	return 0, 0
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// Abbrev returns the two-letter tag used in move answers: up, rt, dn, lt.
func (d Direction) Abbrev() string {
	if !d.Valid() {
		return "??"
	}
	return directionAbbrevs[d]
}

// ParseDirection accepts a full name ("down"), a two-letter tag ("dn") or a
// single letter ("d"), case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return Up, nil
	case "right", "rt", "r":
		return Right, nil
	case "down", "dn", "d":
		return Down, nil
	case "left", "lt", "l":
		return Left, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}
