package maze

import (
	"errors"
	"fmt"
)

var (
	ErrDimension   = errors.New("maze dimensions out of limits")
	ErrOutOfBounds = errors.New("cell out of maze bounds")
)

// DimensionError is returned by New when rows or cols fall outside [Min, Max].
type DimensionError struct {
	Rows, Cols int
	Min, Max   int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("maze dimensions %dx%d are out of limits (%d-%d)", e.Rows, e.Cols, e.Min, e.Max)
}

func (e *DimensionError) Is(target error) bool {
	return target == ErrDimension
}

// BoundsError is returned by wall lookups for cells outside the maze.
type BoundsError struct {
	Cell       Cell
	Rows, Cols int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("cell %s out of maze bounds %dx%d", e.Cell, e.Rows, e.Cols)
}

func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}
