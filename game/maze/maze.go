package maze

import (
	"math/rand/v2"
	"strings"
)

// Exit describes the single opening in the outer boundary.
type Exit struct {
	// Index of the boundary segment in [0, 2*(rows+cols)): top walls first,
	// then bottom, left and right.
	Index int `json:"index"`
	// Cell is the maze cell adjacent to the opening.
	Cell Cell `json:"cell"`
	// Side is the direction leading out of the maze from Cell.
	Side Direction `json:"side"`
}

// Maze is an immutable perfect maze with one exit.
type Maze struct {
	rows, cols int
	hWalls     [][]bool // (rows+1) x cols, true = wall present
	vWalls     [][]bool // rows x (cols+1)
	start      Cell
	exit       Exit
}

type options struct {
	rng      *rand.Rand
	start    *Cell
	min, max int
}

// Option customizes maze generation.
type Option func(*options)

// WithSeed makes generation reproducible.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	}
}

// WithRand injects the random source used for carving and exit placement.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rng = r
	}
}

// WithStart fixes the cell the carving starts from.
func WithStart(c Cell) Option {
	return func(o *options) {
		o.start = &c
	}
}

// WithBounds overrides the [MinDimension, MaxDimension] limits.
func WithBounds(min, max int) Option {
	return func(o *options) {
		o.min, o.max = min, max
	}
}

// New generates a rows x cols perfect maze and opens one random boundary segment.
func New(rows, cols int, opts ...Option) (*Maze, error) {
	o := options{min: MinDimension, max: MaxDimension}
	for _, opt := range opts {
		opt(&o)
	}
	if rows < o.min || cols < o.min || rows > o.max || cols > o.max {
		return nil, &DimensionError{Rows: rows, Cols: cols, Min: o.min, Max: o.max}
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	m := &Maze{
		rows:   rows,
		cols:   cols,
		hWalls: newGrid(rows+1, cols),
		vWalls: newGrid(rows, cols+1),
	}

	start := Cell{Row: o.rng.IntN(rows), Col: o.rng.IntN(cols)}
	if o.start != nil {
		if !m.InBounds(*o.start) {
			return nil, &BoundsError{Cell: *o.start, Rows: rows, Cols: cols}
		}
		start = *o.start
	}
	m.start = start

	m.carve(start, o.rng)
	m.exit = m.openExit(o.rng.IntN(2 * (rows + cols)))
	return m, nil
}

func newGrid(rows, cols int) [][]bool {
	grid := make([][]bool, rows)
	for r := range grid {
		grid[r] = make([]bool, cols)
		for c := range grid[r] {
			grid[r][c] = true
		}
	}
	return grid
}

// carve runs the iterative backtracker from start.
func (m *Maze) carve(start Cell, rng *rand.Rand) {
	visited := make([][]bool, m.rows)
	for r := range visited {
		visited[r] = make([]bool, m.cols)
	}

	stack := []Cell{start}
	visited[start.Row][start.Col] = true
	neighbours := make([]Direction, 0, 4)

	for len(stack) > 0 {
		current := stack[len(stack)-1]

		neighbours = neighbours[:0]
		for _, d := range Directions {
			n := current.Step(d)
			if m.InBounds(n) && !visited[n.Row][n.Col] {
				neighbours = append(neighbours, d)
			}
		}

		if len(neighbours) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		d := neighbours[rng.IntN(len(neighbours))]
		m.setWall(current, d, false)
		next := current.Step(d)
		visited[next.Row][next.Col] = true
		stack = append(stack, next)
	}
}

// openExit clears boundary segment n and reports where it is.
func (m *Maze) openExit(n int) Exit {
	var exit Exit
	switch {
	case n < m.cols:
		exit = Exit{Cell: Cell{Row: 0, Col: n}, Side: Up}
	case n < 2*m.cols:
		exit = Exit{Cell: Cell{Row: m.rows - 1, Col: n - m.cols}, Side: Down}
	case n < 2*m.cols+m.rows:
		exit = Exit{Cell: Cell{Row: n - 2*m.cols, Col: 0}, Side: Left}
	default:
		exit = Exit{Cell: Cell{Row: n - 2*m.cols - m.rows, Col: m.cols - 1}, Side: Right}
	}
	exit.Index = n
	m.setWall(exit.Cell, exit.Side, false)
	return exit
}

func (m *Maze) setWall(c Cell, d Direction, present bool) {
	switch d {
	case Up:
		m.hWalls[c.Row][c.Col] = present
	case Down:
		m.hWalls[c.Row+1][c.Col] = present
	case Left:
		m.vWalls[c.Row][c.Col] = present
	case Right:
		m.vWalls[c.Row][c.Col+1] = present
	}
}

// IsWall reports whether the side d of cell c is blocked.
func (m *Maze) IsWall(c Cell, d Direction) (bool, error) {
	if !m.InBounds(c) {
		return false, &BoundsError{Cell: c, Rows: m.rows, Cols: m.cols}
	}
	switch d {
	case Up:
		return m.hWalls[c.Row][c.Col], nil
	case Down:
		return m.hWalls[c.Row+1][c.Col], nil
	case Left:
		return m.vWalls[c.Row][c.Col], nil
	case Right:
		return m.vWalls[c.Row][c.Col+1], nil
	}
	return true, nil
}

// InBounds reports whether c lies inside the maze.
func (m *Maze) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < m.rows && c.Col >= 0 && c.Col < m.cols
}

func (m *Maze) Rows() int { return m.rows }

func (m *Maze) Cols() int { return m.cols }

// Start returns the cell carving started from.
func (m *Maze) Start() Cell { return m.start }

func (m *Maze) Exit() Exit { return m.exit }

// OpenBoundaries counts boundary segments without a wall.
func (m *Maze) OpenBoundaries() int {
	open := 0
	for c := 0; c < m.cols; c++ {
		if !m.hWalls[0][c] {
			open++
		}
		if !m.hWalls[m.rows][c] {
			open++
		}
	}
	for r := 0; r < m.rows; r++ {
		if !m.vWalls[r][0] {
			open++
		}
		if !m.vWalls[r][m.cols] {
			open++
		}
	}
	return open
}

// RemovedInteriorWalls counts interior wall segments that were carved away.
func (m *Maze) RemovedInteriorWalls() int {
	removed := 0
	for r := 1; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			if !m.hWalls[r][c] {
				removed++
			}
		}
	}
	for r := 0; r < m.rows; r++ {
		for c := 1; c < m.cols; c++ {
			if !m.vWalls[r][c] {
				removed++
			}
		}
	}
	return removed
}

// String draws the maze with '+', '-' and '|'.
func (m *Maze) String() string {
	var b strings.Builder
	for r := 0; r <= m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			b.WriteByte('+')
			if m.hWalls[r][c] {
				b.WriteByte('-')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString("+\n")
		if r == m.rows {
			break
		}
		for c := 0; c <= m.cols; c++ {
			if m.vWalls[r][c] {
				b.WriteByte('|')
			} else {
				b.WriteByte(' ')
			}
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	return b.String()
}
