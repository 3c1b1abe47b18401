// Package maze generates perfect mazes for fogmaze sessions.
//
// The maze package implements:
//   - Randomized depth-first carving with an explicit stack
//   - Single exit placement on the outer boundary
//   - Wall lookup per cell and direction
//   - Seedable randomness for reproducible mazes
//
// Core Types:
//
// Maze holds two wall grids. Horizontal walls are sized (rows+1) x cols and
// sit above and below each cell; vertical walls are sized rows x (cols+1) and
// sit left and right of each cell. Cell is a (row, col) coordinate and
// Direction is one of Up, Right, Down, Left.
//
// Usage:
//
//	m, err := maze.New(10, 12, maze.WithSeed(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	blocked, err := m.IsWall(maze.Cell{Row: 0, Col: 3}, maze.Up)
//
// Invariants:
//
// Every generated maze is a spanning tree of the grid graph: every cell is
// reachable, there are no cycles, and exactly rows*cols-1 interior walls are
// removed. Exactly one boundary wall segment is open. A maze is never
// modified after New returns.
package maze
