// Package engine provides the per-player game logic for fogmaze.
//
// A GameEngine owns one generated maze and one player position. It resolves
// move requests against the hidden wall grid and encodes each outcome as a
// protocol answer. Engines never share state, so every connection gets its
// own.
//
// Core Types:
//
// GameConfig describes how mazes are generated (size, randomness, messages)
// and is usually loaded from a JSON preset. GameEngine implements Engine and
// moves through the states Active, Exited and Disconnected.
//
// Usage:
//
//	cfg := engine.DefaultConfig()
//	gameEngine, err := engine.NewEngine(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	req := protocol.NewRequest(protocol.MoveRequest(maze.Up))
//	answer := gameEngine.Answer(req) // "move up=yes", "move up=no", ...
//
// Game Rules:
//
// The player starts on a random cell. A move either walks through an open
// side into the neighbouring cell, bumps into a wall, or leaves the maze
// through the single exit. Leaving the maze is terminal: every later move is
// answered with "stopped".
package engine
