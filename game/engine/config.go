package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/wricardo/fogmaze/game/maze"
)

var ErrInvalidConfig = errors.New("invalid game config")

// DefaultRows and DefaultCols size the built-in preset.
const (
	DefaultRows = 10
	DefaultCols = 10
)

// DefaultConfig returns the preset used when nothing else is configured.
func DefaultConfig() *GameConfig {
	cfg := &GameConfig{
		Name:        "default",
		Description: "Fixed 10x10 maze with a random start",
		Rows:        DefaultRows,
		Cols:        DefaultCols,
	}
	cfg.Messages.Welcome = "Find the way out. You can only see where you have been."
	cfg.Messages.ExitFound = "You found the exit!"
	return cfg
}

// ValidateGameConfig validates a game configuration
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if config.Rows < maze.MinDimension || config.Rows > maze.MaxDimension {
		return fmt.Errorf("%w: rows must be between %d and %d, got %d",
			ErrInvalidConfig, maze.MinDimension, maze.MaxDimension, config.Rows)
	}
	if config.Cols < maze.MinDimension || config.Cols > maze.MaxDimension {
		return fmt.Errorf("%w: cols must be between %d and %d, got %d",
			ErrInvalidConfig, maze.MinDimension, maze.MaxDimension, config.Cols)
	}
	return nil
}

// Dimensions returns the maze size for one session. With RandomSize each
// dimension is drawn from [max/2, max], clamped to maze.MinDimension.
func (c *GameConfig) Dimensions(rng *rand.Rand) (rows, cols int) {
	if !c.RandomSize {
		return c.Rows, c.Cols
	}
	return randomDimension(rng, c.Rows), randomDimension(rng, c.Cols)
}

func randomDimension(rng *rand.Rand, limit int) int {
	low := limit / 2
	if low < maze.MinDimension {
		low = maze.MinDimension
	}
	if low >= limit {
		return limit
	}
	return low + rng.IntN(limit-low+1)
}

// rngFor returns the random source for one engine: seeded when the preset
// carries a seed, fresh otherwise.
func rngFor(c *GameConfig) *rand.Rand {
	if c.Seed != nil {
		seed := uint64(*c.Seed)
		return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
