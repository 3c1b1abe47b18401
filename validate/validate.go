// Package validate lints maze preset files. For each file it checks:
//   - JSON structure, with unknown keys rejected so typos do not go unnoticed
//   - the name and dimensions accepted by the engine
//   - the welcome and exit_found messages
//   - a sample maze built from the preset: every cell reachable, the exit
//     reachable from the start, exactly one boundary opening
package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/multierr"

	"github.com/wricardo/fogmaze/game/engine"
	"github.com/wricardo/fogmaze/game/maze"
)

// Result captures the outcome of validating a single file. Info holds the
// facts reported for a valid preset.
type Result struct {
	File   string
	Valid  bool
	Errors []error
	Info   []string
}

// Err combines every problem found, or returns nil for a valid preset.
func (r Result) Err() error {
	return multierr.Combine(r.Errors...)
}

func (r *Result) fail(err error) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// File loads and validates one preset. seed fixes the sample maze for
// presets that do not carry their own seed.
func File(path string, seed int64) Result {
	result := Result{File: filepath.Base(path), Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail(fmt.Errorf("read file: %w", err))
		return result
	}

	var cfg engine.GameConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		result.fail(fmt.Errorf("invalid JSON: %w", err))
		return result
	}

	if err := engine.ValidateGameConfig(&cfg); err != nil {
		result.fail(err)
	}
	if cfg.Messages.Welcome == "" {
		result.fail(errors.New("missing message: welcome"))
	}
	if cfg.Messages.ExitFound == "" {
		result.fail(errors.New("missing message: exit_found"))
	}
	if !result.Valid {
		return result
	}

	var opts []maze.Option
	if cfg.Seed == nil {
		opts = append(opts, maze.WithSeed(seed))
	}
	e, err := engine.NewEngine(&cfg, opts...)
	if err != nil {
		result.fail(err)
		return result
	}
	a := Analyze(e.Maze())
	if err := a.Check(); err != nil {
		result.fail(err)
		return result
	}

	size := fmt.Sprintf("%dx%d", cfg.Rows, cfg.Cols)
	if cfg.RandomSize {
		size = fmt.Sprintf("up to %s (sample %dx%d)", size, a.Rows, a.Cols)
	}
	result.Info = append(result.Info,
		fmt.Sprintf("Name: %s", cfg.Name),
		fmt.Sprintf("Size: %s", size),
		fmt.Sprintf("Shortest way out: %d moves", a.PathLength),
		fmt.Sprintf("Dead ends: %d", a.DeadEnds),
	)
	return result
}

// Dir validates every *.json file in dir, sorted by name.
func Dir(dir string, seed int64) ([]Result, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	results := make([]Result, 0, len(files))
	for _, file := range files {
		results = append(results, File(file, seed))
	}
	return results, nil
}
