package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wricardo/fogmaze/game/maze"
)

const (
	// StartAccepted is the data of the handshake answer.
	StartAccepted = "START accepted"
	// NotRecognizedPrefix starts the answer to any request that is not a move.
	NotRecognizedPrefix = "Request not recognized: "

	movePrefix = "move "
)

// Code is the outcome tag appended to a move answer.
type Code string

const (
	CodeYes     Code = "yes"
	CodeNo      Code = "no"
	CodeExit    Code = "exit"
	CodeStopped Code = "stopped"
)

var ErrNotMoveAnswer = errors.New("not a move answer")

// MoveRequest returns the request data for a move, e.g. "move down".
func MoveRequest(d maze.Direction) string {
	return movePrefix + d.String()
}

// ParseMoveRequest extracts the direction from request data. It accepts full
// names and two-letter tags.
func ParseMoveRequest(data string) (maze.Direction, bool) {
	if !strings.HasPrefix(data, movePrefix) {
		return 0, false
	}
	d, err := maze.ParseDirection(strings.TrimPrefix(data, movePrefix))
	if err != nil {
		return 0, false
	}
	return d, true
}

// MoveAnswer returns the answer data for a resolved move, e.g. "move dn=no".
func MoveAnswer(d maze.Direction, code Code) string {
	return movePrefix + d.Abbrev() + "=" + string(code)
}

// ParseMoveAnswer splits answer data into direction and outcome code.
func ParseMoveAnswer(data string) (maze.Direction, Code, error) {
	if !strings.HasPrefix(data, movePrefix) {
		return 0, "", fmt.Errorf("%w: %q", ErrNotMoveAnswer, data)
	}
	tag, code, ok := strings.Cut(strings.TrimPrefix(data, movePrefix), "=")
	if !ok {
		return 0, "", fmt.Errorf("%w: missing outcome in %q", ErrNotMoveAnswer, data)
	}
	d, err := maze.ParseDirection(tag)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrNotMoveAnswer, err)
	}
	switch c := Code(code); c {
	case CodeYes, CodeNo, CodeExit, CodeStopped:
		return d, c, nil
	}
	return 0, "", fmt.Errorf("%w: unknown outcome %q", ErrNotMoveAnswer, code)
}

// NotRecognized returns the answer data for an unrecognized request.
func NotRecognized(data string) string {
	return NotRecognizedPrefix + data
}
