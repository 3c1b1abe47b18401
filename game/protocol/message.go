// Package protocol defines the message envelope exchanged between fogmaze
// clients and the server, the textual move codec carried in message data,
// and the abstract connection both sides talk through.
//
// Every message gets an identifier from one process-wide counter when it is
// created. An ANSWER never allocates its own identifier: it copies the id of
// the message it replies to, which is the only correlation mechanism.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
)

// Type tags a message.
type Type int

const (
	// Start is the first client message. Data is the client's display name.
	Start Type = iota
	// Request expects an Answer with the same id.
	Request
	// Answer carries the id of the request it answers.
	Answer
	// Inform needs no reply.
	Inform
	// End terminates the session, from either side.
	End
)

var typeNames = [...]string{"START", "REQUEST", "ANSWER", "INFORM", "END"}

func (t Type) String() string {
	if t < Start || t > End {
		return fmt.Sprintf("TYPE(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType converts a type name back into a Type.
func ParseType(s string) (Type, error) {
	for i, name := range typeNames {
		if strings.EqualFold(s, name) {
			return Type(i), nil
		}
	}
	return 0, fmt.Errorf("unknown message type %q", s)
}

func (t Type) MarshalText() ([]byte, error) {
	if t < Start || t > End {
		return nil, fmt.Errorf("unknown message type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Message is the wire envelope.
type Message struct {
	ID   int64  `json:"id"`
	Type Type   `json:"type"`
	Data string `json:"data"`
}

var lastID atomic.Int64

// New creates a message with a fresh id.
func New(t Type, data string) Message {
	return Message{ID: lastID.Add(1), Type: t, Data: data}
}

// NewStart creates the handshake message.
func NewStart(name string) Message { return New(Start, name) }

// NewRequest creates a request expecting an answer.
func NewRequest(data string) Message { return New(Request, data) }

// NewInform creates a fire-and-forget message.
func NewInform(data string) Message { return New(Inform, data) }

// NewEnd creates a session terminating message.
func NewEnd() Message { return New(End, "") }

// Answer builds the reply to m, reusing m's id.
func (m Message) Answer(data string) Message {
	return Message{ID: m.ID, Type: Answer, Data: data}
}

func (m Message) String() string {
	return fmt.Sprintf("type=%s id=%d %s", m.Type, m.ID, m.Data)
}

// Encode marshals m as a JSON envelope.
func Encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}

// Decode parses a JSON envelope.
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	return m, nil
}
