package events

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidMessage is returned for a message without an id or kind.
var ErrInvalidMessage = errors.New("invalid mutation message")

// Message announces that a client changed data through the API. It carries no
// payload: receivers refetch what they show.
type Message struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a fresh id.
func NewMessage(kind, source string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Kind:      kind,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON decodes and checks a message.
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" || msg.Kind == "" {
		return nil, ErrInvalidMessage
	}
	return &msg, nil
}
