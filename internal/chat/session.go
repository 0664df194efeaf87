// Package chat holds the advisory conversation: confirmed history, the
// transcript shown to the user and the per-exchange state machine.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/finai-dev/finai/internal/model"
)

const (
	// PendingText is the placeholder shown while a reply is outstanding.
	PendingText = "Thinking..."
	// FallbackReply replaces a missing or empty reply.
	FallbackReply = "Sorry, I could not generate an answer."
	// ErrorText replaces the placeholder when an exchange fails.
	ErrorText = "Error talking to AI. Please try again."
	// Greeting is the transcript shown after a clear.
	Greeting = "Hi, I’m your finance assistant. You can ask things like “Where am I overspending?” or “How much can I safely spend this weekend?”."
)

var (
	// ErrEmptyMessage is returned by Begin for a blank message.
	ErrEmptyMessage = errors.New("message is required")
	// ErrDiscarded is returned when a reply arrives for an exchange that a Clear superseded.
	ErrDiscarded = errors.New("exchange discarded by clear")
)

// Request is the body sent to the advisor.
type Request struct {
	Message string              `json:"message"`
	History []model.ChatMessage `json:"history"`
}

// Advisor answers a chat request. An empty reply is replaced by FallbackReply.
type Advisor interface {
	Ask(ctx context.Context, req Request) (string, error)
}

// Exchange is one in-flight question. It is handed back to Complete or Fail.
type Exchange struct {
	ID         string
	Request    Request
	generation uint64
}

// Turn is a finished exchange, passed to the Recorder.
type Turn struct {
	SessionID  string
	ExchangeID string
	Question   string
	Answer     string
	Phase      Phase // PhaseResolved or PhaseFailed
	At         time.Time
}

// Recorder persists finished turns. Placeholders are never recorded.
type Recorder interface {
	Record(turn Turn) error
}

// Option configures a Session.
type Option func(*Session)

// WithRecorder records every finished exchange. Record errors are ignored by the session.
func WithRecorder(r Recorder) Option {
	return func(s *Session) { s.recorder = r }
}

// WithGreeting overrides the greeting shown after a clear.
func WithGreeting(text string) Option {
	return func(s *Session) {
		if strings.TrimSpace(text) != "" {
			s.greeting = text
		}
	}
}

// WithClock sets the time source used for recorded turns.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session owns the conversation. Methods are safe for concurrent use, but the
// session does not serialize exchanges: callers run one at a time.
type Session struct {
	mu         sync.Mutex
	id         string
	greeting   string
	history    []model.ChatMessage
	bubbles    []Bubble
	phase      Phase
	generation uint64
	recorder   Recorder
	now        func() time.Time
}

// NewSession returns an idle session showing the greeting.
func NewSession(opts ...Option) *Session {
	s := &Session{
		greeting: Greeting,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.id = uuid.NewString()
	s.history = nil
	s.bubbles = []Bubble{{ID: uuid.NewString(), Kind: BubbleGreeting, Role: model.RoleAssistant, Content: s.greeting}}
	s.phase = PhaseIdle
	s.generation++
}

// Begin appends the user turn to history, shows the pending placeholder and
// returns the exchange to send. The request history includes the new user turn.
func (s *Session) Begin(message string) (Exchange, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Exchange{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseSubmitted
	s.history = append(s.history, model.ChatMessage{Role: model.RoleUser, Content: message})
	s.bubbles = append(s.bubbles, Bubble{ID: uuid.NewString(), Kind: BubbleUser, Role: model.RoleUser, Content: message})

	ex := Exchange{
		ID: uuid.NewString(),
		Request: Request{
			Message: message,
			History: append([]model.ChatMessage(nil), s.history...),
		},
		generation: s.generation,
	}
	s.bubbles = append(s.bubbles, Bubble{ID: ex.ID, Kind: BubblePending, Role: model.RoleAssistant, Content: PendingText})
	s.phase = PhaseAwaitingReply
	return ex, nil
}

// Complete replaces the exchange's placeholder with the reply and appends the
// reply to history. It returns the shown text and false when a Clear discarded
// the exchange.
func (s *Session) Complete(ex Exchange, reply string) (string, bool) {
	if strings.TrimSpace(reply) == "" {
		reply = FallbackReply
	}

	s.mu.Lock()
	if ex.generation != s.generation {
		s.mu.Unlock()
		return "", false
	}
	s.settle(ex.ID, BubbleReply, reply)
	s.history = append(s.history, model.ChatMessage{Role: model.RoleAssistant, Content: reply})
	s.phase = PhaseResolved
	turn := s.turn(ex, reply, PhaseResolved)
	s.mu.Unlock()

	s.record(turn)
	return reply, true
}

// Fail shows ErrorText in the exchange's placeholder. History keeps only the
// user turn. It returns false when a Clear discarded the exchange.
func (s *Session) Fail(ex Exchange, _ error) bool {
	s.mu.Lock()
	if ex.generation != s.generation {
		s.mu.Unlock()
		return false
	}
	s.settle(ex.ID, BubbleError, ErrorText)
	s.phase = PhaseFailed
	turn := s.turn(ex, ErrorText, PhaseFailed)
	s.mu.Unlock()

	s.record(turn)
	return true
}

// Send runs a whole exchange against adv and blocks until it settles.
func (s *Session) Send(ctx context.Context, adv Advisor, message string) (string, error) {
	ex, err := s.Begin(message)
	if err != nil {
		return "", err
	}

	reply, err := adv.Ask(ctx, ex.Request)
	if err != nil {
		if !s.Fail(ex, err) {
			return "", ErrDiscarded
		}
		return ErrorText, fmt.Errorf("asking advisor: %w", err)
	}

	shown, ok := s.Complete(ex, reply)
	if !ok {
		return "", ErrDiscarded
	}
	return shown, nil
}

// Clear empties history, resets the transcript to the greeting and discards
// any exchange still in flight.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

// History returns a copy of the confirmed conversation.
func (s *Session) History() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ChatMessage(nil), s.history...)
}

// Transcript returns a copy of what the user sees, placeholders included.
func (s *Session) Transcript() []Bubble {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Bubble(nil), s.bubbles...)
}

// Phase returns the state of the most recent exchange. Resolved and Failed
// settle back to accepting input: Begin is valid from any phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// ID identifies the conversation since the last clear.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// settle rewrites the placeholder bubble for exchange id. Caller holds mu.
func (s *Session) settle(id string, kind BubbleKind, content string) {
	for i := range s.bubbles {
		if s.bubbles[i].ID == id {
			s.bubbles[i].Kind = kind
			s.bubbles[i].Content = content
			return
		}
	}
}

// turn builds the record for a settled exchange. Caller holds mu.
func (s *Session) turn(ex Exchange, answer string, phase Phase) Turn {
	return Turn{
		SessionID:  s.id,
		ExchangeID: ex.ID,
		Question:   ex.Request.Message,
		Answer:     answer,
		Phase:      phase,
		At:         s.now(),
	}
}

func (s *Session) record(turn Turn) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.Record(turn)
}
