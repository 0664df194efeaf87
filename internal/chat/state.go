package chat

import "github.com/finai-dev/finai/internal/model"

// Phase is the state of an exchange.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitted
	PhaseAwaitingReply
	PhaseResolved
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitted:
		return "submitted"
	case PhaseAwaitingReply:
		return "awaiting_reply"
	case PhaseResolved:
		return "resolved"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// BubbleKind tags what a transcript bubble holds.
type BubbleKind string

const (
	BubbleGreeting BubbleKind = "greeting"
	BubbleUser     BubbleKind = "user"
	BubblePending  BubbleKind = "pending"
	BubbleReply    BubbleKind = "reply"
	BubbleError    BubbleKind = "error"
)

// Bubble is one line of the visible transcript.
type Bubble struct {
	ID      string
	Kind    BubbleKind
	Role    model.Role
	Content string
}

// Pending reports whether the bubble is still a placeholder.
func (b Bubble) Pending() bool {
	return b.Kind == BubblePending
}
