package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finai-dev/finai/internal/model"
)

type fakeAdvisor struct {
	reply string
	err   error
	seen  []Request
	// hook runs before the reply is returned.
	hook func()
}

func (f *fakeAdvisor) Ask(_ context.Context, req Request) (string, error) {
	f.seen = append(f.seen, req)
	if f.hook != nil {
		f.hook()
	}
	return f.reply, f.err
}

type memRecorder struct {
	turns []Turn
}

func (m *memRecorder) Record(turn Turn) error {
	m.turns = append(m.turns, turn)
	return nil
}

func TestNewSession_ShowsGreeting(t *testing.T) {
	s := NewSession()
	assert.Empty(t, s.History())
	assert.Equal(t, PhaseIdle, s.Phase())

	tr := s.Transcript()
	require.Len(t, tr, 1)
	assert.Equal(t, BubbleGreeting, tr[0].Kind)
	assert.Equal(t, Greeting, tr[0].Content)
}

func TestBegin_PushesUserTurnBeforeRequest(t *testing.T) {
	s := NewSession()
	ex, err := s.Begin("  Where am I overspending?  ")
	require.NoError(t, err)

	assert.Equal(t, "Where am I overspending?", ex.Request.Message)
	require.Len(t, ex.Request.History, 1)
	assert.Equal(t, model.ChatMessage{Role: model.RoleUser, Content: "Where am I overspending?"}, ex.Request.History[0])
	assert.Equal(t, PhaseAwaitingReply, s.Phase())

	tr := s.Transcript()
	require.Len(t, tr, 3)
	assert.Equal(t, BubbleUser, tr[1].Kind)
	assert.True(t, tr[2].Pending())
	assert.Equal(t, PendingText, tr[2].Content)
	assert.Equal(t, ex.ID, tr[2].ID)

	// The placeholder never enters history.
	assert.Len(t, s.History(), 1)
}

func TestBegin_EmptyMessage(t *testing.T) {
	s := NewSession()
	_, err := s.Begin("   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, s.History())
	assert.Len(t, s.Transcript(), 1)
}

func TestSend_Success(t *testing.T) {
	adv := &fakeAdvisor{reply: "Cut dining out."}
	s := NewSession()
	s.history = []model.ChatMessage{
		{Role: model.RoleUser, Content: "hi"},
		{Role: model.RoleAssistant, Content: "hello"},
	}
	prior := len(s.History())

	shown, err := s.Send(context.Background(), adv, "Tips?")
	require.NoError(t, err)
	assert.Equal(t, "Cut dining out.", shown)

	hist := s.History()
	require.Len(t, hist, prior+2)
	assert.Equal(t, model.ChatMessage{Role: model.RoleAssistant, Content: "Cut dining out."}, hist[len(hist)-1])
	assert.NotEqual(t, PendingText, hist[len(hist)-1].Content)
	assert.Equal(t, PhaseResolved, s.Phase())

	require.Len(t, adv.seen, 1)
	assert.Len(t, adv.seen[0].History, prior+1)

	tr := s.Transcript()
	last := tr[len(tr)-1]
	assert.Equal(t, BubbleReply, last.Kind)
	assert.Equal(t, "Cut dining out.", last.Content)
}

func TestSend_EmptyReplyUsesFallback(t *testing.T) {
	s := NewSession()
	shown, err := s.Send(context.Background(), &fakeAdvisor{reply: ""}, "hello")
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, shown)

	hist := s.History()
	require.Len(t, hist, 2)
	assert.Equal(t, FallbackReply, hist[1].Content)
}

func TestSend_Failure(t *testing.T) {
	s := NewSession()
	prior := len(s.History())
	boom := errors.New("connection refused")

	shown, err := s.Send(context.Background(), &fakeAdvisor{err: boom}, "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, ErrorText, shown)

	hist := s.History()
	require.Len(t, hist, prior+1)
	assert.Equal(t, model.RoleUser, hist[0].Role)
	assert.Equal(t, PhaseFailed, s.Phase())

	tr := s.Transcript()
	last := tr[len(tr)-1]
	assert.Equal(t, BubbleError, last.Kind)
	assert.Equal(t, ErrorText, last.Content)
}

func TestClear(t *testing.T) {
	s := NewSession()
	_, err := s.Send(context.Background(), &fakeAdvisor{reply: "a"}, "one")
	require.NoError(t, err)
	_, _ = s.Send(context.Background(), &fakeAdvisor{err: errors.New("x")}, "two")
	oldID := s.ID()

	s.Clear()
	assert.Empty(t, s.History())
	assert.Equal(t, PhaseIdle, s.Phase())
	assert.NotEqual(t, oldID, s.ID())
	tr := s.Transcript()
	require.Len(t, tr, 1)
	assert.Equal(t, Greeting, tr[0].Content)
}

func TestClear_DiscardsInFlightReply(t *testing.T) {
	s := NewSession()
	adv := &fakeAdvisor{reply: "late answer"}
	adv.hook = s.Clear

	_, err := s.Send(context.Background(), adv, "question")
	assert.ErrorIs(t, err, ErrDiscarded)
	assert.Empty(t, s.History())
	assert.Len(t, s.Transcript(), 1)
}

func TestFail_StaleExchangeIgnored(t *testing.T) {
	s := NewSession()
	ex, err := s.Begin("question")
	require.NoError(t, err)
	s.Clear()

	assert.False(t, s.Fail(ex, errors.New("timeout")))
	_, ok := s.Complete(ex, "reply")
	assert.False(t, ok)
	assert.Len(t, s.Transcript(), 1)
}

func TestCompleteOutOfOrder(t *testing.T) {
	s := NewSession()
	first, err := s.Begin("first")
	require.NoError(t, err)
	second, err := s.Begin("second")
	require.NoError(t, err)

	_, ok := s.Complete(second, "answer two")
	require.True(t, ok)
	_, ok = s.Complete(first, "answer one")
	require.True(t, ok)

	var contents []string
	for _, b := range s.Transcript() {
		contents = append(contents, b.Content)
	}
	assert.Equal(t, []string{Greeting, "first", "answer one", "second", "answer two"}, contents)
}

func TestRecorder(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := &memRecorder{}
	s := NewSession(WithRecorder(rec), WithClock(func() time.Time { return at }), WithGreeting("Hello!"))
	assert.Equal(t, "Hello!", s.Transcript()[0].Content)

	_, err := s.Send(context.Background(), &fakeAdvisor{reply: "ok"}, "q1")
	require.NoError(t, err)
	_, _ = s.Send(context.Background(), &fakeAdvisor{err: errors.New("down")}, "q2")

	require.Len(t, rec.turns, 2)
	assert.Equal(t, Turn{SessionID: s.ID(), ExchangeID: rec.turns[0].ExchangeID, Question: "q1", Answer: "ok", Phase: PhaseResolved, At: at}, rec.turns[0])
	assert.Equal(t, PhaseFailed, rec.turns[1].Phase)
	assert.Equal(t, ErrorText, rec.turns[1].Answer)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "awaiting_reply", PhaseAwaitingReply.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
