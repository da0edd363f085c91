package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"somadev/internal/domain"
	"somadev/internal/scheduler"
	"somadev/internal/store"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type viewRecorder struct{ views []domain.View }

func (v *viewRecorder) SetView(view domain.View) { v.views = append(v.views, view) }

func newResponder(t *testing.T, pick func(int) int) (*Responder, *store.Chat, *viewRecorder, *scheduler.Scheduler) {
	t.Helper()
	sched := scheduler.NewManual(epoch)
	chat := store.NewChat(nil, nil)
	views := &viewRecorder{}
	opts := DefaultOptions()
	opts.Pick = pick
	opts.Logger = zaptest.NewLogger(t)
	return New(chat, views, sched, opts), chat, views, sched
}

func contents(msgs []domain.ChatMessage) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Content
	}
	return out
}

func TestCreationFlow(t *testing.T) {
	r, chat, views, sched := newResponder(t, nil)

	require.True(t, r.Submit("Quero CRIAR um app"))
	msgs := chat.List()
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.RoleUser, msgs[0].Role)
	assert.Equal(t, "Quero CRIAR um app", msgs[0].Content)
	assert.Equal(t, epoch, msgs[0].Timestamp)
	assert.True(t, chat.Typing())

	sched.Advance(1499 * time.Millisecond)
	assert.Len(t, chat.List(), 1)

	sched.Advance(time.Millisecond)
	msgs = chat.List()
	require.Len(t, msgs, 2)
	assert.Equal(t, planReply, msgs[1].Content)
	require.NotNil(t, msgs[1].Agent)
	assert.Equal(t, domain.Orchestrator, *msgs[1].Agent)
	assert.False(t, chat.Typing())
	assert.Empty(t, views.views)

	sched.Advance(5 * time.Second)
	msgs = chat.List()
	require.Len(t, msgs, 3)
	assert.Equal(t, confirmReply, msgs[2].Content)
	assert.Equal(t, epoch.Add(6500*time.Millisecond), msgs[2].Timestamp)
	assert.Empty(t, views.views)

	sched.Advance(2 * time.Second)
	assert.Equal(t, []domain.View{domain.ViewCanvas}, views.views)
	assert.Equal(t, 0, sched.Pending())
}

func TestCannedReply(t *testing.T) {
	r, chat, views, sched := newResponder(t, func(n int) int {
		assert.Equal(t, 3, n)
		return 2
	})

	require.True(t, r.Submit("oi"))
	sched.Advance(10 * time.Second)

	msgs := chat.List()
	require.Len(t, msgs, 2)
	assert.Equal(t, cannedReplies[2], msgs[1].Content)
	assert.Contains(t, CannedReplies(), msgs[1].Content)
	assert.False(t, chat.Typing())
	assert.Empty(t, views.views)
}

func TestBlankInputIsRejected(t *testing.T) {
	r, chat, _, sched := newResponder(t, nil)
	for _, in := range []string{"", "   ", "\n\t"} {
		assert.False(t, r.Submit(in))
	}
	assert.Empty(t, chat.List())
	assert.False(t, chat.Typing())
	assert.Equal(t, 0, sched.Pending())
}

func TestInputIsStoredAsTyped(t *testing.T) {
	r, chat, _, _ := newResponder(t, nil)
	require.True(t, r.Submit("  olá  "))
	assert.Equal(t, "  olá  ", chat.List()[0].Content)
}

func TestClosingSessionCancelsPendingSteps(t *testing.T) {
	r, chat, views, sched := newResponder(t, nil)
	s := r.NewSession()
	require.True(t, s.Submit("novo aplicativo"))

	require.True(t, chat.Typing())
	s.Close()
	assert.False(t, chat.Typing())
	sched.Advance(time.Minute)

	assert.Len(t, chat.List(), 1)
	assert.False(t, chat.Typing())
	assert.Zero(t, sched.Pending())
	assert.Empty(t, views.views)
	assert.False(t, s.Submit("de novo"))
}

func TestResetBeforeFirstReplyClearsTyping(t *testing.T) {
	r, chat, _, sched := newResponder(t, nil)
	require.True(t, r.Submit("oi"))
	require.True(t, chat.Typing())

	r.Reset()
	sched.Advance(time.Minute)

	assert.Len(t, chat.List(), 1)
	assert.False(t, chat.Typing())
	assert.Zero(t, sched.Pending())
}

func TestClosingAfterReplyLeavesTypingAlone(t *testing.T) {
	r, chat, _, sched := newResponder(t, nil)
	s := r.NewSession()
	require.True(t, s.Submit("oi"))
	sched.Advance(2 * time.Second)
	require.False(t, chat.Typing())

	chat.SetTyping(true)
	s.Close()
	assert.True(t, chat.Typing())
}

func TestResetCancelsMidFlow(t *testing.T) {
	r, chat, views, sched := newResponder(t, nil)
	require.True(t, r.Submit("criar"))
	sched.Advance(2 * time.Second)
	require.Len(t, chat.List(), 2)

	r.Reset()
	sched.Advance(time.Minute)
	assert.Len(t, chat.List(), 2)
	assert.False(t, chat.Typing())
	assert.Empty(t, views.views)

	require.True(t, r.Submit("oi"))
	sched.Advance(2 * time.Second)
	assert.Len(t, chat.List(), 4)
}

func TestConcurrentChainsInterleaveByTimer(t *testing.T) {
	r, chat, views, sched := newResponder(t, func(int) int { return 0 })
	require.True(t, r.Submit("criar"))
	sched.Advance(time.Second)
	require.True(t, r.Submit("oi"))

	sched.Advance(10 * time.Second)
	assert.Equal(t, []string{"criar", "oi", planReply, cannedReplies[0], confirmReply}, contents(chat.List()))
	assert.Equal(t, []domain.View{domain.ViewCanvas}, views.views)
}
