// Package chat simulates the orchestrator answering in the chat panel.
//
// Nothing is generated: a submitted message is echoed into the chat store and
// a scripted reply follows after a fixed delay. Messages that look like a
// request to build an app get a two step plan and then switch the dashboard
// to the canvas.
package chat

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"somadev/internal/domain"
	"somadev/internal/scheduler"
	"somadev/internal/store"
)

// ViewSetter switches the visible dashboard panel.
type ViewSetter interface {
	SetView(domain.View)
}

type Options struct {
	ReplyDelay    time.Duration
	ConfirmDelay  time.Duration
	RedirectDelay time.Duration
	Keywords      []string
	// Pick returns an index in [0, n). Defaults to math/rand/v2.
	Pick   func(n int) int
	Logger *zap.Logger
}

// DefaultOptions mirrors the timings of the dashboard widget.
func DefaultOptions() Options {
	return Options{
		ReplyDelay:    1500 * time.Millisecond,
		ConfirmDelay:  5 * time.Second,
		RedirectDelay: 2 * time.Second,
		Keywords:      DefaultKeywords,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ReplyDelay <= 0 {
		o.ReplyDelay = d.ReplyDelay
	}
	if o.ConfirmDelay <= 0 {
		o.ConfirmDelay = d.ConfirmDelay
	}
	if o.RedirectDelay <= 0 {
		o.RedirectDelay = d.RedirectDelay
	}
	if len(o.Keywords) == 0 {
		o.Keywords = d.Keywords
	}
	if o.Pick == nil {
		o.Pick = rand.IntN
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

type Responder struct {
	chat  *store.Chat
	views ViewSetter
	sched *scheduler.Scheduler
	opts  Options

	mu      sync.Mutex
	current *Session
}

func New(chat *store.Chat, views ViewSetter, sched *scheduler.Scheduler, opts Options) *Responder {
	r := &Responder{chat: chat, views: views, sched: sched, opts: opts.withDefaults()}
	r.current = r.NewSession()
	return r
}

// Submit sends input through the shared session.
func (r *Responder) Submit(input string) bool {
	r.mu.Lock()
	s := r.current
	r.mu.Unlock()
	return s.Submit(input)
}

// Reset cancels every pending step of the shared session and opens a new
// one.
func (r *Responder) Reset() {
	r.mu.Lock()
	old := r.current
	r.current = r.NewSession()
	r.mu.Unlock()
	old.Close()
}

// Session scopes a chain of scheduled replies. Closing it drops every step
// that has not run yet and clears the typing indicator if a reply was still
// owed.
type Session struct {
	r      *Responder
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	awaiting int // submissions whose first reply has not run
}

func (r *Responder) NewSession() *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{r: r, ctx: ctx, cancel: cancel}
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel()
	if s.awaiting > 0 {
		s.awaiting = 0
		s.r.chat.SetTyping(false)
	}
}

// Submit appends input as a user message and schedules the reply. Blank
// input, or a closed session, is rejected without touching the chat.
func (s *Session) Submit(input string) bool {
	if strings.TrimSpace(input) == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	s.awaiting++
	r := s.r
	r.chat.Append(domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      domain.RoleUser,
		Content:   input,
		Timestamp: r.sched.Now(),
	})
	r.chat.SetTyping(true)
	r.sched.After(s.ctx, r.opts.ReplyDelay, func() { s.reply(input) })
	return true
}

func (s *Session) reply(input string) {
	s.mu.Lock()
	if s.awaiting > 0 {
		s.awaiting--
	}
	s.mu.Unlock()
	r := s.r
	lower := strings.ToLower(input)
	if r.wantsApp(lower) {
		r.opts.Logger.Debug("chat: creation flow", zap.String("input", input))
		r.sched.After(s.ctx, r.opts.ConfirmDelay, s.confirm)
		r.say(planReply)
	} else {
		r.say(cannedReplies[r.opts.Pick(len(cannedReplies))])
	}
	r.chat.SetTyping(false)
}

func (s *Session) confirm() {
	r := s.r
	r.say(confirmReply)
	r.sched.After(s.ctx, r.opts.RedirectDelay, func() {
		r.opts.Logger.Debug("chat: redirecting to canvas")
		r.views.SetView(domain.ViewCanvas)
	})
}

func (r *Responder) wantsApp(lower string) bool {
	for _, k := range r.opts.Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (r *Responder) say(content string) {
	r.chat.Append(domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      domain.RoleAssistant,
		Content:   content,
		Timestamp: r.sched.Now(),
		Agent:     domain.Ptr(replyAgent),
	})
}
