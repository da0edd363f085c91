// Package scheduler runs delayed callbacks one at a time, in due order.
//
// Every callback is bound to a context. A callback whose context is done by
// the time it comes due is dropped without running, so cancelling a context
// invalidates everything scheduled under it.
//
// A scheduler either follows the wall clock (New, driven by Run) or a manual
// clock (NewManual, driven by Advance). Callbacks never run concurrently with
// each other in either mode.
package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrManualClock is returned by Run on a scheduler built with NewManual.
var ErrManualClock = errors.New("scheduler: manual clock is driven by Advance, not Run")

type entry struct {
	due time.Time
	seq uint64
	ctx context.Context
	fn  func()
}

type entryHeap []*entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)   { *h = append(*h, x.(*entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

type Scheduler struct {
	mu     sync.Mutex
	queue  entryHeap
	seq    uint64
	manual bool
	now    time.Time
	active int
	wake   chan struct{}
	log    *zap.Logger
}

type Option func(*Scheduler)

// WithLogger sets the logger used for dropped and panicking callbacks.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// New returns a wall-clock scheduler. Callbacks run only while Run is active.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{wake: make(chan struct{}, 1), log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewManual returns a scheduler whose clock starts at start and moves only
// through Advance.
func NewManual(start time.Time, opts ...Option) *Scheduler {
	s := New(opts...)
	s.manual = true
	s.now = start
	return s
}

// Now reports the scheduler's clock.
func (s *Scheduler) Now() time.Time {
	if !s.manual {
		return time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// After schedules fn to run d from now under ctx. Callbacks due at the same
// instant run in the order they were scheduled.
func (s *Scheduler) After(ctx context.Context, d time.Duration, fn func()) {
	if ctx == nil {
		ctx = context.Background()
	}
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	base := s.now
	if !s.manual {
		base = time.Now()
	}
	s.seq++
	heap.Push(&s.queue, &entry{due: base.Add(d), seq: s.seq, ctx: ctx, fn: fn})
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending counts scheduled callbacks whose context is still live, plus the
// one running right now, if any.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.active
	for _, e := range s.queue {
		if e.ctx.Err() == nil {
			n++
		}
	}
	return n
}

// Run executes callbacks as they come due until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.manual {
		return ErrManualClock
	}
	for {
		now := time.Now()
		wait := time.Duration(-1)
		var ready []*entry
		s.mu.Lock()
		for len(s.queue) > 0 && !s.queue[0].due.After(now) {
			ready = append(ready, heap.Pop(&s.queue).(*entry))
			s.active++
		}
		if len(s.queue) > 0 {
			wait = s.queue[0].due.Sub(now)
		}
		s.mu.Unlock()

		for i, e := range ready {
			if ctx.Err() != nil {
				s.mu.Lock()
				s.active -= len(ready) - i
				s.mu.Unlock()
				return ctx.Err()
			}
			s.exec(e)
		}
		if len(ready) > 0 {
			continue
		}

		var fire <-chan time.Time
		var timer *time.Timer
		if wait >= 0 {
			timer = time.NewTimer(wait)
			fire = timer.C
		}
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()
		case <-s.wake:
		case <-fire:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

// Advance moves a manual clock forward by d, running every callback that
// comes due on the way, including ones scheduled by those callbacks. It
// returns how many callbacks ran.
func (s *Scheduler) Advance(d time.Duration) int {
	if !s.manual {
		panic("scheduler: Advance on a wall-clock scheduler")
	}
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()
	ran := 0
	for {
		s.mu.Lock()
		if len(s.queue) == 0 || s.queue[0].due.After(target) {
			s.now = target
			s.mu.Unlock()
			return ran
		}
		e := heap.Pop(&s.queue).(*entry)
		s.active++
		if e.due.After(s.now) {
			s.now = e.due
		}
		s.mu.Unlock()
		if s.exec(e) {
			ran++
		}
	}
}

// exec runs a popped entry. The caller counted it in s.active when popping.
func (s *Scheduler) exec(e *entry) (ran bool) {
	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}()
	if err := e.ctx.Err(); err != nil {
		s.log.Debug("dropping cancelled callback", zap.Time("due", e.due), zap.Error(err))
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("scheduled callback panicked", zap.Any("panic", r))
		}
	}()
	e.fn()
	return true
}
