package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestAdvanceRunsInDueOrder(t *testing.T) {
	s := NewManual(epoch)
	var got []string
	ctx := context.Background()
	s.After(ctx, 3*time.Second, func() { got = append(got, "c") })
	s.After(ctx, time.Second, func() { got = append(got, "a") })
	s.After(ctx, 2*time.Second, func() { got = append(got, "b") })

	assert.Equal(t, 0, s.Advance(500*time.Millisecond))
	assert.Empty(t, got)
	assert.Equal(t, 3, s.Advance(5*time.Second))
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, epoch.Add(5500*time.Millisecond), s.Now())
}

func TestTiesRunInSchedulingOrder(t *testing.T) {
	s := NewManual(epoch)
	var got []int
	for i := 0; i < 5; i++ {
		i := i
		s.After(context.Background(), time.Second, func() { got = append(got, i) })
	}
	s.Advance(time.Second)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestChainedCallbacksSeeTheirDueTime(t *testing.T) {
	s := NewManual(epoch)
	var seen []time.Time
	s.After(context.Background(), time.Second, func() {
		seen = append(seen, s.Now())
		s.After(context.Background(), 2*time.Second, func() {
			seen = append(seen, s.Now())
		})
	})
	assert.Equal(t, 2, s.Advance(10*time.Second))
	assert.Equal(t, []time.Time{epoch.Add(time.Second), epoch.Add(3 * time.Second)}, seen)
}

func TestCancelledContextDropsCallbacks(t *testing.T) {
	s := NewManual(epoch, WithLogger(zaptest.NewLogger(t)))
	ctx, cancel := context.WithCancel(context.Background())
	ran := false
	s.After(ctx, time.Second, func() { ran = true })
	s.After(context.Background(), time.Second, func() {})
	require.Equal(t, 2, s.Pending())

	cancel()
	assert.Equal(t, 1, s.Pending())
	assert.Equal(t, 1, s.Advance(time.Second))
	assert.False(t, ran)
}

func TestPanickingCallbackDoesNotStopQueue(t *testing.T) {
	s := NewManual(epoch, WithLogger(zaptest.NewLogger(t)))
	ran := false
	s.After(context.Background(), time.Second, func() { panic("boom") })
	s.After(context.Background(), time.Second, func() { ran = true })
	s.Advance(time.Second)
	assert.True(t, ran)
}

func TestPendingCountsRunningCallback(t *testing.T) {
	s := NewManual(epoch)
	var inside int
	s.After(context.Background(), time.Second, func() { inside = s.Pending() })
	s.Advance(time.Second)
	assert.Equal(t, 1, inside)
	assert.Equal(t, 0, s.Pending())
}

func TestRunRejectsManualClock(t *testing.T) {
	s := NewManual(epoch)
	assert.ErrorIs(t, s.Run(context.Background()), ErrManualClock)
}

func TestRunExecutesAndStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	var mu sync.Mutex
	var got []string
	fired := make(chan struct{})
	s.After(context.Background(), 20*time.Millisecond, func() {
		mu.Lock()
		got = append(got, "second")
		mu.Unlock()
		close(fired)
	})
	s.After(context.Background(), 0, func() {
		mu.Lock()
		got = append(got, "first")
		mu.Unlock()
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("callback never ran")
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"first", "second"}, got)
}
