package canvas

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"somadev/internal/events"
	"somadev/internal/scheduler"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newGenerator(t *testing.T, pub events.Publisher) (*Generator, *scheduler.Scheduler) {
	t.Helper()
	sched := scheduler.NewManual(epoch)
	opts := DefaultOptions()
	opts.Logger = zaptest.NewLogger(t)
	return New(sched, pub, opts), sched
}

func TestRunCompletesAfterFiftyOneTicks(t *testing.T) {
	g, sched := newGenerator(t, nil)
	require.True(t, g.Start(context.Background(), "um gerenciador de tarefas"))
	assert.Equal(t, StatusGenerating, g.Snapshot().Status)

	sched.Advance(50 * 100 * time.Millisecond)
	s := g.Snapshot()
	assert.Equal(t, StatusGenerating, s.Status)
	assert.Equal(t, 100, s.Progress)
	assert.Empty(t, s.Files)
	_, err := g.Preview()
	assert.ErrorIs(t, err, ErrNoOutput)

	sched.Advance(100 * time.Millisecond)
	s = g.Snapshot()
	assert.Equal(t, StatusCompleted, s.Status)
	assert.Equal(t, 100, s.Progress)
	require.Len(t, s.Files, 3)
	assert.Equal(t, "index.html", s.Files[0].Name)
	assert.Equal(t, "css", s.Files[1].Language)
	assert.Equal(t, 0, sched.Pending())
}

func TestFilesAndPreview(t *testing.T) {
	g, sched := newGenerator(t, nil)
	require.True(t, g.Start(context.Background(), "app"))
	sched.Advance(10 * time.Second)

	html, err := g.Preview()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))

	js, err := g.File("app.js")
	require.NoError(t, err)
	assert.Contains(t, js.Content, "class TaskManager")

	_, err = g.File("main.go")
	assert.ErrorIs(t, err, ErrUnknownFile)
}

func TestBlankPromptNeverStarts(t *testing.T) {
	g, sched := newGenerator(t, nil)
	assert.False(t, g.Start(context.Background(), "  "))
	assert.Equal(t, StatusIdle, g.Snapshot().Status)
	assert.Equal(t, 0, sched.Pending())
}

func TestRestartCancelsPreviousRun(t *testing.T) {
	bus := events.New(nil)
	sub := bus.Subscribe(events.TopicGeneration)
	defer bus.Unsubscribe(sub)
	g, sched := newGenerator(t, bus)

	require.True(t, g.Start(context.Background(), "primeiro"))
	sched.Advance(time.Second)
	assert.Equal(t, 20, g.Snapshot().Progress)

	require.True(t, g.Start(context.Background(), "segundo"))
	s := g.Snapshot()
	assert.Equal(t, 0, s.Progress)
	assert.Equal(t, "segundo", s.Prompt)
	assert.Equal(t, 1, sched.Pending())

	sched.Advance(time.Second)
	assert.Equal(t, 20, g.Snapshot().Progress)
	assert.NotEmpty(t, sub.Ch())
}

func TestCancelledContextStopsRun(t *testing.T) {
	g, sched := newGenerator(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, g.Start(ctx, "app"))
	sched.Advance(500 * time.Millisecond)
	cancel()
	sched.Advance(time.Minute)
	s := g.Snapshot()
	assert.Equal(t, StatusGenerating, s.Status)
	assert.Equal(t, 10, s.Progress)
}

func TestCancelReturnsToIdle(t *testing.T) {
	g, sched := newGenerator(t, nil)
	require.True(t, g.Start(context.Background(), "app"))
	sched.Advance(300 * time.Millisecond)
	g.Cancel()
	sched.Advance(time.Minute)
	assert.Equal(t, Snapshot{Status: StatusIdle, Files: []File{}}, g.Snapshot())
}
