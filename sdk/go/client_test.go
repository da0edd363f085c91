package somadevsdk

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"somadev/internal/app"
	"somadev/internal/scheduler"
	"somadev/internal/server"
)

func newClient(t *testing.T) (*Client, *scheduler.Scheduler) {
	t.Helper()
	log := zaptest.NewLogger(t)
	sched := scheduler.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	a := app.New(app.Options{Logger: log, Scheduler: sched})
	h, err := server.New(server.Config{App: a, Logger: log})
	require.NoError(t, err)
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		srv.Close()
		a.Close()
	})
	return New(srv.URL), sched
}

func TestClientReadsAndMoves(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()
	require.NoError(t, c.Health(ctx))

	agents, err := c.Agents(ctx)
	require.NoError(t, err)
	assert.Len(t, agents, 13)

	tasks, err := c.Tasks(ctx, TaskFilter{Assignee: "@SomaBack"})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "2", tasks[0].ID)

	ok, err := c.MoveTask(ctx, "2", "done")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = c.MoveTask(ctx, "nope", "done")
	require.NoError(t, err)
	assert.False(t, ok)

	board, err := c.Board(ctx, TaskFilter{})
	require.NoError(t, err)
	assert.Equal(t, 4, board.Summary.ByStatus["done"])

	logs, err := c.Logs(ctx, LogFilter{Level: "success"})
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestClientChatAndGeneration(t *testing.T) {
	c, sched := newClient(t)
	ctx := context.Background()

	chat, err := c.SendChat(ctx, "oi")
	require.NoError(t, err)
	assert.True(t, chat.Accepted)
	sched.Advance(2 * time.Second)
	chat, err = c.Chat(ctx)
	require.NoError(t, err)
	assert.Len(t, chat.Messages, 5)

	_, err = c.GeneratedFile(ctx, "app.js")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 409, apiErr.StatusCode)

	started, err := c.Generate(ctx, "kanban")
	require.NoError(t, err)
	assert.True(t, started)
	sched.Advance(6 * time.Second)

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, "completed", gen.Status)
	body, err := c.GeneratedFile(ctx, "app.js")
	require.NoError(t, err)
	assert.Contains(t, string(body), "TaskManager")

	require.NoError(t, c.Reset(ctx))
	gen, err = c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, "idle", gen.Status)
}
