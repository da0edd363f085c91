package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"somadev/internal/chat"
	"somadev/internal/config"
	"somadev/internal/domain"
	somadevsdk "somadev/sdk/go"
)

func useWorkspace(t *testing.T, yml string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(config.Path(dir), []byte(yml), 0o644))
	viper.Set("workspace", dir)
	t.Cleanup(func() { viper.Set("workspace", ".") })
	logger = zaptest.NewLogger(t)
}

func TestLocalChatRunsWholeCreationFlow(t *testing.T) {
	useWorkspace(t, "chat:\n  reply_delay: 10ms\n  confirm_delay: 10ms\n  redirect_delay: 10ms\n")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d, release, err := openDashboard(ctx, true)
	require.NoError(t, err)
	defer release()
	l := d.(*localDashboard)

	sent, err := d.SendChat(ctx, "Quero criar um app")
	require.NoError(t, err)
	require.True(t, sent.Accepted)

	got, err := waitChat(ctx, d, func(somadevsdk.Chat) bool { return l.idle() })
	require.NoError(t, err)
	last := got.Messages[len(got.Messages)-1]
	assert.Equal(t, chat.ConfirmReply(), last.Content)
	assert.Equal(t, string(domain.Orchestrator), last.Agent)
	assert.False(t, got.Typing)
	assert.Equal(t, domain.ViewCanvas, l.app.State().Router.State().View)
}

func TestLocalGenerationCompletes(t *testing.T) {
	useWorkspace(t, "canvas:\n  tick_interval: 1ms\n  step: 50\n")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d, release, err := openDashboard(ctx, true)
	require.NoError(t, err)
	defer release()

	started, err := d.Generate(ctx, "landing page")
	require.NoError(t, err)
	require.True(t, started)
	gen, err := waitGeneration(ctx, d, false)
	require.NoError(t, err)
	assert.Equal(t, "completed", gen.Status)
	assert.Len(t, gen.Files, 3)

	out := filepath.Join(t.TempDir(), "site")
	require.NoError(t, writeFiles(out, gen.Files))
	b, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}

func TestChatLimiter(t *testing.T) {
	cfg := config.Default()
	require.NotNil(t, chatLimiter(cfg))
	cfg.Server.ChatRate = 0
	assert.Nil(t, chatLimiter(cfg))
}

func TestApplyLogLevel(t *testing.T) {
	require.NoError(t, applyLogLevel("debug"))
	assert.Equal(t, "debug", logLevel.String())
	require.NoError(t, applyLogLevel(""))
	assert.Equal(t, "info", logLevel.String())
	assert.Error(t, applyLogLevel("loud"))
}
