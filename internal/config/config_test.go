package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, "/v0", cfg.Server.BasePath)
	assert.Equal(t, 5.0, cfg.Server.ChatRate)
	assert.Equal(t, 10, cfg.Server.ChatBurst)
	assert.Equal(t, 1500*time.Millisecond, cfg.Chat.ReplyDelay)
	assert.Equal(t, 5*time.Second, cfg.Chat.ConfirmDelay)
	assert.Equal(t, 2*time.Second, cfg.Chat.RedirectDelay)
	assert.Equal(t, []string{"criar", "app", "aplicativo"}, cfg.Chat.Keywords)
	assert.Equal(t, 100*time.Millisecond, cfg.Canvas.TickInterval)
	assert.Equal(t, 2, cfg.Canvas.Step)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestFromYAMLOverlaysDefaults(t *testing.T) {
	cfg, err := FromYAML([]byte("server:\n  addr: :9090\nchat:\n  reply_delay: 10ms\n"))
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "/v0", cfg.Server.BasePath)
	assert.Equal(t, 10*time.Millisecond, cfg.Chat.ReplyDelay)
	assert.Equal(t, 5*time.Second, cfg.Chat.ConfirmDelay)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]string{
		"bad yaml":       "server: [",
		"base path":      "server:\n  base_path: v0\n",
		"keyword case":   "chat:\n  keywords: [Criar]\n",
		"empty keyword":  "chat:\n  keywords: [\"  \"]\n",
		"negative delay": "chat:\n  reply_delay: -1s\n",
		"zero tick":      "canvas:\n  tick_interval: 0s\n",
		"step":           "canvas:\n  step: 101\n",
		"log level":      "log:\n  level: loud\n",
		"negative rate":  "server:\n  chat_rate: -1\n",
		"zero burst":     "server:\n  chat_rate: 2\n  chat_burst: 0\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromYAML([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOptional(dir)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	_, err = Load(dir)
	assert.ErrorContains(t, err, "not found")

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("log:\n  level: debug\n"), 0o644))
	cfg, err = LoadOptional(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestGenerateDefaultRoundTrips(t *testing.T) {
	cfg, err := FromYAML([]byte(GenerateDefault()))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
