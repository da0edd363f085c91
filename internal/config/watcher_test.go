package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestWatcherReloadsValidChanges(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir)
	require.NoError(t, os.WriteFile(path, []byte(GenerateDefault()), 0o644))

	got := make(chan *Config, 4)
	w := NewWatcher(dir, zaptest.NewLogger(t), func(c *Config) {
		select {
		case got <- c:
		default:
		}
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// The watch is registered asynchronously and a write may be observed
	// half done, so keep writing until a debug config comes through.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("log:\n  level: bogus\n"), 0o644)
		_ = os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644)
		deadline := time.After(50 * time.Millisecond)
		for {
			select {
			case cfg := <-got:
				if cfg.Log.Level == "debug" {
					return true
				}
			case <-deadline:
				return false
			}
		}
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
