package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads somadev.yml when it changes on disk and hands every config
// that validates to onChange. Invalid edits are logged and skipped.
type Watcher struct {
	path     string
	log      *zap.Logger
	onChange func(*Config)
}

func NewWatcher(workspace string, log *zap.Logger, onChange func(*Config)) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{path: Path(workspace), log: log, onChange: onChange}
}

// Run blocks until ctx is done. The directory is watched instead of the file
// so editors that replace the file by rename are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	target := filepath.Clean(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			cfg, err := FromFile(w.path)
			if err != nil {
				w.log.Warn("ignoring config change", zap.String("path", w.path), zap.Error(err))
				continue
			}
			w.log.Info("config reloaded", zap.String("path", w.path), zap.String("op", ev.Op.String()))
			if w.onChange != nil {
				w.onChange(cfg)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("config watcher error", zap.Error(err))
		}
	}
}
