package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	path string
	fs   *fsnotify.Watcher
}

// NewWatcher starts watching path. The file's directory is watched rather
// than the file itself, so editors that save by renaming are still seen.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch config: %w", err)
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch config: %w", err)
	}
	return &Watcher{path: abs, fs: fs}, nil
}

// Run calls fn with the reloaded config, or with the load error, after
// every change to the file. It blocks until ctx is done and closes the
// watcher on return.
func (w *Watcher) Run(ctx context.Context, fn func(*Config, error)) error {
	defer w.fs.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fn(Load(w.path))
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			fn(nil, fmt.Errorf("watch config: %w", err))
		}
	}
}

// Watch is NewWatcher followed by Run.
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	w, err := NewWatcher(path)
	if err != nil {
		return err
	}
	return w.Run(ctx, fn)
}
