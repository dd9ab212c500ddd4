package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// scriptWatcher reruns a script each time it is written
type scriptWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	stdout   io.Writer
	stderr   io.Writer
	rerun    func()
}

// watchScript runs the script once and again after every change until ctx
// is cancelled. The directory is watched rather than the file so that
// editors which save by rename keep being seen.
func watchScript(ctx context.Context, path string, debounce time.Duration, stdout, stderr io.Writer, rerun func()) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsWatcher.Close()

	w := &scriptWatcher{
		watcher:  fsWatcher,
		path:     absPath,
		debounce: debounce,
		stdout:   stdout,
		stderr:   stderr,
		rerun:    rerun,
	}

	dir := filepath.Dir(absPath)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logInfo("watching %s (Ctrl+C to stop)", path)

	w.rerun()
	w.eventLoop(ctx)
	return nil
}

// eventLoop processes file system events. A burst of events starts one
// rerun, debounce after the last of them.
func (w *scriptWatcher) eventLoop(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			// Only handle write and create events
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			w.logInfo("changed: %s", filepath.Base(w.path))
			w.rerun()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logError("watcher error: %v", err)
		}
	}
}

func (w *scriptWatcher) logInfo(format string, args ...interface{}) {
	fmt.Fprintf(w.stdout, "[WATCH] "+format+"\n", args...)
}

func (w *scriptWatcher) logError(format string, args ...interface{}) {
	fmt.Fprintf(w.stderr, "[WATCH ERROR] "+format+"\n", args...)
}
