package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-slides/pkg/slides"
)

const watchDebounce = 300 * time.Millisecond

// watchTargets are the absolute paths a watch run reacts to.
type watchTargets struct {
	template string
	files    map[string]bool
}

func newWatchTargets(job generateJob) watchTargets {
	t := watchTargets{files: make(map[string]bool)}
	for _, path := range []string{job.template, job.records} {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = filepath.Clean(path)
		}
		if path == job.template {
			t.template = abs
		}
		t.files[abs] = true
	}
	return t
}

// dirs returns the parent directories to watch. Editors often replace a
// file on save, which a watch on the file itself would miss.
func (t watchTargets) dirs() []string {
	seen := make(map[string]bool)
	var out []string
	for file := range t.files {
		dir := filepath.Dir(file)
		if !seen[dir] {
			seen[dir] = true
			out = append(out, dir)
		}
	}
	return out
}

// relevant reports whether the event touches one of the files and returns
// its absolute path.
func (t watchTargets) relevant(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return "", false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil || !t.files[abs] {
		return "", false
	}
	return abs, true
}

// watch runs the job once and again after every change of its template or
// record file, until ctx is done.
func watch(ctx context.Context, cmd *cobra.Command, job generateJob) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	targets := newWatchTargets(job)
	for _, dir := range targets.dirs() {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	logger := slides.GetLogger()
	runOnce := func() {
		if err := job.run(cmd); err != nil {
			logger.Error("Generation failed: %v", err)
		}
	}

	runOnce()
	logger.Info("Watching %d files, press Ctrl+C to stop", len(targets.files))

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path, ok := targets.relevant(event)
			if !ok {
				continue
			}
			logger.WithField("file", path).Debug("Change detected: %s", event.Op)
			if path == targets.template {
				job.engine.Evict(job.template)
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			runOnce()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}
