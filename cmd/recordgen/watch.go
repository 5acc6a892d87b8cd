package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Editors often write a file several times in a row.
const watchDebounce = 200 * time.Millisecond

// watch regenerates whenever the schema file changes, until ctx is done.
// The parent directory is watched because many editors replace the file
// instead of writing it in place.
func watch(ctx context.Context, schemaPath string, log *logrus.Entry, regenerate func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(schemaPath)); err != nil {
		return fmt.Errorf("watching %s: %w", schemaPath, err)
	}
	log.WithField("file", schemaPath).Info("watching for changes")
	return watchLoop(ctx, w.Events, w.Errors, schemaPath, watchDebounce, log, regenerate)
}

func watchLoop(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	schemaPath string,
	debounce time.Duration,
	log *logrus.Entry,
	regenerate func() error,
) error {
	target := filepath.Clean(schemaPath)
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			log.Debugf("fsnotify event: %s op=%v", ev.Name, ev.Op)
			fire = time.After(debounce)
		case <-fire:
			fire = nil
			if err := regenerate(); err != nil {
				log.WithError(err).Error("generation failed")
				continue
			}
			log.Debug("regenerated")
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")
		}
	}
}
