/*
DESCRIPTION
  watch.go provides a frame source that yields images as they are created in
  a directory, such as frames saved by a camera.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package source

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/fsnotify/fsnotify"

	"github.com/ausocean/opticflow/frame"
)

// Watch is a frame source over image files created in a directory after
// the watch starts. Files that cannot be decoded are logged and skipped.
type Watch struct {
	log     logging.Logger
	watcher *fsnotify.Watcher
	idle    time.Duration
	paths   chan string
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// NewWatch starts watching dir. Next returns io.EOF once ctx is cancelled,
// Close is called, or, if idle is positive, no image has been created for
// idle.
func NewWatch(ctx context.Context, l logging.Logger, dir string, idle time.Duration) (*Watch, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create watcher: %w", err)
	}
	err = watcher.Add(dir)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("could not watch %s: %w", dir, err)
	}

	w := &Watch{
		log:     l,
		watcher: watcher,
		idle:    idle,
		paths:   make(chan string, 64),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.watch(ctx)
	l.Info("watching for frames", "dir", dir)
	return w, nil
}

// watch forwards the paths of created images until the watch is stopped.
func (w *Watch) watch(ctx context.Context) {
	defer w.wg.Done()
	defer close(w.paths)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) || !isImage(event.Name) {
				continue
			}
			w.log.Debug("frame created", "path", event.Name)
			select {
			case w.paths <- event.Name:
			case <-ctx.Done():
				return
			case <-w.done:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warning("watcher error", "error", err.Error())
		}
	}
}

// Next implements track.FrameSource. It blocks until an image is created.
func (w *Watch) Next() (*frame.Frame, error) {
	var timeout <-chan time.Time
	for {
		if w.idle > 0 {
			timeout = time.After(w.idle)
		}
		select {
		case path, ok := <-w.paths:
			if !ok {
				return nil, io.EOF
			}
			f, err := Load(path)
			if err != nil {
				w.log.Warning("skipping frame", "path", path, "error", err.Error())
				continue
			}
			return f, nil
		case <-timeout:
			w.log.Info("no frames created, stopping", "idle", w.idle.String())
			return nil, io.EOF
		}
	}
}

// Close stops the watch.
func (w *Watch) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.wg.Wait()
		err = w.watcher.Close()
	})
	return err
}
