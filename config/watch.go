// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"log/slog"
	"path/filepath"

	"cogentcore.org/spacesim/base/errors"
	"cogentcore.org/spacesim/base/iox/tomlx"
	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the [Tuning] table of a configuration file
// whenever the file is written. The directory is watched rather than
// the file so that editors which save by renaming are handled.
type Watcher struct {
	path    string
	fsw     *fsnotify.Watcher
	updates chan Tuning
	done    chan struct{}
}

// Watch starts watching the given configuration file.
func Watch(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, errors.Wrap(err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, errors.Wrap(err)
	}
	w := &Watcher{
		path:    abs,
		fsw:     fsw,
		updates: make(chan Tuning, 1),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Poll returns the most recently reloaded tuning values, if any
// arrived since the last call. It never blocks.
func (w *Watcher) Poll() (Tuning, bool) {
	select {
	case tn := <-w.updates:
		return tn, true
	default:
		return Tuning{}, false
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return errors.Wrap(err)
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher", "err", err)
		}
	}
}

// reload reads the tuning table and replaces any undelivered update.
func (w *Watcher) reload() {
	var fc struct{ Tuning Tuning }
	if err := tomlx.Open(&fc, w.path); err != nil {
		slog.Warn("config reload failed", "file", w.path, "err", err)
		return
	}
	select {
	case <-w.updates:
	default:
	}
	w.updates <- fc.Tuning
	slog.Info("config reloaded", "file", w.path, "exposure", fc.Tuning.Exposure, "temperature", fc.Tuning.Temperature)
}
