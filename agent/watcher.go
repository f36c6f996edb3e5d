/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package agent

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

type IntervalSetter interface {
	SetInterval(interval time.Duration) error
}

// SettingsWatcher reloads the settings file when it changes and
// applies its poll interval. The directory is watched so that editors
// replacing the file are noticed too.
type SettingsWatcher struct {
	fswatcher *fsnotify.Watcher
	fs        afero.Fs
	path      string
	target    IntervalSetter
	done      chan bool

	// Reloaded receives the outcome of each reload when not nil
	Reloaded chan error
}

func NewSettingsWatcher(fs afero.Fs, path string, target IntervalSetter) (*SettingsWatcher, error) {
	fswatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	path = filepath.Clean(path)

	if err = fswatcher.Add(filepath.Dir(path)); err != nil {
		fswatcher.Close()
		return nil, err
	}

	w := &SettingsWatcher{
		fswatcher: fswatcher,
		fs:        fs,
		path:      path,
		target:    target,
		done:      make(chan bool),
	}

	return w, nil
}

// Run handles file events until Close is called
func (w *SettingsWatcher) Run() {
	for {
		select {
		case event, ok := <-w.fswatcher.Events:
			if !ok {
				return
			}

			if filepath.Clean(event.Name) != w.path {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			err := w.reload()
			if err != nil {
				log.Error("failed to reload settings: ", err)
			}

			if w.Reloaded != nil {
				w.Reloaded <- err
			}
		case err, ok := <-w.fswatcher.Errors:
			if !ok {
				return
			}

			log.Error(err)
		case <-w.done:
			return
		}
	}
}

func (w *SettingsWatcher) reload() error {
	s, err := LoadSettingsFile(w.fs, w.path)
	if err != nil {
		return err
	}

	interval := s.Interval()

	if err = w.target.SetInterval(interval); err != nil {
		return err
	}

	log.Infof("settings reloaded, poll interval is %s", interval)

	return nil
}

func (w *SettingsWatcher) Close() error {
	close(w.done)
	return w.fswatcher.Close()
}
