/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package installer

import (
	"io"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/UpdateHub/patchagent/copy"
	"github.com/UpdateHub/patchagent/utils"
)

const (
	DefaultChunkSize   = 128 * 1024
	DefaultReadTimeout = 30 * time.Second
)

var (
	ErrInsufficientSpace = errors.New("insufficient space for the firmware image")
	ErrSizeMismatch      = errors.New("written size differs from the declared length")
	ErrFinalizeFailed    = errors.New("failed to finalize the firmware image")
	ErrWriteFailed       = errors.New("failed to write the firmware image")
	ErrRestartFailed     = errors.New("failed to restart the device")
)

// Sink is the destination of a firmware image. A session starts with
// Begin and ends with either Finalize or Abort.
type Sink interface {
	io.Writer
	Begin(size int64) error
	Finalize() error
	Abort() error
}

// VersionStore persists the version of the installed firmware
type VersionStore interface {
	LoadVersion() (string, error)
	SaveVersion(version string) error
}

type Interface interface {
	Install(rd io.Reader, length int64, version string, committed func()) error
}

type Installer struct {
	Sink         Sink
	Watchdog     utils.Watchdog
	VersionStore VersionStore
	utils.Rebooter
	CopyBackend copy.Interface

	ChunkSize   int
	ReadTimeout time.Duration
	// StrictSize aborts the session when the written size differs from
	// the declared length instead of finalizing it anyway
	StrictSize bool
}

func NewInstaller(sink Sink, store VersionStore, wd utils.Watchdog) *Installer {
	if wd == nil {
		wd = utils.NoopWatchdog{}
	}

	return &Installer{
		Sink:         sink,
		Watchdog:     wd,
		VersionStore: store,
		Rebooter:     utils.NewRebooter(),
		CopyBackend:  copy.ExtendedIO{},
		ChunkSize:    DefaultChunkSize,
		ReadTimeout:  DefaultReadTimeout,
	}
}

// Install writes "length" bytes from "rd" into the sink, records
// "version" as installed and restarts the device. "committed", when
// not nil, runs after the version was recorded and right before the
// restart. A nil return means the restart was issued; the firmware
// that is running now is about to go away.
func (i *Installer) Install(rd io.Reader, length int64, version string, committed func()) error {
	log.Infof("installing firmware version '%s' (%d bytes)", version, length)

	if err := i.Sink.Begin(length); err != nil {
		if abortErr := i.Sink.Abort(); abortErr != nil {
			log.Warn("failed to abort the firmware image: ", abortErr)
		}
		return err
	}

	if err := i.Watchdog.Extend(); err != nil {
		log.Warn("failed to extend the watchdog: ", err)
	}

	err := i.write(rd, length)
	if err == nil {
		err = i.Sink.Finalize()
		if err != nil {
			err = errors.Wrap(ErrFinalizeFailed, err.Error())
		}
	} else {
		if abortErr := i.Sink.Abort(); abortErr != nil {
			log.Warn("failed to abort the firmware image: ", abortErr)
		}
	}

	if wdErr := i.Watchdog.Restore(); wdErr != nil {
		log.Warn("failed to restore the watchdog: ", wdErr)
	}

	if err != nil {
		log.Error(err)
		return err
	}

	if err := i.VersionStore.SaveVersion(version); err != nil {
		// the image is already committed, the next check will report
		// it as new again until the version is persisted
		log.Error("failed to persist the installed version: ", err)
	}

	if committed != nil {
		committed()
	}

	log.Info("firmware installed, restarting the device")

	if err := i.Reboot(); err != nil {
		return errors.Wrap(ErrRestartFailed, err.Error())
	}

	return nil
}

func (i *Installer) write(rd io.Reader, length int64) error {
	chunkSize := i.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	timeout := i.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}

	written, err := i.CopyBackend.Copy(i.Sink, rd, timeout, chunkSize)
	if err != nil {
		return errors.Wrap(ErrWriteFailed, err.Error())
	}

	if written != length {
		log.Warnf("firmware size mismatch: declared %d bytes, written %d bytes", length, written)

		if i.StrictSize {
			return ErrSizeMismatch
		}
	}

	return nil
}
