/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package utils

import (
	"fmt"
	"os"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/pkg/errors"
)

var ErrNotifySocketUnavailable = errors.New("service manager notify socket unavailable")

// Watchdog postpones the liveness deadline of the running process
// while a long blocking operation is in progress
type Watchdog interface {
	Extend() error
	Restore() error
}

type NoopWatchdog struct{}

func (NoopWatchdog) Extend() error  { return nil }
func (NoopWatchdog) Restore() error { return nil }

// SystemdWatchdog talks to the service manager over $NOTIFY_SOCKET.
// Extend raises the watchdog timeout to "ExtendUSec" and Restore puts
// back the timeout the service was started with ($WATCHDOG_USEC).
type SystemdWatchdog struct {
	ExtendUSec   uint64
	OriginalUSec uint64
}

// NewSystemdWatchdog returns nil when the process is not supervised by
// systemd
func NewSystemdWatchdog(extendUSec uint64) *SystemdWatchdog {
	if os.Getenv("NOTIFY_SOCKET") == "" {
		return nil
	}

	w := &SystemdWatchdog{ExtendUSec: extendUSec}

	if original, err := daemon.SdWatchdogEnabled(false); err == nil {
		w.OriginalUSec = uint64(original.Microseconds())
	}

	return w
}

func (w *SystemdWatchdog) Extend() error {
	return notify(fmt.Sprintf("WATCHDOG_USEC=%d\nWATCHDOG=1", w.ExtendUSec))
}

func (w *SystemdWatchdog) Restore() error {
	if w.OriginalUSec == 0 {
		return notify(daemon.SdNotifyWatchdog)
	}

	return notify(fmt.Sprintf("WATCHDOG_USEC=%d\nWATCHDOG=1", w.OriginalUSec))
}

func notify(state string) error {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		return errors.Wrap(err, "failed to notify the service manager")
	}

	if !sent {
		return ErrNotifySocketUnavailable
	}

	return nil
}
