/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package agent

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Checker is the part of the agent the scheduler drives
type Checker interface {
	CheckForUpdate(autoInstall bool) (Outcome, error)
	Interval() time.Duration
	RunState() RunState
}

// Daemon runs checks at the agent interval until stopped. A stop
// request is honored between cycles, never during a check.
type Daemon struct {
	checker      Checker
	autoInstall  bool
	MinimumDelay time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

func NewDaemon(c Checker, autoInstall bool) *Daemon {
	return &Daemon{
		checker:      c,
		autoInstall:  autoInstall,
		MinimumDelay: MinimumInterval,
		stop:         make(chan struct{}),
	}
}

func (d *Daemon) Stop() {
	d.stopOnce.Do(func() {
		close(d.stop)
	})
}

// Run blocks until Stop is called or "ctx" is done. The first check
// happens right away.
func (d *Daemon) Run(ctx context.Context) {
	log.Info("update scheduler started")
	defer log.Info("update scheduler stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.stop:
			return
		default:
		}

		delay := d.cycle()

		timer := time.NewTimer(delay)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-d.stop:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (d *Daemon) cycle() time.Duration {
	interval := d.checker.Interval()
	if interval == 0 {
		return d.MinimumDelay
	}

	if d.checker.RunState() == RunStatePaused {
		log.Debug("agent paused, skipping check")
		return d.MinimumDelay
	}

	start := time.Now()

	outcome, err := d.checker.CheckForUpdate(d.autoInstall)
	if err != nil {
		log.Warnf("scheduled check finished with '%s': %s", outcome, err)
	} else {
		log.Debugf("scheduled check finished with '%s'", outcome)
	}

	// the interval may have been replaced by the manifest
	return nextDelay(d.checker.Interval(), time.Since(start), d.MinimumDelay)
}

// nextDelay keeps checks "interval" apart regardless of how long the
// check took, never sleeping less than "minimum"
func nextDelay(interval, elapsed, minimum time.Duration) time.Duration {
	if interval > elapsed && interval-elapsed > minimum {
		return interval - elapsed
	}

	return minimum
}
