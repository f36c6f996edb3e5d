/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package agent

import (
	"fmt"
)

// RunState holds the observable phase of the agent
type RunState int32

const (
	// RunStatePaused is set when background checks are suspended
	RunStatePaused RunState = iota
	// RunStateIdle is set when the agent is waiting for the next check
	RunStateIdle
	// RunStateChecking is set while a manifest is being fetched and
	// compared
	RunStateChecking
	// RunStateInstalling is set while a firmware image is being
	// written. It is kept after a successful install since the device
	// is restarting.
	RunStateInstalling
	// RunStateError is set when an install failed
	RunStateError
)

var runStateNames = map[RunState]string{
	RunStatePaused:     "paused",
	RunStateIdle:       "idle",
	RunStateChecking:   "checking",
	RunStateInstalling: "installing",
	RunStateError:      "error",
}

func (s RunState) String() string {
	if name, ok := runStateNames[s]; ok {
		return name
	}

	return fmt.Sprintf("unknown(%d)", int32(s))
}

func (s RunState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// RunStateChange is the request accepted by SetRunState
type RunStateChange int

const (
	Pause RunStateChange = iota
	Resume
)

// Outcome is the result of a check or install cycle
type Outcome int

const (
	OutcomeUpToDate Outcome = iota
	OutcomeUpdateAvailable
	OutcomeUpdateInstalled
	OutcomeCheckFailed
	OutcomeInstallFailed
)

var outcomeNames = map[Outcome]string{
	OutcomeUpToDate:        "up-to-date",
	OutcomeUpdateAvailable: "update-available",
	OutcomeUpdateInstalled: "update-installed",
	OutcomeCheckFailed:     "check-failed",
	OutcomeInstallFailed:   "install-failed",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}

	return fmt.Sprintf("unknown(%d)", int(o))
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
