/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package agent

import (
	"github.com/pkg/errors"
)

var (
	ErrIntervalTooSmall   = errors.New("interval is below the minimum")
	ErrInvalidURL         = errors.New("manifest URL must be http or https and end in .json")
	ErrMissingDeviceID    = errors.New("device identity is required")
	ErrNotConfigured      = errors.New("agent is not configured")
	ErrNoUpdateAvailable  = errors.New("no update has been found by a previous check")
	ErrUnexpectedPayload  = errors.New("unexpected payload kind")
	ErrInvalidStateChange = errors.New("invalid run state change")
)

// ErrorKind classifies the errors reported by the agent
type ErrorKind int

const (
	// ConfigError is fatal to construction
	ConfigError ErrorKind = iota
	// CheckError is recovered locally, the next check is unaffected
	CheckError
	// InstallError leaves the running firmware untouched
	InstallError
	// InternalError signals a programming or resource problem
	InternalError
)

var errorKindNames = map[ErrorKind]string{
	ConfigError:   "config error",
	CheckError:    "check error",
	InstallError:  "install error",
	InternalError: "internal error",
}

func (k ErrorKind) String() string {
	return errorKindNames[k]
}

type Error struct {
	kind  ErrorKind
	cause error
}

func (e *Error) Kind() ErrorKind {
	return e.kind
}

func (e *Error) Cause() error {
	return e.cause
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Error() string {
	return errors.Wrap(e.cause, e.kind.String()).Error()
}

func newError(kind ErrorKind, err error) *Error {
	if err == nil {
		err = errors.New("generic error")
	}

	return &Error{kind: kind, cause: err}
}

func NewConfigError(err error) *Error {
	return newError(ConfigError, err)
}

func NewCheckError(err error) *Error {
	return newError(CheckError, err)
}

func NewInstallError(err error) *Error {
	return newError(InstallError, err)
}

func NewInternalError(err error) *Error {
	return newError(InternalError, err)
}

// IsKind reports whether "err" is an agent error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.kind == kind
	}

	return false
}
