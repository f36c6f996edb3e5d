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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/UpdateHub/patchagent/utils"
)

type EventType int

const (
	EventUpToDate EventType = iota
	EventUpdateAvailable
	// EventInstallSucceeded is delivered once the version was recorded,
	// right before the restart
	EventInstallSucceeded
	EventInstallFailed
	EventInternalError
)

var eventNames = map[EventType]string{
	EventUpToDate:         "up-to-date",
	EventUpdateAvailable:  "update-available",
	EventInstallSucceeded: "install-succeeded",
	EventInstallFailed:    "install-failed",
	EventInternalError:    "internal-error",
}

func (t EventType) String() string {
	if name, ok := eventNames[t]; ok {
		return name
	}

	return fmt.Sprintf("unknown(%d)", int(t))
}

func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

type Event struct {
	Type          EventType `json:"type"`
	Outcome       Outcome   `json:"outcome"`
	LocalVersion  string    `json:"local-version"`
	RemoteVersion string    `json:"remote-version"`
	Err           error     `json:"-"`
}

// Listener receives agent events in emission order. HandleEvent runs on
// the goroutine performing the check, which waits for it to return.
type Listener interface {
	HandleEvent(e Event)
}

type ListenerFunc func(e Event)

func (f ListenerFunc) HandleEvent(e Event) {
	f(e)
}

// ChannelListener forwards events to a channel, dropping them when
// the channel is full
type ChannelListener chan Event

func (c ChannelListener) HandleEvent(e Event) {
	select {
	case c <- e:
	default:
		log.Debugf("event '%s' dropped, listener channel is full", e.Type)
	}
}

// CallbackListener runs the executable at "Path" for each event as
// `<Path> <event> '<remote-version>'` and waits for it. A missing
// executable is not an error.
type CallbackListener struct {
	Path              string
	FileSystemBackend afero.Fs
	utils.CmdLineExecuter
}

func NewCallbackListener(path string, fs afero.Fs) *CallbackListener {
	return &CallbackListener{
		Path:              path,
		FileSystemBackend: fs,
		CmdLineExecuter:   &utils.CmdLine{},
	}
}

func (cl *CallbackListener) HandleEvent(e Event) {
	cl.run(e)
}

func (cl *CallbackListener) run(e Event) error {
	if cl.Path == "" {
		return nil
	}

	exists, _ := afero.Exists(cl.FileSystemBackend, cl.Path)
	if !exists {
		return nil
	}

	cmdline := fmt.Sprintf("%s %s %s", cl.Path, e.Type, utils.QuoteArg(e.RemoteVersion))

	output, err := cl.Execute(cmdline)
	if err != nil {
		log.Warnf("event callback '%s' failed: %s", cl.Path, err)
		return err
	}

	log.Debugf("event callback output: %s", string(output))

	return nil
}
