/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package server

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	log "github.com/sirupsen/logrus"

	"github.com/UpdateHub/patchagent/agent"
	"github.com/UpdateHub/patchagent/utils"
)

// Controller is the part of the agent exposed through the local API
type Controller interface {
	CheckForUpdate(autoInstall bool) (agent.Outcome, error)
	InstallUpdate() error
	SetRunState(change agent.RunStateChange) error
	Status() agent.Status
}

type AgentBackend struct {
	Controller
	utils.Rebooter

	Settings  *agent.Settings
	LogBuffer *LogBuffer
	Version   string
	BuildTime string
}

func NewAgentBackend(c Controller, r utils.Rebooter, settings *agent.Settings) *AgentBackend {
	return &AgentBackend{Controller: c, Rebooter: r, Settings: settings}
}

func (ab *AgentBackend) Routes() []Route {
	return []Route{
		{Method: "GET", Path: "/info", Handle: ab.info},
		{Method: "GET", Path: "/status", Handle: ab.status},
		{Method: "POST", Path: "/update", Handle: ab.update},
		{Method: "POST", Path: "/update/probe", Handle: ab.updateProbe},
		{Method: "POST", Path: "/update/install", Handle: ab.updateInstall},
		{Method: "POST", Path: "/pause", Handle: ab.pause},
		{Method: "POST", Path: "/resume", Handle: ab.resume},
		{Method: "POST", Path: "/reboot", Handle: ab.reboot},
		{Method: "GET", Path: "/log", Handle: ab.log},
	}
}

func (ab *AgentBackend) info(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	s := ab.Controller.Status()

	out := map[string]interface{}{}

	out["version"] = ab.Version
	out["build-time"] = ab.BuildTime
	out["config"] = ab.Settings
	out["local-version"] = s.LocalVersion
	out["remote-version"] = s.RemoteVersion

	writeJSON(w, http.StatusOK, out)
}

func (ab *AgentBackend) status(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	writeJSON(w, http.StatusOK, ab.Controller.Status())
}

func (ab *AgentBackend) update(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	go func() {
		if _, err := ab.Controller.CheckForUpdate(true); err != nil {
			log.Warn("requested update failed: ", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "request accepted, update procedure fired",
	})
}

func (ab *AgentBackend) updateProbe(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	outcome, err := ab.Controller.CheckForUpdate(false)

	s := ab.Controller.Status()

	out := map[string]interface{}{}

	out["outcome"] = outcome
	out["update-available"] = outcome == agent.OutcomeUpdateAvailable
	out["local-version"] = s.LocalVersion
	out["remote-version"] = s.RemoteVersion

	if err != nil {
		out["error"] = err.Error()
	}

	writeJSON(w, http.StatusOK, out)
}

func (ab *AgentBackend) updateInstall(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	go func() {
		if err := ab.Controller.InstallUpdate(); err != nil {
			log.Warn("requested install failed: ", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "request accepted, installing update",
	})
}

func (ab *AgentBackend) changeRunState(w http.ResponseWriter, change agent.RunStateChange) {
	if err := ab.Controller.SetRunState(change); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": ab.Controller.Status().RunState,
	})
}

func (ab *AgentBackend) pause(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	ab.changeRunState(w, agent.Pause)
}

func (ab *AgentBackend) resume(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	ab.changeRunState(w, agent.Resume)
}

func (ab *AgentBackend) reboot(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	go func() {
		if err := ab.Rebooter.Reboot(); err != nil {
			log.Error("requested reboot failed: ", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "request accepted, rebooting the device",
	})
}

func (ab *AgentBackend) log(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	entries := []LogEntry{}
	if ab.LogBuffer != nil {
		entries = ab.LogBuffer.Entries()
	}

	writeJSON(w, http.StatusOK, entries)
}
