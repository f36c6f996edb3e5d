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
)

type BackendRouter struct {
	HTTPRouter *httprouter.Router
	backend    Backend
}

func NewBackendRouter(b Backend) *BackendRouter {
	br := &BackendRouter{HTTPRouter: httprouter.New(), backend: b}

	for _, route := range b.Routes() {
		br.HTTPRouter.Handle(route.Method, route.Path, logRequest(route.Handle))
	}

	return br
}

func (br *BackendRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	br.HTTPRouter.ServeHTTP(w, r)
}

func logRequest(handle httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		log.Debugf("%s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
		handle(w, r, p)
	}
}
