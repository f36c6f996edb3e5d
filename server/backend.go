/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type Route struct {
	Method string
	Path   string
	Handle httprouter.Handle
}

type Backend interface {
	Routes() []Route
}

func writeJSON(w http.ResponseWriter, code int, out interface{}) {
	outputJSON, _ := json.MarshalIndent(out, "", "    ")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	fmt.Fprint(w, string(outputJSON))
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]interface{}{"error": err.Error()})
}
