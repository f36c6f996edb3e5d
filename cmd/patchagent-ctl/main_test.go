/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type request struct {
	method string
	path   string
}

func newAgentServer(t *testing.T, requests *[]request) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests = append(*requests, request{r.Method, r.URL.Path})

		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/status":
			fmt.Fprint(w, `{"status": "idle", "local-version": "1.0"}`)
		case "/pause":
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"error": "internal error: agent is not configured"}`)
		case "/broken":
			fmt.Fprint(w, `not json`)
		case "/update":
			w.WriteHeader(http.StatusAccepted)
			fmt.Fprint(w, `{"message": "request accepted, update procedure fired"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{}`)
		}
	}))
}

func TestCommands(t *testing.T) {
	var requests []request

	s := newAgentServer(t, &requests)
	defer s.Close()

	testCases := []struct {
		args           []string
		expectedOutput map[string]interface{}
		expectedError  string
	}{
		{
			[]string{"status"},
			map[string]interface{}{"status": "idle", "local-version": "1.0"},
			"",
		},
		{
			[]string{"update"},
			map[string]interface{}{"message": "request accepted, update procedure fired"},
			"",
		},
		{
			[]string{"pause"},
			nil,
			"internal error: agent is not configured",
		},
		{
			[]string{"resume"},
			nil,
			"agent replied with HTTP code 404",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.args[0], func(t *testing.T) {
			out := &bytes.Buffer{}

			cmd := newRootCmd(out)
			cmd.SetArgs(append(tc.args, "--address", s.URL, "--no-color"))
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})

			err := cmd.Execute()

			if tc.expectedError != "" {
				assert.EqualError(t, err, tc.expectedError)
				assert.Equal(t, "", out.String())
				return
			}

			require.NoError(t, err)

			output := map[string]interface{}{}
			assert.NoError(t, json.Unmarshal(out.Bytes(), &output))
			assert.Equal(t, tc.expectedOutput, output)
		})
	}

	assert.Equal(t, []request{
		{"GET", "/status"},
		{"POST", "/update"},
		{"POST", "/pause"},
		{"POST", "/resume"},
	}, requests)
}

func TestAgentClientWithInvalidResponse(t *testing.T) {
	var requests []request

	s := newAgentServer(t, &requests)
	defer s.Close()

	_, err := NewAgentClient(s.URL + "/").Get("/broken")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid response from the agent")
}

func TestAgentClientWithUnreachableAgent(t *testing.T) {
	s := httptest.NewServer(http.NotFoundHandler())
	address := s.URL
	s.Close()

	_, err := NewAgentClient(address).Get("/info")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reach the agent")
}

func TestBuildURL(t *testing.T) {
	c := NewAgentClient("http://localhost:8080/")
	assert.Equal(t, "http://localhost:8080/update/probe", c.buildURL("/update/probe"))

	c = NewAgentClient(defaultAddress)
	assert.Equal(t, "http://localhost:8080/info", c.buildURL("info"))
}

func TestCommandTable(t *testing.T) {
	cmd := newRootCmd(&bytes.Buffer{})

	for _, c := range commands {
		sub, _, err := cmd.Find([]string{c.use})
		assert.NoError(t, err)
		assert.Equal(t, c.use, sub.Name())
	}
}
