/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/parnurzeal/gorequest"
	"github.com/pkg/errors"
)

const defaultAddress = "http://localhost:8080"

// AgentClient talks to the local API of a running agent
type AgentClient struct {
	Address string
	Timeout time.Duration
}

func NewAgentClient(address string) *AgentClient {
	return &AgentClient{Address: address, Timeout: 60 * time.Second}
}

func (c *AgentClient) buildURL(path string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(c.Address, "/"), strings.TrimLeft(path, "/"))
}

func (c *AgentClient) Get(path string) (interface{}, error) {
	return c.do(gorequest.New().Timeout(c.Timeout).Get(c.buildURL(path)))
}

func (c *AgentClient) Post(path string) (interface{}, error) {
	return c.do(gorequest.New().Timeout(c.Timeout).Post(c.buildURL(path)))
}

func (c *AgentClient) do(req *gorequest.SuperAgent) (interface{}, error) {
	res, body, errs := req.EndBytes()
	if len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "failed to reach the agent")
	}

	var out interface{}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errors.Wrap(err, "invalid response from the agent")
	}

	if res.StatusCode >= http.StatusBadRequest {
		if m, ok := out.(map[string]interface{}); ok {
			if msg, ok := m["error"].(string); ok {
				return nil, errors.New(msg)
			}
		}

		return nil, errors.Errorf("agent replied with HTTP code %d", res.StatusCode)
	}

	return out, nil
}
