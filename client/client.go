/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package client

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const DefaultUserAgent = "patchagent"

var ErrInvalidRootCA = errors.New("no valid certificate found in root CA material")

type ApiClient struct {
	http.Client

	UserAgent string
	// ManifestTimeout bounds a whole manifest fetch, redirects and body
	// included. Firmware streams are only bounded up to the response
	// headers.
	ManifestTimeout time.Duration
}

// NewApiClient returns a client that never follows redirects by
// itself, Fetch does. "timeout" bounds dialing, the TLS handshake and
// the wait for response headers. "rootCA" is optional PEM material
// replacing the system trust store.
func NewApiClient(timeout time.Duration, rootCA []byte) (*ApiClient, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if timeout > 0 {
		dialer := &net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}

		transport.DialContext = dialer.DialContext
		transport.TLSHandshakeTimeout = timeout
		transport.ResponseHeaderTimeout = timeout
	}

	if len(rootCA) > 0 {
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(rootCA) {
			return nil, ErrInvalidRootCA
		}

		transport.TLSClientConfig = &tls.Config{RootCAs: pool}
	}

	c := &ApiClient{
		Client: http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		UserAgent:       DefaultUserAgent,
		ManifestTimeout: timeout,
	}

	return c, nil
}

func (client *ApiClient) Request() *ApiRequest {
	return &ApiRequest{
		client: client,
	}
}

type ApiRequest struct {
	client *ApiClient
}

type ApiRequester interface {
	Client() *ApiClient
	Do(req *http.Request) (*http.Response, error)
}

func (r *ApiRequest) Client() *ApiClient {
	return r.client
}

func (r *ApiRequest) Do(req *http.Request) (*http.Response, error) {
	return r.client.Do(req)
}
