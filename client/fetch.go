/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package client

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"mime"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/UpdateHub/patchagent/metadata"
)

const (
	MaxRedirects    = 10
	MaxManifestSize = 64 * 1024

	ManifestContentType = "application/json"
	FirmwareContentType = "application/octet-stream"
)

var (
	ErrMissingLocation       = errors.New("redirect response without Location header")
	ErrTooManyRedirects      = errors.New("too many redirects")
	ErrUnexpectedContentType = errors.New("unexpected content type")
	ErrUnknownContentLength  = errors.New("firmware response without Content-Length")
	ErrManifestTooLarge      = errors.New("manifest exceeds the maximum size")
)

type PayloadKind int

const (
	KindManifest PayloadKind = iota
	KindFirmware
)

func (k PayloadKind) String() string {
	if k == KindManifest {
		return "manifest"
	}

	return "firmware"
}

// Payload is the outcome of a successful fetch. Manifests are buffered
// in Body; firmware is handed over as Stream, which the caller must
// close.
type Payload struct {
	Kind          PayloadKind
	URL           *url.URL
	Body          []byte
	Stream        io.ReadCloser
	ContentLength int64
}

type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("invalid response received from the server. HTTP code: %d", e.StatusCode)
}

type Fetcher interface {
	Fetch(rawurl string) (*Payload, error)
}

// Fetch issues a GET for "rawurl" following up to MaxRedirects
// redirects. A path ending in the manifest extension yields a buffered
// manifest, anything else a firmware stream.
func (client *ApiClient) Fetch(rawurl string) (*Payload, error) {
	target, err := url.Parse(rawurl)
	if err != nil {
		return nil, errors.Wrap(err, "invalid fetch URL")
	}

	kind := KindFirmware
	if metadata.IsManifestPath(target.Path) {
		kind = KindManifest
	}

	ctx := context.Background()
	if kind == KindManifest && client.ManifestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, client.ManifestTimeout)
		defer cancel()
	}

	api := client.Request()

	for hops := 0; ; {
		res, err := get(ctx, api, target)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fetch '%s'", target)
		}

		if res.StatusCode >= 300 && res.StatusCode < 400 {
			location := res.Header.Get("Location")
			discard(res)

			if location == "" {
				return nil, ErrMissingLocation
			}

			if hops == MaxRedirects {
				return nil, ErrTooManyRedirects
			}
			hops++

			next, err := target.Parse(location)
			if err != nil {
				return nil, errors.Wrap(err, "invalid redirect location")
			}

			log.Debugf("following redirect %d to '%s'", hops, next)

			target = next
			continue
		}

		if res.StatusCode != http.StatusOK {
			discard(res)
			return nil, &StatusError{StatusCode: res.StatusCode}
		}

		return newPayload(kind, target, res)
	}
}

func get(ctx context.Context, api ApiRequester, target *url.URL) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", api.Client().UserAgent)

	return api.Do(req)
}

func newPayload(kind PayloadKind, target *url.URL, res *http.Response) (*Payload, error) {
	expected := FirmwareContentType
	if kind == KindManifest {
		expected = ManifestContentType
	}

	if ct := res.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || mediaType != expected {
			discard(res)
			return nil, errors.Wrapf(ErrUnexpectedContentType, "%s '%s'", kind, ct)
		}
	}

	p := &Payload{Kind: kind, URL: target}

	if kind == KindFirmware {
		if res.ContentLength <= 0 {
			discard(res)
			return nil, ErrUnknownContentLength
		}

		p.Stream = res.Body
		p.ContentLength = res.ContentLength

		return p, nil
	}

	defer res.Body.Close()

	body, err := ioutil.ReadAll(io.LimitReader(res.Body, MaxManifestSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read manifest")
	}

	if len(body) > MaxManifestSize {
		return nil, ErrManifestTooLarge
	}

	p.Body = body
	p.ContentLength = int64(len(body))

	return p, nil
}

// discard drains a bounded amount so the connection can be reused
func discard(res *http.Response) {
	io.Copy(ioutil.Discard, io.LimitReader(res.Body, MaxManifestSize))
	res.Body.Close()
}
