/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package metadata

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var (
	ErrMissingField = errors.New("missing mandatory field")
	ErrInvalidField = errors.New("invalid field type")
)

// Manifest describes the latest firmware published by the update
// server. Keys are matched case-sensitively.
type Manifest struct {
	Version        string         `json:"version"`
	Filename       string         `json:"filename"`
	URL            *string        `json:"url,omitempty"`
	ReleaseNotes   *string        `json:"releaseNotes,omitempty"`
	UpdateInterval *time.Duration `json:"-"`
}

func NewManifest(bytes []byte) (*Manifest, error) {
	// decoding into a map keeps key lookup exact, encoding/json struct
	// decoding would also accept "Version" or "FILENAME"
	var fields map[string]json.RawMessage

	if err := json.Unmarshal(bytes, &fields); err != nil {
		return nil, errors.Wrap(err, "failed to parse manifest")
	}

	if fields == nil {
		return nil, errors.Wrap(ErrInvalidField, "manifest must be a JSON object")
	}

	m := &Manifest{}

	var err error

	if m.Version, err = requiredString(fields, "version"); err != nil {
		return nil, err
	}

	if m.Filename, err = requiredString(fields, "filename"); err != nil {
		return nil, err
	}

	if m.URL, err = optionalString(fields, "url"); err != nil {
		return nil, err
	}

	if m.ReleaseNotes, err = optionalString(fields, "releaseNotes"); err != nil {
		return nil, err
	}

	if raw, ok := fields["updateInterval"]; ok && !isNull(raw) {
		var seconds int64

		if err := json.Unmarshal(raw, &seconds); err != nil || seconds < 0 {
			log.Warnf("ignoring invalid manifest updateInterval: %s", string(raw))
		} else {
			interval := time.Duration(seconds) * time.Second
			m.UpdateInterval = &interval
		}
	}

	return m, nil
}

func requiredString(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return "", errors.Wrapf(ErrMissingField, "manifest field '%s'", key)
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", errors.Wrapf(ErrInvalidField, "manifest field '%s' must be a string", key)
	}

	return value, nil
}

func optionalString(fields map[string]json.RawMessage, key string) (*string, error) {
	raw, ok := fields[key]
	if !ok || isNull(raw) {
		return nil, nil
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, errors.Wrapf(ErrInvalidField, "manifest field '%s' must be a string", key)
	}

	return &value, nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
