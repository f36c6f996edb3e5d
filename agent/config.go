/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package agent

import (
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/UpdateHub/patchagent/metadata"
)

const (
	// MinimumInterval is the smallest accepted non-zero poll interval
	// and the scheduler sleep floor
	MinimumInterval = 1000 * time.Millisecond

	DefaultTimeout = 30 * time.Second
)

// Config is immutable once handed to New
type Config struct {
	ManifestURL     string
	AppendDeviceID  bool
	DeviceID        string
	SendDeviceQuery bool
	// Interval zero disables background polling
	Interval    time.Duration
	AutoInstall bool
	RootCA      []byte
	Timeout     time.Duration
	Listeners   []Listener
}

func validateInterval(interval time.Duration) error {
	if interval < 0 || (interval > 0 && interval < MinimumInterval) {
		return errors.Wrapf(ErrIntervalTooSmall, "interval %s, minimum %s", interval, MinimumInterval)
	}

	return nil
}

// Validate checks the configuration without building any state
func (c *Config) Validate() error {
	if err := validateInterval(c.Interval); err != nil {
		return NewConfigError(err)
	}

	if _, err := c.manifestURL(); err != nil {
		return NewConfigError(err)
	}

	if (c.AppendDeviceID || c.SendDeviceQuery) && c.DeviceID == "" {
		return NewConfigError(ErrMissingDeviceID)
	}

	return nil
}

func (c *Config) manifestURL() (*url.URL, error) {
	u, err := url.Parse(c.ManifestURL)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidURL, err.Error())
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Wrapf(ErrInvalidURL, "'%s'", c.ManifestURL)
	}

	if !metadata.IsManifestPath(u.Path) {
		return nil, errors.Wrapf(ErrInvalidURL, "'%s'", c.ManifestURL)
	}

	return u, nil
}
