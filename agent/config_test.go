/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package agent

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/UpdateHub/patchagent/testsmocks/fetchermock"
	"github.com/UpdateHub/patchagent/testsmocks/installermock"
	"github.com/UpdateHub/patchagent/testsmocks/versionstoremock"
)

const baseManifestURL = "http://localhost/fw/firmware.json"

func TestConfigValidateInterval(t *testing.T) {
	testCases := []struct {
		caseName string
		interval time.Duration
		valid    bool
	}{
		{"Disabled", 0, true},
		{"Minimum", MinimumInterval, true},
		{"OneHour", time.Hour, true},
		{"OneNanosecond", time.Nanosecond, false},
		{"BelowMinimum", MinimumInterval - time.Millisecond, false},
		{"Negative", -time.Second, false},
	}

	for _, tc := range testCases {
		t.Run(tc.caseName, func(t *testing.T) {
			c := &Config{ManifestURL: baseManifestURL, Interval: tc.interval}

			err := c.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, IsKind(err, ConfigError))
				assert.Equal(t, ErrIntervalTooSmall, errors.Cause(err))
			}
		})
	}
}

func TestConfigValidateURL(t *testing.T) {
	testCases := []struct {
		caseName string
		url      string
		valid    bool
	}{
		{"HTTP", "http://example.com/firmware.json", true},
		{"HTTPS", "https://example.com:8443/a/b/firmware.json?channel=stable", true},
		{"FTPScheme", "ftp://example.com/firmware.json", false},
		{"NoScheme", "example.com/firmware.json", false},
		{"NoHost", "http:///firmware.json", false},
		{"FirmwareExtension", "http://example.com/firmware.bin", false},
		{"UppercaseExtension", "http://example.com/firmware.JSON", false},
		{"NoPath", "http://example.com", false},
		{"Malformed", "http://[::1/firmware.json", false},
		{"Empty", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.caseName, func(t *testing.T) {
			c := &Config{ManifestURL: tc.url}

			err := c.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, IsKind(err, ConfigError))
				assert.Equal(t, ErrInvalidURL, errors.Cause(err))
			}
		})
	}
}

func TestConfigValidateDeviceID(t *testing.T) {
	c := &Config{ManifestURL: baseManifestURL, AppendDeviceID: true}
	assert.Equal(t, ErrMissingDeviceID, errors.Cause(c.Validate()))

	c = &Config{ManifestURL: baseManifestURL, SendDeviceQuery: true}
	assert.Equal(t, ErrMissingDeviceID, errors.Cause(c.Validate()))

	c = &Config{ManifestURL: baseManifestURL, AppendDeviceID: true, SendDeviceQuery: true, DeviceID: "abc"}
	assert.NoError(t, c.Validate())
}

func TestNewWithInvalidConfigHasNoSideEffect(t *testing.T) {
	configs := []Config{
		{ManifestURL: baseManifestURL, Interval: 500 * time.Millisecond},
		{ManifestURL: "http://localhost/fw/firmware.bin", Interval: time.Hour},
		{ManifestURL: baseManifestURL, AppendDeviceID: true},
	}

	for _, cfg := range configs {
		fm := &fetchermock.FetcherMock{}
		im := &installermock.InstallerMock{}
		vsm := &versionstoremock.VersionStoreMock{}

		a, err := New(cfg, fm, im, vsm)
		assert.Nil(t, a)
		assert.True(t, IsKind(err, ConfigError))

		vsm.AssertNotCalled(t, "LoadVersion")
		fm.AssertExpectations(t)
		im.AssertExpectations(t)
	}
}

func TestNewWithInvalidRootCA(t *testing.T) {
	vsm := &versionstoremock.VersionStoreMock{}

	cfg := Config{ManifestURL: baseManifestURL, RootCA: []byte("garbage")}

	a, err := New(cfg, nil, &installermock.InstallerMock{}, vsm)
	assert.Nil(t, a)
	assert.True(t, IsKind(err, ConfigError))
	vsm.AssertNotCalled(t, "LoadVersion")
}

func TestNewWithoutCollaborators(t *testing.T) {
	a, err := New(Config{ManifestURL: baseManifestURL}, nil, nil, nil)
	assert.Nil(t, a)
	assert.Equal(t, ErrNotConfigured, errors.Cause(err))
}

func TestNewWithVersionStoreFailure(t *testing.T) {
	vsm := &versionstoremock.VersionStoreMock{}
	vsm.On("LoadVersion").Return("", errors.New("corrupted"))

	a, err := New(Config{ManifestURL: baseManifestURL}, &fetchermock.FetcherMock{}, &installermock.InstallerMock{}, vsm)
	assert.Nil(t, a)
	assert.True(t, IsKind(err, ConfigError))
	assert.EqualError(t, err, "config error: failed to load the installed version: corrupted")

	vsm.AssertExpectations(t)
}

func TestNewBuildsHTTPFetcher(t *testing.T) {
	vsm := &versionstoremock.VersionStoreMock{}
	vsm.On("LoadVersion").Return("1.0", nil)

	a, err := New(Config{ManifestURL: baseManifestURL, Interval: time.Minute}, nil, &installermock.InstallerMock{}, vsm)
	assert.NoError(t, err)
	assert.NotNil(t, a.Fetcher)
	assert.Equal(t, "1.0", a.LocalVersion())
	assert.Equal(t, time.Minute, a.Interval())
	assert.Equal(t, RunStateIdle, a.RunState())

	vsm.AssertExpectations(t)
}
