/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package metadata

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManifest(t *testing.T) {
	m, err := NewManifest([]byte(`{
	  "version": "2.0",
	  "filename": "fw.bin",
	  "url": "https://cdn.example.com/fw-2.0.bin",
	  "releaseNotes": "bug fixes",
	  "updateInterval": 7200
	}`))
	require.NoError(t, err)

	assert.Equal(t, "2.0", m.Version)
	assert.Equal(t, "fw.bin", m.Filename)
	require.NotNil(t, m.URL)
	assert.Equal(t, "https://cdn.example.com/fw-2.0.bin", *m.URL)
	require.NotNil(t, m.ReleaseNotes)
	assert.Equal(t, "bug fixes", *m.ReleaseNotes)
	require.NotNil(t, m.UpdateInterval)
	assert.Equal(t, 2*time.Hour, *m.UpdateInterval)
}

func TestNewManifestWithOnlyMandatoryFields(t *testing.T) {
	m, err := NewManifest([]byte(`{"version": "1.0", "filename": "fw.bin"}`))
	require.NoError(t, err)

	assert.Equal(t, "1.0", m.Version)
	assert.Equal(t, "fw.bin", m.Filename)
	assert.Nil(t, m.URL)
	assert.Nil(t, m.ReleaseNotes)
	assert.Nil(t, m.UpdateInterval)
}

func TestNewManifestWithInvalidDocument(t *testing.T) {
	testCases := []struct {
		caseName      string
		content       string
		expectedCause error
	}{
		{"MissingVersion", `{"filename": "fw.bin"}`, ErrMissingField},
		{"MissingFilename", `{"version": "2.0"}`, ErrMissingField},
		{"NullVersion", `{"version": null, "filename": "fw.bin"}`, ErrMissingField},
		{"WrongCaseKeys", `{"Version": "2.0", "Filename": "fw.bin"}`, ErrMissingField},
		{"NumericVersion", `{"version": 2, "filename": "fw.bin"}`, ErrInvalidField},
		{"NumericURL", `{"version": "2", "filename": "fw.bin", "url": 1}`, ErrInvalidField},
		{"ObjectReleaseNotes", `{"version": "2", "filename": "fw.bin", "releaseNotes": {}}`, ErrInvalidField},
		{"NullDocument", `null`, ErrInvalidField},
	}

	for _, tc := range testCases {
		t.Run(tc.caseName, func(t *testing.T) {
			m, err := NewManifest([]byte(tc.content))
			assert.Nil(t, m)
			assert.Equal(t, tc.expectedCause, errors.Cause(err))
		})
	}
}

func TestNewManifestWithMalformedJSON(t *testing.T) {
	for _, content := range []string{``, `{`, `[1, 2]`, `"version"`} {
		m, err := NewManifest([]byte(content))
		assert.Nil(t, m)
		assert.Error(t, err)
	}
}

func TestNewManifestIgnoresInvalidUpdateInterval(t *testing.T) {
	hook := test.NewGlobal()
	defer logrus.StandardLogger().ReplaceHooks(make(logrus.LevelHooks))

	for _, value := range []string{`-10`, `"3600"`, `1.5`} {
		m, err := NewManifest([]byte(`{"version": "2", "filename": "fw.bin", "updateInterval": ` + value + `}`))
		require.NoError(t, err)
		assert.Nil(t, m.UpdateInterval)
	}

	require.Len(t, hook.Entries, 3)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "ignoring invalid manifest updateInterval: 1.5", hook.LastEntry().Message)
}

func TestNewManifestWithZeroUpdateInterval(t *testing.T) {
	m, err := NewManifest([]byte(`{"version": "2", "filename": "fw.bin", "updateInterval": 0}`))
	require.NoError(t, err)
	require.NotNil(t, m.UpdateInterval)
	assert.Equal(t, time.Duration(0), *m.UpdateInterval)
}

func TestNewManifestWithEmptyVersion(t *testing.T) {
	m, err := NewManifest([]byte(`{"version": "", "filename": "fw.bin"}`))
	require.NoError(t, err)
	assert.Equal(t, "", m.Version)
}
