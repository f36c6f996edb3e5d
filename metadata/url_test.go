/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package metadata

import (
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, rawurl string) *url.URL {
	u, err := url.Parse(rawurl)
	require.NoError(t, err)
	return u
}

func strPtr(s string) *string {
	return &s
}

func TestIsManifestPath(t *testing.T) {
	assert.True(t, IsManifestPath("/fw/firmware.json"))
	assert.True(t, IsManifestPath("firmware_240ac401beef.json"))
	assert.False(t, IsManifestPath("/fw/firmware.JSON"))
	assert.False(t, IsManifestPath("/fw/firmware.bin"))
	assert.False(t, IsManifestPath("/fw/json"))
	assert.False(t, IsManifestPath("/fw.json/firmware"))
	assert.False(t, IsManifestPath(""))
}

func TestDeviceManifestURL(t *testing.T) {
	u, err := DeviceManifestURL(mustParse(t, "https://example.com/fw/firmware.json"), "240ac401beef")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/fw/firmware_240ac401beef.json", u.String())
}

func TestDeviceManifestURLKeepsBase(t *testing.T) {
	base := mustParse(t, "http://example.com:8080/firmware.json")

	u, err := DeviceManifestURL(base, "abc")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:8080/firmware_abc.json", u.String())
	assert.Equal(t, "http://example.com:8080/firmware.json", base.String())
}

func TestDeviceManifestURLWithFirmwarePath(t *testing.T) {
	u, err := DeviceManifestURL(mustParse(t, "https://example.com/fw/firmware.bin"), "abc")
	assert.Nil(t, u)
	assert.Equal(t, ErrNotManifestURL, err)
}

func TestBinaryURL(t *testing.T) {
	manifestURL := "https://example.com/fw/firmware.json?device=abc&version=1.0"

	testCases := []struct {
		caseName    string
		manifest    *Manifest
		expectedURL string
	}{
		{
			"FilenameNextToManifest",
			&Manifest{Version: "2.0", Filename: "fw.bin"},
			"https://example.com/fw/fw.bin",
		},
		{
			"FilenameWithSubdirectory",
			&Manifest{Version: "2.0", Filename: "images/fw.bin"},
			"https://example.com/fw/images/fw.bin",
		},
		{
			"FilenameWithColon",
			&Manifest{Version: "2.0", Filename: "fw:2.0.bin"},
			"https://example.com/fw/fw:2.0.bin",
		},
		{
			"AbsoluteURLWins",
			&Manifest{Version: "2.0", Filename: "fw.bin", URL: strPtr("http://cdn.example.com/a/fw-2.0.bin")},
			"http://cdn.example.com/a/fw-2.0.bin",
		},
		{
			"RelativeURL",
			&Manifest{Version: "2.0", Filename: "fw.bin", URL: strPtr("../images/fw-2.0.bin")},
			"https://example.com/images/fw-2.0.bin",
		},
		{
			"EmptyURLFallsBackToFilename",
			&Manifest{Version: "2.0", Filename: "fw.bin", URL: strPtr("")},
			"https://example.com/fw/fw.bin",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.caseName, func(t *testing.T) {
			u, err := BinaryURL(mustParse(t, manifestURL), tc.manifest)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedURL, u.String())
		})
	}
}

func TestBinaryURLWithEmptyFilename(t *testing.T) {
	u, err := BinaryURL(mustParse(t, "https://example.com/fw/firmware.json"), &Manifest{Version: "2.0"})
	assert.Nil(t, u)
	assert.Equal(t, ErrMissingField, errors.Cause(err))
}

func TestBinaryURLWithMalformedURL(t *testing.T) {
	u, err := BinaryURL(mustParse(t, "https://example.com/fw/firmware.json"), &Manifest{Version: "2.0", Filename: "fw.bin", URL: strPtr("http://[::1")})
	assert.Nil(t, u)
	assert.Error(t, err)
}
