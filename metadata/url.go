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
	"path"
	"strings"

	"github.com/pkg/errors"
)

// ManifestExtension is the path suffix telling a manifest apart from a
// firmware image
const ManifestExtension = ".json"

var ErrNotManifestURL = errors.New("URL path must end in " + ManifestExtension)

// IsManifestPath reports whether the last path element has the
// manifest extension. The comparison is case sensitive.
func IsManifestPath(p string) bool {
	return path.Ext(p) == ManifestExtension
}

// DeviceManifestURL inserts "_<id>" between the manifest name and its
// extension, "/fw/firmware.json" becoming "/fw/firmware_<id>.json"
func DeviceManifestURL(base *url.URL, id string) (*url.URL, error) {
	if !IsManifestPath(base.Path) {
		return nil, ErrNotManifestURL
	}

	u := *base
	u.Path = strings.TrimSuffix(base.Path, ManifestExtension) + "_" + id + ManifestExtension
	u.RawPath = ""

	return &u, nil
}

// BinaryURL resolves where the firmware described by "m" lives. An
// explicit "url" wins and is resolved against the manifest location,
// otherwise "filename" is looked up next to the manifest.
func BinaryURL(manifestURL *url.URL, m *Manifest) (*url.URL, error) {
	var target *url.URL

	if m.URL != nil && *m.URL != "" {
		var err error
		if target, err = url.Parse(*m.URL); err != nil {
			return nil, errors.Wrap(err, "failed to parse firmware URL")
		}
	} else {
		if m.Filename == "" {
			return nil, errors.Wrap(ErrMissingField, "manifest has an empty filename")
		}

		// a filename is never parsed as a URL, so it stays next to the
		// manifest even when it contains ':' or '?'
		target = &url.URL{Path: m.Filename}
	}

	dir := *manifestURL
	dir.RawQuery = ""
	dir.Fragment = ""

	return dir.ResolveReference(target), nil
}
