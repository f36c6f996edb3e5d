/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package agent

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

type versionRecord struct {
	FirmwareRecord `ini:"Firmware"`
}

type FirmwareRecord struct {
	Version string `ini:"Version"`
}

// IniVersionStore keeps the installed version in the [Firmware]
// section of an INI file
type IniVersionStore struct {
	FileSystemBackend afero.Fs
	Path              string
}

func NewIniVersionStore(fs afero.Fs, path string) *IniVersionStore {
	return &IniVersionStore{FileSystemBackend: fs, Path: path}
}

// LoadVersion returns an empty version when nothing was installed yet
func (s *IniVersionStore) LoadVersion() (string, error) {
	data, err := afero.ReadFile(s.FileSystemBackend, s.Path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	cfg, err := ini.Load(data)
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse '%s'", s.Path)
	}

	r := &versionRecord{}
	if err := cfg.MapTo(r); err != nil {
		return "", err
	}

	return r.Version, nil
}

// SaveVersion replaces the record atomically
func (s *IniVersionStore) SaveVersion(version string) error {
	cfg := ini.Empty()

	err := ini.ReflectFrom(cfg, &versionRecord{FirmwareRecord{Version: version}})
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}
	if _, err = cfg.WriteTo(buf); err != nil {
		return err
	}

	if err = s.FileSystemBackend.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return err
	}

	tmp := s.Path + ".tmp"

	if err = afero.WriteFile(s.FileSystemBackend, tmp, buf.Bytes(), 0644); err != nil {
		return err
	}

	return s.FileSystemBackend.Rename(tmp, s.Path)
}
