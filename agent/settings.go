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
	"encoding/json"
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/go-ini/ini"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/UpdateHub/patchagent/utils"
)

const (
	DefaultSettingsPath = "/etc/patchagent.conf"

	defaultPollingInterval = 60 * 60 // one hour (in seconds)
	defaultNetworkTimeout  = 30
	defaultCopyTimeout     = 30
)

type Settings struct {
	PollingSettings  `ini:"Polling" json:"polling"`
	NetworkSettings  `ini:"Network" json:"network"`
	UpdateSettings   `ini:"Update" json:"update"`
	DeviceSettings   `ini:"Device" json:"device"`
	CallbackSettings `ini:"Callback" json:"callback"`
}

// Durations are plain seconds, go-ini would read a bare number as
// nanoseconds
type PollingSettings struct {
	PollingInterval int  `ini:"Interval" json:"interval"`
	AutoInstall     bool `ini:"AutoInstall" json:"auto-install"`
}

type NetworkSettings struct {
	ManifestURL     string `ini:"ManifestURL" json:"manifest-url"`
	AppendDeviceID  bool   `ini:"AppendDeviceID" json:"append-device-id"`
	SendDeviceQuery bool   `ini:"SendDeviceQuery" json:"send-device-query"`
	RootCAPath      string `ini:"RootCAPath" json:"root-ca-path"`
	Timeout         int    `ini:"Timeout" json:"timeout"`
}

type UpdateSettings struct {
	ImagePath    string `ini:"ImagePath" json:"image-path"`
	MaxImageSize int64  `ini:"MaxImageSize" json:"max-image-size"`
	StrictSize   bool   `ini:"StrictSize" json:"strict-size"`
	CopyTimeout  int    `ini:"CopyTimeout" json:"copy-timeout"`
	StatePath    string `ini:"StatePath" json:"state-path"`
}

type DeviceSettings struct {
	Identity        string `ini:"Identity" json:"identity"`
	IdentityCommand string `ini:"IdentityCommand" json:"identity-command"`
	Interface       string `ini:"Interface" json:"interface"`
	WatchdogUSec    uint64 `ini:"WatchdogUSec" json:"watchdog-usec"`
}

type CallbackSettings struct {
	EventCallbackPath string `ini:"EventCallbackPath" json:"event-callback-path"`
}

func init() {
	ini.PrettyFormat = false
}

func defaultSettings() *Settings {
	return &Settings{
		PollingSettings: PollingSettings{
			PollingInterval: defaultPollingInterval,
			AutoInstall:     true,
		},

		NetworkSettings: NetworkSettings{
			ManifestURL:     "",
			AppendDeviceID:  true,
			SendDeviceQuery: false,
			RootCAPath:      "",
			Timeout:         defaultNetworkTimeout,
		},

		UpdateSettings: UpdateSettings{
			ImagePath:    "/var/lib/patchagent/firmware.img",
			MaxImageSize: 0,
			StrictSize:   false,
			CopyTimeout:  defaultCopyTimeout,
			StatePath:    "/var/lib/patchagent/state.ini",
		},

		DeviceSettings: DeviceSettings{},

		CallbackSettings: CallbackSettings{
			EventCallbackPath: "/usr/share/patchagent/event-callback",
		},
	}
}

func LoadSettings(r io.Reader) (*Settings, error) {
	cfg, err := ini.Load(ioutil.NopCloser(r))
	if err != nil || cfg == nil {
		return nil, err
	}

	s := defaultSettings()

	err = cfg.MapTo(s)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// LoadSettingsFile reads "path" from "fs", falling back to the
// defaults when the file does not exist
func LoadSettingsFile(fs afero.Fs, path string) (*Settings, error) {
	data, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) {
		log.Warnf("settings file '%s' not found, using defaults", path)
		data = []byte{}
	} else if err != nil {
		return nil, err
	}

	s, err := LoadSettings(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse settings file '%s'", path)
	}

	return s, nil
}

func (s *Settings) ToString() string {
	output, _ := json.MarshalIndent(s, "", "    ")
	return string(output)
}

// DeviceIdentifier picks, in order, the static identity, the identity
// command and the interface hardware address
func (s *Settings) DeviceIdentifier(cmd utils.CmdLineExecuter) utils.DeviceIdentifier {
	if s.DeviceSettings.Identity != "" {
		return utils.StaticIdentifier(s.DeviceSettings.Identity)
	}

	if s.DeviceSettings.IdentityCommand != "" {
		return &utils.CommandIdentifier{CmdLineExecuter: cmd, CmdLine: s.DeviceSettings.IdentityCommand}
	}

	return utils.NewMacAddressIdentifier(s.DeviceSettings.Interface)
}

// ToConfig builds the agent configuration. The device identity is only
// resolved when the manifest URL or query needs it.
func (s *Settings) ToConfig(fs afero.Fs, id utils.DeviceIdentifier) (*Config, error) {
	c := &Config{
		ManifestURL:     s.NetworkSettings.ManifestURL,
		AppendDeviceID:  s.NetworkSettings.AppendDeviceID,
		SendDeviceQuery: s.NetworkSettings.SendDeviceQuery,
		Interval:        time.Duration(s.PollingSettings.PollingInterval) * time.Second,
		AutoInstall:     s.PollingSettings.AutoInstall,
		Timeout:         time.Duration(s.NetworkSettings.Timeout) * time.Second,
	}

	if s.NetworkSettings.RootCAPath != "" {
		rootCA, err := afero.ReadFile(fs, s.NetworkSettings.RootCAPath)
		if err != nil {
			return nil, NewConfigError(errors.Wrap(err, "failed to read root CA"))
		}

		c.RootCA = rootCA
	}

	if c.AppendDeviceID || c.SendDeviceQuery {
		deviceID, err := id.Identity()
		if err != nil {
			return nil, NewConfigError(errors.Wrap(err, "failed to get the device identity"))
		}

		c.DeviceID = deviceID
	}

	return c, nil
}

// Interval returns the configured poll interval
func (s *Settings) Interval() time.Duration {
	return time.Duration(s.PollingSettings.PollingInterval) * time.Second
}
