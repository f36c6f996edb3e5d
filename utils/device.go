/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package utils

import (
	"encoding/hex"
	"net"
	"strings"

	"github.com/pkg/errors"
)

var ErrNoHardwareAddress = errors.New("no network interface with a hardware address found")

// DeviceIdentifier returns the string that identifies this device to
// the update server
type DeviceIdentifier interface {
	Identity() (string, error)
}

type StaticIdentifier string

func (s StaticIdentifier) Identity() (string, error) {
	return string(s), nil
}

// MacAddressIdentifier uses the hardware address of "Interface" as the
// device identity, formatted as lowercase hex digits without separators.
// An empty "Interface" picks the first non-loopback interface with a
// hardware address.
type MacAddressIdentifier struct {
	Interface string

	interfaces func() ([]net.Interface, error)
}

func NewMacAddressIdentifier(iface string) *MacAddressIdentifier {
	return &MacAddressIdentifier{Interface: iface, interfaces: net.Interfaces}
}

func (m *MacAddressIdentifier) Identity() (string, error) {
	list := m.interfaces
	if list == nil {
		list = net.Interfaces
	}

	ifaces, err := list()
	if err != nil {
		return "", errors.Wrap(err, "failed to list network interfaces")
	}

	for _, iface := range ifaces {
		if m.Interface != "" && iface.Name != m.Interface {
			continue
		}

		if m.Interface == "" && iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		if len(iface.HardwareAddr) == 0 {
			continue
		}

		return hex.EncodeToString(iface.HardwareAddr), nil
	}

	if m.Interface != "" {
		return "", errors.Wrapf(ErrNoHardwareAddress, "interface '%s'", m.Interface)
	}

	return "", ErrNoHardwareAddress
}

// CommandIdentifier runs "CmdLine" and uses its trimmed output as the
// device identity
type CommandIdentifier struct {
	CmdLineExecuter
	CmdLine string
}

func (c *CommandIdentifier) Identity() (string, error) {
	output, err := c.Execute(c.CmdLine)
	if err != nil {
		return "", err
	}

	id := strings.TrimSpace(string(output))
	if id == "" {
		return "", errors.Errorf("command '%s' returned an empty identity", c.CmdLine)
	}

	return id, nil
}
