/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package controllermock

import (
	"github.com/stretchr/testify/mock"

	"github.com/UpdateHub/patchagent/agent"
)

type ControllerMock struct {
	mock.Mock
}

func (cm *ControllerMock) CheckForUpdate(autoInstall bool) (agent.Outcome, error) {
	args := cm.Called(autoInstall)
	return args.Get(0).(agent.Outcome), args.Error(1)
}

func (cm *ControllerMock) InstallUpdate() error {
	args := cm.Called()
	return args.Error(0)
}

func (cm *ControllerMock) SetRunState(change agent.RunStateChange) error {
	args := cm.Called(change)
	return args.Error(0)
}

func (cm *ControllerMock) Status() agent.Status {
	args := cm.Called()
	return args.Get(0).(agent.Status)
}
