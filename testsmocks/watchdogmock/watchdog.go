/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package watchdogmock

import (
	"github.com/stretchr/testify/mock"
)

type WatchdogMock struct {
	mock.Mock
}

func (wm *WatchdogMock) Extend() error {
	args := wm.Called()
	return args.Error(0)
}

func (wm *WatchdogMock) Restore() error {
	args := wm.Called()
	return args.Error(0)
}
