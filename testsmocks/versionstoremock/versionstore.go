/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package versionstoremock

import (
	"github.com/stretchr/testify/mock"
)

type VersionStoreMock struct {
	mock.Mock
}

func (vsm *VersionStoreMock) LoadVersion() (string, error) {
	args := vsm.Called()
	return args.String(0), args.Error(1)
}

func (vsm *VersionStoreMock) SaveVersion(version string) error {
	args := vsm.Called(version)
	return args.Error(0)
}
