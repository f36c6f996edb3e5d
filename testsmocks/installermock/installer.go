/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package installermock

import (
	"io"

	"github.com/stretchr/testify/mock"
)

type InstallerMock struct {
	mock.Mock
}

func (im *InstallerMock) Install(rd io.Reader, length int64, version string, committed func()) error {
	args := im.Called(rd, length, version, committed)
	return args.Error(0)
}
