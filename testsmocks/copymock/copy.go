/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package copymock

import (
	"io"
	"time"

	"github.com/stretchr/testify/mock"
)

type CopierMock struct {
	mock.Mock
}

func (cm *CopierMock) Copy(wr io.Writer, rd io.Reader, timeout time.Duration, chunkSize int) (int64, error) {
	args := cm.Called(wr, rd, timeout, chunkSize)
	return args.Get(0).(int64), args.Error(1)
}
