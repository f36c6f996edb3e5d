/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package sinkmock

import (
	"github.com/stretchr/testify/mock"
)

type SinkMock struct {
	mock.Mock
}

func (sm *SinkMock) Begin(size int64) error {
	args := sm.Called(size)
	return args.Error(0)
}

func (sm *SinkMock) Write(p []byte) (int, error) {
	args := sm.Called(p)
	return args.Int(0), args.Error(1)
}

func (sm *SinkMock) Finalize() error {
	args := sm.Called()
	return args.Error(0)
}

func (sm *SinkMock) Abort() error {
	args := sm.Called()
	return args.Error(0)
}
