/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package sinkmock

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSinkSession(t *testing.T) {
	expectedError := fmt.Errorf("flash error")

	sm := &SinkMock{}
	sm.On("Begin", int64(1000)).Return(nil)
	sm.On("Write", []byte("data")).Return(4, nil)
	sm.On("Finalize").Return(expectedError)
	sm.On("Abort").Return(nil)

	assert.NoError(t, sm.Begin(1000))

	n, err := sm.Write([]byte("data"))
	assert.Equal(t, 4, n)
	assert.NoError(t, err)

	assert.Equal(t, expectedError, sm.Finalize())
	assert.NoError(t, sm.Abort())

	sm.AssertExpectations(t)
}
