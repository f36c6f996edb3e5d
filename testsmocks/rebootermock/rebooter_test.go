/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package rebootermock

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReboot(t *testing.T) {
	rm := &RebooterMock{}
	rm.On("Reboot").Return(nil).Once()
	rm.On("Reboot").Return(fmt.Errorf("reboot: not permitted")).Once()

	assert.NoError(t, rm.Reboot())
	assert.EqualError(t, rm.Reboot(), "reboot: not permitted")

	rm.AssertExpectations(t)
	rm.AssertNumberOfCalls(t, "Reboot", 2)
}
