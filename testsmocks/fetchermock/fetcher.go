/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package fetchermock

import (
	"github.com/stretchr/testify/mock"

	"github.com/UpdateHub/patchagent/client"
)

type FetcherMock struct {
	mock.Mock
}

func (fm *FetcherMock) Fetch(rawurl string) (*client.Payload, error) {
	args := fm.Called(rawurl)
	return args.Get(0).(*client.Payload), args.Error(1)
}
