//go:build !linux && !darwin && !freebsd

/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package utils

import (
	"github.com/pkg/errors"
)

func FreeSpace(path string) (uint64, error) {
	return 0, errors.New("free space query is not supported on this platform")
}
