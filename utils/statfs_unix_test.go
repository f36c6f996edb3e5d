//go:build linux || darwin || freebsd

/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package utils

import (
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFreeSpace(t *testing.T) {
	free, err := FreeSpace(t.TempDir())
	assert.NoError(t, err)
	assert.True(t, free > 0)
}

func TestFreeSpaceWithInexistantPath(t *testing.T) {
	free, err := FreeSpace(path.Join(t.TempDir(), "inexistant"))
	assert.Error(t, err)
	assert.Equal(t, uint64(0), free)
}
