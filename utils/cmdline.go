/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package utils

import (
	"fmt"
	"os/exec"
	"strings"

	shellwords "github.com/mattn/go-shellwords"
	"github.com/pkg/errors"
)

// ErrEmptyCmdLine is returned when there is nothing to execute
var ErrEmptyCmdLine = errors.New("empty command line")

type CmdLineExecuter interface {
	Execute(cmdline string) ([]byte, error)
}

type CmdLine struct {
}

// Execute runs "cmdline" and returns its combined stdout and stderr
func (cl *CmdLine) Execute(cmdline string) ([]byte, error) {
	list, err := shellwords.NewParser().Parse(cmdline)
	if err != nil {
		return nil, err
	}

	if len(list) == 0 {
		return nil, ErrEmptyCmdLine
	}

	cmd := exec.Command(list[0], list[1:]...)
	ret, err := cmd.CombinedOutput()

	if exitErr, ok := err.(*exec.ExitError); ok {
		if !exitErr.Success() {
			return ret, fmt.Errorf("Error executing command '%s': %s", cmdline, string(ret))
		}
	}

	return ret, err
}

// QuoteArg single-quotes "arg" so it reaches the executed command as
// one argument
func QuoteArg(arg string) string {
	return "'" + strings.Replace(arg, "'", `'\''`, -1) + "'"
}
