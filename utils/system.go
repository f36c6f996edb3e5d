/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package utils

const rebootCommand = "/sbin/reboot"

type Rebooter interface {
	Reboot() error
}

// RebooterImpl restarts the device by running the system reboot
// command
type RebooterImpl struct {
	CmdLineExecuter
}

func NewRebooter() *RebooterImpl {
	return &RebooterImpl{CmdLineExecuter: &CmdLine{}}
}

func (r *RebooterImpl) Reboot() error {
	_, err := r.Execute(rebootCommand)

	return err
}
