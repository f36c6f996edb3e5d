/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hokaccha/go-prettyjson"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type command struct {
	use    string
	short  string
	method string
	path   string
}

var commands = []command{
	{"info", "Print general information", "GET", "/info"},
	{"status", "Print the update session status", "GET", "/status"},
	{"probe", "Check for an update without installing it", "POST", "/update/probe"},
	{"update", "Check for an update and install it", "POST", "/update"},
	{"install", "Install the update found by the last check", "POST", "/update/install"},
	{"pause", "Pause the periodic checks", "POST", "/pause"},
	{"resume", "Resume the periodic checks", "POST", "/resume"},
	{"reboot", "Restart the device", "POST", "/reboot"},
	{"logs", "Print agent log entries", "GET", "/log"},
}

func newRootCmd(out io.Writer) *cobra.Command {
	var address string
	var noColor bool

	rootCmd := &cobra.Command{
		Use:          "patchagent-ctl",
		Short:        "patchagent control utility",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&address, "address", "a", defaultAddress, "local API address of the agent")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	for _, c := range commands {
		c := c
		rootCmd.AddCommand(&cobra.Command{
			Use:   c.use,
			Short: c.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return execCmd(out, NewAgentClient(address), c, noColor)
			},
		})
	}

	return rootCmd
}

func execCmd(out io.Writer, client *AgentClient, c command, noColor bool) error {
	var res interface{}
	var err error

	if c.method == "GET" {
		res, err = client.Get(c.path)
	} else {
		res, err = client.Post(c.path)
	}

	if err != nil {
		return err
	}

	f := prettyjson.NewFormatter()
	f.DisabledColor = noColor

	output, err := f.Marshal(res)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, string(output))

	return nil
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		log.Fatal(err)
	}
}
