/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/UpdateHub/patchagent/agent"
	"github.com/UpdateHub/patchagent/installer"
	"github.com/UpdateHub/patchagent/server"
	"github.com/UpdateHub/patchagent/utils"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

type options struct {
	configPath string
	logLevel   string
	logFile    string
	listen     string
}

func main() {
	opts := options{}

	cmd := &cobra.Command{
		Use:          "patchagent",
		Short:        "Firmware update agent",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", agent.DefaultSettingsPath, "settings file")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warning, error)")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "console", "rotated log file, 'console' writes to stderr")
	cmd.Flags().StringVarP(&opts.listen, "listen", "l", "localhost:8080", "address of the local API")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildAgent wires the agent to the device described by "settings"
func buildAgent(fs afero.Fs, settings *agent.Settings, cmdline utils.CmdLineExecuter) (*agent.Agent, error) {
	cfg, err := settings.ToConfig(fs, settings.DeviceIdentifier(cmdline))
	if err != nil {
		return nil, err
	}

	callback := agent.NewCallbackListener(settings.EventCallbackPath, fs)
	callback.CmdLineExecuter = cmdline
	cfg.Listeners = append(cfg.Listeners, callback)

	store := agent.NewIniVersionStore(fs, settings.StatePath)
	sink := installer.NewImageSink(fs, settings.ImagePath, settings.MaxImageSize)

	var wd utils.Watchdog
	if settings.WatchdogUSec > 0 {
		if systemd := utils.NewSystemdWatchdog(settings.WatchdogUSec); systemd != nil {
			wd = systemd
		} else {
			log.Warn("watchdog extension requested but NOTIFY_SOCKET is not set")
		}
	}

	inst := installer.NewInstaller(sink, store, wd)
	inst.StrictSize = settings.StrictSize
	if settings.CopyTimeout > 0 {
		inst.ReadTimeout = time.Duration(settings.CopyTimeout) * time.Second
	}

	return agent.New(*cfg, nil, inst, store)
}

func run(opts options) error {
	if err := initLog(opts.logLevel, opts.logFile); err != nil {
		return err
	}

	logBuffer := server.NewLogBuffer(server.DefaultLogBufferSize)
	log.AddHook(logBuffer)

	log.Infof("patchagent %s (built %s)", version, buildTime)

	osFs := afero.NewOsFs()

	settings, err := agent.LoadSettingsFile(osFs, opts.configPath)
	if err != nil {
		log.Error(err)
		return err
	}

	log.Debug("settings: ", settings.ToString())

	a, err := buildAgent(osFs, settings, &utils.CmdLine{})
	if err != nil {
		log.Error(err)
		return err
	}

	watcher, err := agent.NewSettingsWatcher(osFs, opts.configPath, a)
	if err != nil {
		log.Warn("settings changes will not be applied until restart: ", err)
	} else {
		go watcher.Run()
		defer watcher.Close()
	}

	backend := server.NewAgentBackend(a, utils.NewRebooter(), settings)
	backend.Version = version
	backend.BuildTime = buildTime
	backend.LogBuffer = logBuffer

	srv := &http.Server{
		Addr:    opts.listen,
		Handler: server.NewBackendRouter(backend),
	}

	go func() {
		log.Infof("local API listening on %s", opts.listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("local API stopped: ", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := agent.NewDaemon(a, a.Config().AutoInstall)
	d.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
