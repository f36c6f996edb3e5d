/*
 * UpdateHub
 * Copyright (C) 2017
 * O.S. Systems Sofware LTDA: contato@ossystems.com.br
 *
 * SPDX-License-Identifier:     GPL-2.0
 */

package agent

import (
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/UpdateHub/patchagent/client"
	"github.com/UpdateHub/patchagent/installer"
	"github.com/UpdateHub/patchagent/metadata"
)

// Agent owns the update session. Checks and installs are serialized by
// "busy"; the session fields are guarded by "mutex", which is only held
// for short reads and writes so observers never wait for a check.
type Agent struct {
	Fetcher   client.Fetcher
	Installer installer.Interface

	config      Config
	manifestURL *url.URL
	deviceURL   *url.URL
	listeners   []Listener

	busy     sync.Mutex
	mutex    sync.RWMutex
	runState atomic.Int32

	localVersion  string
	remoteVersion string
	releaseNotes  string
	url           string
	binaryURL     *url.URL
	lastChecked   time.Time
	interval      time.Duration
}

// Status is a consistent snapshot of the session
type Status struct {
	RunState      RunState   `json:"status"`
	LocalVersion  string     `json:"local-version"`
	RemoteVersion string     `json:"remote-version"`
	ReleaseNotes  string     `json:"release-notes"`
	URL           string     `json:"url"`
	LastChecked   *time.Time `json:"last-checked,omitempty"`
	Interval      int64      `json:"interval"`
}

// New validates "cfg" and builds an idle agent. A nil fetcher is
// replaced by an HTTP client built from the configuration. The local
// version is read once from "store".
func New(cfg Config, fetcher client.Fetcher, inst installer.Interface, store installer.VersionStore) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if inst == nil || store == nil {
		return nil, NewConfigError(ErrNotConfigured)
	}

	manifestURL, _ := cfg.manifestURL()

	var deviceURL *url.URL
	if cfg.AppendDeviceID {
		var err error
		if deviceURL, err = metadata.DeviceManifestURL(manifestURL, cfg.DeviceID); err != nil {
			return nil, NewConfigError(err)
		}
	}

	if fetcher == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}

		apiClient, err := client.NewApiClient(timeout, cfg.RootCA)
		if err != nil {
			return nil, NewConfigError(err)
		}

		fetcher = apiClient
	}

	localVersion, err := store.LoadVersion()
	if err != nil {
		return nil, NewConfigError(errors.Wrap(err, "failed to load the installed version"))
	}

	a := &Agent{
		Fetcher:      fetcher,
		Installer:    inst,
		config:       cfg,
		manifestURL:  manifestURL,
		deviceURL:    deviceURL,
		listeners:    append([]Listener{}, cfg.Listeners...),
		localVersion: localVersion,
		interval:     cfg.Interval,
	}

	a.runState.Store(int32(RunStateIdle))

	log.Infof("agent configured for '%s', installed version '%s'", manifestURL, localVersion)

	return a, nil
}

func (a *Agent) configured() bool {
	return a != nil && a.Fetcher != nil && a.Installer != nil && a.manifestURL != nil
}

// RunState never blocks; the value may be stale once read
func (a *Agent) RunState() RunState {
	if a == nil {
		return RunStateError
	}

	return RunState(a.runState.Load())
}

func (a *Agent) setRunState(s RunState) {
	a.runState.Store(int32(s))
}

// SetRunState pauses or resumes background checks. It waits for a
// check or install in progress to finish. Resuming an agent that is
// not paused does nothing.
func (a *Agent) SetRunState(change RunStateChange) error {
	if !a.configured() {
		return NewInternalError(ErrNotConfigured)
	}

	a.busy.Lock()
	defer a.busy.Unlock()

	switch change {
	case Pause:
		a.setRunState(RunStatePaused)
		log.Info("agent paused")
	case Resume:
		if a.RunState() == RunStatePaused {
			a.setRunState(RunStateIdle)
			log.Info("agent resumed")
		}
	default:
		return NewConfigError(ErrInvalidStateChange)
	}

	return nil
}

func (a *Agent) Interval() time.Duration {
	if a == nil {
		return 0
	}

	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.interval
}

// SetInterval changes the poll interval used from the next scheduler
// cycle on. Like the other mutating entry points it waits for a check
// in progress.
func (a *Agent) SetInterval(interval time.Duration) error {
	if !a.configured() {
		return NewInternalError(ErrNotConfigured)
	}

	if err := validateInterval(interval); err != nil {
		return NewConfigError(err)
	}

	a.busy.Lock()
	defer a.busy.Unlock()

	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.interval = interval

	return nil
}

func (a *Agent) LocalVersion() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.localVersion
}

func (a *Agent) RemoteVersion() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.remoteVersion
}

func (a *Agent) ReleaseNotes() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.releaseNotes
}

// URL returns the "url" field of the last manifest, empty when absent
func (a *Agent) URL() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.url
}

// BinaryURL returns where the firmware of the last manifest is fetched
// from, empty before a successful check
func (a *Agent) BinaryURL() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	if a.binaryURL == nil {
		return ""
	}

	return a.binaryURL.String()
}

func (a *Agent) LastChecked() time.Time {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.lastChecked
}

func (a *Agent) Config() Config {
	return a.config
}

func (a *Agent) Status() Status {
	s := Status{RunState: a.RunState()}

	a.mutex.RLock()
	defer a.mutex.RUnlock()

	s.LocalVersion = a.localVersion
	s.RemoteVersion = a.remoteVersion
	s.ReleaseNotes = a.releaseNotes
	if a.binaryURL != nil {
		s.URL = a.binaryURL.String()
	}
	if !a.lastChecked.IsZero() {
		lastChecked := a.lastChecked
		s.LastChecked = &lastChecked
	}
	s.Interval = int64(a.interval / time.Second)

	return s
}

func (a *Agent) emit(e Event) {
	for _, l := range a.listeners {
		l.HandleEvent(e)
	}
}

// CheckForUpdate fetches the manifest, compares its version with the
// installed one and, when "autoInstall" is set and the version differs,
// installs it. On a successful install the device is restarting and
// the state stays Installing.
func (a *Agent) CheckForUpdate(autoInstall bool) (Outcome, error) {
	if !a.configured() {
		return OutcomeCheckFailed, NewInternalError(ErrNotConfigured)
	}

	a.busy.Lock()
	defer a.busy.Unlock()

	restore := RunStateIdle
	if a.RunState() == RunStatePaused {
		restore = RunStatePaused
	}

	a.setRunState(RunStateChecking)

	outcome, err := a.check(autoInstall)

	if outcome != OutcomeUpdateInstalled {
		a.setRunState(restore)
	}

	return outcome, err
}

func (a *Agent) check(autoInstall bool) (Outcome, error) {
	m, manifestURL, err := a.fetchManifest()

	checked := time.Now()

	if err != nil {
		a.mutex.Lock()
		a.lastChecked = checked
		a.mutex.Unlock()

		checkErr := NewCheckError(err)
		log.Warn(checkErr)

		a.emit(Event{Type: EventInternalError, Outcome: OutcomeCheckFailed, LocalVersion: a.LocalVersion(), Err: checkErr})

		return OutcomeCheckFailed, checkErr
	}

	binaryURL, binErr := metadata.BinaryURL(manifestURL, m)

	a.mutex.Lock()
	a.lastChecked = checked
	a.remoteVersion = m.Version
	a.binaryURL = binaryURL
	a.releaseNotes = ""
	if m.ReleaseNotes != nil {
		a.releaseNotes = *m.ReleaseNotes
	}
	a.url = ""
	if m.URL != nil {
		a.url = *m.URL
	}
	if m.UpdateInterval != nil {
		if err := validateInterval(*m.UpdateInterval); err != nil {
			log.Warn("ignoring manifest updateInterval: ", err)
		} else if *m.UpdateInterval != a.interval {
			log.Infof("poll interval changed by the manifest to %s", *m.UpdateInterval)
			a.interval = *m.UpdateInterval
		}
	}
	localVersion := a.localVersion
	a.mutex.Unlock()

	e := Event{LocalVersion: localVersion, RemoteVersion: m.Version}

	if m.Version == "" || m.Version == localVersion {
		log.Infof("firmware is up to date (version '%s')", localVersion)

		e.Type, e.Outcome = EventUpToDate, OutcomeUpToDate
		a.emit(e)

		return OutcomeUpToDate, nil
	}

	log.Infof("update available: version '%s' (installed '%s')", m.Version, localVersion)

	if binErr != nil {
		checkErr := NewCheckError(binErr)
		log.Warn(checkErr)

		e.Type, e.Outcome, e.Err = EventInternalError, OutcomeCheckFailed, checkErr
		a.emit(e)

		return OutcomeCheckFailed, checkErr
	}

	e.Type, e.Outcome = EventUpdateAvailable, OutcomeUpdateAvailable
	a.emit(e)

	if !autoInstall {
		return OutcomeUpdateAvailable, nil
	}

	if err := a.install(binaryURL, m.Version); err != nil {
		return OutcomeInstallFailed, err
	}

	return OutcomeUpdateInstalled, nil
}

// fetchManifest tries the device-qualified manifest first, then falls
// back once to the base manifest. It returns the URL that was
// requested, before any redirect, since firmware paths are relative to
// it.
func (a *Agent) fetchManifest() (*metadata.Manifest, *url.URL, error) {
	if a.deviceURL != nil {
		m, err := a.fetchManifestFrom(a.deviceURL)
		if err == nil {
			return m, a.deviceURL, nil
		}

		log.Infof("device manifest unavailable, falling back to '%s': %s", a.manifestURL, err)
	}

	m, err := a.fetchManifestFrom(a.manifestURL)
	if err != nil {
		return nil, nil, err
	}

	return m, a.manifestURL, nil
}

func (a *Agent) fetchManifestFrom(u *url.URL) (*metadata.Manifest, error) {
	target := *u

	if a.config.SendDeviceQuery {
		q := target.Query()
		q.Set("device", a.config.DeviceID)
		q.Set("version", a.LocalVersion())
		target.RawQuery = q.Encode()
	}

	p, err := a.Fetcher.Fetch(target.String())
	if err != nil {
		return nil, err
	}

	if p.Kind != client.KindManifest {
		if p.Stream != nil {
			p.Stream.Close()
		}

		return nil, errors.Wrapf(ErrUnexpectedPayload, "expected manifest, got %s", p.Kind)
	}

	return metadata.NewManifest(p.Body)
}

// InstallUpdate installs the firmware found by the last check, waiting
// for any check in progress. A nil return means the device is
// restarting; on failure the state is left as Error.
func (a *Agent) InstallUpdate() error {
	if !a.configured() {
		return NewInternalError(ErrNotConfigured)
	}

	a.busy.Lock()
	defer a.busy.Unlock()

	a.mutex.RLock()
	binaryURL := a.binaryURL
	version := a.remoteVersion
	a.mutex.RUnlock()

	if binaryURL == nil || version == "" {
		err := NewInstallError(ErrNoUpdateAvailable)
		log.Warn(err)
		return err
	}

	return a.install(binaryURL, version)
}

func (a *Agent) install(binaryURL *url.URL, version string) error {
	a.setRunState(RunStateInstalling)

	err := a.installFrom(binaryURL, version)
	if err != nil {
		a.setRunState(RunStateError)

		installErr := NewInstallError(err)
		log.Error(installErr)

		a.emit(Event{
			Type:          EventInstallFailed,
			Outcome:       OutcomeInstallFailed,
			LocalVersion:  a.LocalVersion(),
			RemoteVersion: version,
			Err:           installErr,
		})

		return installErr
	}

	return nil
}

// committed records "version" as the local one and announces it, the
// restart follows right after
func (a *Agent) committed(version string) {
	a.mutex.Lock()
	previous := a.localVersion
	a.localVersion = version
	a.mutex.Unlock()

	a.emit(Event{
		Type:          EventInstallSucceeded,
		Outcome:       OutcomeUpdateInstalled,
		LocalVersion:  previous,
		RemoteVersion: version,
	})
}

func (a *Agent) installFrom(binaryURL *url.URL, version string) error {
	log.Infof("fetching firmware from '%s'", binaryURL)

	p, err := a.Fetcher.Fetch(binaryURL.String())
	if err != nil {
		return err
	}

	if p.Kind != client.KindFirmware {
		return errors.Wrapf(ErrUnexpectedPayload, "expected firmware, got %s", p.Kind)
	}

	defer p.Stream.Close()

	return a.Installer.Install(p.Stream, p.ContentLength, version, func() {
		a.committed(version)
	})
}
