// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package agent

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/sync/errgroup"

	"github.com/NVIDIA/core-dump-agent/pkg/composer"
	"github.com/NVIDIA/core-dump-agent/pkg/errors"
	"github.com/NVIDIA/core-dump-agent/pkg/harvest"
	"github.com/NVIDIA/core-dump-agent/pkg/k8s/client"
	"github.com/NVIDIA/core-dump-agent/pkg/k8s/events"
	"github.com/NVIDIA/core-dump-agent/pkg/param"
	"github.com/NVIDIA/core-dump-agent/pkg/server"
	"github.com/NVIDIA/core-dump-agent/pkg/storage"
	"github.com/NVIDIA/core-dump-agent/pkg/sysctl"
)

// UploaderFactory builds the uploader for one pass.
type UploaderFactory func(storage.Target) (harvest.Uploader, error)

// Agent owns the kernel parameters, the composer files and the polling loop.
type Agent struct {
	cfg Config

	params    *param.Manager
	harvester *harvest.Harvester
	server    *server.Server

	newUploader UploaderFactory
	notify      func(state string)
}

// Option customizes an Agent.
type Option func(*Agent)

// WithHost replaces the kernel parameter backend.
func WithHost(h sysctl.Host) Option {
	return func(a *Agent) { a.params = param.NewManager(h, a.cfg.HostDir) }
}

// WithUploaderFactory replaces storage.New.
func WithUploaderFactory(f UploaderFactory) Option {
	return func(a *Agent) { a.newUploader = f }
}

// WithNotifier sets the upload notifier, overriding EmitEvents.
func WithNotifier(n harvest.Notifier) Option {
	return func(a *Agent) { a.harvester.Notifier = n }
}

// New validates cfg and wires the agent's collaborators.
func New(cfg Config, opts ...Option) (*Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Lookup == nil {
		cfg.Lookup = os.LookupEnv
	}
	cfg.Composer.HostDir = cfg.HostDir

	a := &Agent{
		cfg:       cfg,
		harvester: harvest.New(cfg.DumpDir()),
		newUploader: func(t storage.Target) (harvest.Uploader, error) {
			return storage.New(t)
		},
		notify: sdNotify,
	}

	for _, o := range opts {
		o(a)
	}

	if a.params == nil {
		host, err := sysctl.New(cfg.SysctlBackend)
		if err != nil {
			return nil, err
		}
		a.params = param.NewManager(host, cfg.HostDir)
	}

	if cfg.EmitEvents && a.harvester.Notifier == nil {
		cs, err := client.GetKubeClient()
		if err != nil {
			return nil, err
		}
		a.harvester.Notifier = events.NewRecorder(cs, cfg.NodeName)
	}

	if cfg.MetricsPort > 0 {
		a.server = server.New(
			server.WithName("core-dump-agent"),
			server.WithVersion(cfg.Version),
			server.WithPort(cfg.MetricsPort),
		)
	}

	return a, nil
}

// Run installs the kernel parameters and the composer, then harvests the
// dump directory every interval until ctx is canceled. Configuration is
// checked before the first kernel write. Setup failures are returned
// immediately and leave the loop unstarted.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.install(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.server != nil {
		g.Go(func() error {
			return a.server.Run(gctx)
		})
		a.server.SetReady(true)
	}
	a.notify(daemon.SdNotifyReady)

	g.Go(func() error {
		a.loop(gctx)
		return nil
	})

	err := g.Wait()
	a.notify(daemon.SdNotifyStopping)
	slog.Info("agent stopped")
	return err
}

func (a *Agent) install(ctx context.Context) error {
	params, err := param.Managed(a.cfg.HostDir, a.cfg.SuidDumpable)
	if err != nil {
		return err
	}

	// The kernel must never point at a composer that cannot be deployed.
	if err := composer.Validate(a.cfg.Composer); err != nil {
		return err
	}

	if err := a.params.InstallAll(ctx, params); err != nil {
		return err
	}

	if err := composer.Deploy(a.cfg.Composer); err != nil {
		return err
	}

	if err := os.MkdirAll(a.cfg.DumpDir(), 0o755); err != nil { //nolint:gosec // composer runs as the crashing process's user
		return errors.WrapWithContext(errors.ErrCodeInternal, "failed to create dump directory", err,
			map[string]any{"dir": a.cfg.DumpDir()})
	}

	slog.Info("agent installed",
		"host_dir", a.cfg.HostDir,
		"dump_dir", a.cfg.DumpDir(),
		"interval", a.cfg.Interval.String())
	return nil
}

// loop sleeps one interval and then runs a pass, until ctx is done.
func (a *Agent) loop(ctx context.Context) {
	timer := time.NewTimer(a.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		a.pass(ctx)
		timer.Reset(a.cfg.Interval)
	}
}

// pass runs one harvest with a freshly resolved storage target.
func (a *Agent) pass(ctx context.Context) {
	up, err := a.newUploader(storage.TargetFromEnv(a.cfg.Lookup))
	if err != nil {
		slog.Error("storage unavailable, skipping pass", "error", err)
		return
	}

	if _, err := a.harvester.Pass(ctx, up); err != nil {
		slog.Error("harvest pass failed", "error", err)
	}
}

// Teardown restores every managed kernel parameter and removes the composer
// files. Every step is attempted; the returned error joins all failures.
func (a *Agent) Teardown(ctx context.Context) error {
	var errs []error

	if err := a.params.RestoreAll(ctx, param.Names); err != nil {
		errs = append(errs, err)
	}

	if err := composer.Remove(a.cfg.HostDir); err != nil {
		slog.Error("failed to remove composer files", "error", err)
		errs = append(errs, err)
	}

	if err := stderrors.Join(errs...); err != nil {
		return err
	}

	slog.Info("teardown complete", "host_dir", a.cfg.HostDir)
	return nil
}

func sdNotify(state string) {
	sent, err := daemon.SdNotify(false, state)
	switch {
	case err != nil:
		slog.Warn("failed to notify systemd", "state", state, "error", err)
	case sent:
		slog.Debug("notified systemd", "state", state)
	}
}
