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

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/core-dump-agent/pkg/logging"
)

const (
	name           = "core-dump-agent"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// dotenv records the outcome of loading the sidecar .env file so it can be
// logged once the logger is configured.
type dotenv struct {
	path   string
	loaded bool
	err    error
}

// loadDotEnv loads dir/.env without overriding variables already set.
func loadDotEnv(dir string) dotenv {
	d := dotenv{path: filepath.Join(dir, ".env")}
	if _, err := os.Stat(d.path); err != nil {
		return d
	}
	if err := godotenv.Load(d.path); err != nil {
		d.err = err
		return d
	}
	d.loaded = true
	return d
}

func (d dotenv) log() {
	switch {
	case d.err != nil:
		slog.Warn("failed to load .env file", "path", d.path, "error", d.err)
	case d.loaded:
		slog.Info("loaded .env file", "path", d.path)
	default:
		slog.Debug("no .env file found, expected when running in kubernetes", "path", d.path)
	}
}

func newRootCmd(env dotenv) *cli.Command {
	return &cli.Command{
		Name:                  name,
		Version:               fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		EnableShellCompletion: true,
		Usage:                 "Capture kernel core dumps on this node and upload them to storage",
		Description: `Runs on every node (usually as a privileged DaemonSet pod).

Install mode (default):
  1. Backs up and overrides kernel.core_pattern, kernel.core_pipe_limit and
     fs.suid_dumpable so the kernel pipes every dump to the composer.
  2. Deploys the composer, its .env and optionally crictl into --host-dir.
  3. Uploads finished dumps from <host-dir>/core every --interval
     milliseconds, deleting each one once storage confirms it.

Use "remove" to restore the original kernel parameters.`,
		Flags: agentFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			initLogger(cmd.String("log-level"))
			env.log()
			return ctx, nil
		},
		Action: runInstall,
		Commands: []*cli.Command{
			removeCmd(),
		},
	}
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := "."
	if exe, err := os.Executable(); err == nil {
		dir = filepath.Dir(exe)
	}

	if err := newRootCmd(loadDotEnv(dir)).Run(ctx, os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		stop()
		os.Exit(1)
	}
}

// initLogger configures slog after flags are parsed so --log-level applies
// before any command executes.
func initLogger(level string) {
	logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
	slog.Debug("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
		"logLevel", level)
}
