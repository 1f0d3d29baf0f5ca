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
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/core-dump-agent/pkg/agent"
	"github.com/NVIDIA/core-dump-agent/pkg/composer"
	"github.com/NVIDIA/core-dump-agent/pkg/defaults"
	"github.com/NVIDIA/core-dump-agent/pkg/errors"
	"github.com/NVIDIA/core-dump-agent/pkg/sysctl"
)

func agentFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host-dir",
			Usage:   "Host directory for backups, the composer and dumps",
			Sources: cli.EnvVars("HOST_DIR"),
			Value:   defaults.HostDir,
		},
		&cli.IntFlag{
			Name:    "interval",
			Usage:   "Milliseconds to wait before each upload pass",
			Sources: cli.EnvVars("INTERVAL"),
			Value:   defaults.IntervalMillis,
		},
		&cli.StringFlag{
			Name:    "suid-dumpable",
			Usage:   "Value for fs.suid_dumpable (0, 1 or 2)",
			Sources: cli.EnvVars("SUID_DUMPABLE"),
			Value:   defaults.SuidDumpable,
		},
		&cli.StringFlag{
			Name:    "vendor",
			Usage:   fmt.Sprintf("Composer build to deploy (supported values: %s, %s)", composer.VendorDefault, composer.VendorRHEL7),
			Sources: cli.EnvVars("VENDOR"),
			Value:   composer.VendorDefault,
		},
		&cli.StringFlag{
			Name:    "source-dir",
			Usage:   "Directory holding vendor/<vendor>/cdc and crictl",
			Sources: cli.EnvVars("SOURCE_DIR"),
			Value:   ".",
		},
		&cli.BoolFlag{
			Name:    "deploy-crio-config",
			Usage:   "Write crictl.yaml pointing at containerd into the host directory",
			Sources: cli.EnvVars("DEPLOY_CRIO_CONFIG"),
		},
		&cli.BoolFlag{
			Name:    "deploy-crio-exe",
			Usage:   "Copy crictl into the host directory",
			Sources: cli.EnvVars("DEPLOY_CRIO_EXE"),
		},
		&cli.StringFlag{
			Name:    "comp-log-level",
			Usage:   "Composer log level",
			Sources: cli.EnvVars("COMP_LOG_LEVEL"),
			Value:   "error",
		},
		&cli.BoolFlag{
			Name:    "comp-ignore-crio",
			Usage:   "Composer skips container runtime lookups",
			Sources: cli.EnvVars("COMP_IGNORE_CRIO"),
		},
		&cli.StringFlag{
			Name:    "comp-crio-image-cmd",
			Usage:   "crictl subcommand the composer uses to list images",
			Sources: cli.EnvVars("COMP_CRIO_IMAGE_CMD"),
			Value:   "img",
		},
		&cli.StringFlag{
			Name:    "sysctl-backend",
			Usage:   fmt.Sprintf("How kernel parameters are accessed (supported values: %s, %s)", sysctl.BackendCommand, sysctl.BackendProc),
			Sources: cli.EnvVars("SYSCTL_BACKEND"),
			Value:   sysctl.BackendCommand,
		},
		&cli.IntFlag{
			Name:    "metrics-port",
			Usage:   "Port for /health, /ready and /metrics (0 disables)",
			Sources: cli.EnvVars("METRICS_PORT"),
		},
		&cli.BoolFlag{
			Name:    "emit-events",
			Usage:   "Publish a Kubernetes Node event for every uploaded dump",
			Sources: cli.EnvVars("EMIT_EVENTS"),
		},
		&cli.StringFlag{
			Name:    "node-name",
			Usage:   "Name of this node, required with --emit-events",
			Sources: cli.EnvVars("NODE_NAME"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.EnvVars("LOG_LEVEL"),
			Value:   "info",
		},
	}
}

// configFromCommand maps parsed flags onto an agent.Config. agent.New
// validates the result.
func configFromCommand(cmd *cli.Command) (agent.Config, error) {
	interval := cmd.Int("interval")
	if interval <= 0 {
		return agent.Config{}, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"interval must be a positive number of milliseconds", map[string]any{"interval": interval})
	}

	cfg := agent.NewConfig()
	cfg.HostDir = cmd.String("host-dir")
	cfg.Interval = time.Duration(interval) * time.Millisecond
	cfg.SuidDumpable = cmd.String("suid-dumpable")
	cfg.SysctlBackend = cmd.String("sysctl-backend")
	cfg.MetricsPort = int(cmd.Int("metrics-port"))
	cfg.EmitEvents = cmd.Bool("emit-events")
	cfg.NodeName = cmd.String("node-name")
	cfg.Version = version

	cfg.Composer = composer.Config{
		SourceDir:        cmd.String("source-dir"),
		Vendor:           cmd.String("vendor"),
		DeployCrioConfig: cmd.Bool("deploy-crio-config"),
		DeployCrioExe:    cmd.Bool("deploy-crio-exe"),
		LogLevel:         cmd.String("comp-log-level"),
		IgnoreCrio:       cmd.Bool("comp-ignore-crio"),
		CrioImageCmd:     cmd.String("comp-crio-image-cmd"),
	}

	return cfg, nil
}
