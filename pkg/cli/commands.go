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
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/core-dump-agent/pkg/agent"
)

func runInstall(ctx context.Context, cmd *cli.Command) error {
	cfg, err := configFromCommand(cmd)
	if err != nil {
		return err
	}

	a, err := agent.New(cfg)
	if err != nil {
		return err
	}

	slog.Info("starting agent",
		"host_dir", cfg.HostDir,
		"interval", cfg.Interval.String(),
		"vendor", cfg.Composer.Vendor,
		"sysctl_backend", cfg.SysctlBackend)

	return a.Run(ctx)
}

func removeCmd() *cli.Command {
	return &cli.Command{
		Name:  "remove",
		Usage: "Restore the original kernel parameters and delete the composer files",
		Description: `Restores kernel.core_pattern, kernel.core_pipe_limit and fs.suid_dumpable
from the backup records in --host-dir, then deletes the composer, its .env
and, when present, crictl, crictl.yaml and composer.log.

Every step is attempted. The command exits non-zero if any parameter could
not be restored, for example because its backup record is missing.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := configFromCommand(cmd)
			if err != nil {
				return err
			}
			// Teardown never serves probes or publishes events.
			cfg.MetricsPort = 0
			cfg.EmitEvents = false

			a, err := agent.New(cfg)
			if err != nil {
				return err
			}
			return a.Teardown(ctx)
		},
	}
}
