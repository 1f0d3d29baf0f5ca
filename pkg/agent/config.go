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
	"path/filepath"
	"time"

	"github.com/NVIDIA/core-dump-agent/pkg/composer"
	"github.com/NVIDIA/core-dump-agent/pkg/defaults"
	"github.com/NVIDIA/core-dump-agent/pkg/errors"
	"github.com/NVIDIA/core-dump-agent/pkg/storage"
	"github.com/NVIDIA/core-dump-agent/pkg/sysctl"
)

// Config is the resolved agent configuration.
type Config struct {
	// HostDir holds backups, the composer and the dump directory.
	HostDir string
	// Interval is the delay before each harvest pass.
	Interval time.Duration
	// SuidDumpable is the fs.suid_dumpable value to install.
	SuidDumpable string
	// SysctlBackend selects how kernel parameters are read and written.
	SysctlBackend string

	// Composer settings; HostDir is filled in from the agent's HostDir.
	Composer composer.Config

	// MetricsPort enables the probe and metrics server when non-zero.
	MetricsPort int
	// EmitEvents publishes a Node event for every uploaded dump.
	EmitEvents bool
	NodeName   string

	// Version is reported by the metrics server.
	Version string

	// Lookup resolves storage settings on every pass.
	Lookup storage.LookupFunc
}

// NewConfig returns a Config populated with the defaults.
func NewConfig() Config {
	return Config{
		HostDir:       defaults.HostDir,
		Interval:      defaults.IntervalMillis * time.Millisecond,
		SuidDumpable:  defaults.SuidDumpable,
		SysctlBackend: sysctl.BackendCommand,
		Composer: composer.Config{
			SourceDir:    ".",
			Vendor:       composer.VendorDefault,
			LogLevel:     "error",
			CrioImageCmd: "img",
		},
	}
}

// DumpDir is where the composer drops finished dumps.
func (c Config) DumpDir() string {
	return filepath.Join(c.HostDir, defaults.CoreDirName)
}

// Validate checks the settings both modes depend on.
func (c Config) Validate() error {
	if c.HostDir == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "host directory is required")
	}
	if !filepath.IsAbs(c.HostDir) {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "host directory must be absolute",
			map[string]any{"host_dir": c.HostDir})
	}
	if c.Interval <= 0 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "interval must be positive",
			map[string]any{"interval": c.Interval.String()})
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "metrics port out of range",
			map[string]any{"port": c.MetricsPort})
	}
	if c.EmitEvents && c.NodeName == "" {
		return errors.New(errors.ErrCodeInvalidRequest, "node name is required to emit events")
	}
	return nil
}
