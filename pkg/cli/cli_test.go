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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/core-dump-agent/pkg/agent"
	"github.com/NVIDIA/core-dump-agent/pkg/composer"
	"github.com/NVIDIA/core-dump-agent/pkg/defaults"
	"github.com/NVIDIA/core-dump-agent/pkg/sysctl"
)

// parseConfig runs a throwaway command carrying the agent flags and returns
// the resulting configuration.
func parseConfig(t *testing.T, args ...string) (agent.Config, error) {
	t.Helper()

	var cfg agent.Config
	var cfgErr error
	cmd := &cli.Command{
		Name:  "test",
		Flags: agentFlags(),
		Action: func(_ context.Context, c *cli.Command) error {
			cfg, cfgErr = configFromCommand(c)
			return nil
		},
	}

	if err := cmd.Run(context.Background(), append([]string{"test"}, args...)); err != nil {
		return agent.Config{}, err
	}
	return cfg, cfgErr
}

func TestConfigFromCommand_Defaults(t *testing.T) {
	cfg, err := parseConfig(t)
	if err != nil {
		t.Fatalf("configFromCommand() error = %v", err)
	}

	if cfg.HostDir != defaults.HostDir {
		t.Errorf("HostDir = %q, want %q", cfg.HostDir, defaults.HostDir)
	}
	if cfg.Interval != time.Minute {
		t.Errorf("Interval = %s, want 1m0s", cfg.Interval)
	}
	if cfg.SuidDumpable != "2" {
		t.Errorf("SuidDumpable = %q, want 2", cfg.SuidDumpable)
	}
	if cfg.SysctlBackend != sysctl.BackendCommand {
		t.Errorf("SysctlBackend = %q, want %q", cfg.SysctlBackend, sysctl.BackendCommand)
	}
	if cfg.Composer.Vendor != composer.VendorDefault {
		t.Errorf("Vendor = %q, want default", cfg.Composer.Vendor)
	}
	if cfg.Composer.LogLevel != "error" || cfg.Composer.CrioImageCmd != "img" {
		t.Errorf("composer settings = %+v", cfg.Composer)
	}
	if cfg.MetricsPort != 0 || cfg.EmitEvents {
		t.Errorf("optional surfaces enabled by default: port=%d events=%v", cfg.MetricsPort, cfg.EmitEvents)
	}
}

func TestConfigFromCommand_Flags(t *testing.T) {
	cfg, err := parseConfig(t,
		"--host-dir", "/opt/cdh",
		"--interval", "1500",
		"--suid-dumpable", "1",
		"--vendor", "rhel7",
		"--deploy-crio-config",
		"--comp-ignore-crio",
		"--sysctl-backend", "proc",
		"--metrics-port", "9102",
	)
	if err != nil {
		t.Fatalf("configFromCommand() error = %v", err)
	}

	if cfg.HostDir != "/opt/cdh" {
		t.Errorf("HostDir = %q", cfg.HostDir)
	}
	if cfg.Interval != 1500*time.Millisecond {
		t.Errorf("Interval = %s, want 1.5s", cfg.Interval)
	}
	if cfg.SuidDumpable != "1" || cfg.Composer.Vendor != "rhel7" {
		t.Errorf("SuidDumpable = %q, Vendor = %q", cfg.SuidDumpable, cfg.Composer.Vendor)
	}
	if !cfg.Composer.DeployCrioConfig || !cfg.Composer.IgnoreCrio || cfg.Composer.DeployCrioExe {
		t.Errorf("composer flags = %+v", cfg.Composer)
	}
	if cfg.SysctlBackend != sysctl.BackendProc || cfg.MetricsPort != 9102 {
		t.Errorf("SysctlBackend = %q, MetricsPort = %d", cfg.SysctlBackend, cfg.MetricsPort)
	}
}

func TestConfigFromCommand_Env(t *testing.T) {
	t.Setenv("HOST_DIR", "/env/dir")
	t.Setenv("INTERVAL", "250")
	t.Setenv("COMP_LOG_LEVEL", "debug")
	t.Setenv("DEPLOY_CRIO_EXE", "true")
	t.Setenv("NODE_NAME", "gpu-7")

	cfg, err := parseConfig(t)
	if err != nil {
		t.Fatalf("configFromCommand() error = %v", err)
	}

	if cfg.HostDir != "/env/dir" || cfg.Interval != 250*time.Millisecond {
		t.Errorf("HostDir = %q, Interval = %s", cfg.HostDir, cfg.Interval)
	}
	if cfg.Composer.LogLevel != "debug" || !cfg.Composer.DeployCrioExe {
		t.Errorf("composer = %+v", cfg.Composer)
	}
	if cfg.NodeName != "gpu-7" {
		t.Errorf("NodeName = %q", cfg.NodeName)
	}
}

func TestConfigFromCommand_InvalidInterval(t *testing.T) {
	tests := []struct {
		name string
		env  string
	}{
		{name: "not a number", env: "sixty"},
		{name: "zero", env: "0"},
		{name: "negative", env: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("INTERVAL", tt.env)
			if _, err := parseConfig(t); err == nil {
				t.Errorf("INTERVAL=%q should be rejected", tt.env)
			}
		})
	}
}

func TestRootCmd_HasRemove(t *testing.T) {
	root := newRootCmd(dotenv{})
	var found bool
	for _, c := range root.Commands {
		if c.Name == "remove" {
			found = true
		}
	}
	if !found {
		t.Error("root command is missing the remove subcommand")
	}
}

func TestRemove_MissingBackupsFails(t *testing.T) {
	host := t.TempDir()
	root := newRootCmd(dotenv{})

	err := root.Run(context.Background(), []string{name, "remove", "--host-dir", host, "--sysctl-backend", "proc"})
	if err == nil {
		t.Fatal("remove without backup records should fail")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	if d := loadDotEnv(dir); d.loaded || d.err != nil {
		t.Errorf("loadDotEnv() without file = %+v", d)
	}

	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("CDA_TEST_FROM_FILE=file\nCDA_TEST_PRESET=file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CDA_TEST_PRESET", "env")
	t.Setenv("CDA_TEST_FROM_FILE", "")
	os.Unsetenv("CDA_TEST_FROM_FILE")

	d := loadDotEnv(dir)
	if !d.loaded || d.err != nil {
		t.Fatalf("loadDotEnv() = %+v", d)
	}
	if got := os.Getenv("CDA_TEST_FROM_FILE"); got != "file" {
		t.Errorf("CDA_TEST_FROM_FILE = %q, want file", got)
	}
	if got := os.Getenv("CDA_TEST_PRESET"); got != "env" {
		t.Errorf("CDA_TEST_PRESET = %q, .env must not override the environment", got)
	}
}
