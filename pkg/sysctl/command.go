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

package sysctl

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/NVIDIA/core-dump-agent/pkg/defaults"
	"github.com/NVIDIA/core-dump-agent/pkg/errors"
)

// Command is a Host backed by the sysctl executable.
type Command struct {
	// Binary is the sysctl executable. A bare name is resolved against Path.
	Binary string

	// Path is the PATH handed to the child and used for resolving Binary.
	Path string
}

// NewCommand returns a Command using "sysctl" from the standard system directories.
func NewCommand() *Command {
	return &Command{
		Binary: "sysctl",
		Path:   defaults.BinPath,
	}
}

// Get runs "sysctl -n name" and returns the first line of its output.
func (c *Command) Get(ctx context.Context, name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}

	out, err := c.run(ctx, "-n", name)
	if err != nil {
		return "", errors.WrapWithContext(codeFor(ctx), "failed to query kernel parameter", err,
			map[string]any{"name": name})
	}

	return firstLine(string(out)), nil
}

// Set runs "sysctl -w name=value".
func (c *Command) Set(ctx context.Context, name, value string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	if _, err := c.run(ctx, "-w", name+"="+value); err != nil {
		return errors.WrapWithContext(codeFor(ctx), "failed to set kernel parameter", err,
			map[string]any{"name": name, "value": value})
	}

	slog.Debug("kernel parameter set", "name", name, "value", value)
	return nil
}

func (c *Command) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, defaults.SysctlTimeout)
	defer cancel()

	bin, err := c.resolve()
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Env = []string{"PATH=" + c.Path}
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s %s: %w (stderr: %s)",
			bin, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}

// resolve finds Binary on Path without consulting the agent's own PATH.
func (c *Command) resolve() (string, error) {
	if strings.Contains(c.Binary, "/") {
		return c.Binary, nil
	}

	for _, dir := range filepath.SplitList(c.Path) {
		candidate := filepath.Join(dir, c.Binary)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Mode()&0o111 != 0 {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%s not found in %s: %w", c.Binary, c.Path, exec.ErrNotFound)
}

func codeFor(ctx context.Context) errors.ErrorCode {
	if stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.ErrCodeTimeout
	}
	return errors.ErrCodeInternal
}
